package recorder

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"IndexPulse/internal/domain/models"
	drepo "IndexPulse/internal/domain/repository"
	"IndexPulse/pkg/timeutil"
)

// ErrClosed is returned by Log and RotateNow after Close.
var ErrClosed = errors.New("recorder closed")

// safetyMargin pads window retention past the largest horizon so
// lookups near the boundary survive scheduling jitter.
const safetyMargin = 5 * time.Second

// Options configures the daily recorder.
type Options struct {
	RotateAtMidnight      bool
	HorizonsSeconds       []int
	FlushEachWrite        bool
	IncludePercentColumns bool
}

// Recorder appends samples with rolling-window delta and percent
// columns to date-partitioned CSV files, rotating at local midnight.
// One mutex guards all state; Log, RotateNow and Close serialize
// against the midnight timer callback.
type Recorder struct {
	baseDir string
	opts    Options
	now     timeutil.NowFunc
	metrics drepo.Metrics

	horizons   []int
	maxHorizon int
	header     string

	mu       sync.Mutex
	closed   bool
	dateKey  string
	filePath string
	file     *os.File
	w        *bufio.Writer
	prev     *models.Sample
	win      *Window
	timer    *time.Timer
	openErr  error
}

// New creates the base directory if absent, opens today's file for
// append, writes the header iff the file is empty, and arms the first
// midnight rotation when enabled. The clock is injectable and must
// report time in the recorder's fixed zone.
func New(baseDir string, opts Options, now timeutil.NowFunc, metrics drepo.Metrics) (*Recorder, error) {
	if now == nil {
		now = time.Now
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create base dir: %w", err)
	}

	horizons := sanitizeHorizons(opts.HorizonsSeconds)
	maxH := 0
	if len(horizons) > 0 {
		maxH = horizons[len(horizons)-1]
	}

	retention := time.Duration(0)
	if maxH > 0 {
		retention = time.Duration(maxH)*time.Second + safetyMargin
	}

	r := &Recorder{
		baseDir:    baseDir,
		opts:       opts,
		now:        now,
		metrics:    metrics,
		horizons:   horizons,
		maxHorizon: maxH,
		win:        NewWindow(retention),
	}
	r.header = r.buildHeader()

	if err := r.openCurrentLocked(); err != nil {
		return nil, err
	}
	if opts.RotateAtMidnight {
		r.scheduleRotationLocked()
	}
	return r, nil
}

// sanitizeHorizons drops non-positive values, deduplicates and sorts
// ascending. Invalid configuration is filtered, not reported.
func sanitizeHorizons(in []int) []int {
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, h := range in {
		if h <= 0 {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Ints(out)
	return out
}

func (r *Recorder) buildHeader() string {
	cols := []string{"datetime", "seriesA", "seriesB", "deltaA", "deltaB"}
	for _, h := range r.horizons {
		cols = append(cols, fmt.Sprintf("deltaA_%ds", h), fmt.Sprintf("deltaB_%ds", h))
		if r.opts.IncludePercentColumns {
			cols = append(cols, fmt.Sprintf("pctA_%ds", h), fmt.Sprintf("pctB_%ds", h))
		}
	}
	return strings.Join(cols, ",")
}

// Log renders and appends one CSV row for the given readings. Deltas
// against the previous sample and per-horizon lookbacks that have no
// qualifying data are emitted as empty fields.
func (r *Recorder) Log(a, b float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if r.file == nil {
		return r.openErr
	}

	now := r.now()
	s := models.Sample{Timestamp: now, SeriesA: a, SeriesB: b}

	fields := make([]string, 0, 5+len(r.horizons)*4)
	fields = append(fields, timeutil.FormatStamp(now), formatFloat(a), formatFloat(b))
	if r.prev != nil {
		fields = append(fields, formatFloat(a-r.prev.SeriesA), formatFloat(b-r.prev.SeriesB))
	} else {
		fields = append(fields, "", "")
	}

	r.win.Append(s)

	for _, h := range r.horizons {
		past, ok := r.win.AtOrBefore(now.Add(-time.Duration(h) * time.Second))
		if !ok {
			fields = append(fields, "", "")
			if r.opts.IncludePercentColumns {
				fields = append(fields, "", "")
			}
			continue
		}
		fields = append(fields, formatFloat(a-past.SeriesA), formatFloat(b-past.SeriesB))
		if r.opts.IncludePercentColumns {
			fields = append(fields, formatPct(a, past.SeriesA), formatPct(b, past.SeriesB))
		}
	}

	if err := r.writeLineLocked(strings.Join(fields, ",")); err != nil {
		r.recordError("write")
		return err
	}
	r.prev = &s

	r.recordRow()
	if r.metrics != nil {
		r.metrics.RecordLastValue("seriesA", a)
		r.metrics.RecordLastValue("seriesB", b)
	}
	return nil
}

// CurrentFilePath reports the path rows are currently appended to.
func (r *Recorder) CurrentFilePath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filePath
}

// Close cancels any pending rotation, flushes and closes the open
// file. Idempotent; later Log/RotateNow calls fail with ErrClosed.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	return r.closeFileLocked()
}

func (r *Recorder) openCurrentLocked() error {
	now := r.now()
	r.dateKey = now.Format(timeutil.DateKey)
	r.filePath = r.resolvePath(r.dateKey, now)

	f, err := os.OpenFile(r.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		r.openErr = fmt.Errorf("open %s: %w", r.filePath, err)
		return r.openErr
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		r.openErr = fmt.Errorf("stat %s: %w", r.filePath, err)
		return r.openErr
	}

	r.file = f
	r.w = bufio.NewWriter(f)
	r.openErr = nil

	if st.Size() == 0 {
		if err := r.writeLineLocked(r.header); err != nil {
			return err
		}
	}
	return nil
}

// resolvePath prefers the canonical daily name and falls back to a
// time-suffixed name when a prior run already owns it.
func (r *Recorder) resolvePath(dateKey string, now time.Time) string {
	base := filepath.Join(r.baseDir, fmt.Sprintf("Daily_Log_%s.csv", dateKey))
	if _, err := os.Stat(base); os.IsNotExist(err) {
		return base
	}
	return filepath.Join(r.baseDir, fmt.Sprintf("Daily_Log_%s_%s.csv", dateKey, now.Format(timeutil.TimeKey)))
}

func (r *Recorder) writeLineLocked(line string) error {
	if _, err := r.w.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write %s: %w", r.filePath, err)
	}
	if r.opts.FlushEachWrite {
		if err := r.w.Flush(); err != nil {
			return fmt.Errorf("flush %s: %w", r.filePath, err)
		}
	}
	return nil
}

func (r *Recorder) closeFileLocked() error {
	if r.file == nil {
		return nil
	}
	var ferr error
	if err := r.w.Flush(); err != nil {
		ferr = fmt.Errorf("flush %s: %w", r.filePath, err)
	}
	if err := r.file.Close(); err != nil && ferr == nil {
		ferr = fmt.Errorf("close %s: %w", r.filePath, err)
	}
	r.file = nil
	r.w = nil
	return ferr
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatPct renders (now/past - 1) * 100, or an empty field when the
// past value is exactly zero.
func formatPct(now, past float64) string {
	if past == 0 {
		return ""
	}
	return formatFloat((now/past - 1.0) * 100.0)
}

func (r *Recorder) recordRow() {
	if r.metrics != nil {
		r.metrics.RecordRowWritten()
	}
}

func (r *Recorder) recordRotation() {
	if r.metrics != nil {
		r.metrics.RecordRotation()
	}
}

func (r *Recorder) recordError(kind string) {
	if r.metrics != nil {
		r.metrics.RecordError(kind)
	}
}
