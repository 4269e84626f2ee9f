package recorder

import (
	"strings"
	"time"

	"IndexPulse/pkg/timeutil"
)

// RotateNow closes the current file and opens the one for "today".
// With writeMarker set, a midnight marker row carrying the last known
// values and empty delta columns is appended to the old file and
// repeated as the new file's first data row, anchoring continuity
// across the boundary. The previous-sample cache and rolling window
// are cleared; a new day starts a fresh rolling context.
func (r *Recorder) RotateNow(writeMarker bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	return r.rotateLocked(writeMarker)
}

func (r *Recorder) rotateLocked(writeMarker bool) error {
	var marker string
	if writeMarker {
		marker = r.markerRowLocked(timeutil.MidnightOf(r.now()))
		if r.file != nil {
			if err := r.writeLineLocked(marker); err != nil {
				r.recordError("rotate")
				return err
			}
		}
	}

	// The old handle is released before the new open is attempted, so
	// a failed open never leaks it.
	closeErr := r.closeFileLocked()

	if err := r.openCurrentLocked(); err != nil {
		r.recordError("rotate")
		return err
	}
	if closeErr != nil {
		r.recordError("rotate")
		return closeErr
	}

	if writeMarker {
		if err := r.writeLineLocked(marker); err != nil {
			r.recordError("rotate")
			return err
		}
	}

	r.prev = nil
	r.win.Clear()
	r.recordRotation()
	return nil
}

// markerRowLocked renders a sentinel row: timestamp and last known
// values populated, every delta and percent column empty.
func (r *Recorder) markerRowLocked(ts time.Time) string {
	fields := make([]string, 0, 5+len(r.horizons)*4)
	if r.prev != nil {
		fields = append(fields, timeutil.FormatStamp(ts), formatFloat(r.prev.SeriesA), formatFloat(r.prev.SeriesB))
	} else {
		fields = append(fields, timeutil.FormatStamp(ts), "", "")
	}
	fields = append(fields, "", "")
	for range r.horizons {
		fields = append(fields, "", "")
		if r.opts.IncludePercentColumns {
			fields = append(fields, "", "")
		}
	}
	return strings.Join(fields, ",")
}

// scheduleRotationLocked arms the midnight timer. The deadline is
// recomputed from the live clock on every call; a deadline already in
// the past collapses to firing immediately.
func (r *Recorder) scheduleRotationLocked() {
	if r.closed {
		return
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	now := r.now()
	d := timeutil.NextMidnight(now).Sub(now)
	if d < 0 {
		d = 0
	}
	r.timer = time.AfterFunc(d, r.midnightRotate)
}

// midnightRotate runs on the timer goroutine, serialized against Log
// and Close by the recorder lock. It always re-arms for the next
// midnight, whether or not the rotation succeeded.
func (r *Recorder) midnightRotate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	if err := r.rotateLocked(true); err != nil {
		r.recordError("rotate")
	}
	r.scheduleRotationLocked()
}
