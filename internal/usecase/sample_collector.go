package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"IndexPulse/internal/domain/models"
	drepo "IndexPulse/internal/domain/repository"
	"IndexPulse/internal/recorder"
	"IndexPulse/internal/signals"
	"IndexPulse/pkg/logger"
	"IndexPulse/pkg/timeutil"
)

// Options configures the collector loop.
type Options struct {
	PollInterval  time.Duration
	SignalHorizon time.Duration
	AbsThresholds signals.Thresholds
	PctThresholds signals.Thresholds
}

// SampleCollector drives the recorder: it polls the market feed at a
// fixed cadence, carries the last known value of each series across
// stale ticks, logs samples, derives trend signals over the configured
// horizon and fans snapshots out to subscribers and mirrors.
//
// Shutdown is an explicit context cancellation threaded into Run; the
// collector holds no process-wide state.
type SampleCollector struct {
	feed    drepo.MarketFeed
	rec     *recorder.Recorder
	pub     drepo.Publisher
	store   drepo.Storage
	metrics drepo.Metrics
	log     *logger.Logger
	now     timeutil.NowFunc
	opts    Options

	win *recorder.Window

	mu          sync.RWMutex
	lastA       *float64
	lastB       *float64
	latest      *models.Snapshot
	rowsWritten int64
	subs        map[chan models.Snapshot]struct{}
}

// NewSampleCollector creates a collector. Publisher and storage
// mirrors are optional; pass nil to disable.
func NewSampleCollector(
	feed drepo.MarketFeed,
	rec *recorder.Recorder,
	pub drepo.Publisher,
	store drepo.Storage,
	metrics drepo.Metrics,
	log *logger.Logger,
	now timeutil.NowFunc,
	opts Options,
) *SampleCollector {
	if now == nil {
		now = time.Now
	}
	return &SampleCollector{
		feed:    feed,
		rec:     rec,
		pub:     pub,
		store:   store,
		metrics: metrics,
		log:     log,
		now:     now,
		opts:    opts,
		win:     recorder.NewWindow(opts.SignalHorizon + 5*time.Second),
		subs:    make(map[chan models.Snapshot]struct{}),
	}
}

// Run polls until ctx is cancelled. Feed and mirror errors are logged
// and counted; a recorder error aborts the run, since deciding between
// continue and abort belongs here rather than in the recorder.
func (c *SampleCollector) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.poll(ctx); err != nil {
				return err
			}
		}
	}
}

func (c *SampleCollector) poll(ctx context.Context) error {
	tick, err := c.feed.Latest(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		c.metrics.RecordError("feed")
		c.log.Warn("feed poll failed", logger.Error(err))
		return nil
	}

	c.mu.Lock()
	if tick.SeriesA != nil {
		c.lastA = tick.SeriesA
	}
	if tick.SeriesB != nil {
		c.lastB = tick.SeriesB
	}
	a, b := c.lastA, c.lastB
	c.mu.Unlock()

	if a == nil || b == nil {
		c.log.Warn("waiting for market data on both series")
		return nil
	}

	start := time.Now()
	if err := c.rec.Log(*a, *b); err != nil {
		c.metrics.RecordError("record")
		return fmt.Errorf("record sample: %w", err)
	}
	c.metrics.RecordLatency("record", time.Since(start).Seconds())

	snap := c.derive(*a, *b)
	c.publish(snap)
	c.mirror(ctx, models.Sample{Timestamp: snap.Timestamp, SeriesA: *a, SeriesB: *b})
	return nil
}

// derive updates the signal-horizon window, computes horizon deltas
// and percent changes, classifies them and stores the new snapshot.
func (c *SampleCollector) derive(a, b float64) models.Snapshot {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.win.Append(models.Sample{Timestamp: now, SeriesA: a, SeriesB: b})
	c.rowsWritten++

	snap := models.Snapshot{Timestamp: now, SeriesA: a, SeriesB: b}
	if past, ok := c.win.AtOrBefore(now.Add(-c.opts.SignalHorizon)); ok {
		dA := a - past.SeriesA
		dB := b - past.SeriesB
		snap.DeltaA = &dA
		snap.DeltaB = &dB
		snap.PctA = pctChange(a, past.SeriesA)
		snap.PctB = pctChange(b, past.SeriesB)
	}
	snap.AbsTrend = signals.FromDeltas(snap.DeltaA, snap.DeltaB, c.opts.AbsThresholds)
	snap.PctTrend = signals.FromPctChanges(snap.PctA, snap.PctB, c.opts.PctThresholds)

	c.latest = &snap
	return snap
}

// pctChange returns nil when the past value is exactly zero.
func pctChange(now, past float64) *float64 {
	if past == 0 {
		return nil
	}
	v := (now/past - 1.0) * 100.0
	return &v
}

func (c *SampleCollector) mirror(ctx context.Context, s models.Sample) {
	if c.pub != nil {
		if err := c.pub.Publish(ctx, s); err != nil {
			c.metrics.RecordError("publish")
			c.log.Warn("sample publish failed", logger.Error(err))
		}
	}
	if c.store != nil {
		if err := c.store.Store(ctx, s); err != nil {
			c.metrics.RecordError("store")
			c.log.Warn("sample store failed", logger.Error(err))
		}
	}
}

// Latest returns the most recent snapshot, if any sample has been
// recorded yet.
func (c *SampleCollector) Latest() (models.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.latest == nil {
		return models.Snapshot{}, false
	}
	return *c.latest, true
}

// RowsWritten reports the number of samples recorded this run.
func (c *SampleCollector) RowsWritten() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rowsWritten
}

// CurrentFilePath reports the recorder's active file.
func (c *SampleCollector) CurrentFilePath() string {
	return c.rec.CurrentFilePath()
}

// Subscribe registers a snapshot listener. Slow subscribers miss
// snapshots rather than stalling the poll loop. The returned cancel
// func must be called exactly once.
func (c *SampleCollector) Subscribe() (<-chan models.Snapshot, func()) {
	ch := make(chan models.Snapshot, 8)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		delete(c.subs, ch)
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *SampleCollector) publish(snap models.Snapshot) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for ch := range c.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Shutdown closes the recorder, the feed and any mirrors.
func (c *SampleCollector) Shutdown(ctx context.Context) error {
	var firstErr error
	if err := c.rec.Close(); err != nil {
		firstErr = err
	}
	if err := c.feed.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if c.pub != nil {
		if err := c.pub.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
