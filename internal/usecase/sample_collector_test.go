package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"IndexPulse/internal/domain/models"
	"IndexPulse/internal/recorder"
	"IndexPulse/internal/signals"
	"IndexPulse/pkg/logger"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeFeed struct {
	mu    sync.Mutex
	ticks []models.Tick
}

func (f *fakeFeed) Latest(ctx context.Context) (models.Tick, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.ticks) == 0 {
		return models.Tick{}, nil
	}
	t := f.ticks[0]
	if len(f.ticks) > 1 {
		f.ticks = f.ticks[1:]
	}
	return t, nil
}

func (f *fakeFeed) Close() error { return nil }

type fakeMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func (m *fakeMetrics) RecordRowWritten()               {}
func (m *fakeMetrics) RecordRotation()                 {}
func (m *fakeMetrics) RecordLastValue(string, float64) {}
func (m *fakeMetrics) RecordLatency(string, float64)   {}
func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errors == nil {
		m.errors = make(map[string]int)
	}
	m.errors[kind]++
}

func fv(v float64) *float64 { return &v }

func quietLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return l
}

func newCollector(t *testing.T, clock *fakeClock, feed *fakeFeed, horizon time.Duration) (*SampleCollector, *recorder.Recorder) {
	t.Helper()
	rec, err := recorder.New(t.TempDir(), recorder.Options{
		HorizonsSeconds:       []int{10},
		FlushEachWrite:        true,
		IncludePercentColumns: true,
	}, clock.now, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })

	c := NewSampleCollector(feed, rec, nil, nil, &fakeMetrics{}, quietLogger(t), clock.now, Options{
		PollInterval:  time.Millisecond,
		SignalHorizon: horizon,
		AbsThresholds: signals.DefaultAbsThresholds(),
		PctThresholds: signals.DefaultPctThresholds(),
	})
	return c, rec
}

func testClock(t *testing.T) *fakeClock {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return &fakeClock{t: time.Date(2026, 1, 6, 9, 30, 0, 0, loc)}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	clock := testClock(t)
	feed := &fakeFeed{ticks: []models.Tick{{SeriesA: fv(100), SeriesB: fv(20)}}}
	c, _ := newCollector(t, clock, feed, 10*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return c.RowsWritten() > 0 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err, "cancellation is a clean stop")
	case <-time.After(time.Second):
		t.Fatal("run did not stop after cancel")
	}
}

func TestPollCarriesLastKnownValues(t *testing.T) {
	clock := testClock(t)
	feed := &fakeFeed{ticks: []models.Tick{
		{SeriesA: fv(100)},                 // B not yet available: no row
		{SeriesB: fv(20)},                  // A carried from the first tick
		{SeriesA: fv(101), SeriesB: fv(21)},
	}}
	c, _ := newCollector(t, clock, feed, 10*time.Second)
	ctx := context.Background()

	require.NoError(t, c.poll(ctx))
	require.EqualValues(t, 0, c.RowsWritten())
	_, ok := c.Latest()
	require.False(t, ok)

	require.NoError(t, c.poll(ctx))
	snap, ok := c.Latest()
	require.True(t, ok)
	require.Equal(t, 100.0, snap.SeriesA)
	require.Equal(t, 20.0, snap.SeriesB)

	require.NoError(t, c.poll(ctx))
	snap, _ = c.Latest()
	require.Equal(t, 101.0, snap.SeriesA)
	require.EqualValues(t, 2, c.RowsWritten())
}

func TestDeriveSignalsOverHorizon(t *testing.T) {
	clock := testClock(t)
	c, _ := newCollector(t, clock, &fakeFeed{}, 10*time.Second)

	snap := c.derive(100, 20)
	require.Nil(t, snap.DeltaA, "horizon not yet covered")
	require.Equal(t, models.TrendNA, snap.AbsTrend.SeriesA)
	require.Equal(t, models.TrendNA, snap.PctTrend.SeriesB)

	clock.advance(10 * time.Second)
	snap = c.derive(101, 19.9)

	require.NotNil(t, snap.DeltaA)
	require.Equal(t, 1.0, *snap.DeltaA)
	require.InDelta(t, -0.1, *snap.DeltaB, 1e-9)
	require.InDelta(t, 1.0, *snap.PctA, 1e-9)

	require.Equal(t, models.TrendUp, snap.AbsTrend.SeriesA)   // 1.0 >= 0.25
	require.Equal(t, models.TrendDown, snap.AbsTrend.SeriesB) // -0.1 <= -0.03
	require.Equal(t, models.TrendUp, snap.PctTrend.SeriesA)   // 1% >= 0.02
	require.Equal(t, models.TrendDown, snap.PctTrend.SeriesB) // -0.5% <= -0.1
}

func TestDerivePctNilWhenPastZero(t *testing.T) {
	clock := testClock(t)
	c, _ := newCollector(t, clock, &fakeFeed{}, 10*time.Second)

	c.derive(0, 20)
	clock.advance(10 * time.Second)
	snap := c.derive(5, 21)

	require.NotNil(t, snap.DeltaA)
	require.Nil(t, snap.PctA, "zero denominator is not an error")
	require.Equal(t, models.TrendNA, snap.PctTrend.SeriesA)
	require.NotNil(t, snap.PctB)
}

func TestPollRecorderErrorAborts(t *testing.T) {
	clock := testClock(t)
	feed := &fakeFeed{ticks: []models.Tick{{SeriesA: fv(100), SeriesB: fv(20)}}}
	c, rec := newCollector(t, clock, feed, 10*time.Second)

	require.NoError(t, rec.Close())
	err := c.poll(context.Background())
	require.ErrorIs(t, err, recorder.ErrClosed)
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	clock := testClock(t)
	feed := &fakeFeed{ticks: []models.Tick{{SeriesA: fv(100), SeriesB: fv(20)}}}
	c, _ := newCollector(t, clock, feed, 10*time.Second)

	ch, cancel := c.Subscribe()
	defer cancel()

	require.NoError(t, c.poll(context.Background()))

	select {
	case snap := <-ch:
		require.Equal(t, 100.0, snap.SeriesA)
	default:
		t.Fatal("expected a snapshot on the subscription channel")
	}
}
