package recorder

import (
	"testing"
	"time"

	"IndexPulse/internal/domain/models"

	"github.com/stretchr/testify/require"
)

func sampleAt(t time.Time, a, b float64) models.Sample {
	return models.Sample{Timestamp: t, SeriesA: a, SeriesB: b}
}

func TestWindowAtOrBeforeEmpty(t *testing.T) {
	w := NewWindow(time.Minute)
	_, ok := w.AtOrBefore(time.Now())
	require.False(t, ok)
}

func TestWindowAtOrBeforePicksMostRecentQualifying(t *testing.T) {
	start := time.Date(2026, 1, 6, 9, 30, 0, 0, time.UTC)
	w := NewWindow(time.Minute)
	for i := 0; i < 10; i++ {
		w.Append(sampleAt(start.Add(time.Duration(i)*time.Second), float64(i), 0))
	}

	// Exact match.
	s, ok := w.AtOrBefore(start.Add(4 * time.Second))
	require.True(t, ok)
	require.Equal(t, 4.0, s.SeriesA)

	// Between samples: last known value at or before the target.
	s, ok = w.AtOrBefore(start.Add(4500 * time.Millisecond))
	require.True(t, ok)
	require.Equal(t, 4.0, s.SeriesA)

	// Before every retained sample.
	_, ok = w.AtOrBefore(start.Add(-time.Second))
	require.False(t, ok)
}

func TestWindowTrimsHeadPastRetention(t *testing.T) {
	start := time.Date(2026, 1, 6, 9, 30, 0, 0, time.UTC)
	w := NewWindow(10 * time.Second)
	for i := 0; i < 30; i++ {
		w.Append(sampleAt(start.Add(time.Duration(i)*time.Second), float64(i), 0))
	}
	// Retained: samples within [t29-10s, t29].
	require.Equal(t, 11, w.Len())
	_, ok := w.AtOrBefore(start.Add(15 * time.Second))
	require.False(t, ok, "trimmed samples must not qualify")
}

func TestWindowZeroRetentionNeverTrims(t *testing.T) {
	start := time.Date(2026, 1, 6, 9, 30, 0, 0, time.UTC)
	w := NewWindow(0)
	for i := 0; i < 100; i++ {
		w.Append(sampleAt(start.Add(time.Duration(i)*time.Hour), float64(i), 0))
	}
	require.Equal(t, 100, w.Len())
}

func TestWindowEqualTimestampsRetained(t *testing.T) {
	ts := time.Date(2026, 1, 6, 9, 30, 0, 0, time.UTC)
	w := NewWindow(time.Minute)
	w.Append(sampleAt(ts, 1, 0))
	w.Append(sampleAt(ts, 2, 0))

	s, ok := w.AtOrBefore(ts)
	require.True(t, ok)
	require.Equal(t, 2.0, s.SeriesA, "ties resolve to the most recently appended sample")
}

func TestWindowClear(t *testing.T) {
	w := NewWindow(time.Minute)
	w.Append(sampleAt(time.Now(), 1, 2))
	w.Clear()
	require.Zero(t, w.Len())
	_, ok := w.AtOrBefore(time.Now().Add(time.Hour))
	require.False(t, ok)
}
