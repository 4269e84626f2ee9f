package recorder

import (
	"time"

	"IndexPulse/internal/domain/models"
)

// Window is a bounded-retention, insertion-ordered sample history.
// Appended timestamps must be non-decreasing; the head is trimmed to
// the configured retention on every append. A zero retention disables
// trimming entirely.
//
// Window is not safe for concurrent use; the Recorder serializes
// access under its own lock, and the collector owns its instance.
type Window struct {
	retention time.Duration
	samples   []models.Sample
}

// NewWindow creates a window retaining samples no older than
// now-retention at append time.
func NewWindow(retention time.Duration) *Window {
	return &Window{retention: retention}
}

// Append inserts s at the tail and trims expired head entries.
func (w *Window) Append(s models.Sample) {
	w.samples = append(w.samples, s)
	if w.retention <= 0 {
		return
	}
	cutoff := s.Timestamp.Add(-w.retention)
	i := 0
	for i < len(w.samples) && w.samples[i].Timestamp.Before(cutoff) {
		i++
	}
	if i > 0 {
		w.samples = w.samples[:copy(w.samples, w.samples[i:])]
	}
}

// AtOrBefore returns the most recent retained sample whose timestamp
// is at or before target. The second return is false when no retained
// sample qualifies; callers treat that as data not yet available.
func (w *Window) AtOrBefore(target time.Time) (models.Sample, bool) {
	for i := len(w.samples) - 1; i >= 0; i-- {
		if !w.samples[i].Timestamp.After(target) {
			return w.samples[i], true
		}
	}
	return models.Sample{}, false
}

// Clear drops all retained samples.
func (w *Window) Clear() {
	w.samples = w.samples[:0]
}

// Len reports the number of retained samples.
func (w *Window) Len() int {
	return len(w.samples)
}
