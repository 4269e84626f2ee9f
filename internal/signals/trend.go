package signals

import "IndexPulse/internal/domain/models"

// Thresholds holds per-series, per-direction classification bounds.
// Up and Down are both expressed as positive magnitudes; a value is
// DOWN when it is at or below the negated Down threshold.
type Thresholds struct {
	AUp   float64
	ADown float64
	BUp   float64
	BDown float64
}

// DefaultAbsThresholds classifies absolute deltas in native units.
func DefaultAbsThresholds() Thresholds {
	return Thresholds{AUp: 0.25, ADown: 0.25, BUp: 0.03, BDown: 0.03}
}

// DefaultPctThresholds classifies percent changes in percentage points.
func DefaultPctThresholds() Thresholds {
	return Thresholds{AUp: 0.02, ADown: 0.02, BUp: 0.10, BDown: 0.10}
}

// Classify labels a delta or percent change. A nil value means the
// lookback data is not yet available and maps to NA, never an error.
func Classify(v *float64, up, down float64) models.Trend {
	switch {
	case v == nil:
		return models.TrendNA
	case *v >= up:
		return models.TrendUp
	case *v <= -down:
		return models.TrendDown
	default:
		return models.TrendFlat
	}
}

// FromDeltas classifies both series from absolute deltas.
func FromDeltas(dA, dB *float64, t Thresholds) models.TrendSignal {
	return models.TrendSignal{
		SeriesA: Classify(dA, t.AUp, t.ADown),
		SeriesB: Classify(dB, t.BUp, t.BDown),
	}
}

// FromPctChanges classifies both series from percent changes. Same
// algorithm as FromDeltas, different inputs and thresholds.
func FromPctChanges(pA, pB *float64, t Thresholds) models.TrendSignal {
	return models.TrendSignal{
		SeriesA: Classify(pA, t.AUp, t.ADown),
		SeriesB: Classify(pB, t.BUp, t.BDown),
	}
}
