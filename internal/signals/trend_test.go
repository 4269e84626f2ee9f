package signals

import (
	"testing"

	"IndexPulse/internal/domain/models"

	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		value    *float64
		up, down float64
		want     models.Trend
	}{
		{"above up threshold", f(0.3), 0.25, 0.25, models.TrendUp},
		{"at up threshold", f(0.25), 0.25, 0.25, models.TrendUp},
		{"below down threshold", f(-0.3), 0.25, 0.25, models.TrendDown},
		{"at down threshold", f(-0.25), 0.25, 0.25, models.TrendDown},
		{"inside band", f(0.1), 0.25, 0.25, models.TrendFlat},
		{"inside band negative", f(-0.1), 0.25, 0.25, models.TrendFlat},
		{"zero", f(0), 0.25, 0.25, models.TrendFlat},
		{"absent", nil, 0.25, 0.25, models.TrendNA},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.value, tc.up, tc.down))
		})
	}
}

func TestClassifyAsymmetricThresholds(t *testing.T) {
	// Up at 0.5, down at 0.1: 0.3 is flat but -0.3 is down.
	require.Equal(t, models.TrendFlat, Classify(f(0.3), 0.5, 0.1))
	require.Equal(t, models.TrendDown, Classify(f(-0.3), 0.5, 0.1))
}

func TestFromDeltasPerSeriesThresholds(t *testing.T) {
	th := DefaultAbsThresholds()
	sig := FromDeltas(f(0.1), f(0.1), th)
	require.Equal(t, models.TrendFlat, sig.SeriesA) // 0.1 < 0.25
	require.Equal(t, models.TrendUp, sig.SeriesB)   // 0.1 >= 0.03
}

func TestFromPctChangesAbsentSeries(t *testing.T) {
	sig := FromPctChanges(nil, f(-0.5), DefaultPctThresholds())
	require.Equal(t, models.TrendNA, sig.SeriesA)
	require.Equal(t, models.TrendDown, sig.SeriesB)
}
