package feed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimDeterministicWithSeed(t *testing.T) {
	a := NewSim(42, 5000, 16, 0.5, 0.05)
	b := NewSim(42, 5000, 16, 0.5, 0.05)

	for i := 0; i < 50; i++ {
		ta, err := a.Latest(context.Background())
		require.NoError(t, err)
		tb, err := b.Latest(context.Background())
		require.NoError(t, err)
		require.Equal(t, *ta.SeriesA, *tb.SeriesA)
		require.Equal(t, *ta.SeriesB, *tb.SeriesB)
	}
}

func TestSimVolatilityNeverNegative(t *testing.T) {
	s := NewSim(7, 5000, 0.01, 0.5, 5)
	for i := 0; i < 200; i++ {
		tick, err := s.Latest(context.Background())
		require.NoError(t, err)
		require.GreaterOrEqual(t, *tick.SeriesB, 0.0)
	}
}

func TestSimHonorsCancelledContext(t *testing.T) {
	s := NewSim(1, 5000, 16, 0.5, 0.05)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Latest(ctx)
	require.Error(t, err)
}
