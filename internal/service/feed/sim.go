package feed

import (
	"context"
	"math/rand"
	"sync"

	"IndexPulse/internal/domain/models"
)

// Sim is a seedable random-walk MarketFeed for local runs and tests.
// Series A walks like a price index, series B like a volatility index
// reverting toward its start level. Real upstream providers plug in
// behind the same interface.
type Sim struct {
	mu     sync.Mutex
	rng    *rand.Rand
	a, b   float64
	startB float64
	stepA  float64
	stepB  float64
}

// NewSim creates a simulator starting at (startA, startB) with the
// given per-poll step magnitudes. A zero seed yields a different walk
// per process.
func NewSim(seed int64, startA, startB, stepA, stepB float64) *Sim {
	if seed == 0 {
		seed = rand.Int63()
	}
	return &Sim{
		rng:    rand.New(rand.NewSource(seed)),
		a:      startA,
		b:      startB,
		startB: startB,
		stepA:  stepA,
		stepB:  stepB,
	}
}

// Latest advances the walk one step and returns both readings.
func (s *Sim) Latest(ctx context.Context) (models.Tick, error) {
	if err := ctx.Err(); err != nil {
		return models.Tick{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.a += (s.rng.Float64()*2 - 1) * s.stepA
	// Mean-reverting step keeps the volatility series in a plausible band.
	s.b += (s.rng.Float64()*2-1)*s.stepB + (s.startB-s.b)*0.01
	if s.b < 0 {
		s.b = 0
	}

	a, b := s.a, s.b
	return models.Tick{SeriesA: &a, SeriesB: &b}, nil
}

// Close implements MarketFeed; the simulator holds no resources.
func (s *Sim) Close() error { return nil }
