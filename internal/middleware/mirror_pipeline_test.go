package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IndexPulse/internal/domain/models"
)

type flakySink struct {
	mu        sync.Mutex
	failures  int
	published []models.Sample
	closed    bool
}

func (s *flakySink) Publish(_ context.Context, smp models.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("broker down")
	}
	s.published = append(s.published, smp)
	return nil
}

func (s *flakySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *flakySink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.published)
}

type countingMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{errors: make(map[string]int)}
}

func (m *countingMetrics) RecordRowWritten() {}
func (m *countingMetrics) RecordRotation()   {}
func (m *countingMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}
func (m *countingMetrics) RecordLastValue(string, float64) {}
func (m *countingMetrics) RecordLatency(string, float64)   {}

func (m *countingMetrics) errorCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

func sampleAt(ts time.Time) models.Sample {
	return models.Sample{Timestamp: ts, SeriesA: 100, SeriesB: 20}
}

func TestPublishForwardsToSink(t *testing.T) {
	sink := &flakySink{}
	p := NewMirrorPipeline(sink, newCountingMetrics())

	err := p.Publish(context.Background(), sampleAt(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, 1, sink.count())
}

func TestPublishRejectsZeroTimestamp(t *testing.T) {
	sink := &flakySink{}
	m := newCountingMetrics()
	p := NewMirrorPipeline(sink, m)

	err := p.Publish(context.Background(), models.Sample{})
	require.Error(t, err)
	assert.Equal(t, 0, sink.count())
	assert.Equal(t, 1, m.errorCount("mirror_validate"))
}

func TestPublishBuffersAndFlushesOnRecovery(t *testing.T) {
	sink := &flakySink{failures: 1}
	m := newCountingMetrics()
	p := NewMirrorPipeline(sink, m, WithBufferSize(8))
	p.Start(context.Background())
	defer p.Stop()

	err := p.Publish(context.Background(), sampleAt(time.Now()))
	require.Error(t, err)

	// the flusher retries from the buffer once the sink recovers
	require.Eventually(t, func() bool { return sink.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, m.errorCount("mirror_publish"))
}

func TestMinGapThrottles(t *testing.T) {
	sink := &flakySink{}
	m := newCountingMetrics()
	p := NewMirrorPipeline(sink, m, WithMinGap(time.Hour))

	now := time.Now()
	require.NoError(t, p.Publish(context.Background(), sampleAt(now)))
	require.NoError(t, p.Publish(context.Background(), sampleAt(now.Add(time.Second))))

	assert.Equal(t, 1, sink.count())
	assert.Equal(t, 1, m.errorCount("mirror_throttle"))
}

func TestCloseClosesSink(t *testing.T) {
	sink := &flakySink{}
	p := NewMirrorPipeline(sink, newCountingMetrics())
	p.Start(context.Background())

	require.NoError(t, p.Close())
	assert.True(t, sink.closed)
}
