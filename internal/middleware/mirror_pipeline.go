package middleware

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"IndexPulse/internal/domain/models"
	domrepo "IndexPulse/internal/domain/repository"
)

// MirrorPipeline sits between the collector and a sample mirror.
// It validates, throttles, and buffers samples when the downstream
// broker is unavailable, flushing in the background with backoff.
// It implements the same Publisher contract it wraps.
type MirrorPipeline struct {
	sink    domrepo.Publisher
	metrics domrepo.Metrics
	minGap  time.Duration
	bufSize int
	bufCh   chan models.Sample
	stopCh  chan struct{}
	started bool
	mu      sync.Mutex
	lastAcc time.Time
}

type PipelineOption func(*MirrorPipeline)

// WithMinGap sets the minimum spacing between mirrored samples.
// Samples arriving faster are dropped, not queued.
func WithMinGap(d time.Duration) PipelineOption {
	return func(p *MirrorPipeline) {
		if d > 0 {
			p.minGap = d
		}
	}
}

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *MirrorPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewMirrorPipeline creates a pipeline in front of sink.
func NewMirrorPipeline(sink domrepo.Publisher, metrics domrepo.Metrics, opts ...PipelineOption) *MirrorPipeline {
	p := &MirrorPipeline{
		sink:    sink,
		metrics: metrics,
		bufSize: 1000,
		bufCh:   make(chan models.Sample, 1000),
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize != cap(p.bufCh) {
		p.bufCh = make(chan models.Sample, p.bufSize)
	}
	return p
}

// Start launches background flushing of buffered samples.
func (p *MirrorPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case s := <-p.bufCh:
				if err := p.sink.Publish(ctx, s); err != nil {
					// exponential backoff with cap
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("mirror_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- s:
					default:
						p.metrics.RecordError("mirror_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *MirrorPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Publish validates, throttles, and forwards a sample downstream,
// buffering on errors.
func (p *MirrorPipeline) Publish(ctx context.Context, s models.Sample) error {
	start := time.Now()
	if err := validateSample(s); err != nil {
		p.metrics.RecordError("mirror_validate")
		return err
	}
	if !p.allow(start) {
		// throttled; record and drop silently
		p.metrics.RecordError("mirror_throttle")
		return nil
	}

	if err := p.sink.Publish(ctx, s); err != nil {
		p.metrics.RecordError("mirror_publish")
		// buffer non-blocking
		select {
		case p.bufCh <- s:
		default:
			p.metrics.RecordError("mirror_buffer_full")
		}
		return fmt.Errorf("mirror downstream: %w", err)
	}
	p.metrics.RecordLatency("mirror_publish", time.Since(start).Seconds())
	return nil
}

// Close stops the flusher and closes the wrapped mirror.
func (p *MirrorPipeline) Close() error {
	p.Stop()
	return p.sink.Close()
}

func validateSample(s models.Sample) error {
	if s.Timestamp.IsZero() {
		return fmt.Errorf("timestamp zero")
	}
	if math.IsNaN(s.SeriesA) || math.IsNaN(s.SeriesB) {
		return fmt.Errorf("series value NaN")
	}
	return nil
}

func (p *MirrorPipeline) allow(now time.Time) bool {
	if p.minGap <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.lastAcc.IsZero() && now.Sub(p.lastAcc) < p.minGap {
		return false
	}
	p.lastAcc = now
	return true
}
