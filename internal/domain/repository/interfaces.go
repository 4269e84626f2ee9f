package repository

import (
	"context"
	"time"

	"IndexPulse/internal/domain/models"
)

// MarketFeed supplies the latest readings of the two tracked series.
// Implementations own their transport entirely; the collector only
// polls this contract at the configured cadence.
type MarketFeed interface {
	Latest(ctx context.Context) (models.Tick, error)
	Close() error
}

// Publisher mirrors raw samples to a message broker for downstream
// consumers. Derived columns are not mirrored; they are recomputable.
type Publisher interface {
	Publish(ctx context.Context, s models.Sample) error
	Close() error
}

// Storage mirrors raw samples to a queryable store.
type Storage interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, s models.Sample) error
	Query(ctx context.Context, from, to time.Time, limit int) ([]models.Sample, error)
	Health(ctx context.Context) error
	Close() error
}

// Metrics receives operational counters from the recorder and the
// collector. Implementations must be safe for concurrent use.
type Metrics interface {
	RecordRowWritten()
	RecordRotation()
	RecordError(kind string)
	RecordLastValue(series string, v float64)
	RecordLatency(op string, seconds float64)
}
