package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"IndexPulse/internal/domain/models"
	"IndexPulse/internal/domain/repository"
	pkgkafka "IndexPulse/pkg/kafka"
)

// ClickHouseStorage mirrors raw samples into a ClickHouse table.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseStorage creates ClickHouse sample storage.
func NewClickHouseStorage(db *sql.DB, table string) repository.Storage {
	return &ClickHouseStorage{db: db, table: table}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	q := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (ts DateTime64(3), series_a Float64, series_b Float64) ENGINE=MergeTree ORDER BY ts",
		s.table)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("init %s: %w", s.table, err)
	}
	return nil
}

func (s *ClickHouseStorage) Store(ctx context.Context, smp models.Sample) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, series_a, series_b) VALUES (?, ?, ?)", s.table)
	if _, err := s.db.ExecContext(ctx, q, smp.Timestamp, smp.SeriesA, smp.SeriesB); err != nil {
		return fmt.Errorf("store sample: %w", err)
	}
	return nil
}

func (s *ClickHouseStorage) Query(ctx context.Context, from, to time.Time, limit int) ([]models.Sample, error) {
	q := fmt.Sprintf(
		"SELECT ts, series_a, series_b FROM %s WHERE ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?",
		s.table)
	rows, err := s.db.QueryContext(ctx, q, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var out []models.Sample
	for rows.Next() {
		var smp models.Sample
		if err := rows.Scan(&smp.Timestamp, &smp.SeriesA, &smp.SeriesB); err != nil {
			return nil, err
		}
		out = append(out, smp)
	}
	return out, rows.Err()
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool. The storage owns it once built.
func (s *ClickHouseStorage) Close() error {
	return s.db.Close()
}

// KafkaPublisher mirrors raw samples to a Kafka topic.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a Kafka sample publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, smp models.Sample) error {
	return p.producer.Publish(ctx, p.topic, []byte(smp.Timestamp.Format(time.RFC3339Nano)), map[string]interface{}{
		"ts":       smp.Timestamp.UnixMilli(),
		"series_a": smp.SeriesA,
		"series_b": smp.SeriesB,
	})
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
