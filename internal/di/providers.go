package di

import (
	"context"
	"fmt"
	"time"

	"IndexPulse/internal/domain/repository"
	"IndexPulse/internal/middleware"
	"IndexPulse/internal/recorder"
	internalrepo "IndexPulse/internal/repository"
	"IndexPulse/internal/service/feed"
	"IndexPulse/internal/signals"
	"IndexPulse/internal/usecase"
	pkgch "IndexPulse/pkg/clickhouse"
	"IndexPulse/pkg/config"
	pkgkafka "IndexPulse/pkg/kafka"
	applogger "IndexPulse/pkg/logger"
	"IndexPulse/pkg/metrics"
	"IndexPulse/pkg/server"
	"IndexPulse/pkg/timeutil"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideClock resolves the recorder's zone into a wall clock.
func ProvideClock(cfg *config.Config) (timeutil.NowFunc, error) {
	loc, err := timeutil.LoadZone(cfg.Recorder.Timezone)
	if err != nil {
		return nil, err
	}
	return timeutil.ZoneNow(loc), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideFeed creates the configured market feed.
func ProvideFeed(cfg *config.Config) (repository.MarketFeed, error) {
	switch cfg.Feed.Type {
	case "sim":
		return feed.NewSim(cfg.Feed.Seed, cfg.Feed.StartA, cfg.Feed.StartB, cfg.Feed.StepA, cfg.Feed.StepB), nil
	default:
		return nil, fmt.Errorf("unknown feed type: %s", cfg.Feed.Type)
	}
}

// ProvideRecorder creates the daily CSV recorder.
func ProvideRecorder(cfg *config.Config, clock timeutil.NowFunc, m repository.Metrics) (*recorder.Recorder, error) {
	return recorder.New(cfg.Recorder.BaseDir, recorder.Options{
		RotateAtMidnight:      cfg.Recorder.RotateAtMidnight,
		HorizonsSeconds:       cfg.Recorder.RollingHorizonsSecs,
		FlushEachWrite:        cfg.Recorder.FlushEachWrite,
		IncludePercentColumns: cfg.Recorder.IncludePercentColumns,
	}, clock, m)
}

// ProvidePublisher creates the Kafka sample mirror behind a buffering
// pipeline, or nil when the mirror backend is not kafka.
func ProvidePublisher(cfg *config.Config, m repository.Metrics) (repository.Publisher, error) {
	if cfg.Mirror.Backend != "kafka" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Mirror.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Mirror.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Mirror.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Mirror.Kafka.MaxAttempts),
		pkgkafka.WithBatchTimeout(cfg.Mirror.Kafka.BatchTimeout),
		pkgkafka.WithWriteTimeout(cfg.Mirror.Kafka.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	pipeline := middleware.NewMirrorPipeline(
		internalrepo.NewKafkaPublisher(producer, cfg.Mirror.Kafka.Topic),
		m,
	)
	pipeline.Start(context.Background())
	return pipeline, nil
}

// ProvideStorage creates the ClickHouse sample mirror, or nil when the
// mirror backend is not clickhouse.
func ProvideStorage(cfg *config.Config) (repository.Storage, error) {
	if cfg.Mirror.Backend != "clickhouse" {
		return nil, nil
	}
	ch := cfg.Mirror.ClickHouse
	client, err := pkgch.NewClient(
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithDialTimeout(ch.DialTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	store := internalrepo.NewClickHouseStorage(client.DB(), ch.Database+"."+ch.Table)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideCollector creates the sample collector use case.
func ProvideCollector(
	f repository.MarketFeed,
	rec *recorder.Recorder,
	pub repository.Publisher,
	store repository.Storage,
	m repository.Metrics,
	log *applogger.Logger,
	clock timeutil.NowFunc,
	cfg *config.Config,
) *usecase.SampleCollector {
	return usecase.NewSampleCollector(f, rec, pub, store, m, log, clock, usecase.Options{
		PollInterval:  cfg.Feed.PollInterval,
		SignalHorizon: time.Duration(cfg.Signal.HorizonSeconds) * time.Second,
		AbsThresholds: signals.Thresholds{
			AUp:   cfg.Signal.AbsAUp,
			ADown: cfg.Signal.AbsADown,
			BUp:   cfg.Signal.AbsBUp,
			BDown: cfg.Signal.AbsBDown,
		},
		PctThresholds: signals.Thresholds{
			AUp:   cfg.Signal.PctAUp,
			ADown: cfg.Signal.PctADown,
			BUp:   cfg.Signal.PctBUp,
			BDown: cfg.Signal.PctBDown,
		},
	})
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.SampleCollector,
	store repository.Storage,
	log *applogger.Logger,
) *server.App {
	return server.New(cfg, collector, store, log)
}
