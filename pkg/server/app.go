package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"IndexPulse/internal/domain/repository"
	"IndexPulse/internal/handler/api"
	"IndexPulse/internal/usecase"
	"IndexPulse/pkg/config"
	xhttp "IndexPulse/pkg/http"
	applogger "IndexPulse/pkg/logger"
)

// App encapsulates the application lifecycle: the collector loop, the
// HTTP API and graceful shutdown.
type App struct {
	cfg        *config.Config
	collector  *usecase.SampleCollector
	store      repository.Storage // nil when no storage mirror is configured
	log        *applogger.Logger
	httpServer *xhttp.Server
}

// New creates an App with all dependencies.
func New(cfg *config.Config, collector *usecase.SampleCollector, store repository.Storage, log *applogger.Logger) *App {
	return &App{
		cfg:       cfg,
		collector: collector,
		store:     store,
		log:       log,
	}
}

// Run starts the HTTP server and the collector loop and blocks until
// a termination signal arrives or the collector fails. Shutdown is an
// explicit context cancellation threaded through the collector.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := api.NewStatusEchoHandler(a.log, a.collector, a.store)
	a.httpServer = xhttp.NewServer(handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- a.collector.Run(ctx) }()
	a.log.Info("collector started",
		applogger.String("file", a.collector.CurrentFilePath()),
		applogger.Duration("poll_interval", a.cfg.Feed.PollInterval))

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = err
		if err != nil {
			a.log.Error("collector stopped", applogger.Error(err))
		}
	}
	stop()

	if err := a.shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// shutdown stops the HTTP server and releases collector resources.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Warn("http shutdown error", applogger.Error(err))
		firstErr = err
	}
	if err := a.collector.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("collector shutdown error", applogger.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}
	a.log.Info("shutdown complete")
	return firstErr
}
