//go:build wireinject
// +build wireinject

package di

import (
	"IndexPulse/pkg/config"
	"IndexPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideClock,
		ProvideMetrics,

		// Recording pipeline
		ProvideFeed,
		ProvideRecorder,

		// Optional mirrors
		ProvidePublisher,
		ProvideStorage,

		// Use cases
		ProvideCollector,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
