//go:build wireinject
// +build wireinject

package di

import (
	"StressPulse/pkg/config"
	"StressPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCacheStore,

		// Repositories
		ProvideRawStore,
		ProvideFeatureStore,
		ProvideWeightStore,
		ProvidePublisher,

		// Engines
		ProvideQualityEngine,
		ProvideRanker,
		ProvideEstimator,
		ProvideWeightManager,
		ProvideComposer,
		ProvideCollector,

		// Use cases
		ProvideStressRunner,

		// HTTP
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
