//go:build wireinject
// +build wireinject

package di

import (
	"ScoreFuse/pkg/config"
	"ScoreFuse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient stack
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideRedisCache,

		// Repositories
		ProvideAmbientStore,
		ProvideHistoryStore,
		ProvideResultPublisher,

		// Engine + use cases
		ProvideEngine,
		ProvideScoreUsecase,
		ProvideAdminUsecase,
		ProvideHistoryUsecase,
		ProvideScoreCollector,

		// Transport
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
