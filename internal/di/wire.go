//go:build wireinject
// +build wireinject

package di

import (
	"CoinPulse/pkg/config"
	"CoinPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideCache,

		// Exchange and sentiment sources
		ProvideMarketSource,
		ProvideTickerStream,
		ProvideSentimentProvider,

		// Repositories
		ProvideCandleStore,
		ProvideSignalPublisher,

		// Engine and use cases
		ProvideEngine,
		ProvideSignalEvaluator,
		ProvideCandlesUseCase,
		ProvideSignalCollector,

		// HTTP surface and application
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
