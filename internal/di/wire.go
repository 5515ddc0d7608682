//go:build wireinject
// +build wireinject

package di

import (
	"SmartTrade/pkg/config"
	"SmartTrade/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideHTTPClient,
		ProvideRateLimiter,

		// Broker and infrastructure clients
		ProvideAlpacaClient,
		ProvideAccountProvider,
		ProvideQuoteProvider,
		ProvideOrderExecutor,
		ProvideBarCache,
		ProvideBarProvider,
		ProvideKafkaProducer,
		ProvideDecisionPublisher,
		ProvideNotifier,

		// Analysis services
		ProvideIndicatorEngine,
		ProvideRegimeClassifier,
		ProvideOptimizer,
		ProvideRiskGate,
		ProvideFusionEngine,

		// Use cases
		ProvidePortfolioAnalyzer,
		ProvideTradeExecutor,
		ProvideTickCollector,

		// HTTP and application server
		ProvideAdvisorHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
