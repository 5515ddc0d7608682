package di

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"SmartTrade/internal/domain/repository"
	"SmartTrade/internal/handler/api"
	internalrepo "SmartTrade/internal/repository"
	"SmartTrade/internal/service/alpaca"
	"SmartTrade/internal/service/notify"
	"SmartTrade/internal/service/ratelimit"
	"SmartTrade/internal/services/fusion"
	"SmartTrade/internal/services/indicators"
	"SmartTrade/internal/services/regime"
	"SmartTrade/internal/services/risk"
	"SmartTrade/internal/services/walkforward"
	"SmartTrade/internal/usecase"
	"SmartTrade/pkg/cache"
	"SmartTrade/pkg/config"
	pkghttp "SmartTrade/pkg/http"
	pkgkafka "SmartTrade/pkg/kafka"
	"SmartTrade/pkg/logger"
	"SmartTrade/pkg/metrics"
	"SmartTrade/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	level := cfg.Logging.Level
	if level == "" {
		level = "info"
	}
	format := cfg.Logging.Format
	if format == "" {
		format = "console"
	}
	output := cfg.Logging.Output
	if output == "" {
		output = "stdout"
	}
	return logger.New(&logger.Config{Level: level, Format: format, Output: output})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideHTTPClient creates the shared outbound HTTP client.
func ProvideHTTPClient() *pkghttp.Client {
	return pkghttp.NewClient(pkghttp.WithTimeout(15 * time.Second))
}

// ProvideRateLimiter creates the shared token bucket limiter.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideAlpacaClient creates the broker REST client.
func ProvideAlpacaClient(cfg *config.Config, httpClient *pkghttp.Client, limiter *ratelimit.Limiter, log *logger.Logger) *alpaca.Client {
	return alpaca.NewClient(alpaca.Config{
		APIKey:    cfg.Alpaca.APIKey,
		APISecret: cfg.Alpaca.APISecret,
		BaseURL:   cfg.Alpaca.BaseURL,
		DataURL:   cfg.Alpaca.DataURL,
	}, httpClient, limiter, log)
}

// ProvideAccountProvider exposes the broker client as an AccountProvider.
func ProvideAccountProvider(client *alpaca.Client) repository.AccountProvider { return client }

// ProvideQuoteProvider exposes the broker client as a QuoteProvider.
func ProvideQuoteProvider(client *alpaca.Client) repository.QuoteProvider { return client }

// ProvideOrderExecutor exposes the broker client as an OrderExecutor.
func ProvideOrderExecutor(client *alpaca.Client) repository.OrderExecutor { return client }

// ProvideBarCache creates the bar cache backend, or nil when disabled.
func ProvideBarCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if cfg.Cache.Backend == "redis" {
		host, portStr, err := net.SplitHostPort(cfg.Cache.Redis.Addr)
		if err != nil {
			return nil, fmt.Errorf("cache.redis.addr: %w", err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("cache.redis.addr port: %w", err)
		}
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(host),
			cache.WithRedisPort(port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix("smarttrade"),
		)
		if err != nil {
			return nil, err
		}
		// Hot symbols are served from the in-process layer.
		return cache.NewLayeredCache(rc), nil
	}
	return cache.NewMemoryCache(), nil
}

// ProvideBarProvider wraps the broker client with the bar cache when
// one is configured.
func ProvideBarProvider(client *alpaca.Client, c cache.Service, cfg *config.Config, log *logger.Logger) repository.BarProvider {
	if c == nil {
		return client
	}
	return internalrepo.NewCachedBarProvider(client, c, cfg.Cache.BarsTTL, log)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideDecisionPublisher creates the Kafka decision publisher, or nil
// when Kafka is disabled.
func ProvideDecisionPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.DecisionPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaDecisionPublisher(producer, cfg.Kafka.Topic)
}

// ProvideNotifier creates the Telegram notifier. An unconfigured
// notifier is still a valid Notifier; IsConfigured reports false.
func ProvideNotifier(cfg *config.Config, httpClient *pkghttp.Client, log *logger.Logger) repository.Notifier {
	return notify.NewTelegram(notify.Config{
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
	}, httpClient, log)
}

// ProvideIndicatorEngine creates the indicator engine with default MA windows.
func ProvideIndicatorEngine() *indicators.Engine {
	return indicators.NewEngine(nil)
}

// ProvideRegimeClassifier creates the regime classifier.
func ProvideRegimeClassifier(engine *indicators.Engine) *regime.Classifier {
	return regime.NewClassifier(engine)
}

// ProvideOptimizer creates the walk-forward optimizer.
func ProvideOptimizer(cfg *config.Config) *walkforward.Optimizer {
	return walkforward.NewOptimizer(cfg.WalkForward.TrainDays, cfg.WalkForward.TestDays)
}

// ProvideRiskGate creates the risk gate with a no-op volatility checker.
func ProvideRiskGate(cfg *config.Config) *risk.Gate {
	return risk.NewGate(risk.Config{
		MaxPositionFraction: cfg.Risk.MaxPositionFraction,
		MinAccountBalance:   cfg.Risk.MinAccountBalance,
		EnablePDTProtection: cfg.Risk.EnablePDTProtection,
	}, nil)
}

// ProvideFusionEngine creates the decision fusion engine.
func ProvideFusionEngine() *fusion.Engine {
	return fusion.NewEngine()
}

// ProvidePortfolioAnalyzer creates the portfolio analysis use case.
func ProvidePortfolioAnalyzer(
	bars repository.BarProvider,
	accounts repository.AccountProvider,
	classifier *regime.Classifier,
	optimizer *walkforward.Optimizer,
	gate *risk.Gate,
	fusionEngine *fusion.Engine,
	publisher repository.DecisionPublisher,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.PortfolioAnalyzer {
	opts := []usecase.AnalyzerOption{
		usecase.WithLookbackDays(cfg.Trading.LookbackDays),
		usecase.WithMaxWorkers(cfg.Trading.MaxWorkers),
		usecase.WithAnalysisTimeout(cfg.Trading.AnalysisTimeout),
	}
	if publisher != nil {
		opts = append(opts, usecase.WithDecisionPublisher(publisher))
	}
	return usecase.NewPortfolioAnalyzer(bars, accounts, classifier, optimizer, gate, fusionEngine, m, log, opts...)
}

// ProvideTradeExecutor creates the gated trade execution use case.
func ProvideTradeExecutor(
	orders repository.OrderExecutor,
	accounts repository.AccountProvider,
	quotes repository.QuoteProvider,
	gate *risk.Gate,
	notifier repository.Notifier,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.TradeExecutor {
	return usecase.NewTradeExecutor(orders, accounts, quotes, gate, notifier, m, log)
}

// ProvideTickCollector creates the market stream collector, or nil when
// streaming is disabled.
func ProvideTickCollector(cfg *config.Config, m repository.Metrics, log *logger.Logger) *usecase.TickCollector {
	if !cfg.Alpaca.Stream.Enabled {
		return nil
	}
	stream := alpaca.NewStream(alpaca.Config{
		APIKey:    cfg.Alpaca.APIKey,
		APISecret: cfg.Alpaca.APISecret,
	}, cfg.Alpaca.Stream.URL, cfg.Alpaca.Stream.ReconnectDelay, cfg.Alpaca.Stream.PingInterval, log)
	return usecase.NewTickCollector(stream, m, log, cfg.Trading.Watchlist)
}

// ProvideAdvisorHandler creates the HTTP handler.
func ProvideAdvisorHandler(
	log *logger.Logger,
	analyzer *usecase.PortfolioAnalyzer,
	executor *usecase.TradeExecutor,
	accounts repository.AccountProvider,
	gate *risk.Gate,
	notifier repository.Notifier,
	collector *usecase.TickCollector,
	cfg *config.Config,
) pkghttp.Handler {
	settings := map[string]interface{}{
		"environment":      cfg.Environment,
		"lookback_days":    cfg.Trading.LookbackDays,
		"max_workers":      cfg.Trading.MaxWorkers,
		"analysis_timeout": cfg.Trading.AnalysisTimeout.String(),
		"kafka_enabled":    cfg.Kafka.Enabled,
		"cache_enabled":    cfg.Cache.Enabled,
		"stream_enabled":   cfg.Alpaca.Stream.Enabled,
	}
	return api.NewAdvisorHandler(log, analyzer, executor, accounts, gate, notifier, collector, cfg.Trading.Watchlist, settings)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	handler pkghttp.Handler,
	collector *usecase.TickCollector,
	publisher repository.DecisionPublisher,
) *server.App {
	return server.New(cfg, log, handler, collector, publisher)
}
