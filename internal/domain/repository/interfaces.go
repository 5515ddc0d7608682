package repository

import (
	"context"

	"SmartTrade/internal/domain/models"
)

// BarProvider fetches time-ordered OHLCV series from the market data
// collaborator. A short or absent series is a valid result, not an error.
type BarProvider interface {
	GetBars(ctx context.Context, symbols []string, lookbackDays int) (map[string]models.BarSeries, error)
}

// AccountProvider exposes the broker account snapshot and open positions.
type AccountProvider interface {
	GetAccount(ctx context.Context) (models.Account, error)
	GetPositions(ctx context.Context) ([]models.Position, error)
}

// QuoteProvider returns latest bid/ask quotes per symbol.
type QuoteProvider interface {
	GetLatestQuotes(ctx context.Context, symbols []string) (map[string]models.Quote, error)
}

// OrderExecutor submits and manages broker orders. The analysis core
// never places orders itself; it only authorizes a RiskEvaluation.
type OrderExecutor interface {
	PlaceMarketOrder(ctx context.Context, symbol string, qty float64, side string) (models.Order, error)
	PlaceLimitOrder(ctx context.Context, symbol string, qty float64, side string, limitPrice float64) (models.Order, error)
	GetOrders(ctx context.Context, status string) ([]models.Order, error)
	CancelOrder(ctx context.Context, orderID string) error
	ClosePosition(ctx context.Context, symbol string, qty float64) (models.Order, error)
}

// Notifier delivers structured reports to the notification collaborator.
type Notifier interface {
	IsConfigured() bool
	SendAnalysisReport(ctx context.Context, analysis *models.PortfolioAnalysis) error
	SendTradeNotification(ctx context.Context, trade models.TradeNotification) error
	SendAlert(ctx context.Context, message, alertType string) error
}

// MarketStream is a live trade feed. Read's channels close when the
// connection drops; callers decide whether to Reconnect.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, symbols []string) error
	Read(ctx context.Context) (<-chan models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// DecisionPublisher streams decisions to downstream consumers.
type DecisionPublisher interface {
	PublishDecisions(ctx context.Context, decisions []models.Decision) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordDecision(symbol string, action string)
	RecordAnalysisDuration(seconds float64)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
}
