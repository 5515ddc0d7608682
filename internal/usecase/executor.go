package usecase

import (
	"context"
	"fmt"
	"strings"

	"SmartTrade/internal/domain/models"
	"SmartTrade/internal/domain/repository"
	"SmartTrade/internal/services/risk"
	"SmartTrade/pkg/logger"
)

// TradeExecutor runs manual trades through the risk gate before handing
// them to the broker. Analysis never places orders; this is the only
// path that does.
type TradeExecutor struct {
	orders   repository.OrderExecutor
	accounts repository.AccountProvider
	quotes   repository.QuoteProvider
	gate     *risk.Gate
	notifier repository.Notifier
	metrics  repository.Metrics
	log      *logger.Logger
}

func NewTradeExecutor(
	orders repository.OrderExecutor,
	accounts repository.AccountProvider,
	quotes repository.QuoteProvider,
	gate *risk.Gate,
	notifier repository.Notifier,
	metrics repository.Metrics,
	log *logger.Logger,
) *TradeExecutor {
	return &TradeExecutor{
		orders:   orders,
		accounts: accounts,
		quotes:   quotes,
		gate:     gate,
		notifier: notifier,
		metrics:  metrics,
		log:      log,
	}
}

// ExecuteResult is the outcome of a gated trade request.
type ExecuteResult struct {
	Executed bool                  `json:"executed"`
	Order    *models.Order         `json:"order,omitempty"`
	Risk     models.RiskEvaluation `json:"risk"`
}

// Execute evaluates the trade against the risk gate and submits it only
// if approved. A rejection is a normal outcome, not an error.
func (e *TradeExecutor) Execute(ctx context.Context, req models.ExecuteTradeRequest) (*ExecuteResult, error) {
	action := models.Action(strings.ToUpper(req.Action))

	account, err := e.accounts.GetAccount(ctx)
	if err != nil {
		e.metrics.RecordError("account_fetch")
		return nil, fmt.Errorf("fetch account: %w", err)
	}
	positions, err := e.accounts.GetPositions(ctx)
	if err != nil {
		e.metrics.RecordError("positions_fetch")
		return nil, fmt.Errorf("fetch positions: %w", err)
	}

	price, err := e.tradePrice(ctx, req, positions)
	if err != nil {
		return nil, err
	}

	eval := e.gate.EvaluateTrade(req.Symbol, action, account, positions, price)
	if !eval.Approved {
		e.log.Warn("trade rejected by risk gate",
			logger.String("symbol", req.Symbol),
			logger.String("action", req.Action),
			logger.String("reason", eval.Reason))
		return &ExecuteResult{Executed: false, Risk: eval}, nil
	}

	side := strings.ToLower(req.Action)
	var order models.Order
	if req.OrderType == "limit" {
		order, err = e.orders.PlaceLimitOrder(ctx, req.Symbol, req.Quantity, side, req.LimitPrice)
	} else {
		order, err = e.orders.PlaceMarketOrder(ctx, req.Symbol, req.Quantity, side)
	}
	if err != nil {
		e.metrics.RecordError("order_submit")
		return nil, fmt.Errorf("submit order: %w", err)
	}

	e.log.Info("order submitted",
		logger.String("symbol", req.Symbol),
		logger.String("side", side),
		logger.Float64("qty", req.Quantity),
		logger.String("order_id", order.ID),
		logger.String("status", order.Status))

	e.notifyTrade(ctx, req, order, price)

	return &ExecuteResult{Executed: true, Order: &order, Risk: eval}, nil
}

func (e *TradeExecutor) GetOrders(ctx context.Context, status string) ([]models.Order, error) {
	return e.orders.GetOrders(ctx, status)
}

func (e *TradeExecutor) CancelOrder(ctx context.Context, orderID string) error {
	if err := e.orders.CancelOrder(ctx, orderID); err != nil {
		e.metrics.RecordError("order_cancel")
		return fmt.Errorf("cancel order %s: %w", orderID, err)
	}
	return nil
}

// ClosePosition liquidates a position, fully or partially, bypassing
// the gate: reducing exposure is always allowed.
func (e *TradeExecutor) ClosePosition(ctx context.Context, symbol string, qty float64) (models.Order, error) {
	order, err := e.orders.ClosePosition(ctx, symbol, qty)
	if err != nil {
		e.metrics.RecordError("position_close")
		return models.Order{}, fmt.Errorf("close position %s: %w", symbol, err)
	}
	e.log.Info("position close submitted",
		logger.String("symbol", symbol),
		logger.String("order_id", order.ID))
	return order, nil
}

// tradePrice resolves the price used for risk evaluation: the held
// position's mark if we own the symbol, otherwise the latest quote.
func (e *TradeExecutor) tradePrice(ctx context.Context, req models.ExecuteTradeRequest, positions []models.Position) (float64, error) {
	if pos := models.FindPosition(positions, req.Symbol); pos != nil {
		return pos.CurrentPrice, nil
	}
	if req.OrderType == "limit" && req.LimitPrice > 0 {
		return req.LimitPrice, nil
	}

	quotes, err := e.quotes.GetLatestQuotes(ctx, []string{req.Symbol})
	if err != nil {
		e.metrics.RecordError("quote_fetch")
		return 0, fmt.Errorf("fetch quote for %s: %w", req.Symbol, err)
	}
	q, ok := quotes[req.Symbol]
	if !ok || q.AskPrice <= 0 {
		return 0, fmt.Errorf("no quote available for %s", req.Symbol)
	}
	return q.AskPrice, nil
}

func (e *TradeExecutor) notifyTrade(ctx context.Context, req models.ExecuteTradeRequest, order models.Order, price float64) {
	if e.notifier == nil || !e.notifier.IsConfigured() {
		return
	}
	notification := models.TradeNotification{
		Symbol: req.Symbol,
		Action: strings.ToUpper(req.Action),
		Qty:    req.Quantity,
		Price:  price,
		Status: order.Status,
	}
	if err := e.notifier.SendTradeNotification(ctx, notification); err != nil {
		e.log.Warn("trade notification failed",
			logger.String("symbol", req.Symbol),
			logger.Error(err))
	}
}
