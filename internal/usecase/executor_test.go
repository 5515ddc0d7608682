package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SmartTrade/internal/domain/models"
	"SmartTrade/internal/services/risk"
)

type fakeOrderExecutor struct {
	lastSide   string
	lastType   string
	lastSymbol string
	lastQty    float64
	placeErr   error
	cancelled  []string
}

func (f *fakeOrderExecutor) PlaceMarketOrder(_ context.Context, symbol string, qty float64, side string) (models.Order, error) {
	f.lastSymbol, f.lastQty, f.lastSide, f.lastType = symbol, qty, side, "market"
	return models.Order{ID: "ord-1", Symbol: symbol, Qty: qty, Side: side, Type: "market", Status: "accepted"}, f.placeErr
}

func (f *fakeOrderExecutor) PlaceLimitOrder(_ context.Context, symbol string, qty float64, side string, limitPrice float64) (models.Order, error) {
	f.lastSymbol, f.lastQty, f.lastSide, f.lastType = symbol, qty, side, "limit"
	return models.Order{ID: "ord-2", Symbol: symbol, Qty: qty, Side: side, Type: "limit", LimitPrice: limitPrice, Status: "accepted"}, f.placeErr
}

func (f *fakeOrderExecutor) GetOrders(_ context.Context, _ string) ([]models.Order, error) {
	return []models.Order{{ID: "ord-1"}}, nil
}

func (f *fakeOrderExecutor) CancelOrder(_ context.Context, orderID string) error {
	f.cancelled = append(f.cancelled, orderID)
	return nil
}

func (f *fakeOrderExecutor) ClosePosition(_ context.Context, symbol string, qty float64) (models.Order, error) {
	return models.Order{ID: "ord-3", Symbol: symbol, Qty: qty, Side: "sell", Status: "accepted"}, nil
}

type fakeQuoteProvider struct {
	quotes map[string]models.Quote
	err    error
}

func (f *fakeQuoteProvider) GetLatestQuotes(_ context.Context, _ []string) (map[string]models.Quote, error) {
	return f.quotes, f.err
}

type fakeNotifier struct {
	configured bool
	trades     []models.TradeNotification
}

func (f *fakeNotifier) IsConfigured() bool { return f.configured }

func (f *fakeNotifier) SendAnalysisReport(_ context.Context, _ *models.PortfolioAnalysis) error {
	return nil
}

func (f *fakeNotifier) SendTradeNotification(_ context.Context, tn models.TradeNotification) error {
	f.trades = append(f.trades, tn)
	return nil
}

func (f *fakeNotifier) SendAlert(_ context.Context, _, _ string) error { return nil }

func newTestExecutor(t *testing.T, orders *fakeOrderExecutor, accounts *fakeAccountProvider, quotes *fakeQuoteProvider, notifier *fakeNotifier) *TradeExecutor {
	return NewTradeExecutor(
		orders,
		accounts,
		quotes,
		risk.NewGate(risk.Config{MinAccountBalance: 1000, EnablePDTProtection: true}, nil),
		notifier,
		newFakeMetrics(),
		testLogger(t),
	)
}

func healthyFakeAccounts() *fakeAccountProvider {
	return &fakeAccountProvider{account: models.Account{
		Cash: 100000, BuyingPower: 100000, Equity: 100000,
	}}
}

func TestExecuteApprovedBuyPlacesMarketOrder(t *testing.T) {
	orders := &fakeOrderExecutor{}
	quotes := &fakeQuoteProvider{quotes: map[string]models.Quote{
		"AAPL": {AskPrice: 150, BidPrice: 149.9},
	}}
	notifier := &fakeNotifier{configured: true}
	e := newTestExecutor(t, orders, healthyFakeAccounts(), quotes, notifier)

	result, err := e.Execute(context.Background(), models.ExecuteTradeRequest{
		Symbol:    "AAPL",
		Action:    "BUY",
		Quantity:  5,
		OrderType: "market",
	})

	require.NoError(t, err)
	require.True(t, result.Executed)
	require.NotNil(t, result.Order)
	assert.Equal(t, "buy", orders.lastSide)
	assert.Equal(t, "market", orders.lastType)
	assert.InDelta(t, 5.0, orders.lastQty, 1e-9)

	require.Len(t, notifier.trades, 1)
	assert.Equal(t, "BUY", notifier.trades[0].Action)
	assert.InDelta(t, 150.0, notifier.trades[0].Price, 1e-9)
}

func TestExecuteRejectionIsNotAnError(t *testing.T) {
	orders := &fakeOrderExecutor{}
	accounts := healthyFakeAccounts()
	accounts.account.Equity = 20000
	accounts.account.DaytradeCount = 3
	quotes := &fakeQuoteProvider{quotes: map[string]models.Quote{
		"AAPL": {AskPrice: 150},
	}}
	e := newTestExecutor(t, orders, accounts, quotes, &fakeNotifier{})

	result, err := e.Execute(context.Background(), models.ExecuteTradeRequest{
		Symbol:    "AAPL",
		Action:    "BUY",
		Quantity:  5,
		OrderType: "market",
	})

	require.NoError(t, err)
	assert.False(t, result.Executed)
	assert.Nil(t, result.Order)
	assert.Contains(t, result.Risk.Reason, "PDT limit reached")
	// No order reached the broker.
	assert.Empty(t, orders.lastType)
}

func TestExecuteLimitOrderUsesLimitPriceForRisk(t *testing.T) {
	orders := &fakeOrderExecutor{}
	// No quotes configured: the limit price must be used instead.
	e := newTestExecutor(t, orders, healthyFakeAccounts(), &fakeQuoteProvider{}, &fakeNotifier{})

	result, err := e.Execute(context.Background(), models.ExecuteTradeRequest{
		Symbol:     "AAPL",
		Action:     "BUY",
		Quantity:   5,
		OrderType:  "limit",
		LimitPrice: 140,
	})

	require.NoError(t, err)
	require.True(t, result.Executed)
	assert.Equal(t, "limit", orders.lastType)
	require.NotNil(t, result.Risk.Sizing)
	// floor(100000 * 0.10 * 0.98 / 140)
	assert.Equal(t, 70, result.Risk.Sizing.MaxShares)
}

func TestExecuteFailsWithoutQuote(t *testing.T) {
	e := newTestExecutor(t, &fakeOrderExecutor{}, healthyFakeAccounts(),
		&fakeQuoteProvider{quotes: map[string]models.Quote{}}, &fakeNotifier{})

	_, err := e.Execute(context.Background(), models.ExecuteTradeRequest{
		Symbol:    "XYZ",
		Action:    "BUY",
		Quantity:  1,
		OrderType: "market",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no quote available")
}

func TestExecuteUsesPositionMarkWhenHeld(t *testing.T) {
	orders := &fakeOrderExecutor{}
	accounts := healthyFakeAccounts()
	accounts.positions = []models.Position{{
		Symbol:       "AAPL",
		Qty:          10,
		CurrentPrice: 155,
		MarketValue:  1550,
	}}
	// Quote provider errors to prove it is never consulted.
	quotes := &fakeQuoteProvider{err: errors.New("quote feed down")}
	e := newTestExecutor(t, orders, accounts, quotes, &fakeNotifier{})

	result, err := e.Execute(context.Background(), models.ExecuteTradeRequest{
		Symbol:    "AAPL",
		Action:    "SELL",
		Quantity:  10,
		OrderType: "market",
	})

	require.NoError(t, err)
	assert.True(t, result.Executed)
	assert.Equal(t, "sell", orders.lastSide)
}

func TestClosePositionBypassesGate(t *testing.T) {
	orders := &fakeOrderExecutor{}
	// Account would fail every gate check; close must still go through.
	accounts := &fakeAccountProvider{account: models.Account{TradingBlocked: true}}
	e := newTestExecutor(t, orders, accounts, &fakeQuoteProvider{}, &fakeNotifier{})

	order, err := e.ClosePosition(context.Background(), "AAPL", 5)

	require.NoError(t, err)
	assert.Equal(t, "ord-3", order.ID)
}

func TestCancelOrder(t *testing.T) {
	orders := &fakeOrderExecutor{}
	e := newTestExecutor(t, orders, healthyFakeAccounts(), &fakeQuoteProvider{}, &fakeNotifier{})

	require.NoError(t, e.CancelOrder(context.Background(), "ord-9"))
	assert.Equal(t, []string{"ord-9"}, orders.cancelled)
}
