package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SmartTrade/internal/domain/models"
	"SmartTrade/internal/services/fusion"
	"SmartTrade/internal/services/indicators"
	"SmartTrade/internal/services/regime"
	"SmartTrade/internal/services/risk"
	"SmartTrade/internal/services/walkforward"
	"SmartTrade/pkg/logger"
)

type fakeBarProvider struct {
	series       map[string]models.BarSeries
	err          error
	lastLookback int
}

func (f *fakeBarProvider) GetBars(_ context.Context, _ []string, lookbackDays int) (map[string]models.BarSeries, error) {
	f.lastLookback = lookbackDays
	return f.series, f.err
}

type fakeAccountProvider struct {
	account    models.Account
	positions  []models.Position
	accountErr error
}

func (f *fakeAccountProvider) GetAccount(_ context.Context) (models.Account, error) {
	return f.account, f.accountErr
}

func (f *fakeAccountProvider) GetPositions(_ context.Context) ([]models.Position, error) {
	return f.positions, nil
}

type fakeMetrics struct {
	mu        sync.Mutex
	decisions map[string]string
	errors    []string
	durations int
	prices    map[string]float64
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{decisions: map[string]string{}, prices: map[string]float64{}}
}

func (m *fakeMetrics) RecordDecision(symbol, action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions[symbol] = action
}

func (m *fakeMetrics) RecordAnalysisDuration(_ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations++
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, kind)
}

func (m *fakeMetrics) RecordLastPrice(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[symbol] = price
}

func (m *fakeMetrics) hasError(kind string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.errors {
		if e == kind {
			return true
		}
	}
	return false
}

type fakePublisher struct {
	mu        sync.Mutex
	published [][]models.Decision
	err       error
}

func (p *fakePublisher) PublishDecisions(_ context.Context, decisions []models.Decision) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, decisions)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func trendSeries(n int) models.BarSeries {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make(models.BarSeries, n)
	for i := range bars {
		c := 100 + 0.5*float64(i)
		bars[i] = models.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func newTestAnalyzer(bars *fakeBarProvider, accounts *fakeAccountProvider, metrics *fakeMetrics, t *testing.T, opts ...AnalyzerOption) *PortfolioAnalyzer {
	return NewPortfolioAnalyzer(
		bars,
		accounts,
		regime.NewClassifier(indicators.NewEngine([]int{20, 50})),
		walkforward.NewOptimizer(30, 5),
		risk.NewGate(risk.Config{MinAccountBalance: 1000, EnablePDTProtection: true}, nil),
		fusion.NewEngine(),
		metrics,
		testLogger(t),
		opts...,
	)
}

func TestAnalyzeDegradesSymbolWithoutData(t *testing.T) {
	bars := &fakeBarProvider{series: map[string]models.BarSeries{
		"AAPL": trendSeries(120),
	}}
	accounts := &fakeAccountProvider{account: models.Account{
		Cash: 100000, BuyingPower: 100000, Equity: 100000,
	}}
	metrics := newFakeMetrics()
	a := newTestAnalyzer(bars, accounts, metrics, t)

	analysis, err := a.Analyze(context.Background(), []string{"AAPL", "MISSING"}, 0)

	require.NoError(t, err)
	require.Len(t, analysis.AllRecommendations, 2)

	var degraded *models.Decision
	for i := range analysis.AllRecommendations {
		if analysis.AllRecommendations[i].Symbol == "MISSING" {
			degraded = &analysis.AllRecommendations[i]
		}
	}
	require.NotNil(t, degraded)
	assert.Equal(t, models.ActionHold, degraded.Action)
	assert.Equal(t, "no market data available", degraded.Err)
	assert.Equal(t, models.RegimeError, degraded.Regime.Regime)
	assert.Zero(t, degraded.Confidence)

	for i := 1; i < len(analysis.AllRecommendations); i++ {
		assert.GreaterOrEqual(t,
			analysis.AllRecommendations[i-1].Confidence,
			analysis.AllRecommendations[i].Confidence)
	}

	assert.Len(t, metrics.decisions, 2)
	assert.Equal(t, 1, metrics.durations)
	assert.InDelta(t, 159.5, metrics.prices["AAPL"], 1e-9)
}

func TestAnalyzeRequiresSymbols(t *testing.T) {
	a := newTestAnalyzer(&fakeBarProvider{}, &fakeAccountProvider{}, newFakeMetrics(), t)

	_, err := a.Analyze(context.Background(), nil, 0)

	require.Error(t, err)
}

func TestAnalyzeAccountFetchFailure(t *testing.T) {
	metrics := newFakeMetrics()
	accounts := &fakeAccountProvider{accountErr: errors.New("broker down")}
	a := newTestAnalyzer(&fakeBarProvider{}, accounts, metrics, t)

	_, err := a.Analyze(context.Background(), []string{"AAPL"}, 0)

	require.Error(t, err)
	assert.True(t, metrics.hasError("account_fetch"))
}

func TestAnalyzeBarsFetchFailure(t *testing.T) {
	metrics := newFakeMetrics()
	bars := &fakeBarProvider{err: errors.New("data feed down")}
	accounts := &fakeAccountProvider{account: models.Account{Cash: 5000, Equity: 5000}}
	a := newTestAnalyzer(bars, accounts, metrics, t)

	_, err := a.Analyze(context.Background(), []string{"AAPL"}, 0)

	require.Error(t, err)
	assert.True(t, metrics.hasError("bars_fetch"))
}

func TestAnalyzeUsesRequestedLookback(t *testing.T) {
	bars := &fakeBarProvider{series: map[string]models.BarSeries{
		"AAPL": trendSeries(120),
	}}
	accounts := &fakeAccountProvider{account: models.Account{
		Cash: 100000, BuyingPower: 100000, Equity: 100000,
	}}
	a := newTestAnalyzer(bars, accounts, newFakeMetrics(), t)

	_, err := a.Analyze(context.Background(), []string{"AAPL"}, 365)
	require.NoError(t, err)
	assert.Equal(t, 365, bars.lastLookback)

	_, err = a.Analyze(context.Background(), []string{"AAPL"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 120, bars.lastLookback)
}

func TestAnalyzeIsolatesPanics(t *testing.T) {
	bars := &fakeBarProvider{series: map[string]models.BarSeries{
		"AAPL": trendSeries(120),
	}}
	accounts := &fakeAccountProvider{account: models.Account{
		Cash: 100000, BuyingPower: 100000, Equity: 100000,
	}}
	metrics := newFakeMetrics()

	// A nil classifier panics inside the per-symbol pipeline; the run
	// must still produce a degraded decision for the symbol.
	a := NewPortfolioAnalyzer(
		bars,
		accounts,
		nil,
		walkforward.NewOptimizer(30, 5),
		risk.NewGate(risk.Config{}, nil),
		fusion.NewEngine(),
		metrics,
		testLogger(t),
	)

	analysis, err := a.Analyze(context.Background(), []string{"AAPL"}, 0)

	require.NoError(t, err)
	require.Len(t, analysis.AllRecommendations, 1)
	d := analysis.AllRecommendations[0]
	assert.Equal(t, models.ActionHold, d.Action)
	assert.Equal(t, models.RegimeError, d.Regime.Regime)
	assert.Contains(t, d.Err, "analysis panicked")
	assert.True(t, metrics.hasError("symbol_panic"))
}

func TestAnalyzePublishesBestEffort(t *testing.T) {
	bars := &fakeBarProvider{series: map[string]models.BarSeries{
		"AAPL": trendSeries(120),
	}}
	accounts := &fakeAccountProvider{account: models.Account{
		Cash: 100000, BuyingPower: 100000, Equity: 100000,
	}}
	metrics := newFakeMetrics()
	pub := &fakePublisher{err: errors.New("broker unavailable")}
	a := newTestAnalyzer(bars, accounts, metrics, t, WithDecisionPublisher(pub))

	analysis, err := a.Analyze(context.Background(), []string{"AAPL"}, 0)

	require.NoError(t, err)
	require.Len(t, pub.published, 1)
	assert.Equal(t, analysis.AllRecommendations, pub.published[0])
	assert.True(t, metrics.hasError("publish_decisions"))
}

func TestAnalyzeSymbolReturnsSingleDecision(t *testing.T) {
	bars := &fakeBarProvider{series: map[string]models.BarSeries{
		"AAPL": trendSeries(120),
	}}
	accounts := &fakeAccountProvider{account: models.Account{
		Cash: 100000, BuyingPower: 100000, Equity: 100000,
	}}
	a := newTestAnalyzer(bars, accounts, newFakeMetrics(), t)

	decision, err := a.AnalyzeSymbol(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Equal(t, "AAPL", decision.Symbol)
	assert.NotEmpty(t, decision.Reasoning)
}

func TestAnalyzeUsesPositionPriceWhenHeld(t *testing.T) {
	bars := &fakeBarProvider{series: map[string]models.BarSeries{
		"AAPL": trendSeries(120),
	}}
	accounts := &fakeAccountProvider{
		account: models.Account{Cash: 100000, BuyingPower: 100000, Equity: 100000},
		positions: []models.Position{{
			Symbol:       "AAPL",
			Qty:          10,
			CurrentPrice: 155.25,
			MarketValue:  1552.5,
		}},
	}
	metrics := newFakeMetrics()
	a := newTestAnalyzer(bars, accounts, metrics, t)

	_, err := a.Analyze(context.Background(), []string{"AAPL"}, 0)

	require.NoError(t, err)
	assert.InDelta(t, 155.25, metrics.prices["AAPL"], 1e-9)
}
