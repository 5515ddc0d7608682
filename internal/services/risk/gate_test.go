package risk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SmartTrade/internal/domain/models"
)

func healthyAccount() models.Account {
	return models.Account{
		Cash:          100000,
		BuyingPower:   100000,
		Equity:        100000,
		DaytradeCount: 0,
		Status:        "ACTIVE",
	}
}

func defaultGate() *Gate {
	return NewGate(Config{
		MaxPositionFraction: 0.10,
		MinAccountBalance:   1000,
		EnablePDTProtection: true,
	}, nil)
}

func TestEvaluateTradeBuySizing(t *testing.T) {
	g := defaultGate()

	eval := g.EvaluateTrade("AAPL", models.ActionBuy, healthyAccount(), nil, 100)

	require.True(t, eval.Approved)
	require.NotNil(t, eval.Sizing)
	// floor(100000 * 0.10 * 0.98 / 100)
	assert.Equal(t, 98, eval.Sizing.MaxShares)
	assert.Equal(t, 98, eval.PositionSize)
	assert.InDelta(t, 9800.0, eval.PositionValue, 1e-9)
	assert.True(t, eval.Checks["position_sizing"].Passed)
	assert.Empty(t, eval.Warnings)
}

func TestEvaluateTradeSizingNetsOutExposure(t *testing.T) {
	g := defaultGate()
	positions := []models.Position{{
		Symbol:      "AAPL",
		Qty:         50,
		MarketValue: 5000,
	}}

	eval := g.EvaluateTrade("AAPL", models.ActionBuy, healthyAccount(), positions, 100)

	require.NotNil(t, eval.Sizing)
	// floor((10000 - 5000) * 0.98 / 100)
	assert.Equal(t, 49, eval.Sizing.MaxShares)
	assert.InDelta(t, 5000.0, eval.Sizing.CurrentExposure, 1e-9)
}

func TestEvaluateTradeRejectsPDTLimit(t *testing.T) {
	g := defaultGate()
	account := healthyAccount()
	account.Equity = 20000
	account.DaytradeCount = 3

	eval := g.EvaluateTrade("AAPL", models.ActionBuy, account, nil, 100)

	require.False(t, eval.Approved)
	assert.Contains(t, eval.Reason, "PDT limit reached: 3/3")
	assert.False(t, eval.Checks["pdt_protection"].Passed)
	// Rejection short-circuits before sizing runs.
	assert.Nil(t, eval.Sizing)
}

func TestEvaluateTradePDTNotAppliedToSells(t *testing.T) {
	g := defaultGate()
	account := healthyAccount()
	account.Equity = 20000
	account.DaytradeCount = 3
	positions := []models.Position{{Symbol: "AAPL", Qty: 10, MarketValue: 1500}}

	eval := g.EvaluateTrade("AAPL", models.ActionSell, account, positions, 150)

	assert.True(t, eval.Approved)
	_, ran := eval.Checks["pdt_protection"]
	assert.False(t, ran)
}

func TestEvaluateTradeRejectsLowEquity(t *testing.T) {
	g := defaultGate()
	account := healthyAccount()
	account.Equity = 500

	eval := g.EvaluateTrade("AAPL", models.ActionBuy, account, nil, 100)

	require.False(t, eval.Approved)
	assert.Contains(t, eval.Reason, "below minimum")
}

func TestEvaluateTradeRejectsBlockedAccount(t *testing.T) {
	g := defaultGate()
	account := healthyAccount()
	account.TradingBlocked = true

	eval := g.EvaluateTrade("AAPL", models.ActionBuy, account, nil, 100)

	require.False(t, eval.Approved)
	assert.Equal(t, "Account is blocked from trading", eval.Reason)
}

func TestEvaluateTradeRejectsSellWithoutPosition(t *testing.T) {
	g := defaultGate()

	eval := g.EvaluateTrade("TSLA", models.ActionSell, healthyAccount(), nil, 200)

	require.False(t, eval.Approved)
	assert.Equal(t, "No position to sell for TSLA", eval.Reason)
}

func TestEvaluateTradeSellUsesFullPosition(t *testing.T) {
	g := defaultGate()
	positions := []models.Position{{Symbol: "TSLA", Qty: 25, MarketValue: 5500}}

	eval := g.EvaluateTrade("TSLA", models.ActionSell, healthyAccount(), positions, 220)

	require.True(t, eval.Approved)
	assert.Equal(t, 25, eval.PositionSize)
	assert.InDelta(t, 5500.0, eval.PositionValue, 1e-9)
}

func TestEvaluateTradeConcentrationWarning(t *testing.T) {
	g := defaultGate()
	account := healthyAccount()
	account.Equity = 10000
	account.Cash = 10000
	account.BuyingPower = 10000
	positions := []models.Position{
		{Symbol: "MSFT", Qty: 10, MarketValue: 8500},
	}

	eval := g.EvaluateTrade("AAPL", models.ActionBuy, account, positions, 10)

	require.True(t, eval.Approved)
	found := false
	for _, w := range eval.Warnings {
		if strings.Contains(w, "High portfolio concentration") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestEvaluateTradeVolatilityCheckAlwaysPresent(t *testing.T) {
	g := defaultGate()

	eval := g.EvaluateTrade("AAPL", models.ActionBuy, healthyAccount(), nil, 100)

	vol, ok := eval.Checks["volatility"]
	require.True(t, ok)
	assert.True(t, vol.Passed)
}

func TestEvaluateTradeHoldSkipsSizing(t *testing.T) {
	g := defaultGate()

	eval := g.EvaluateTrade("AAPL", models.ActionHold, healthyAccount(), nil, 100)

	assert.True(t, eval.Approved)
	assert.Nil(t, eval.Sizing)
	assert.Zero(t, eval.PositionSize)
}

func TestSummary(t *testing.T) {
	g := defaultGate()
	account := healthyAccount()
	account.Equity = 20000
	account.Cash = 300
	account.DaytradeCount = 2
	positions := []models.Position{
		{Symbol: "AAPL", MarketValue: 10000, UnrealizedPL: 1000, UnrealizedPLPC: 0.11},
		{Symbol: "NVDA", MarketValue: 8500, UnrealizedPL: -2000, UnrealizedPLPC: -0.19},
	}

	s := g.Summary(account, positions)

	assert.InDelta(t, 18500.0, s.Account.Invested, 1e-9)
	assert.InDelta(t, 92.5, s.Account.InvestedPercentage, 1e-9)
	assert.Equal(t, 2, s.PDT.DaytradeCount)
	assert.Equal(t, 1, s.PDT.RemainingDaytrades)
	assert.False(t, s.PDT.PDTRestricted)
	assert.Equal(t, 2, s.Portfolio.NumPositions)
	assert.InDelta(t, -1000.0, s.Portfolio.TotalUnrealizedPL, 1e-9)
	assert.InDelta(t, 10000.0, s.Portfolio.LargestPositionValue, 1e-9)
	assert.InDelta(t, 50.0, s.Portfolio.LargestPositionPct, 1e-9)

	require.Len(t, s.Warnings, 4)
	assert.Contains(t, s.Warnings[0], "PDT warning: 2/3")
	assert.Contains(t, s.Warnings[1], "Low cash balance")
	assert.Contains(t, s.Warnings[2], "High portfolio concentration")
	assert.Contains(t, s.Warnings[3], "Large loss in NVDA")
}
