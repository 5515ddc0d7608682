package walkforward

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SmartTrade/internal/domain/models"
)

func seriesFromCloses(closes []float64) models.BarSeries {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make(models.BarSeries, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func TestRunBacktestSingleCrossoverTrade(t *testing.T) {
	// Fast(2) crosses above slow(3) at the bar closing 10, RSI(3) is 75
	// there, and the next bar pushes RSI to 100, above the 90 threshold.
	bars := seriesFromCloses([]float64{10, 9, 8, 7, 8, 10, 12, 11, 9, 8})
	params := models.StrategyParams{
		FastMA:        2,
		SlowMA:        3,
		RSIPeriod:     3,
		RSIOversold:   10,
		RSIOverbought: 90,
	}

	result := runBacktest(bars, params)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.InDelta(t, 10.0, trade.EntryPrice, 1e-9)
	assert.InDelta(t, 12.0, trade.ExitPrice, 1e-9)
	assert.InDelta(t, 0.2, trade.Return, 1e-9)
	assert.InDelta(t, 0.2, result.TotalReturn, 1e-9)
	// A single return has zero population std, so Sharpe collapses to 0.
	assert.Zero(t, result.SharpeRatio)
}

func TestRunBacktestNoSignalsOnMonotonicSeries(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	params := models.StrategyParams{FastMA: 5, SlowMA: 10, RSIPeriod: 7, RSIOverbought: 101}

	result := runBacktest(seriesFromCloses(closes), params)

	assert.Empty(t, result.Trades)
	assert.Zero(t, result.TotalReturn)
	assert.Zero(t, result.SharpeRatio)
}

func TestRunBacktestShortSeriesReturnsZeroResult(t *testing.T) {
	bars := seriesFromCloses([]float64{10, 11, 12})
	params := models.StrategyParams{FastMA: 5, SlowMA: 20, RSIPeriod: 14, RSIOverbought: 70}

	result := runBacktest(bars, params)

	assert.Empty(t, result.Trades)
	assert.Zero(t, result.SharpeRatio)
	assert.Zero(t, result.TotalReturn)
}

func TestRunBacktestUnclosedPositionDiscarded(t *testing.T) {
	// Cross-up near the end of the series with no exit signal afterwards.
	bars := seriesFromCloses([]float64{10, 9, 8, 7, 8, 10})
	params := models.StrategyParams{
		FastMA:        2,
		SlowMA:        3,
		RSIPeriod:     3,
		RSIOverbought: 90,
	}

	result := runBacktest(bars, params)

	assert.Empty(t, result.Trades)
	assert.Zero(t, result.TotalReturn)
}

func TestRollingMeanWarmupIsNaN(t *testing.T) {
	out := rollingMean([]float64{1, 2, 3, 4, 5}, 3)

	require.Len(t, out, 5)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-9)
	assert.InDelta(t, 3.0, out[3], 1e-9)
	assert.InDelta(t, 4.0, out[4], 1e-9)
}

func TestRollingRSIBounds(t *testing.T) {
	// Strictly rising closes: zero rolling loss degrades to RSI 100.
	up := rollingRSI([]float64{1, 2, 3, 4, 5, 6}, 3)
	assert.True(t, math.IsNaN(up[1]))
	assert.InDelta(t, 100.0, up[3], 1e-9)
	assert.InDelta(t, 100.0, up[5], 1e-9)

	// The first delta counts as a flat bar, so the window fills one
	// bar earlier than a naive diff would allow.
	assert.InDelta(t, 100.0, up[2], 1e-9)

	// Strictly falling closes: zero rolling gain pins RSI at 0.
	down := rollingRSI([]float64{6, 5, 4, 3, 2, 1}, 3)
	assert.InDelta(t, 0.0, down[2], 1e-9)
	assert.InDelta(t, 0.0, down[3], 1e-9)

	// A flat window has neither gains nor losses, so RSI is undefined.
	flat := rollingRSI([]float64{5, 5, 5, 5, 5}, 3)
	assert.True(t, math.IsNaN(flat[3]))
}

func TestSharpeRatioAnnualization(t *testing.T) {
	returns := []float64{0.01, 0.03}
	// mean 0.02, population std 0.01, annualized by sqrt(252).
	want := 0.02 / 0.01 * math.Sqrt(252)

	assert.InDelta(t, want, sharpeRatio(returns), 1e-9)
	assert.Zero(t, sharpeRatio(nil))
	assert.Zero(t, sharpeRatio([]float64{0.05}))
}

func TestCompound(t *testing.T) {
	assert.Zero(t, compound(nil))
	assert.InDelta(t, 0.1*1.1+0.1, compound([]float64{0.1, 0.1}), 1e-9)
	assert.InDelta(t, -0.19, compound([]float64{-0.1, -0.1}), 1e-9)
}

func TestMaxDrawdown(t *testing.T) {
	assert.Zero(t, maxDrawdown(nil))

	// 1.0 -> 1.1 (peak) -> 0.88 -> 0.924; worst decline is 20% off the peak.
	dd := maxDrawdown([]float64{0.1, -0.2, 0.05})
	assert.InDelta(t, 0.2, dd, 1e-9)

	// Monotonic gains never leave the peak.
	assert.Zero(t, maxDrawdown([]float64{0.01, 0.02, 0.03}))
}
