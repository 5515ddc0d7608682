package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SmartTrade/internal/domain/models"
)

func trendingBars(n int, step float64) models.BarSeries {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make(models.BarSeries, n)
	for i := range bars {
		c := 100 + step*float64(i)
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

func TestNewEngineDefaults(t *testing.T) {
	e := NewEngine(nil)
	assert.Equal(t, 200, e.MaxPeriod())

	e = NewEngine([]int{5, 10})
	assert.Equal(t, 10, e.MaxPeriod())
}

func TestComputeShortSeriesHasOnlyPrice(t *testing.T) {
	e := NewEngine(nil)

	snap := e.Compute(trendingBars(5, 1))

	require.Len(t, snap, 1)
	assert.InDelta(t, 104.0, snap["price"], 1e-9)
}

func TestComputeEmptySeries(t *testing.T) {
	e := NewEngine(nil)
	assert.Empty(t, e.Compute(nil))
}

func TestComputeOmitsIndicatorsBeyondLookback(t *testing.T) {
	e := NewEngine(nil)

	snap := e.Compute(trendingBars(60, 1))

	assert.True(t, snap.Has("sma_20", "sma_50"))
	assert.False(t, snap.Has("sma_200"))
}

func TestComputeUptrend(t *testing.T) {
	e := NewEngine(nil)

	snap := e.Compute(trendingBars(60, 1))

	sma20, ok := snap.Get("sma_20")
	require.True(t, ok)
	sma50, ok := snap.Get("sma_50")
	require.True(t, ok)
	assert.Greater(t, sma20, sma50)

	// Every delta is a gain, so Wilder RSI saturates.
	assert.InDelta(t, 100.0, snap.GetOr("rsi", 0), 1e-9)

	macd, ok := snap.Get("macd")
	require.True(t, ok)
	assert.Positive(t, macd)

	// The latest close sits near the upper Bollinger band.
	assert.Greater(t, snap.GetOr("bb_position", 0), 0.8)

	adxPos, ok := snap.Get("adx_pos")
	require.True(t, ok)
	assert.Greater(t, adxPos, snap.GetOr("adx_neg", 0))

	assert.InDelta(t, 1.0, snap.GetOr("volume_ratio", 0), 1e-9)
}

func TestComputeFlatSeries(t *testing.T) {
	e := NewEngine(nil)

	snap := e.Compute(trendingBars(40, 0))

	// Flat closes: neutral RSI, mid-band Bollinger, zero-width bands.
	assert.InDelta(t, 50.0, snap.GetOr("rsi", 0), 1e-9)
	assert.InDelta(t, 0.5, snap.GetOr("bb_position", 0), 1e-9)
	assert.InDelta(t, 0.0, snap.GetOr("bb_width", 1), 1e-9)
	assert.InDelta(t, 0.0, snap.GetOr("macd", 1), 1e-9)
	// Constant high/low range keeps the stochastic centered.
	assert.InDelta(t, 50.0, snap.GetOr("stoch_k", 0), 1e-9)
}

func TestWilderRSIEdgeValues(t *testing.T) {
	up := make([]float64, 20)
	for i := range up {
		up[i] = 100 + float64(i)
	}
	assert.InDelta(t, 100.0, wilderRSI(up, 14), 1e-9)

	down := make([]float64, 20)
	for i := range down {
		down[i] = 100 - float64(i)
	}
	assert.InDelta(t, 0.0, wilderRSI(down, 14), 1e-9)

	flat := make([]float64, 20)
	for i := range flat {
		flat[i] = 100
	}
	assert.InDelta(t, 50.0, wilderRSI(flat, 14), 1e-9)
}

func TestStochasticFlatRangeIsCentered(t *testing.T) {
	k, d := stochastic(trendingBars(20, 0), 14, 3)
	assert.InDelta(t, 50.0, k, 1e-9)
	assert.InDelta(t, 50.0, d, 1e-9)
}

func TestComputeIsDeterministic(t *testing.T) {
	e := NewEngine(nil)
	bars := trendingBars(60, 0.7)

	require.Equal(t, e.Compute(bars), e.Compute(bars))
}
