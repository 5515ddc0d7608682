package walkforward

import (
	"math"

	"SmartTrade/internal/domain/models"
)

const annualizationFactor = 252

// runBacktest executes the MA-crossover strategy with the given
// parameters over one window and returns the closed trades.
//
// Signal semantics are asymmetric: BUY requires a cross-up AND RSI
// below the overbought threshold; SELL fires on a cross-down OR on RSI
// above the threshold, crossover or not. Rolling values inside the
// warmup window are NaN and all NaN comparisons are false, so no signal
// fires there.
func runBacktest(bars models.BarSeries, params models.StrategyParams) models.BacktestResult {
	minLen := params.SlowMA
	if params.RSIPeriod > minLen {
		minLen = params.RSIPeriod
	}
	if len(bars) < minLen {
		return models.BacktestResult{}
	}

	closes := bars.Closes()
	fast := rollingMean(closes, params.FastMA)
	slow := rollingMean(closes, params.SlowMA)
	rsi := rollingRSI(closes, params.RSIPeriod)

	const (
		signalNone = 0
		signalBuy  = 1
		signalSell = -1
	)

	var trades []models.Trade
	var entry *models.Trade

	for i := range bars {
		sig := signalNone
		if i > 0 {
			crossUp := fast[i] > slow[i] && fast[i-1] <= slow[i-1]
			crossDown := fast[i] < slow[i] && fast[i-1] >= slow[i-1]
			if crossUp && rsi[i] < params.RSIOverbought {
				sig = signalBuy
			}
			if crossDown || rsi[i] > params.RSIOverbought {
				sig = signalSell
			}
		}

		switch {
		case sig == signalBuy && entry == nil:
			entry = &models.Trade{
				EntryPrice: bars[i].Close,
				EntryDate:  bars[i].Timestamp,
			}
		case sig == signalSell && entry != nil:
			exit := bars[i].Close
			trades = append(trades, models.Trade{
				EntryPrice: entry.EntryPrice,
				ExitPrice:  exit,
				Return:     (exit - entry.EntryPrice) / entry.EntryPrice,
				EntryDate:  entry.EntryDate,
				ExitDate:   bars[i].Timestamp,
			})
			entry = nil
		}
	}
	// An unclosed position at series end is discarded, not recorded.

	return models.BacktestResult{
		SharpeRatio: sharpeRatio(tradeReturns(trades)),
		TotalReturn: compound(tradeReturns(trades)),
		Trades:      trades,
	}
}

func tradeReturns(trades []models.Trade) []float64 {
	out := make([]float64, len(trades))
	for i, t := range trades {
		out[i] = t.Return
	}
	return out
}

// rollingMean returns the simple moving average series; entries before
// the first full window are NaN.
func rollingMean(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	sum := 0.0
	for i, x := range xs {
		sum += x
		if i >= window {
			sum -= xs[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// rollingRSI computes RSI from simple rolling means of gains and losses.
// The first `period` entries are NaN (the initial delta is undefined).
// With zero rolling loss the ratio degrades through ±Inf to RSI 100,
// and to NaN on an entirely flat window.
func rollingRSI(xs []float64, period int) []float64 {
	n := len(xs)
	out := make([]float64, n)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		d := xs[i] - xs[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}
	// The first delta counts as a flat bar, so the window is full at
	// index period-1.
	for i := 0; i < n; i++ {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		g, l := 0.0, 0.0
		for j := i - period + 1; j <= i; j++ {
			g += gains[j]
			l += losses[j]
		}
		rs := (g / float64(period)) / (l / float64(period))
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// sharpeRatio annualizes mean/std of trade returns; zero when the
// population standard deviation is zero.
func sharpeRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	m := meanOf(returns)
	sd := popStd(returns, m)
	if sd <= 0 {
		return 0
	}
	return m / sd * math.Sqrt(annualizationFactor)
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

// popStd is the population standard deviation around m.
func popStd(xs []float64, m float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := 0.0
	for _, x := range xs {
		d := x - m
		s += d * d
	}
	return math.Sqrt(s / float64(len(xs)))
}

// compound folds returns into a total compounded return.
func compound(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	v := 1.0
	for _, r := range returns {
		v *= 1 + r
	}
	return v - 1
}

// maxDrawdown is the largest peak-to-trough decline of the cumulative
// return curve built by compounding returns in order.
func maxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	cum := 1.0
	peak := math.Inf(-1)
	worst := 0.0
	for _, r := range returns {
		cum *= 1 + r
		if cum > peak {
			peak = cum
		}
		dd := (cum - peak) / peak
		if dd < worst {
			worst = dd
		}
	}
	return math.Abs(worst)
}
