package walkforward

import (
	"math"

	"SmartTrade/internal/domain/models"
)

// Grid searched during parameter optimization. Enumeration order is
// part of the contract: with a strict > comparison the first candidate
// reaching the best training Sharpe wins, which keeps the whole search
// deterministic.
var (
	fastPeriods = []int{5, 10, 15, 20}
	slowPeriods = []int{20, 30, 50}
	rsiPeriods  = []int{7, 14, 21}
)

// defaultParams is the fallback when no grid candidate produces a
// usable backtest on degenerate data.
var defaultParams = models.StrategyParams{
	FastMA:        10,
	SlowMA:        30,
	RSIPeriod:     14,
	RSIOversold:   30,
	RSIOverbought: 70,
}

// Optimizer performs walk-forward optimization: parameters are fit on a
// trailing training window and validated unmodified on the subsequent
// holdout window.
type Optimizer struct {
	trainDays int
	testDays  int
}

// NewOptimizer creates an optimizer; non-positive windows fall back to
// the 30/5 defaults.
func NewOptimizer(trainDays, testDays int) *Optimizer {
	if trainDays <= 0 {
		trainDays = 30
	}
	if testDays <= 0 {
		testDays = 5
	}
	return &Optimizer{trainDays: trainDays, testDays: testDays}
}

// Optimize runs the walk-forward analysis over the most recent
// train+test bars. A series shorter than that returns the neutral HOLD
// result with zeroed metrics and empty optimal parameters.
func (o *Optimizer) Optimize(bars models.BarSeries) models.OptimizationResult {
	if len(bars) < o.trainDays+o.testDays {
		return models.OptimizationResult{Recommendation: models.ActionHold}
	}

	window := bars[len(bars)-(o.trainDays+o.testDays):]
	train := window[:o.trainDays]
	test := window[o.trainDays:]

	params := o.optimizeParams(train)
	result := runBacktest(test, params)

	returns := tradeReturns(result.Trades)
	expectedReturn := meanOf(returns)
	sharpe := sharpeRatio(returns)
	winRate := winRate(returns)
	drawdown := maxDrawdown(returns)

	action, confidence := recommend(expectedReturn, sharpe, winRate, drawdown)

	return models.OptimizationResult{
		Recommendation:    action,
		Confidence:        confidence,
		ExpectedReturn:    expectedReturn,
		SharpeRatio:       sharpe,
		WinRate:           winRate,
		MaxDrawdown:       drawdown,
		AvgReturn:         expectedReturn,
		NumTrades:         len(result.Trades),
		OptimalParams:     params,
		RecentPerformance: recentPerformance(bars, 5),
	}
}

// optimizeParams grid-searches the training window for the parameter
// set with the strictly highest Sharpe ratio.
func (o *Optimizer) optimizeParams(train models.BarSeries) models.StrategyParams {
	bestSharpe := math.Inf(-1)
	var best models.StrategyParams

	for _, fast := range fastPeriods {
		for _, slow := range slowPeriods {
			if fast >= slow {
				continue
			}
			for _, rsiPeriod := range rsiPeriods {
				params := models.StrategyParams{
					FastMA:        fast,
					SlowMA:        slow,
					RSIPeriod:     rsiPeriod,
					RSIOversold:   30,
					RSIOverbought: 70,
				}
				result := runBacktest(train, params)
				if result.SharpeRatio > bestSharpe {
					bestSharpe = result.SharpeRatio
					best = params
				}
			}
		}
	}

	if best.IsZero() {
		return defaultParams
	}
	return best
}

// recommend derives the action and a bucketed confidence from the
// out-of-sample statistics.
func recommend(expectedReturn, sharpe, winRate, drawdown float64) (models.Action, float64) {
	var factors []float64

	switch {
	case sharpe > 2.0:
		factors = append(factors, 1.0)
	case sharpe > 1.0:
		factors = append(factors, 0.7)
	case sharpe > 0.5:
		factors = append(factors, 0.5)
	default:
		factors = append(factors, 0.2)
	}

	wr := winRate * 1.5
	if wr > 1 {
		wr = 1
	}
	factors = append(factors, wr)

	switch {
	case drawdown < 0.05:
		factors = append(factors, 1.0)
	case drawdown < 0.10:
		factors = append(factors, 0.7)
	default:
		factors = append(factors, 0.5)
	}

	confidence := meanOf(factors)

	switch {
	case expectedReturn > 0.02 && sharpe > 1.0 && winRate > 0.5:
		return models.ActionBuy, confidence
	case expectedReturn < -0.02 && sharpe < 0 && winRate < 0.4:
		return models.ActionSell, confidence
	default:
		return models.ActionHold, confidence
	}
}

func winRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns))
}

// recentPerformance reports the last n daily returns of the full series
// and their compounded value.
func recentPerformance(bars models.BarSeries, n int) models.RecentPerformance {
	returns := bars.Returns()
	if len(returns) > n {
		returns = returns[len(returns)-n:]
	}
	daily := make([]float64, 0, len(returns))
	for _, r := range returns {
		if !math.IsNaN(r) {
			daily = append(daily, r)
		}
	}
	return models.RecentPerformance{
		DailyReturns:     daily,
		CumulativeReturn: compound(daily),
	}
}
