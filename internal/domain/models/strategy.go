package models

import "time"

// Action is a trading recommendation.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// StrategyParams describes one backtestable crossover configuration.
// Immutable value; FastMA < SlowMA.
type StrategyParams struct {
	FastMA        int     `json:"fast_ma"`
	SlowMA        int     `json:"slow_ma"`
	RSIPeriod     int     `json:"rsi_period"`
	RSIOversold   float64 `json:"rsi_oversold"`
	RSIOverbought float64 `json:"rsi_overbought"`
}

// IsZero reports whether no parameters were selected.
func (p StrategyParams) IsZero() bool { return p == StrategyParams{} }

// Trade is one closed buy-to-sell cycle produced by a backtest run.
type Trade struct {
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	Return     float64   `json:"return"` // fractional
	EntryDate  time.Time `json:"entry_date"`
	ExitDate   time.Time `json:"exit_date"`
}

// BacktestResult holds the closed trades of one backtest run and their
// aggregate statistics.
type BacktestResult struct {
	SharpeRatio float64 `json:"sharpe_ratio"`
	TotalReturn float64 `json:"total_return"`
	Trades      []Trade `json:"trades"`
}

// RecentPerformance reports the last few daily returns of a series and
// their compounded value.
type RecentPerformance struct {
	DailyReturns     []float64 `json:"daily_returns"`
	CumulativeReturn float64   `json:"cumulative_return"`
}

// OptimizationResult is the walk-forward backtester output for one symbol.
type OptimizationResult struct {
	Recommendation    Action            `json:"recommendation"`
	Confidence        float64           `json:"confidence"`
	ExpectedReturn    float64           `json:"expected_return"`
	SharpeRatio       float64           `json:"sharpe_ratio"`
	WinRate           float64           `json:"win_rate"`
	MaxDrawdown       float64           `json:"max_drawdown"`
	AvgReturn         float64           `json:"avg_return"`
	NumTrades         int               `json:"num_trades"`
	OptimalParams     StrategyParams    `json:"optimal_params"`
	RecentPerformance RecentPerformance `json:"recent_performance"`
	Err               string            `json:"error,omitempty"`
}
