package models

import "time"

// RegimeSignal is the regime classifier's contribution to a decision.
type RegimeSignal struct {
	Score          float64 `json:"score"` // [-1,1]
	Regime         Regime  `json:"regime"`
	Confidence     float64 `json:"confidence"`
	TrendStrength  float64 `json:"trend_strength"`
	Recommendation Action  `json:"recommendation"`
}

// WalkForwardSignal is the backtester's contribution to a decision.
type WalkForwardSignal struct {
	Score          float64 `json:"score"` // [-1,1]
	Recommendation Action  `json:"recommendation"`
	Confidence     float64 `json:"confidence"`
	ExpectedReturn float64 `json:"expected_return"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
}

// RiskSignal is the risk gate's contribution to a decision.
type RiskSignal struct {
	Score    float64  `json:"score"` // [-1,1]
	Approved bool     `json:"approved"`
	Reason   string   `json:"reason,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Decision is the fused, explainable recommendation for one symbol.
// Constructed fresh per analysis request and never mutated after return.
type Decision struct {
	Symbol        string            `json:"symbol"`
	Action        Action            `json:"action"`
	Confidence    float64           `json:"confidence"`
	CombinedScore float64           `json:"combined_score"` // [-1,1]
	PositionSize  int               `json:"position_size"`
	PositionValue float64           `json:"position_value"`
	Reasoning     []string          `json:"reasoning"`
	Regime        RegimeSignal      `json:"regime_signal"`
	WalkForward   WalkForwardSignal `json:"walk_forward_signal"`
	Risk          RiskSignal        `json:"risk_signal"`
	Warnings      []string          `json:"warnings"`
	Err           string            `json:"error,omitempty"`
}

// PortfolioSummary counts decisions by action.
type PortfolioSummary struct {
	TotalSymbols int `json:"total_symbols"`
	BuySignals   int `json:"buy_signals"`
	SellSignals  int `json:"sell_signals"`
	HoldSignals  int `json:"hold_signals"`
}

// PortfolioAnalysis aggregates per-symbol decisions, sorted by
// confidence descending (stable: ties keep symbol enumeration order).
type PortfolioAnalysis struct {
	Timestamp           time.Time        `json:"timestamp"`
	AllRecommendations  []Decision       `json:"all_recommendations"`
	BuyRecommendations  []Decision       `json:"buy_recommendations"`
	SellRecommendations []Decision       `json:"sell_recommendations"`
	HoldRecommendations []Decision       `json:"hold_recommendations"`
	Summary             PortfolioSummary `json:"summary"`
	RiskSummary         RiskSummary      `json:"risk_summary"`
}
