package models

// Regime labels a symbol's recent market state.
type Regime string

const (
	RegimeBullish  Regime = "BULLISH"
	RegimeBearish  Regime = "BEARISH"
	RegimeSideways Regime = "SIDEWAYS"
	RegimeUnknown  Regime = "UNKNOWN"
	RegimeError    Regime = "ERROR"
)

// RegimeResult is the regime classifier output for one symbol.
// Ephemeral: recomputed per request, never persisted.
type RegimeResult struct {
	Regime        Regime            `json:"regime"`
	Confidence    float64           `json:"confidence"`
	TrendStrength float64           `json:"trend_strength"`
	Volatility    float64           `json:"volatility"` // ATR as % of price
	Indicators    IndicatorSnapshot `json:"indicators"`
	Err           string            `json:"error,omitempty"`
}
