package regime

import (
	"SmartTrade/internal/domain/models"
	"SmartTrade/internal/services/indicators"
)

const (
	weightSMAFull    = 1.0
	weightSMAPartial = 0.5
	weightRSI        = 0.3
	weightMACD       = 0.4
	weightADX        = 0.5
	weightBollinger  = 0.4

	adxTrendThreshold = 25.0
	labelThreshold    = 0.3
)

// Classifier labels a symbol's market regime from an indicator snapshot
// using weighted additive scoring.
type Classifier struct {
	engine *indicators.Engine
}

// NewClassifier creates a regime classifier over the given indicator engine.
func NewClassifier(engine *indicators.Engine) *Classifier {
	return &Classifier{engine: engine}
}

// Analyze computes indicators for the series and classifies the regime.
// A series shorter than the largest configured SMA period yields
// UNKNOWN with zero confidence and trend strength.
func (c *Classifier) Analyze(bars models.BarSeries) models.RegimeResult {
	if len(bars) < c.engine.MaxPeriod() {
		return models.RegimeResult{
			Regime:     models.RegimeUnknown,
			Indicators: models.IndicatorSnapshot{},
		}
	}
	return c.Classify(c.engine.Compute(bars))
}

// Classify derives the regime from an already-computed snapshot.
func (c *Classifier) Classify(snap models.IndicatorSnapshot) models.RegimeResult {
	score := c.regimeScore(snap)

	regime := models.RegimeSideways
	switch {
	case score > labelThreshold:
		regime = models.RegimeBullish
	case score < -labelThreshold:
		regime = models.RegimeBearish
	}

	confidence := score
	if confidence < 0 {
		confidence = -confidence
	}
	if confidence > 1 {
		confidence = 1
	}

	return models.RegimeResult{
		Regime:        regime,
		Confidence:    confidence,
		TrendStrength: trendStrength(snap),
		Volatility:    snap.GetOr("atr_pct", 0),
		Indicators:    snap,
	}
}

// regimeScore maps the snapshot to [-1,1]. Each contributing signal
// adds its weight to the normalization sum; signals without the data
// they need are excluded entirely.
func (c *Classifier) regimeScore(snap models.IndicatorSnapshot) float64 {
	score := 0.0
	weightSum := 0.0

	// SMA alignment: full 20>50>200 concordance dominates.
	if snap.Has("sma_20", "sma_50", "sma_200") {
		sma20 := snap["sma_20"]
		sma50 := snap["sma_50"]
		sma200 := snap["sma_200"]
		switch {
		case sma20 > sma50 && sma50 > sma200:
			score += weightSMAFull
			weightSum += weightSMAFull
		case sma20 < sma50 && sma50 < sma200:
			score -= weightSMAFull
			weightSum += weightSMAFull
		case sma20 > sma50:
			score += weightSMAPartial
			weightSum += weightSMAPartial
		case sma20 < sma50:
			score -= weightSMAPartial
			weightSum += weightSMAPartial
		}
	}

	// RSI: overbought is a reversal risk, oversold a bounce candidate.
	// The weight counts toward normalization whenever RSI is present.
	if rsi, ok := snap.Get("rsi"); ok {
		switch {
		case rsi > 70:
			score -= weightRSI
		case rsi > 60:
			score += weightRSI
		case rsi < 30:
			score += weightRSI
		case rsi < 40:
			score -= weightRSI
		}
		weightSum += weightRSI
	}

	if snap.Has("macd", "macd_signal") {
		if snap["macd"] > snap["macd_signal"] {
			score += weightMACD
		} else {
			score -= weightMACD
		}
		weightSum += weightMACD
	}

	// ADX contributes only when a strong trend exists.
	if snap.Has("adx", "adx_pos", "adx_neg") && snap["adx"] > adxTrendThreshold {
		if snap["adx_pos"] > snap["adx_neg"] {
			score += weightADX
		} else {
			score -= weightADX
		}
		weightSum += weightADX
	}

	// Bollinger position contributes continuously, no threshold.
	if pos, ok := snap.Get("bb_position"); ok {
		score += (pos - 0.5) * weightBollinger
		weightSum += weightBollinger
	}

	if weightSum == 0 {
		weightSum = 1.0
	}
	normalized := score / weightSum
	if normalized > 1 {
		return 1
	}
	if normalized < -1 {
		return -1
	}
	return normalized
}

// trendStrength maps ADX to [0,1]: linear below 25, saturated through
// 50, then ADX/50 capped at 1.
func trendStrength(snap models.IndicatorSnapshot) float64 {
	adx, ok := snap.Get("adx")
	if !ok || adx == 0 {
		return 0
	}
	switch {
	case adx < 25:
		return adx / 25
	case adx < 50:
		return 1.0
	default:
		v := adx / 50
		if v > 1 {
			return 1
		}
		return v
	}
}
