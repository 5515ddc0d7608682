package fusion

import (
	"fmt"
	"sort"
	"time"

	"SmartTrade/internal/domain/models"
)

const (
	weightRegime      = 0.4
	weightWalkForward = 0.4
	weightRisk        = 0.2

	actionThreshold = 0.3
)

// Engine fuses the regime, walk-forward and risk signals into one
// explainable decision per symbol.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Decide combines the three signals with fixed weights, applies the
// position-aware override rules, and emits the reasoning trail.
func (e *Engine) Decide(
	symbol string,
	regime models.RegimeResult,
	wf models.OptimizationResult,
	risk models.RiskEvaluation,
	position *models.Position,
) models.Decision {
	regimeSig := interpretRegime(regime)
	wfSig := interpretWalkForward(wf)
	riskSig := interpretRisk(risk)

	score := regimeSig.Score*weightRegime +
		wfSig.Score*weightWalkForward +
		riskSig.Score*weightRisk

	action := models.ActionHold
	switch {
	case score > actionThreshold:
		action = models.ActionBuy
	case score < -actionThreshold:
		action = models.ActionSell
	}

	if position != nil {
		action, score = adjustForPosition(action, score, *position, regime, wf)
	}

	confidence := score
	if confidence < 0 {
		confidence = -confidence
	}
	if confidence > 1 {
		confidence = 1
	}

	return models.Decision{
		Symbol:        symbol,
		Action:        action,
		Confidence:    confidence,
		CombinedScore: score,
		PositionSize:  risk.PositionSize,
		PositionValue: risk.PositionValue,
		Reasoning:     reasoning(regimeSig, wfSig, riskSig, action, confidence),
		Regime:        regimeSig,
		WalkForward:   wfSig,
		Risk:          riskSig,
		Warnings:      risk.Warnings,
	}
}

// interpretRegime signs confidence×trend_strength by the regime label;
// SIDEWAYS and UNKNOWN carry no directional information.
func interpretRegime(res models.RegimeResult) models.RegimeSignal {
	score := 0.0
	switch res.Regime {
	case models.RegimeBullish:
		score = res.Confidence * res.TrendStrength
	case models.RegimeBearish:
		score = -res.Confidence * res.TrendStrength
	}

	rec := models.ActionHold
	switch {
	case score > actionThreshold:
		rec = models.ActionBuy
	case score < -actionThreshold:
		rec = models.ActionSell
	}

	return models.RegimeSignal{
		Score:          score,
		Regime:         res.Regime,
		Confidence:     res.Confidence,
		TrendStrength:  res.TrendStrength,
		Recommendation: rec,
	}
}

// interpretWalkForward signs the backtester's confidence by its
// recommendation, then scales it by the Sharpe quality band.
func interpretWalkForward(res models.OptimizationResult) models.WalkForwardSignal {
	score := 0.0
	switch res.Recommendation {
	case models.ActionBuy:
		score = res.Confidence
	case models.ActionSell:
		score = -res.Confidence
	}

	if res.SharpeRatio > 1.5 {
		score *= 1.2
	} else if res.SharpeRatio < 0.5 {
		score *= 0.8
	}
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}

	return models.WalkForwardSignal{
		Score:          score,
		Recommendation: res.Recommendation,
		Confidence:     res.Confidence,
		ExpectedReturn: res.ExpectedReturn,
		SharpeRatio:    res.SharpeRatio,
	}
}

// interpretRisk is binary approval modulated by warning count.
func interpretRisk(eval models.RiskEvaluation) models.RiskSignal {
	score := 0.5
	switch {
	case !eval.Approved:
		score = -1.0
	case len(eval.Warnings) > 2:
		score = -0.5
	case len(eval.Warnings) > 0:
		score = 0.0
	}

	return models.RiskSignal{
		Score:    score,
		Approved: eval.Approved,
		Reason:   eval.Reason,
		Warnings: eval.Warnings,
	}
}

// adjustForPosition applies the override rules for symbols already
// held. Rules are evaluated in precedence order; only the first match
// applies.
func adjustForPosition(
	action models.Action,
	score float64,
	position models.Position,
	regime models.RegimeResult,
	wf models.OptimizationResult,
) (models.Action, float64) {
	plpc := position.UnrealizedPLPC

	// Take profits when the backdrop turns against a >10% winner.
	if plpc > 0.10 && (regime.Regime == models.RegimeBearish || wf.ExpectedReturn < 0) {
		return models.ActionSell, -0.7
	}

	if plpc < -0.10 {
		// Cut a >10% loser when both signals agree it is over.
		if regime.Regime == models.RegimeBearish && wf.Recommendation == models.ActionSell {
			return models.ActionSell, -0.8
		}
		// Averaging down keeps the BUY at reduced conviction.
		if regime.Regime == models.RegimeBullish && action == models.ActionBuy {
			return models.ActionBuy, score * 0.7
		}
	}

	// Adding to an existing holding risks over-concentration.
	if action == models.ActionBuy {
		return models.ActionHold, score * 0.5
	}

	return action, score
}

// reasoning builds the ordered trail consumed by the notification
// collaborator: regime statement, walk-forward statement, risk
// statement (plus up to two warning bullets), final recommendation.
func reasoning(
	regime models.RegimeSignal,
	wf models.WalkForwardSignal,
	risk models.RiskSignal,
	action models.Action,
	confidence float64,
) []string {
	trail := make([]string, 0, 6)

	switch regime.Regime {
	case models.RegimeBullish:
		trail = append(trail, fmt.Sprintf(
			"✓ Regime analysis: %s market detected (confidence: %.1f%%, trend strength: %.1f%%)",
			regime.Regime, regime.Confidence*100, regime.TrendStrength*100))
	case models.RegimeBearish:
		trail = append(trail, fmt.Sprintf(
			"✗ Regime analysis: %s market detected (confidence: %.1f%%, trend strength: %.1f%%)",
			regime.Regime, regime.Confidence*100, regime.TrendStrength*100))
	default:
		trail = append(trail, fmt.Sprintf(
			"○ Regime analysis: %s market (confidence: %.1f%%)", regime.Regime, regime.Confidence*100))
	}

	switch wf.Recommendation {
	case models.ActionBuy:
		trail = append(trail, fmt.Sprintf(
			"✓ Walk-forward optimization: BUY signal (expected return: %.2f%%, Sharpe: %.2f)",
			wf.ExpectedReturn*100, wf.SharpeRatio))
	case models.ActionSell:
		trail = append(trail, fmt.Sprintf(
			"✗ Walk-forward optimization: SELL signal (expected return: %.2f%%, Sharpe: %.2f)",
			wf.ExpectedReturn*100, wf.SharpeRatio))
	default:
		trail = append(trail, fmt.Sprintf(
			"○ Walk-forward optimization: no clear signal (Sharpe: %.2f)", wf.SharpeRatio))
	}

	switch {
	case !risk.Approved:
		reason := risk.Reason
		if reason == "" {
			reason = "Failed"
		}
		trail = append(trail, fmt.Sprintf("✗ Risk check: %s", reason))
	case len(risk.Warnings) > 0:
		trail = append(trail, "⚠ Risk check: passed with warnings")
		for i, w := range risk.Warnings {
			if i == 2 {
				break
			}
			trail = append(trail, fmt.Sprintf("  • %s", w))
		}
	default:
		trail = append(trail, "✓ Risk check: all checks passed")
	}

	if action == models.ActionHold {
		trail = append(trail, fmt.Sprintf("→ RECOMMENDATION: %s - signals are mixed or inconclusive", action))
	} else {
		trail = append(trail, fmt.Sprintf("→ RECOMMENDATION: %s with %.1f%% confidence", action, confidence*100))
	}

	return trail
}

// Aggregate orders decisions by confidence descending (stable, so ties
// keep the caller's symbol enumeration order) and partitions them by
// action.
func (e *Engine) Aggregate(decisions []models.Decision, riskSummary models.RiskSummary) models.PortfolioAnalysis {
	all := make([]models.Decision, len(decisions))
	copy(all, decisions)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Confidence > all[j].Confidence
	})

	analysis := models.PortfolioAnalysis{
		Timestamp:           time.Now(),
		AllRecommendations:  all,
		BuyRecommendations:  []models.Decision{},
		SellRecommendations: []models.Decision{},
		HoldRecommendations: []models.Decision{},
		RiskSummary:         riskSummary,
	}

	for _, d := range all {
		switch d.Action {
		case models.ActionBuy:
			analysis.BuyRecommendations = append(analysis.BuyRecommendations, d)
		case models.ActionSell:
			analysis.SellRecommendations = append(analysis.SellRecommendations, d)
		default:
			analysis.HoldRecommendations = append(analysis.HoldRecommendations, d)
		}
	}

	analysis.Summary = models.PortfolioSummary{
		TotalSymbols: len(all),
		BuySignals:   len(analysis.BuyRecommendations),
		SellSignals:  len(analysis.SellRecommendations),
		HoldSignals:  len(analysis.HoldRecommendations),
	}

	return analysis
}
