package risk

import (
	"fmt"

	"SmartTrade/internal/domain/models"
)

const (
	minCashForTrade    = 100.0
	pdtEquityThreshold = 25000.0
	pdtDaytradeLimit   = 3
	sizingBuffer       = 0.98 // 2% buffer against slippage
	largePositionPct   = 0.15
	concentrationLimit = 0.80
	maxPositionCount   = 15
)

// Config holds the risk gate parameters, read once at construction.
type Config struct {
	MaxPositionFraction float64 // cap per symbol as fraction of equity
	MinAccountBalance   float64
	EnablePDTProtection bool
}

// Gate evaluates whether a proposed trade is safe to execute. Checks
// run sequentially and short-circuit on the first failure; only the
// balance, blocked, PDT and sizing checks can reject.
type Gate struct {
	cfg        Config
	volatility VolatilityChecker
}

// NewGate creates a risk gate. A nil volatility checker falls back to
// the no-op implementation.
func NewGate(cfg Config, volatility VolatilityChecker) *Gate {
	if cfg.MaxPositionFraction <= 0 {
		cfg.MaxPositionFraction = 0.10
	}
	if volatility == nil {
		volatility = NoopVolatilityChecker{}
	}
	return &Gate{cfg: cfg, volatility: volatility}
}

// EvaluateTrade runs all risk checks for the proposed action and price.
func (g *Gate) EvaluateTrade(
	symbol string,
	action models.Action,
	account models.Account,
	positions []models.Position,
	price float64,
) models.RiskEvaluation {
	eval := models.RiskEvaluation{
		Approved: true,
		Warnings: []string{},
		Checks:   map[string]models.CheckReport{},
	}

	current := models.FindPosition(positions, symbol)

	balance := g.checkBalance(account)
	eval.Checks["account_balance"] = balance
	if !balance.Passed {
		return reject(eval, balance.Message)
	}

	blocked := g.checkBlocked(account)
	eval.Checks["account_blocked"] = blocked
	if !blocked.Passed {
		return reject(eval, blocked.Message)
	}

	if action == models.ActionBuy {
		pdt := g.checkPDT(account)
		eval.Checks["pdt_protection"] = pdt
		if !pdt.Passed {
			return reject(eval, pdt.Message)
		}
	}

	switch action {
	case models.ActionBuy:
		sizing := g.positionSize(account, positions, price, symbol)
		eval.Sizing = &sizing
		eval.Checks["position_sizing"] = models.CheckReport{
			Passed:  sizing.MaxShares > 0,
			Message: fmt.Sprintf("Sized %d shares ($%.2f)", sizing.MaxShares, sizing.PositionValue),
		}
		if sizing.MaxShares <= 0 {
			return reject(eval, "Insufficient buying power for trade")
		}
		eval.PositionSize = sizing.MaxShares
		eval.PositionValue = sizing.PositionValue
		if sizing.PortfolioPercentage > largePositionPct {
			eval.Warnings = append(eval.Warnings,
				fmt.Sprintf("Large position: %.1f%% of portfolio", sizing.PortfolioPercentage*100))
		}

	case models.ActionSell:
		if current == nil {
			eval.Checks["position_sizing"] = models.CheckReport{
				Passed:  false,
				Message: fmt.Sprintf("No position to sell for %s", symbol),
			}
			return reject(eval, fmt.Sprintf("No position to sell for %s", symbol))
		}
		eval.PositionSize = int(current.Qty)
		eval.PositionValue = current.MarketValue
		eval.Checks["position_sizing"] = models.CheckReport{
			Passed:  true,
			Message: fmt.Sprintf("Selling full position: %d shares", eval.PositionSize),
		}
	}

	concentration, warning := g.checkConcentration(account, positions, symbol, action, eval.PositionValue)
	eval.Checks["concentration"] = concentration
	if warning != "" {
		eval.Warnings = append(eval.Warnings, warning)
	}

	volReport, volWarning := g.volatility.Check(symbol, price)
	eval.Checks["volatility"] = volReport
	if volWarning != "" {
		eval.Warnings = append(eval.Warnings, volWarning)
	}

	return eval
}

func reject(eval models.RiskEvaluation, reason string) models.RiskEvaluation {
	eval.Approved = false
	eval.Reason = reason
	return eval
}

func (g *Gate) checkBalance(account models.Account) models.CheckReport {
	if account.Equity < g.cfg.MinAccountBalance {
		return models.CheckReport{
			Message: fmt.Sprintf("Account equity ($%.2f) below minimum ($%.2f)",
				account.Equity, g.cfg.MinAccountBalance),
		}
	}
	if account.Cash < minCashForTrade {
		return models.CheckReport{
			Message: fmt.Sprintf("Insufficient cash balance: $%.2f", account.Cash),
		}
	}
	return models.CheckReport{
		Passed:  true,
		Message: fmt.Sprintf("Sufficient balance: $%.2f equity, $%.2f cash", account.Equity, account.Cash),
	}
}

func (g *Gate) checkBlocked(account models.Account) models.CheckReport {
	if account.TradingBlocked {
		return models.CheckReport{Message: "Account is blocked from trading"}
	}
	if account.AccountBlocked {
		return models.CheckReport{Message: "Account is blocked"}
	}
	return models.CheckReport{Passed: true, Message: "Account is active"}
}

// checkPDT enforces the Pattern Day Trading rule: accounts under $25k
// equity are limited to 3 day trades in 5 business days.
func (g *Gate) checkPDT(account models.Account) models.CheckReport {
	if !g.cfg.EnablePDTProtection {
		return models.CheckReport{Passed: true, Message: "PDT protection disabled"}
	}
	if account.Equity >= pdtEquityThreshold {
		return models.CheckReport{
			Passed:  true,
			Message: fmt.Sprintf("PDT rules not applicable (equity: $%.2f)", account.Equity),
		}
	}
	if account.DaytradeCount >= pdtDaytradeLimit {
		return models.CheckReport{
			Message: fmt.Sprintf("PDT limit reached: %d/%d day trades used. Wait until next week or increase equity to $25,000+",
				account.DaytradeCount, pdtDaytradeLimit),
		}
	}
	msg := fmt.Sprintf("PDT check passed: %d/%d day trades used", account.DaytradeCount, pdtDaytradeLimit)
	if account.DaytradeCount >= pdtDaytradeLimit-1 {
		msg += " (WARNING: Close to limit!)"
	}
	return models.CheckReport{Passed: true, Message: msg}
}

// positionSize caps the position at MaxPositionFraction of equity net
// of existing exposure, bounded by buying power, with a 2% buffer
// against slippage.
func (g *Gate) positionSize(
	account models.Account,
	positions []models.Position,
	price float64,
	symbol string,
) models.SizingReport {
	maxPositionValue := account.Equity * g.cfg.MaxPositionFraction

	currentExposure := 0.0
	if pos := models.FindPosition(positions, symbol); pos != nil {
		currentExposure = pos.MarketValue
	}

	remaining := maxPositionValue - currentExposure
	available := remaining
	if account.BuyingPower < available {
		available = account.BuyingPower
	}

	maxShares := 0
	if price > 0 {
		maxShares = int(available * sizingBuffer / price)
	}
	if maxShares < 0 {
		maxShares = 0
	}

	positionValue := float64(maxShares) * price
	portfolioPct := 0.0
	if account.Equity > 0 {
		portfolioPct = positionValue / account.Equity
	}

	return models.SizingReport{
		MaxShares:           maxShares,
		PositionValue:       positionValue,
		PortfolioPercentage: portfolioPct,
		MaxPositionValue:    maxPositionValue,
		CurrentExposure:     currentExposure,
		RemainingAllocation: remaining,
	}
}

// checkConcentration never blocks; it flags an over-invested portfolio
// or an excessive position count as a warning.
func (g *Gate) checkConcentration(
	account models.Account,
	positions []models.Position,
	symbol string,
	action models.Action,
	tradeValue float64,
) (models.CheckReport, string) {
	if account.Equity == 0 {
		return models.CheckReport{Passed: true, Message: "No equity to evaluate"}, ""
	}

	totalInvested := 0.0
	for _, p := range positions {
		totalInvested += p.MarketValue
	}
	if action == models.ActionBuy {
		totalInvested += tradeValue
	}
	concentration := totalInvested / account.Equity

	if concentration > concentrationLimit {
		msg := fmt.Sprintf("High portfolio concentration: %.1f%% invested", concentration*100)
		return models.CheckReport{Passed: true, Message: msg}, msg
	}

	numPositions := len(positions)
	if action == models.ActionBuy && models.FindPosition(positions, symbol) == nil {
		numPositions++
	}
	if numPositions > maxPositionCount {
		msg := fmt.Sprintf("Large number of positions: %d", numPositions)
		return models.CheckReport{Passed: true, Message: msg}, msg
	}

	return models.CheckReport{
		Passed:  true,
		Message: fmt.Sprintf("Concentration OK: %.1f%% invested in %d positions", concentration*100, numPositions),
	}, ""
}
