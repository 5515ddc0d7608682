package risk

import (
	"fmt"

	"SmartTrade/internal/domain/models"
)

// Summary builds the account-level risk report attached to portfolio
// analyses and notification reports.
func (g *Gate) Summary(account models.Account, positions []models.Position) models.RiskSummary {
	var s models.RiskSummary

	totalInvested := 0.0
	totalUnrealizedPL := 0.0
	largest := 0.0
	for _, p := range positions {
		totalInvested += p.MarketValue
		totalUnrealizedPL += p.UnrealizedPL
		if p.MarketValue > largest {
			largest = p.MarketValue
		}
	}

	s.Account.Equity = account.Equity
	s.Account.Cash = account.Cash
	s.Account.Invested = totalInvested
	if account.Equity > 0 {
		s.Account.InvestedPercentage = totalInvested / account.Equity * 100
	}

	s.PDT.DaytradeCount = account.DaytradeCount
	if remaining := pdtDaytradeLimit - account.DaytradeCount; remaining > 0 {
		s.PDT.RemainingDaytrades = remaining
	}
	s.PDT.PDTRestricted = account.Equity < pdtEquityThreshold && account.DaytradeCount >= pdtDaytradeLimit

	s.Portfolio.NumPositions = len(positions)
	s.Portfolio.TotalUnrealizedPL = totalUnrealizedPL
	if basis := totalInvested - totalUnrealizedPL; basis > 0 {
		s.Portfolio.TotalUnrealizedPLPct = totalUnrealizedPL / basis * 100
	}
	s.Portfolio.LargestPositionValue = largest
	if account.Equity > 0 {
		s.Portfolio.LargestPositionPct = largest / account.Equity * 100
	}

	s.Warnings = g.summaryWarnings(account, positions, totalInvested)
	return s
}

func (g *Gate) summaryWarnings(account models.Account, positions []models.Position, totalInvested float64) []string {
	warnings := []string{}

	if account.Equity < pdtEquityThreshold && account.DaytradeCount >= pdtDaytradeLimit-1 {
		warnings = append(warnings,
			fmt.Sprintf("PDT warning: %d/%d day trades used", account.DaytradeCount, pdtDaytradeLimit))
	}
	if account.Cash < 500 {
		warnings = append(warnings, fmt.Sprintf("Low cash balance: $%.2f", account.Cash))
	}
	if account.Equity > 0 && totalInvested/account.Equity > 0.90 {
		warnings = append(warnings,
			fmt.Sprintf("High portfolio concentration: %.1f%% invested", totalInvested/account.Equity*100))
	}
	for _, p := range positions {
		if p.UnrealizedPLPC < -0.15 {
			warnings = append(warnings,
				fmt.Sprintf("Large loss in %s: %.1f%%", p.Symbol, p.UnrealizedPLPC*100))
		}
	}

	return warnings
}
