package notify

import (
	"fmt"
	"strings"

	"SmartTrade/internal/domain/models"
)

// formatAnalysisReport renders a portfolio analysis as a Telegram
// Markdown message: summary counts, actionable recommendations with
// their reasoning, then outstanding risk warnings.
func formatAnalysisReport(analysis *models.PortfolioAnalysis) string {
	var b strings.Builder

	b.WriteString("*📊 Portfolio Analysis*\n")
	b.WriteString(fmt.Sprintf("_%s_\n\n", analysis.Timestamp.Format("2006-01-02 15:04 MST")))
	b.WriteString(fmt.Sprintf("Symbols analyzed: %d\n", analysis.Summary.TotalSymbols))
	b.WriteString(fmt.Sprintf("🟢 BUY: %d  🔴 SELL: %d  ⚪ HOLD: %d\n",
		analysis.Summary.BuySignals, analysis.Summary.SellSignals, analysis.Summary.HoldSignals))

	writeRecommendations(&b, "🟢 Buy Signals", analysis.BuyRecommendations)
	writeRecommendations(&b, "🔴 Sell Signals", analysis.SellRecommendations)

	if len(analysis.RiskSummary.Warnings) > 0 {
		b.WriteString("\n*⚠ Risk Warnings*\n")
		for _, w := range analysis.RiskSummary.Warnings {
			b.WriteString(fmt.Sprintf("• %s\n", w))
		}
	}

	return b.String()
}

func writeRecommendations(b *strings.Builder, title string, decisions []models.Decision) {
	if len(decisions) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("\n*%s*\n", title))
	for _, d := range decisions {
		b.WriteString(fmt.Sprintf("\n*%s*: %s (%.0f%% confidence)\n", d.Symbol, d.Action, d.Confidence*100))
		if d.PositionSize > 0 {
			b.WriteString(fmt.Sprintf("Size: %d shares (~$%.2f)\n", d.PositionSize, d.PositionValue))
		}
		for _, line := range d.Reasoning {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
}

func formatTradeNotification(trade models.TradeNotification) string {
	emoji := "🟢"
	if strings.EqualFold(trade.Action, "SELL") {
		emoji = "🔴"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s *Trade Executed*\n\n", emoji))
	b.WriteString(fmt.Sprintf("Symbol: *%s*\n", trade.Symbol))
	b.WriteString(fmt.Sprintf("Action: %s\n", strings.ToUpper(trade.Action)))
	b.WriteString(fmt.Sprintf("Quantity: %g\n", trade.Qty))
	if trade.Price > 0 {
		b.WriteString(fmt.Sprintf("Price: $%.2f\n", trade.Price))
	}
	b.WriteString(fmt.Sprintf("Status: %s", trade.Status))
	return b.String()
}

func formatAlert(message, alertType string) string {
	prefix := "ℹ️"
	switch strings.ToLower(alertType) {
	case "warning":
		prefix = "⚠️"
	case "error", "critical":
		prefix = "🚨"
	}
	return fmt.Sprintf("%s *Alert*\n\n%s", prefix, message)
}
