package risk

import "SmartTrade/internal/domain/models"

// VolatilityChecker is an extension point for a future volatility risk
// model. The gate only consumes the report; a failing implementation
// cannot block a trade, only warn.
type VolatilityChecker interface {
	Check(symbol string, price float64) (models.CheckReport, string)
}

// NoopVolatilityChecker always passes without a warning.
type NoopVolatilityChecker struct{}

func (NoopVolatilityChecker) Check(string, float64) (models.CheckReport, string) {
	return models.CheckReport{Passed: true, Message: "Volatility check not implemented"}, ""
}
