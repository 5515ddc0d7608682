package models

// CheckReport is the outcome of one risk gate check.
type CheckReport struct {
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// SizingReport details the position sizing computation for a BUY.
type SizingReport struct {
	MaxShares           int     `json:"max_shares"`
	PositionValue       float64 `json:"position_value"`
	PortfolioPercentage float64 `json:"portfolio_percentage"`
	MaxPositionValue    float64 `json:"max_position_value"`
	CurrentExposure     float64 `json:"current_exposure"`
	RemainingAllocation float64 `json:"remaining_allocation"`
}

// RiskEvaluation is the risk gate verdict for one proposed trade.
// Only the balance, blocked, PDT and sizing checks can reject; the
// rest accumulate warnings.
type RiskEvaluation struct {
	Approved      bool                   `json:"approved"`
	Reason        string                 `json:"reason"`
	Warnings      []string               `json:"warnings"`
	PositionSize  int                    `json:"position_size"`
	PositionValue float64                `json:"position_value"`
	Checks        map[string]CheckReport `json:"checks"`
	Sizing        *SizingReport          `json:"sizing,omitempty"`
}

// RiskSummary is the account-level risk report attached to portfolio
// analyses and notification reports.
type RiskSummary struct {
	Account struct {
		Equity             float64 `json:"equity"`
		Cash               float64 `json:"cash"`
		Invested           float64 `json:"invested"`
		InvestedPercentage float64 `json:"invested_percentage"`
	} `json:"account"`
	PDT struct {
		DaytradeCount      int  `json:"daytrade_count"`
		RemainingDaytrades int  `json:"remaining_daytrades"`
		PDTRestricted      bool `json:"pdt_restricted"`
	} `json:"pdt"`
	Portfolio struct {
		NumPositions         int     `json:"num_positions"`
		TotalUnrealizedPL    float64 `json:"total_unrealized_pl"`
		TotalUnrealizedPLPct float64 `json:"total_unrealized_pl_pct"`
		LargestPositionValue float64 `json:"largest_position_value"`
		LargestPositionPct   float64 `json:"largest_position_pct"`
	} `json:"portfolio"`
	Warnings []string `json:"warnings"`
}
