package models

// Account is a broker account snapshot, fetched once per request and
// shared read-only across per-symbol pipelines.
type Account struct {
	AccountNumber    string  `json:"account_number"`
	Cash             float64 `json:"cash"`
	PortfolioValue   float64 `json:"portfolio_value"`
	BuyingPower      float64 `json:"buying_power"`
	Equity           float64 `json:"equity"`
	LastEquity       float64 `json:"last_equity"`
	PatternDayTrader bool    `json:"pattern_day_trader"`
	TradingBlocked   bool    `json:"trading_blocked"`
	TransfersBlocked bool    `json:"transfers_blocked"`
	AccountBlocked   bool    `json:"account_blocked"`
	DaytradeCount    int     `json:"daytrade_count"`
	Status           string  `json:"status"`
}

// Position is one open broker position.
type Position struct {
	Symbol         string  `json:"symbol"`
	Qty            float64 `json:"qty"`
	AvgEntryPrice  float64 `json:"avg_entry_price"`
	CurrentPrice   float64 `json:"current_price"`
	MarketValue    float64 `json:"market_value"`
	CostBasis      float64 `json:"cost_basis"`
	UnrealizedPL   float64 `json:"unrealized_pl"`
	UnrealizedPLPC float64 `json:"unrealized_plpc"` // fractional: 0.10 = +10%
	Side           string  `json:"side"`
}

// FindPosition returns the position for symbol, or nil.
func FindPosition(positions []Position, symbol string) *Position {
	for i := range positions {
		if positions[i].Symbol == symbol {
			return &positions[i]
		}
	}
	return nil
}

// Quote is a latest bid/ask snapshot for a symbol.
type Quote struct {
	BidPrice  float64 `json:"bid_price"`
	BidSize   int64   `json:"bid_size"`
	AskPrice  float64 `json:"ask_price"`
	AskSize   int64   `json:"ask_size"`
	Timestamp string  `json:"timestamp"`
}
