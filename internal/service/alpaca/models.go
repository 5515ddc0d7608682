package alpaca

import (
	"bytes"
	"strconv"

	"SmartTrade/internal/domain/models"
)

// Num parses Alpaca's quoted decimal fields ("100000.25") as well as
// plain JSON numbers. Empty and null decode to zero.
type Num float64

func (n *Num) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*n = Num(f)
	return nil
}

type accountDTO struct {
	AccountNumber    string `json:"account_number"`
	Cash             Num    `json:"cash"`
	PortfolioValue   Num    `json:"portfolio_value"`
	BuyingPower      Num    `json:"buying_power"`
	Equity           Num    `json:"equity"`
	LastEquity       Num    `json:"last_equity"`
	PatternDayTrader bool   `json:"pattern_day_trader"`
	TradingBlocked   bool   `json:"trading_blocked"`
	TransfersBlocked bool   `json:"transfers_blocked"`
	AccountBlocked   bool   `json:"account_blocked"`
	DaytradeCount    int    `json:"daytrade_count"`
	Status           string `json:"status"`
}

func (d accountDTO) toDomain() models.Account {
	return models.Account{
		AccountNumber:    d.AccountNumber,
		Cash:             float64(d.Cash),
		PortfolioValue:   float64(d.PortfolioValue),
		BuyingPower:      float64(d.BuyingPower),
		Equity:           float64(d.Equity),
		LastEquity:       float64(d.LastEquity),
		PatternDayTrader: d.PatternDayTrader,
		TradingBlocked:   d.TradingBlocked,
		TransfersBlocked: d.TransfersBlocked,
		AccountBlocked:   d.AccountBlocked,
		DaytradeCount:    d.DaytradeCount,
		Status:           d.Status,
	}
}

type positionDTO struct {
	Symbol         string `json:"symbol"`
	Qty            Num    `json:"qty"`
	AvgEntryPrice  Num    `json:"avg_entry_price"`
	CurrentPrice   Num    `json:"current_price"`
	MarketValue    Num    `json:"market_value"`
	CostBasis      Num    `json:"cost_basis"`
	UnrealizedPL   Num    `json:"unrealized_pl"`
	UnrealizedPLPC Num    `json:"unrealized_plpc"`
	Side           string `json:"side"`
}

func (d positionDTO) toDomain() models.Position {
	return models.Position{
		Symbol:         d.Symbol,
		Qty:            float64(d.Qty),
		AvgEntryPrice:  float64(d.AvgEntryPrice),
		CurrentPrice:   float64(d.CurrentPrice),
		MarketValue:    float64(d.MarketValue),
		CostBasis:      float64(d.CostBasis),
		UnrealizedPL:   float64(d.UnrealizedPL),
		UnrealizedPLPC: float64(d.UnrealizedPLPC),
		Side:           d.Side,
	}
}

type orderDTO struct {
	ID             string `json:"id"`
	ClientOrderID  string `json:"client_order_id"`
	Symbol         string `json:"symbol"`
	Qty            Num    `json:"qty"`
	Side           string `json:"side"`
	Type           string `json:"type"`
	LimitPrice     Num    `json:"limit_price"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
	FilledAvgPrice Num    `json:"filled_avg_price"`
	FilledQty      Num    `json:"filled_qty"`
}

func (d orderDTO) toDomain() models.Order {
	return models.Order{
		ID:             d.ID,
		ClientOrderID:  d.ClientOrderID,
		Symbol:         d.Symbol,
		Qty:            float64(d.Qty),
		Side:           d.Side,
		Type:           d.Type,
		LimitPrice:     float64(d.LimitPrice),
		Status:         d.Status,
		CreatedAt:      d.CreatedAt,
		FilledAvgPrice: float64(d.FilledAvgPrice),
		FilledQty:      float64(d.FilledQty),
	}
}

type orderRequestDTO struct {
	Symbol      string `json:"symbol"`
	Qty         string `json:"qty"`
	Side        string `json:"side"`
	Type        string `json:"type"`
	TimeInForce string `json:"time_in_force"`
	LimitPrice  string `json:"limit_price,omitempty"`
}

// barDTO is a market-data bar. The data API returns plain numbers here,
// unlike the trading API's quoted decimals.
type barDTO struct {
	Timestamp string  `json:"t"`
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    int64   `json:"v"`
}

type barsResponseDTO struct {
	Bars          map[string][]barDTO `json:"bars"`
	NextPageToken *string             `json:"next_page_token"`
}

type quoteDTO struct {
	AskPrice  float64 `json:"ap"`
	AskSize   int64   `json:"as"`
	BidPrice  float64 `json:"bp"`
	BidSize   int64   `json:"bs"`
	Timestamp string  `json:"t"`
}

type quotesResponseDTO struct {
	Quotes map[string]quoteDTO `json:"quotes"`
}
