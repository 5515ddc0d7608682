package models

// Requests for the advisor HTTP endpoints. Defined in domain for consistency and reuse.

type AnalyzeRequest struct {
	Symbols      []string `json:"symbols" validate:"omitempty,min=1,max=50,dive,required"`
	LookbackDays int      `json:"lookback_days" default:"0" validate:"gte=0,lte=1000"`
}

type ExecuteTradeRequest struct {
	Symbol     string  `json:"symbol" validate:"required"`
	Action     string  `json:"action" validate:"required,oneof=BUY SELL"`
	Quantity   float64 `json:"quantity" validate:"required,gt=0"`
	OrderType  string  `json:"order_type" default:"market" validate:"oneof=market limit"`
	LimitPrice float64 `json:"limit_price" validate:"omitempty,gt=0"`
}

type OrdersRequest struct {
	Status string `query:"status" json:"status" default:"all" validate:"oneof=open closed all"`
}

type ClosePositionRequest struct {
	Qty float64 `json:"qty" validate:"omitempty,gt=0"`
}

type NotifyRequest struct {
	Analysis *PortfolioAnalysis `json:"analysis" validate:"required"`
}
