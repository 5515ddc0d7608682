package models

// Order is a broker order acknowledgement.
type Order struct {
	ID             string  `json:"id"`
	ClientOrderID  string  `json:"client_order_id,omitempty"`
	Symbol         string  `json:"symbol"`
	Qty            float64 `json:"qty"`
	Side           string  `json:"side"`
	Type           string  `json:"type"`
	LimitPrice     float64 `json:"limit_price,omitempty"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"created_at,omitempty"`
	FilledAvgPrice float64 `json:"filled_avg_price,omitempty"`
	FilledQty      float64 `json:"filled_qty,omitempty"`
}

// TradeNotification carries the details of an executed trade to the
// notification collaborator.
type TradeNotification struct {
	Symbol string  `json:"symbol"`
	Action string  `json:"action"`
	Qty    float64 `json:"qty"`
	Price  float64 `json:"price"`
	Status string  `json:"status"`
}
