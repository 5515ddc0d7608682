package alpaca

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"SmartTrade/internal/domain/models"
	"SmartTrade/internal/service/ratelimit"
	pkghttp "SmartTrade/pkg/http"
	"SmartTrade/pkg/logger"
	"SmartTrade/pkg/util"
)

const (
	// Alpaca allows 200 requests/minute per key on the free tier.
	rateCapacity  = 200
	ratePerSecond = 200.0 / 60.0
)

// Config holds Alpaca connection settings. BaseURL is the trading API
// (paper or live), DataURL the market data API.
type Config struct {
	APIKey    string
	APISecret string
	BaseURL   string
	DataURL   string
}

// Client talks to the Alpaca trading and market data REST APIs. It
// implements the BarProvider, AccountProvider, QuoteProvider and
// OrderExecutor contracts.
type Client struct {
	cfg     Config
	http    *pkghttp.Client
	limiter *ratelimit.Limiter
	log     *logger.Logger
}

func NewClient(cfg Config, httpClient *pkghttp.Client, limiter *ratelimit.Limiter, log *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = pkghttp.NewClient(pkghttp.WithTimeout(15 * time.Second))
	}
	if limiter == nil {
		limiter = ratelimit.New()
	}
	return &Client{cfg: cfg, http: httpClient, limiter: limiter, log: log}
}

// GetAccount fetches the trading account snapshot.
func (c *Client) GetAccount(ctx context.Context) (models.Account, error) {
	var dto accountDTO
	if err := c.get(ctx, c.cfg.BaseURL+"/v2/account", nil, &dto); err != nil {
		return models.Account{}, fmt.Errorf("alpaca account: %w", err)
	}
	return dto.toDomain(), nil
}

// GetPositions lists all open positions.
func (c *Client) GetPositions(ctx context.Context) ([]models.Position, error) {
	var dtos []positionDTO
	if err := c.get(ctx, c.cfg.BaseURL+"/v2/positions", nil, &dtos); err != nil {
		return nil, fmt.Errorf("alpaca positions: %w", err)
	}
	positions := make([]models.Position, 0, len(dtos))
	for _, d := range dtos {
		positions = append(positions, d.toDomain())
	}
	return positions, nil
}

// GetBars fetches daily bars for all symbols in one call, following
// pagination until every page is consumed. Symbols with no data simply
// have no entry in the result.
func (c *Client) GetBars(ctx context.Context, symbols []string, lookbackDays int) (map[string]models.BarSeries, error) {
	if lookbackDays <= 0 {
		lookbackDays = 120
	}
	start := time.Now().UTC().AddDate(0, 0, -lookbackDays)

	result := make(map[string]models.BarSeries, len(symbols))
	params := map[string][]string{
		"symbols":    {joinSymbols(symbols)},
		"timeframe":  {"1Day"},
		"start":      {start.Format(time.RFC3339)},
		"limit":      {"10000"},
		"adjustment": {"split"},
	}

	for {
		var page barsResponseDTO
		if err := c.get(ctx, c.cfg.DataURL+"/v2/stocks/bars", params, &page); err != nil {
			return nil, fmt.Errorf("alpaca bars: %w", err)
		}
		for symbol, bars := range page.Bars {
			for _, b := range bars {
				ts, ok := util.ParseTime(b.Timestamp)
				if !ok {
					return nil, fmt.Errorf("alpaca bars: bad timestamp %q", b.Timestamp)
				}
				result[symbol] = append(result[symbol], models.Bar{
					Timestamp: ts,
					Open:      b.Open,
					High:      b.High,
					Low:       b.Low,
					Close:     b.Close,
					Volume:    b.Volume,
				})
			}
		}
		if page.NextPageToken == nil || *page.NextPageToken == "" {
			break
		}
		params["page_token"] = []string{*page.NextPageToken}
	}

	return result, nil
}

// GetLatestQuotes fetches the latest NBBO quote per symbol.
func (c *Client) GetLatestQuotes(ctx context.Context, symbols []string) (map[string]models.Quote, error) {
	var dto quotesResponseDTO
	params := map[string][]string{"symbols": {joinSymbols(symbols)}}
	if err := c.get(ctx, c.cfg.DataURL+"/v2/stocks/quotes/latest", params, &dto); err != nil {
		return nil, fmt.Errorf("alpaca quotes: %w", err)
	}
	quotes := make(map[string]models.Quote, len(dto.Quotes))
	for symbol, q := range dto.Quotes {
		quotes[symbol] = models.Quote{
			BidPrice:  q.BidPrice,
			BidSize:   q.BidSize,
			AskPrice:  q.AskPrice,
			AskSize:   q.AskSize,
			Timestamp: q.Timestamp,
		}
	}
	return quotes, nil
}

// PlaceMarketOrder submits a day market order.
func (c *Client) PlaceMarketOrder(ctx context.Context, symbol string, qty float64, side string) (models.Order, error) {
	return c.placeOrder(ctx, orderRequestDTO{
		Symbol:      symbol,
		Qty:         formatQty(qty),
		Side:        side,
		Type:        "market",
		TimeInForce: "day",
	})
}

// PlaceLimitOrder submits a day limit order.
func (c *Client) PlaceLimitOrder(ctx context.Context, symbol string, qty float64, side string, limitPrice float64) (models.Order, error) {
	return c.placeOrder(ctx, orderRequestDTO{
		Symbol:      symbol,
		Qty:         formatQty(qty),
		Side:        side,
		Type:        "limit",
		TimeInForce: "day",
		LimitPrice:  strconv.FormatFloat(limitPrice, 'f', 2, 64),
	})
}

func (c *Client) placeOrder(ctx context.Context, req orderRequestDTO) (models.Order, error) {
	if err := c.throttle(ctx); err != nil {
		return models.Order{}, err
	}
	var dto orderDTO
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:  pkghttp.MethodPost,
		URL:     c.cfg.BaseURL + "/v2/orders",
		Headers: c.authHeaders(),
		Body:    req,
	}, &dto)
	if err != nil {
		return models.Order{}, fmt.Errorf("alpaca place order: %w", err)
	}
	c.log.Info("alpaca order accepted",
		logger.String("symbol", req.Symbol),
		logger.String("side", req.Side),
		logger.String("order_id", dto.ID))
	return dto.toDomain(), nil
}

// GetOrders lists orders by status (open, closed, all).
func (c *Client) GetOrders(ctx context.Context, status string) ([]models.Order, error) {
	if status == "" {
		status = "all"
	}
	var dtos []orderDTO
	params := map[string][]string{"status": {status}, "limit": {"100"}}
	if err := c.get(ctx, c.cfg.BaseURL+"/v2/orders", params, &dtos); err != nil {
		return nil, fmt.Errorf("alpaca orders: %w", err)
	}
	orders := make([]models.Order, 0, len(dtos))
	for _, d := range dtos {
		orders = append(orders, d.toDomain())
	}
	return orders, nil
}

// CancelOrder cancels an open order by id.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	if err := c.throttle(ctx); err != nil {
		return err
	}
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:  pkghttp.MethodDelete,
		URL:     c.cfg.BaseURL + "/v2/orders/" + orderID,
		Headers: c.authHeaders(),
	}, nil)
	if err != nil {
		return fmt.Errorf("alpaca cancel order: %w", err)
	}
	return nil
}

// ClosePosition liquidates a position. qty <= 0 closes it entirely.
func (c *Client) ClosePosition(ctx context.Context, symbol string, qty float64) (models.Order, error) {
	if err := c.throttle(ctx); err != nil {
		return models.Order{}, err
	}
	opts := &pkghttp.RequestOptions{
		Method:  pkghttp.MethodDelete,
		URL:     c.cfg.BaseURL + "/v2/positions/" + symbol,
		Headers: c.authHeaders(),
	}
	if qty > 0 {
		opts.QueryParams = map[string][]string{"qty": {formatQty(qty)}}
	}
	var dto orderDTO
	if err := c.http.SendAndParse(ctx, opts, &dto); err != nil {
		return models.Order{}, fmt.Errorf("alpaca close position: %w", err)
	}
	return dto.toDomain(), nil
}

func (c *Client) get(ctx context.Context, url string, params map[string][]string, dest interface{}) error {
	if err := c.throttle(ctx); err != nil {
		return err
	}
	return c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         url,
		Headers:     c.authHeaders(),
		QueryParams: params,
	}, dest)
}

// throttle blocks until the shared token bucket admits one request.
func (c *Client) throttle(ctx context.Context) error {
	for !c.limiter.Allow("alpaca", rateCapacity, ratePerSecond) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return nil
}

func (c *Client) authHeaders() map[string]string {
	return map[string]string{
		"APCA-API-KEY-ID":     c.cfg.APIKey,
		"APCA-API-SECRET-KEY": c.cfg.APISecret,
	}
}

func joinSymbols(symbols []string) string {
	return strings.Join(symbols, ",")
}

func formatQty(qty float64) string {
	return strconv.FormatFloat(qty, 'f', -1, 64)
}
