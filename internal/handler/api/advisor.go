package api

import (
	"net/http"
	"strings"
	"time"

	"SmartTrade/internal/domain/models"
	domrepo "SmartTrade/internal/domain/repository"
	"SmartTrade/internal/services/risk"
	"SmartTrade/internal/usecase"
	xhttp "SmartTrade/pkg/http"
	xlogger "SmartTrade/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AdvisorHandler exposes the analysis and trading endpoints.
type AdvisorHandler struct {
	logger    *xlogger.Logger
	analyzer  *usecase.PortfolioAnalyzer
	executor  *usecase.TradeExecutor
	accounts  domrepo.AccountProvider
	gate      *risk.Gate
	notifier  domrepo.Notifier
	collector *usecase.TickCollector

	watchlist []string
	settings  map[string]interface{}
}

func NewAdvisorHandler(
	logger *xlogger.Logger,
	analyzer *usecase.PortfolioAnalyzer,
	executor *usecase.TradeExecutor,
	accounts domrepo.AccountProvider,
	gate *risk.Gate,
	notifier domrepo.Notifier,
	collector *usecase.TickCollector,
	watchlist []string,
	settings map[string]interface{},
) *AdvisorHandler {
	return &AdvisorHandler{
		logger:    logger,
		analyzer:  analyzer,
		executor:  executor,
		accounts:  accounts,
		gate:      gate,
		notifier:  notifier,
		collector: collector,
		watchlist: watchlist,
		settings:  settings,
	}
}

func (h *AdvisorHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/health", h.Health)

	g := e.Group("/api")
	g.POST("/analyze", h.Analyze)
	g.GET("/analyze/:symbol", h.AnalyzeSymbol)
	g.GET("/account", h.Account)
	g.GET("/positions", h.Positions)
	g.POST("/execute-trade", h.ExecuteTrade)
	g.GET("/orders", h.Orders)
	g.DELETE("/orders/:id", h.CancelOrder)
	g.POST("/close-position/:symbol", h.ClosePosition)
	g.POST("/notify", h.Notify)
	g.GET("/config", h.Config)
}

// Analyze runs the full pipeline over the requested symbols, falling
// back to the configured watchlist when none are given.
func (h *AdvisorHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	symbols := req.Symbols
	if len(symbols) == 0 {
		symbols = h.watchlist
	}

	analysis, err := h.analyzer.Analyze(c.Request().Context(), symbols, req.LookbackDays)
	if err != nil {
		h.logger.Error("portfolio analysis failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, analysis)
}

// AnalyzeSymbol runs the pipeline for a single symbol. A symbol the
// data feed knows nothing about comes back as a 404, not a HOLD.
func (h *AdvisorHandler) AnalyzeSymbol(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol required")
	}

	decision, err := h.analyzer.AnalyzeSymbol(c.Request().Context(), symbol)
	if err != nil {
		h.logger.Error("symbol analysis failed",
			xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if decision.Err != "" {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no bar data for %s", symbol))
	}
	return xhttp.SuccessResponse(c, decision)
}

func (h *AdvisorHandler) Account(c echo.Context) error {
	ctx := c.Request().Context()
	account, err := h.accounts.GetAccount(ctx)
	if err != nil {
		h.logger.Error("account fetch failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	positions, err := h.accounts.GetPositions(ctx)
	if err != nil {
		h.logger.Error("positions fetch failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"account":      account,
		"risk_summary": h.gate.Summary(account, positions),
	})
}

func (h *AdvisorHandler) Positions(c echo.Context) error {
	positions, err := h.accounts.GetPositions(c.Request().Context())
	if err != nil {
		h.logger.Error("positions fetch failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, positions)
}

func (h *AdvisorHandler) ExecuteTrade(c echo.Context) error {
	req := &models.ExecuteTradeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	result, err := h.executor.Execute(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("trade execution failed",
			xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if !result.Executed {
		// Risk rejection is a client-visible outcome, not a server fault.
		return xhttp.DataResponse(c, http.StatusUnprocessableEntity, result)
	}
	return xhttp.SuccessResponse(c, result)
}

func (h *AdvisorHandler) Orders(c echo.Context) error {
	req := &models.OrdersRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	orders, err := h.executor.GetOrders(c.Request().Context(), req.Status)
	if err != nil {
		h.logger.Error("orders fetch failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, orders, int64(len(orders)))
}

func (h *AdvisorHandler) CancelOrder(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return xhttp.BadRequestResponse(c, "order id required")
	}
	if err := h.executor.CancelOrder(c.Request().Context(), orderID); err != nil {
		h.logger.Error("order cancel failed",
			xlogger.String("order_id", orderID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *AdvisorHandler) ClosePosition(c echo.Context) error {
	symbol := c.Param("symbol")
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol required")
	}
	req := &models.ClosePositionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	order, err := h.executor.ClosePosition(c.Request().Context(), symbol, req.Qty)
	if err != nil {
		h.logger.Error("position close failed",
			xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, order)
}

// Notify pushes an analysis report to the configured notifier.
func (h *AdvisorHandler) Notify(c echo.Context) error {
	req := &models.NotifyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.notifier == nil || !h.notifier.IsConfigured() {
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, "notifier not configured")
	}
	if err := h.notifier.SendAnalysisReport(c.Request().Context(), req.Analysis); err != nil {
		h.logger.Error("notification failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, "sent")
}

// Config returns the non-secret runtime settings.
func (h *AdvisorHandler) Config(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"watchlist": h.watchlist,
		"settings":  h.settings,
	})
}

// Health reports liveness plus the state of the market data stream,
// so a disconnected feed shows up in monitoring before it matters.
func (h *AdvisorHandler) Health(c echo.Context) error {
	stream := "disabled"
	if h.collector != nil {
		if h.collector.IsConnected() {
			stream = "connected"
		} else {
			stream = "disconnected"
		}
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status": "ok",
		"stream": stream,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
