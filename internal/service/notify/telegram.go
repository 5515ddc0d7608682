package notify

import (
	"context"
	"fmt"
	"time"

	"SmartTrade/internal/domain/models"
	pkghttp "SmartTrade/pkg/http"
	"SmartTrade/pkg/logger"

	"github.com/cenkalti/backoff/v4"
)

const (
	telegramAPIBase = "https://api.telegram.org"
	maxSendRetries  = 3
)

// Config holds Telegram bot credentials. Empty values disable the
// notifier; callers must check IsConfigured before relying on delivery.
type Config struct {
	BotToken string
	ChatID   string
	BaseURL  string
}

// Telegram delivers analysis reports, trade confirmations and alerts to
// a Telegram chat. Sends are retried with exponential backoff.
type Telegram struct {
	cfg  Config
	http *pkghttp.Client
	log  *logger.Logger
}

func NewTelegram(cfg Config, httpClient *pkghttp.Client, log *logger.Logger) *Telegram {
	if cfg.BaseURL == "" {
		cfg.BaseURL = telegramAPIBase
	}
	if httpClient == nil {
		httpClient = pkghttp.NewClient(pkghttp.WithTimeout(10 * time.Second))
	}
	return &Telegram{cfg: cfg, http: httpClient, log: log}
}

func (t *Telegram) IsConfigured() bool {
	return t.cfg.BotToken != "" && t.cfg.ChatID != ""
}

// SendAnalysisReport formats and delivers a portfolio analysis summary.
func (t *Telegram) SendAnalysisReport(ctx context.Context, analysis *models.PortfolioAnalysis) error {
	if analysis == nil {
		return fmt.Errorf("nil analysis")
	}
	return t.send(ctx, formatAnalysisReport(analysis))
}

// SendTradeNotification delivers an executed-trade confirmation.
func (t *Telegram) SendTradeNotification(ctx context.Context, trade models.TradeNotification) error {
	return t.send(ctx, formatTradeNotification(trade))
}

// SendAlert delivers a free-form alert with a severity prefix.
func (t *Telegram) SendAlert(ctx context.Context, message, alertType string) error {
	return t.send(ctx, formatAlert(message, alertType))
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) send(ctx context.Context, text string) error {
	if !t.IsConfigured() {
		return fmt.Errorf("telegram not configured")
	}

	operation := func() error {
		var resp sendMessageResponse
		err := t.http.SendAndParse(ctx, &pkghttp.RequestOptions{
			Method: pkghttp.MethodPost,
			URL:    fmt.Sprintf("%s/bot%s/sendMessage", t.cfg.BaseURL, t.cfg.BotToken),
			Body: sendMessageRequest{
				ChatID:    t.cfg.ChatID,
				Text:      text,
				ParseMode: "Markdown",
			},
		}, &resp)
		if err != nil {
			return err
		}
		if !resp.OK {
			return fmt.Errorf("telegram: %s", resp.Description)
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxSendRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		t.log.Error("telegram send failed", logger.Error(err))
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
