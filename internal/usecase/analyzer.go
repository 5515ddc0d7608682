package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SmartTrade/internal/domain/models"
	"SmartTrade/internal/domain/repository"
	"SmartTrade/internal/services/fusion"
	"SmartTrade/internal/services/regime"
	"SmartTrade/internal/services/risk"
	"SmartTrade/internal/services/walkforward"
	"SmartTrade/pkg/logger"
)

// PortfolioAnalyzer runs the full analysis pipeline over a set of
// symbols: bars -> regime + walk-forward -> risk gate -> fused decision.
type PortfolioAnalyzer struct {
	bars      repository.BarProvider
	accounts  repository.AccountProvider
	regime    *regime.Classifier
	optimizer *walkforward.Optimizer
	gate      *risk.Gate
	fusion    *fusion.Engine
	publisher repository.DecisionPublisher
	metrics   repository.Metrics
	log       *logger.Logger

	lookbackDays int
	maxWorkers   int
	timeout      time.Duration
}

type AnalyzerOption func(*PortfolioAnalyzer)

func WithLookbackDays(days int) AnalyzerOption {
	return func(a *PortfolioAnalyzer) {
		if days > 0 {
			a.lookbackDays = days
		}
	}
}

func WithMaxWorkers(n int) AnalyzerOption {
	return func(a *PortfolioAnalyzer) {
		if n > 0 {
			a.maxWorkers = n
		}
	}
}

func WithAnalysisTimeout(d time.Duration) AnalyzerOption {
	return func(a *PortfolioAnalyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithDecisionPublisher streams finished decisions to a downstream
// consumer. Publishing is best effort and never fails the analysis.
func WithDecisionPublisher(pub repository.DecisionPublisher) AnalyzerOption {
	return func(a *PortfolioAnalyzer) { a.publisher = pub }
}

func NewPortfolioAnalyzer(
	bars repository.BarProvider,
	accounts repository.AccountProvider,
	regimeClassifier *regime.Classifier,
	optimizer *walkforward.Optimizer,
	gate *risk.Gate,
	fusionEngine *fusion.Engine,
	metrics repository.Metrics,
	log *logger.Logger,
	opts ...AnalyzerOption,
) *PortfolioAnalyzer {
	a := &PortfolioAnalyzer{
		bars:         bars,
		accounts:     accounts,
		regime:       regimeClassifier,
		optimizer:    optimizer,
		gate:         gate,
		fusion:       fusionEngine,
		metrics:      metrics,
		log:          log,
		lookbackDays: 120,
		maxWorkers:   8,
		timeout:      60 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze evaluates every symbol concurrently and aggregates the
// decisions into a portfolio view. The account snapshot is fetched once
// and shared across workers; a failure per symbol degrades that symbol
// to an error HOLD instead of failing the whole run. A non-positive
// lookbackDays falls back to the configured window.
func (a *PortfolioAnalyzer) Analyze(ctx context.Context, symbols []string, lookbackDays int) (*models.PortfolioAnalysis, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols to analyze")
	}
	if lookbackDays <= 0 {
		lookbackDays = a.lookbackDays
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()

	account, err := a.accounts.GetAccount(ctx)
	if err != nil {
		a.metrics.RecordError("account_fetch")
		return nil, fmt.Errorf("fetch account: %w", err)
	}
	positions, err := a.accounts.GetPositions(ctx)
	if err != nil {
		a.metrics.RecordError("positions_fetch")
		return nil, fmt.Errorf("fetch positions: %w", err)
	}

	series, err := a.bars.GetBars(ctx, symbols, lookbackDays)
	if err != nil {
		a.metrics.RecordError("bars_fetch")
		return nil, fmt.Errorf("fetch bars: %w", err)
	}

	decisions := make([]models.Decision, len(symbols))
	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := a.maxWorkers
	if workers > len(symbols) {
		workers = len(symbols)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				decisions[i] = a.analyzeSymbolSafe(symbols[i], series[symbols[i]], account, positions)
			}
		}()
	}
	for i := range symbols {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, d := range decisions {
		a.metrics.RecordDecision(d.Symbol, string(d.Action))
	}
	a.metrics.RecordAnalysisDuration(time.Since(start).Seconds())

	analysis := a.fusion.Aggregate(decisions, a.gate.Summary(account, positions))

	if a.publisher != nil {
		if err := a.publisher.PublishDecisions(ctx, analysis.AllRecommendations); err != nil {
			a.metrics.RecordError("publish_decisions")
			a.log.Warn("failed to publish decisions", logger.Error(err))
		}
	}

	a.log.Info("portfolio analysis complete",
		logger.Int("symbols", len(symbols)),
		logger.Int("buy", analysis.Summary.BuySignals),
		logger.Int("sell", analysis.Summary.SellSignals),
		logger.Int("hold", analysis.Summary.HoldSignals),
		logger.Duration("elapsed", time.Since(start)))

	return &analysis, nil
}

// AnalyzeSymbol runs the pipeline for a single symbol.
func (a *PortfolioAnalyzer) AnalyzeSymbol(ctx context.Context, symbol string) (models.Decision, error) {
	analysis, err := a.Analyze(ctx, []string{symbol}, 0)
	if err != nil {
		return models.Decision{}, err
	}
	return analysis.AllRecommendations[0], nil
}

// analyzeSymbolSafe isolates per-symbol panics so one bad series cannot
// take down the whole portfolio run.
func (a *PortfolioAnalyzer) analyzeSymbolSafe(
	symbol string,
	bars models.BarSeries,
	account models.Account,
	positions []models.Position,
) (decision models.Decision) {
	defer func() {
		if r := recover(); r != nil {
			a.metrics.RecordError("symbol_panic")
			a.log.Error("symbol analysis panicked",
				logger.String("symbol", symbol),
				logger.Any("panic", r))
			decision = errorDecision(symbol, fmt.Sprintf("analysis panicked: %v", r))
		}
	}()
	return a.analyzeSymbol(symbol, bars, account, positions)
}

func (a *PortfolioAnalyzer) analyzeSymbol(
	symbol string,
	bars models.BarSeries,
	account models.Account,
	positions []models.Position,
) models.Decision {
	if len(bars) == 0 {
		return errorDecision(symbol, "no market data available")
	}

	regimeResult := a.regime.Analyze(bars)
	optimization := a.optimizer.Optimize(bars)

	position := models.FindPosition(positions, symbol)
	price := bars.LastClose()
	if position != nil {
		price = position.CurrentPrice
	}
	a.metrics.RecordLastPrice(symbol, price)

	evaluation := a.gate.EvaluateTrade(symbol, optimization.Recommendation, account, positions, price)

	return a.fusion.Decide(symbol, regimeResult, optimization, evaluation, position)
}

// errorDecision is the degraded HOLD emitted when a symbol cannot be
// analyzed. It carries the failure in Err so callers can surface it.
func errorDecision(symbol, reason string) models.Decision {
	return models.Decision{
		Symbol:     symbol,
		Action:     models.ActionHold,
		Confidence: 0,
		Regime:     models.RegimeSignal{Regime: models.RegimeError},
		Reasoning:  []string{fmt.Sprintf("✗ Analysis failed: %s", reason)},
		Err:        reason,
	}
}
