package usecase

import (
	"context"

	"SmartTrade/internal/domain/models"
	"SmartTrade/internal/domain/repository"
	"SmartTrade/pkg/logger"
)

// TickCollector consumes the live market stream and keeps the last
// observed price per symbol fresh for metrics and dashboards. Losing
// the stream never affects analysis; bars are fetched on demand.
type TickCollector struct {
	stream  repository.MarketStream
	metrics repository.Metrics
	log     *logger.Logger
	symbols []string
}

func NewTickCollector(stream repository.MarketStream, metrics repository.Metrics, log *logger.Logger, symbols []string) *TickCollector {
	return &TickCollector{stream: stream, metrics: metrics, log: log, symbols: symbols}
}

// IsConnected returns true if the market stream is connected.
func (c *TickCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *TickCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx, c.symbols); err != nil {
		return err
	}
	ticks, errs := c.stream.Read(ctx)
	go c.consume(ctx, ticks, errs)
	return nil
}

func (c *TickCollector) consume(ctx context.Context, ticks <-chan models.Tick, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				c.metrics.RecordError("stream")
				c.log.Warn("market stream dropped, reconnecting", logger.Error(err))
				if rerr := c.stream.Reconnect(ctx); rerr != nil {
					c.log.Error("market stream reconnect failed", logger.Error(rerr))
					return
				}
				ticks, errs = c.stream.Read(ctx)
			}
		case t, ok := <-ticks:
			if !ok {
				// closed on disconnect; wait for the error branch
				ticks = nil
				continue
			}
			c.metrics.RecordLastPrice(t.Symbol, t.Price)
		}
	}
}

// Shutdown closes the stream.
func (c *TickCollector) Shutdown(ctx context.Context) error {
	return c.stream.Close()
}
