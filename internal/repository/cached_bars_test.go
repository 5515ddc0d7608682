package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SmartTrade/internal/domain/models"
	"SmartTrade/pkg/cache"
	"SmartTrade/pkg/logger"
)

type fakeBarSource struct {
	bars  map[string]models.BarSeries
	err   error
	calls [][]string
}

func (f *fakeBarSource) GetBars(_ context.Context, symbols []string, _ int) (map[string]models.BarSeries, error) {
	f.calls = append(f.calls, symbols)
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]models.BarSeries, len(symbols))
	for _, s := range symbols {
		if series, ok := f.bars[s]; ok {
			out[s] = series
		}
	}
	return out, nil
}

func barsFor(symbol string, closes ...float64) models.BarSeries {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	series := make(models.BarSeries, len(closes))
	for i, c := range closes {
		series[i] = models.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return series
}

func cacheTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func TestCachedBarProviderServesSecondCallFromCache(t *testing.T) {
	src := &fakeBarSource{bars: map[string]models.BarSeries{
		"AAPL": barsFor("AAPL", 150, 151, 152),
	}}
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })

	p := NewCachedBarProvider(src, mc, time.Minute, cacheTestLogger(t))
	ctx := context.Background()

	first, err := p.GetBars(ctx, []string{"AAPL"}, 120)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := p.GetBars(ctx, []string{"AAPL"}, 120)
	require.NoError(t, err)
	assert.Equal(t, first["AAPL"], second["AAPL"])
	assert.Len(t, src.calls, 1, "second call should not hit the source")
}

func TestCachedBarProviderFetchesOnlyMissingSymbols(t *testing.T) {
	src := &fakeBarSource{bars: map[string]models.BarSeries{
		"AAPL": barsFor("AAPL", 150, 151),
		"MSFT": barsFor("MSFT", 400, 401),
	}}
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })

	p := NewCachedBarProvider(src, mc, time.Minute, cacheTestLogger(t))
	ctx := context.Background()

	_, err := p.GetBars(ctx, []string{"AAPL"}, 120)
	require.NoError(t, err)

	result, err := p.GetBars(ctx, []string{"AAPL", "MSFT"}, 120)
	require.NoError(t, err)
	require.Len(t, result, 2)

	require.Len(t, src.calls, 2)
	assert.Equal(t, []string{"MSFT"}, src.calls[1])
}

func TestCachedBarProviderKeysIncludeLookback(t *testing.T) {
	src := &fakeBarSource{bars: map[string]models.BarSeries{
		"AAPL": barsFor("AAPL", 150, 151),
	}}
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })

	p := NewCachedBarProvider(src, mc, time.Minute, cacheTestLogger(t))
	ctx := context.Background()

	_, err := p.GetBars(ctx, []string{"AAPL"}, 120)
	require.NoError(t, err)
	_, err = p.GetBars(ctx, []string{"AAPL"}, 250)
	require.NoError(t, err)

	assert.Len(t, src.calls, 2, "different lookbacks must not share cache entries")
}

func TestCachedBarProviderPropagatesFetchError(t *testing.T) {
	src := &fakeBarSource{err: errors.New("upstream down")}
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })

	p := NewCachedBarProvider(src, mc, time.Minute, cacheTestLogger(t))

	_, err := p.GetBars(context.Background(), []string{"AAPL"}, 120)
	assert.Error(t, err)
}
