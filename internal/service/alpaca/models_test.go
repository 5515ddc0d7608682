package alpaca

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumUnmarshal(t *testing.T) {
	var payload struct {
		Quoted Num `json:"quoted"`
		Plain  Num `json:"plain"`
		Empty  Num `json:"empty"`
		Null   Num `json:"null"`
	}

	raw := `{"quoted": "100000.25", "plain": 42.5, "empty": "", "null": null}`
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	assert.InDelta(t, 100000.25, float64(payload.Quoted), 1e-9)
	assert.InDelta(t, 42.5, float64(payload.Plain), 1e-9)
	assert.Zero(t, float64(payload.Empty))
	assert.Zero(t, float64(payload.Null))

	var bad Num
	assert.Error(t, json.Unmarshal([]byte(`"not-a-number"`), &bad))
}

func TestAccountDTOToDomain(t *testing.T) {
	raw := `{
		"account_number": "PA123",
		"cash": "25000.50",
		"buying_power": "50000",
		"equity": "30000",
		"daytrade_count": 2,
		"trading_blocked": false,
		"status": "ACTIVE"
	}`
	var dto accountDTO
	require.NoError(t, json.Unmarshal([]byte(raw), &dto))

	account := dto.toDomain()

	assert.Equal(t, "PA123", account.AccountNumber)
	assert.InDelta(t, 25000.50, account.Cash, 1e-9)
	assert.InDelta(t, 50000.0, account.BuyingPower, 1e-9)
	assert.Equal(t, 2, account.DaytradeCount)
	assert.False(t, account.TradingBlocked)
}

func TestPositionDTOToDomain(t *testing.T) {
	raw := `{
		"symbol": "AAPL",
		"qty": "10",
		"current_price": "155.25",
		"market_value": "1552.50",
		"unrealized_plpc": "0.1034"
	}`
	var dto positionDTO
	require.NoError(t, json.Unmarshal([]byte(raw), &dto))

	position := dto.toDomain()

	assert.Equal(t, "AAPL", position.Symbol)
	assert.InDelta(t, 10.0, position.Qty, 1e-9)
	assert.InDelta(t, 0.1034, position.UnrealizedPLPC, 1e-9)
}

func TestBarsResponseParsing(t *testing.T) {
	raw := `{
		"bars": {"AAPL": [{"t": "2025-06-02T04:00:00Z", "o": 100, "h": 102, "l": 99, "c": 101, "v": 12345}]},
		"next_page_token": null
	}`
	var resp barsResponseDTO
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))

	require.Len(t, resp.Bars["AAPL"], 1)
	bar := resp.Bars["AAPL"][0]
	assert.InDelta(t, 101.0, bar.Close, 1e-9)
	assert.Equal(t, int64(12345), bar.Volume)
	assert.Nil(t, resp.NextPageToken)
}
