package snapshot

import (
	"testing"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cryptofolio/internal/entity"
)

func TestBinanceMapBalances(t *testing.T) {
	job := &BinanceJob{logger: zap.NewNop()}
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	records := job.mapBalances(date, []binance.Balance{
		{Asset: "BTC", Free: "0.5", Locked: "0"},
		{Asset: "LDUSDT", Free: "120.75", Locked: "0"},
		{Asset: "ETH", Free: "0", Locked: "0"},       // not held, dropped
		{Asset: "DOGE", Free: "oops", Locked: "0"},   // malformed, dropped
		{Asset: "SOL", Free: "-1", Locked: "0"},      // dropped
	})

	require.Len(t, records, 2)

	assert.Equal(t, "BTC", records[0].Symbol)
	assert.True(t, records[0].Amount.Equal(decimal.NewFromFloat(0.5)))

	// Earn wrapper prefix is stripped
	assert.Equal(t, "USDT", records[1].Symbol)
	assert.True(t, records[1].Amount.Equal(decimal.NewFromFloat(120.75)))

	for _, r := range records {
		assert.Equal(t, date, r.Date)
		assert.Equal(t, "Binance", r.Platform)
		assert.Equal(t, entity.PositionWallet, r.PositionType)
		assert.Empty(t, r.Protocol)
		assert.Empty(t, r.Address)
	}
}
