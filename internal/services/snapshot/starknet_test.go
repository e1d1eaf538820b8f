package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cryptofolio/internal/clients"
	"cryptofolio/internal/entity"
)

type fakeScraper struct {
	tokens map[string][]clients.ScrapedToken
	errs   map[string]error
	calls  []string
}

func (f *fakeScraper) WalletTokens(ctx context.Context, address string) ([]clients.ScrapedToken, error) {
	f.calls = append(f.calls, address)
	if err := f.errs[address]; err != nil {
		return nil, err
	}
	return f.tokens[address], nil
}

func newStarknetJob(scraper tokenScraper, wallets ...string) *StarknetJob {
	return &StarknetJob{
		scraper: scraper,
		wallets: wallets,
		logger:  zap.NewNop(),
		now: func() time.Time {
			return time.Date(2025, 6, 3, 9, 15, 0, 0, time.UTC)
		},
	}
}

func TestStarknetCollect(t *testing.T) {
	scraper := &fakeScraper{tokens: map[string][]clients.ScrapedToken{
		"0xargent": {
			{Symbol: "STRK", Amount: "1,234.56"},
			{Symbol: "xSTRK", Amount: "10"},
			{Symbol: "ezETH", Amount: "2.5"},
			{Symbol: "", Amount: "42"},         // missing symbol node, skipped
			{Symbol: "USDC", Amount: ""},       // missing amount node, skipped
			{Symbol: "DAI", Amount: "1.2.3"},   // malformed, skipped
		},
		"0xbraavos": {
			{Symbol: "ETH", Amount: "0.8"},
		},
	}}

	job := newStarknetJob(scraper, "0xargent", "0xbraavos")
	records, err := job.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{"0xargent", "0xbraavos"}, scraper.calls)

	// thousands separators are stripped before parsing
	assert.True(t, records[0].Amount.Equal(decimal.NewFromFloat(1234.56)))
	assert.Equal(t, entity.PositionWallet, records[0].PositionType)

	assert.Equal(t, entity.PositionStaked, records[1].PositionType)
	assert.Equal(t, entity.PositionDeposit, records[2].PositionType)

	assert.Equal(t, "0xbraavos", records[3].Address)
	assert.Equal(t, entity.PositionWallet, records[3].PositionType)

	for _, r := range records {
		assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), r.Date)
		assert.Equal(t, "starknet", r.Platform)
		assert.Empty(t, r.Protocol)
	}
}

func TestStarknetCollectScrapeFailureIsFatal(t *testing.T) {
	scraper := &fakeScraper{
		tokens: map[string][]clients.ScrapedToken{"0xargent": {{Symbol: "ETH", Amount: "1"}}},
		errs:   map[string]error{"0xbraavos": errors.Wrap(clients.ErrSourceUnavailable, "timeout")},
	}

	job := newStarknetJob(scraper, "0xargent", "0xbraavos")
	records, err := job.Collect(context.Background())
	require.Error(t, err)
	assert.Nil(t, records)
	assert.Contains(t, err.Error(), "0xbraavos")
}

func TestDatavizRecords(t *testing.T) {
	raw := []entity.BalanceRecord{
		{Symbol: "ezETH", Amount: decimal.NewFromInt(2), PositionType: entity.PositionDeposit},
		{Symbol: "xSTRK", Amount: decimal.NewFromInt(10), PositionType: entity.PositionStaked},
		{Symbol: "USDC", Amount: decimal.NewFromInt(50), PositionType: entity.PositionWallet},
	}

	dataviz := DatavizRecords(raw)
	require.Len(t, dataviz, 3)
	assert.Equal(t, "ETH", dataviz[0].Symbol)
	assert.Equal(t, "STRK", dataviz[1].Symbol)
	assert.Equal(t, "USDC", dataviz[2].Symbol)

	// the raw rows keep their full symbols
	assert.Equal(t, "ezETH", raw[0].Symbol)
	// everything but the symbol is carried over
	assert.Equal(t, entity.PositionDeposit, dataviz[0].PositionType)
	assert.True(t, dataviz[1].Amount.Equal(decimal.NewFromInt(10)))
}
