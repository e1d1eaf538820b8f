package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cryptofolio/internal/clients"
	"cryptofolio/internal/entity"
)

type fakeZerionAPI struct {
	positions []clients.ZerionPosition
	err       error
}

func (f *fakeZerionAPI) WalletPositions(ctx context.Context, address string) ([]clients.ZerionPosition, error) {
	return f.positions, f.err
}

func zerionPosition(chain, symbol, quantity, positionType string, protocol *string) clients.ZerionPosition {
	var p clients.ZerionPosition
	p.Attributes.Protocol = protocol
	p.Attributes.PositionType = positionType
	p.Attributes.Quantity.Numeric = quantity
	p.Attributes.FungibleInfo.Symbol = symbol
	p.Relationships.Chain.Data.ID = chain
	return p
}

func TestEVMCollect(t *testing.T) {
	aave := "Aave"
	api := &fakeZerionAPI{positions: []clients.ZerionPosition{
		zerionPosition("arbitrum", "ETH", "1.25", "wallet", nil),
		zerionPosition("optimism", "USDC", "300", "loan", &aave),
		zerionPosition("ethereum", "wstETH", "2", "staked", nil),
		zerionPosition("base", "AERO", "abc", "wallet", nil), // malformed, dropped
	}}

	job := &EVMJob{
		api:     api,
		address: "0xabc",
		logger:  zap.NewNop(),
		now: func() time.Time {
			return time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
		},
	}

	records, err := job.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "arbitrum", records[0].Platform)
	assert.Equal(t, entity.PositionWallet, records[0].PositionType)
	assert.Empty(t, records[0].Protocol)

	// loans are carried as negative quantities
	assert.Equal(t, entity.PositionLoan, records[1].PositionType)
	assert.True(t, records[1].Amount.Equal(decimal.NewFromInt(-300)))
	assert.Equal(t, "Aave", records[1].Protocol)

	assert.Equal(t, entity.PositionStaked, records[2].PositionType)
	assert.True(t, records[2].Amount.Equal(decimal.NewFromInt(2)))

	for _, r := range records {
		assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), r.Date)
		assert.Equal(t, "0xabc", r.Address)
	}
}

func TestEVMCollectFetchFailureIsFatal(t *testing.T) {
	api := &fakeZerionAPI{err: clients.ErrSourceUnavailable}
	job := &EVMJob{api: api, address: "0xabc", logger: zap.NewNop(), now: time.Now}

	_, err := job.Collect(context.Background())
	require.Error(t, err)
}
