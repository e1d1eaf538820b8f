package snapshot

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cryptofolio/internal/clients"
	"cryptofolio/internal/entity"
)

const evmTable = "evm_balances"

type zerionAPI interface {
	WalletPositions(ctx context.Context, address string) ([]clients.ZerionPosition, error)
}

// EVMJob snapshots the aggregated DeFi positions of one EVM wallet.
type EVMJob struct {
	api     zerionAPI
	address string
	logger  *zap.Logger
	now     func() time.Time
}

func NewEVMJob(api zerionAPI, address string, logger *zap.Logger) *EVMJob {
	return &EVMJob{api: api, address: address, logger: logger, now: time.Now}
}

func (j *EVMJob) Name() string  { return "evm" }
func (j *EVMJob) Table() string { return evmTable }

func (j *EVMJob) Collect(ctx context.Context) ([]entity.BalanceRecord, error) {
	positions, err := j.api.WalletPositions(ctx, j.address)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch positions for %s", j.address)
	}

	date := entity.Day(j.now())
	records := make([]entity.BalanceRecord, 0, len(positions))
	for _, p := range positions {
		attrs := p.Attributes
		amount, err := decimal.NewFromString(attrs.Quantity.Numeric)
		if err != nil {
			j.logger.Warn("drop position with malformed quantity",
				zap.String("symbol", attrs.FungibleInfo.Symbol),
				zap.String("quantity", attrs.Quantity.Numeric), zap.Error(err))
			continue
		}

		positionType := entity.PositionType(attrs.PositionType)
		if positionType == entity.PositionLoan {
			amount = amount.Abs().Neg()
		}

		var protocol string
		if attrs.Protocol != nil {
			protocol = *attrs.Protocol
		}

		records = append(records, entity.BalanceRecord{
			Date:         date,
			Symbol:       attrs.FungibleInfo.Symbol,
			Platform:     p.Relationships.Chain.Data.ID,
			Amount:       amount,
			PositionType: positionType,
			Protocol:     protocol,
			Address:      j.address,
		})
	}
	return records, nil
}
