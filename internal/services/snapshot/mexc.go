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

const mexcTable = "mexc_balances"

type mexcAPI interface {
	AccountBalances(ctx context.Context) ([]clients.MexcBalance, error)
}

// MexcJob snapshots the spot account of a MEXC user.
type MexcJob struct {
	api    mexcAPI
	logger *zap.Logger
	now    func() time.Time
}

func NewMexcJob(api mexcAPI, logger *zap.Logger) *MexcJob {
	return &MexcJob{api: api, logger: logger, now: time.Now}
}

func (j *MexcJob) Name() string  { return "mexc" }
func (j *MexcJob) Table() string { return mexcTable }

func (j *MexcJob) Collect(ctx context.Context) ([]entity.BalanceRecord, error) {
	balances, err := j.api.AccountBalances(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch mexc account")
	}

	date := entity.Day(j.now())
	records := make([]entity.BalanceRecord, 0, len(balances))
	for _, b := range balances {
		amount, err := decimal.NewFromString(b.Free)
		if err != nil {
			j.logger.Warn("drop balance with malformed amount",
				zap.String("asset", b.Asset), zap.String("free", b.Free), zap.Error(err))
			continue
		}
		if !amount.IsPositive() {
			continue
		}
		records = append(records, entity.BalanceRecord{
			Date:         date,
			Symbol:       b.Asset,
			Platform:     "MEXC",
			Amount:       amount,
			PositionType: entity.PositionWallet,
		})
	}
	return records, nil
}
