// Package snapshot holds the balance-path jobs: each job fetches one venue's
// currently held positions and maps them onto the canonical balance row.
package snapshot

import (
	"context"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cryptofolio/internal/entity"
)

const binanceTable = "binance_balances"

// BinanceJob snapshots the spot account of a Binance user.
type BinanceJob struct {
	client *binance.Client
	logger *zap.Logger
	now    func() time.Time
}

func NewBinanceJob(client *binance.Client, logger *zap.Logger) *BinanceJob {
	return &BinanceJob{client: client, logger: logger, now: time.Now}
}

func (j *BinanceJob) Name() string  { return "binance" }
func (j *BinanceJob) Table() string { return binanceTable }

// Collect fetches the account in one call and maps it in full; a fetch
// failure aborts the job so no partial balance table is written.
func (j *BinanceJob) Collect(ctx context.Context) ([]entity.BalanceRecord, error) {
	account, err := j.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch binance account")
	}
	return j.mapBalances(entity.Day(j.now()), account.Balances), nil
}

// mapBalances keeps the free amounts of assets actually held. The account
// endpoint reports every listed asset, so zero rows are dropped here.
func (j *BinanceJob) mapBalances(date time.Time, balances []binance.Balance) []entity.BalanceRecord {
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
			Symbol:       entity.StripEarnPrefix(b.Asset),
			Platform:     "Binance",
			Amount:       amount,
			PositionType: entity.PositionWallet,
		})
	}
	return records
}
