// Package pipeline wires collected record batches to the store. Jobs run one
// at a time, top to bottom; a job either reaches the loader or fails the run.
package pipeline

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"cryptofolio/internal/entity"
	"cryptofolio/internal/services/snapshot"
)

type balanceJob interface {
	Name() string
	Table() string
	Collect(ctx context.Context) ([]entity.BalanceRecord, error)
}

type priceJob interface {
	Name() string
	Table() string
	Collect(ctx context.Context) ([]entity.PriceRecord, error)
}

type store interface {
	AppendBalances(ctx context.Context, table string, records []entity.BalanceRecord) error
	AppendPrices(ctx context.Context, table string, records []entity.PriceRecord) error
}

type Pipeline struct {
	store  store
	logger *zap.Logger
}

func New(store store, logger *zap.Logger) *Pipeline {
	return &Pipeline{store: store, logger: logger}
}

// RunBalanceJob collects one venue's snapshot and appends it to the venue's
// table. Any error is fatal for the run.
func (p *Pipeline) RunBalanceJob(ctx context.Context, job balanceJob) error {
	logger := p.logger.With(zap.String("job", job.Name()))
	logger.Info("collecting balances")

	records, err := job.Collect(ctx)
	if err != nil {
		return errors.Wrapf(err, "collect %s balances", job.Name())
	}
	if err := p.store.AppendBalances(ctx, job.Table(), records); err != nil {
		return errors.Wrapf(err, "load %s balances", job.Name())
	}

	logger.Info("balances loaded", zap.String("table", job.Table()), zap.Int("rows", len(records)))
	return nil
}

// RunStarknetJob loads the scraped snapshot twice: the raw rows and the
// dataviz variant with derivative tickers folded onto their base asset.
func (p *Pipeline) RunStarknetJob(ctx context.Context, job *snapshot.StarknetJob) error {
	logger := p.logger.With(zap.String("job", job.Name()))
	logger.Info("collecting balances")

	records, err := job.Collect(ctx)
	if err != nil {
		return errors.Wrap(err, "collect starknet balances")
	}
	if err := p.store.AppendBalances(ctx, job.Table(), records); err != nil {
		return errors.Wrap(err, "load starknet balances")
	}
	if err := p.store.AppendBalances(ctx, job.DatavizTable(), snapshot.DatavizRecords(records)); err != nil {
		return errors.Wrap(err, "load starknet dataviz balances")
	}

	logger.Info("balances loaded", zap.String("table", job.Table()), zap.Int("rows", len(records)))
	return nil
}

// RunPriceJob collects the tracked assets' daily prices and appends them.
func (p *Pipeline) RunPriceJob(ctx context.Context, job priceJob) error {
	logger := p.logger.With(zap.String("job", job.Name()))
	logger.Info("collecting prices")

	records, err := job.Collect(ctx)
	if err != nil {
		return errors.Wrap(err, "collect prices")
	}
	if err := p.store.AppendPrices(ctx, job.Table(), records); err != nil {
		return errors.Wrap(err, "load prices")
	}

	logger.Info("prices loaded", zap.String("table", job.Table()), zap.Int("rows", len(records)))
	return nil
}
