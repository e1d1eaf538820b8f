// Package prices builds daily price records for the tracked assets by
// joining the price index's market history against its symbol catalog.
package prices

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"cryptofolio/internal/clients"
	"cryptofolio/internal/entity"
)

const pricesTable = "crypto_prices"

type indexAPI interface {
	ListCoins(ctx context.Context) ([]clients.CoinInfo, error)
	MarketChart(ctx context.Context, id, vsCurrency string, days int) (*clients.MarketChart, error)
}

// Job fetches the market history of every tracked asset and emits one price
// row per asset and day.
type Job struct {
	api          indexAPI
	assetIDs     []string
	vsCurrency   string
	lookbackDays int
	requestDelay time.Duration
	logger       *zap.Logger
}

func NewJob(api indexAPI, assetIDs []string, vsCurrency string, lookbackDays int, requestDelay time.Duration, logger *zap.Logger) *Job {
	return &Job{
		api:          api,
		assetIDs:     assetIDs,
		vsCurrency:   vsCurrency,
		lookbackDays: lookbackDays,
		requestDelay: requestDelay,
		logger:       logger,
	}
}

func (j *Job) Name() string  { return "prices" }
func (j *Job) Table() string { return pricesTable }

// Collect fetches each tracked asset sequentially with a fixed delay between
// requests. A failed fetch skips that asset only; the catalog fetch failing
// is fatal because nothing could be reconciled without it.
func (j *Job) Collect(ctx context.Context) ([]entity.PriceRecord, error) {
	directory, err := j.symbolDirectory(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch symbol directory")
	}

	var series []AssetSeries
	for i, id := range j.assetIDs {
		if i > 0 {
			select {
			case <-time.After(j.requestDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		chart, err := j.api.MarketChart(ctx, id, j.vsCurrency, j.lookbackDays)
		if err != nil {
			j.logger.Warn("skip asset", zap.String("id", id), zap.Error(err))
			continue
		}
		series = append(series, AssetSeries{
			ID:      id,
			Samples: openingSamples(mergeChart(chart)),
		})
	}

	return Reconcile(series, directory), nil
}

// symbolDirectory maps machine ids to upper-cased display tickers.
func (j *Job) symbolDirectory(ctx context.Context) (entity.SymbolDirectory, error) {
	coins, err := j.api.ListCoins(ctx)
	if err != nil {
		return nil, err
	}
	directory := make(entity.SymbolDirectory, len(coins))
	for _, coin := range coins {
		directory[coin.ID] = strings.ToUpper(coin.Symbol)
	}
	return directory, nil
}

// Sample is one observation of an asset's market data.
type Sample struct {
	Date        time.Time
	Price       float64
	MarketCap   float64
	TotalVolume float64
}

// mergeChart outer-merges the three parallel [timestamp, value] series of a
// market chart on their timestamps and returns them in chronological order.
func mergeChart(chart *clients.MarketChart) []Sample {
	merged := make(map[int64]*Sample)
	at := func(ms int64) *Sample {
		s, ok := merged[ms]
		if !ok {
			s = &Sample{Date: entity.Day(time.UnixMilli(ms).UTC())}
			merged[ms] = s
		}
		return s
	}

	for _, p := range chart.Prices {
		at(int64(p[0])).Price = p[1]
	}
	for _, m := range chart.MarketCaps {
		at(int64(m[0])).MarketCap = m[1]
	}
	for _, v := range chart.TotalVolumes {
		at(int64(v[0])).TotalVolume = v[1]
	}

	timestamps := make([]int64, 0, len(merged))
	for ms := range merged {
		timestamps = append(timestamps, ms)
	}
	sort.Slice(timestamps, func(i, k int) bool { return timestamps[i] < timestamps[k] })

	samples := make([]Sample, len(timestamps))
	for i, ms := range timestamps {
		samples[i] = *merged[ms]
	}
	return samples
}

// openingSamples keeps every other sample in chronological order as an
// approximation of each day's opening value. This assumes the source returns
// two samples per day in a fixed order, which is not verified here.
func openingSamples(samples []Sample) []Sample {
	kept := make([]Sample, 0, (len(samples)+1)/2)
	for i := 0; i < len(samples); i += 2 {
		kept = append(kept, samples[i])
	}
	return kept
}
