package prices

import (
	"cryptofolio/internal/entity"
)

// AssetSeries is one asset's thinned market history, keyed by the source's
// machine id.
type AssetSeries struct {
	ID      string
	Samples []Sample
}

// Reconcile attaches display tickers to the fetched series: an inner join on
// machine id, since tickers are not unique across assets. Ids absent from
// the directory yield no record.
func Reconcile(series []AssetSeries, directory entity.SymbolDirectory) []entity.PriceRecord {
	var records []entity.PriceRecord
	for _, s := range series {
		symbol, ok := directory[s.ID]
		if !ok {
			continue
		}
		for _, sample := range s.Samples {
			records = append(records, entity.PriceRecord{
				Date:        sample.Date,
				Symbol:      symbol,
				Price:       sample.Price,
				MarketCap:   sample.MarketCap,
				TotalVolume: sample.TotalVolume,
			})
		}
	}
	return records
}
