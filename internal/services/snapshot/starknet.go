package snapshot

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cryptofolio/internal/clients"
	"cryptofolio/internal/entity"
)

const (
	starknetTable        = "starknet_balances"
	starknetDatavizTable = "starknet_balances_dataviz"
)

type tokenScraper interface {
	WalletTokens(ctx context.Context, address string) ([]clients.ScrapedToken, error)
}

// StarknetJob scrapes the Argent portfolio dashboard for each configured
// wallet and classifies the scraped tokens.
type StarknetJob struct {
	scraper tokenScraper
	wallets []string
	logger  *zap.Logger
	now     func() time.Time
}

func NewStarknetJob(scraper tokenScraper, wallets []string, logger *zap.Logger) *StarknetJob {
	return &StarknetJob{scraper: scraper, wallets: wallets, logger: logger, now: time.Now}
}

func (j *StarknetJob) Name() string         { return "starknet" }
func (j *StarknetJob) Table() string        { return starknetTable }
func (j *StarknetJob) DatavizTable() string { return starknetDatavizTable }

// Collect scrapes every wallet sequentially, one browser session each. A
// failed page render is fatal; a token missing a DOM field is skipped.
func (j *StarknetJob) Collect(ctx context.Context) ([]entity.BalanceRecord, error) {
	date := entity.Day(j.now())

	var records []entity.BalanceRecord
	for _, address := range j.wallets {
		tokens, err := j.scraper.WalletTokens(ctx, address)
		if err != nil {
			return nil, errors.Wrapf(err, "scrape wallet %s", address)
		}

		for _, token := range tokens {
			if token.Symbol == "" || token.Amount == "" {
				j.logger.Warn("skip token with missing field",
					zap.String("wallet", address),
					zap.String("symbol", token.Symbol), zap.String("amount", token.Amount))
				continue
			}
			amount, err := parseScrapedAmount(token.Amount)
			if err != nil {
				j.logger.Warn("skip token with malformed amount",
					zap.String("wallet", address),
					zap.String("symbol", token.Symbol), zap.String("amount", token.Amount),
					zap.Error(err))
				continue
			}
			records = append(records, entity.BalanceRecord{
				Date:         date,
				Symbol:       token.Symbol,
				Platform:     "starknet",
				Amount:       amount,
				PositionType: entity.ClassifyPosition(token.Symbol, amount),
				Address:      address,
			})
		}
	}
	return records, nil
}

// DatavizRecords copies balance rows with derivative tickers folded onto
// their base asset, for joining against the price table.
func DatavizRecords(records []entity.BalanceRecord) []entity.BalanceRecord {
	out := make([]entity.BalanceRecord, len(records))
	for i, r := range records {
		r.Symbol = entity.DatavizSymbol(r.Symbol)
		out[i] = r
	}
	return out
}

// parseScrapedAmount copes with the dashboard's human formatting: comma as
// thousands separator, no explicit sign.
func parseScrapedAmount(text string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(text, ",", ""))
}
