// Package storage appends canonical records to the shared relational store.
// The store is write-only from the pipeline's point of view: no reads, no
// updates, no dedup against prior runs.
package storage

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"cryptofolio/internal/entity"
)

const dateFormat = "2006-01-02"

// Loader writes record batches through any database/sql driver.
type Loader struct {
	db *sql.DB
}

func NewLoader(db *sql.DB) *Loader {
	return &Loader{db: db}
}

// Open connects to the store and verifies the connection.
func Open(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open store")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping store")
	}
	return db, nil
}

// AppendBalances inserts a balance batch as one statement, so the batch
// lands atomically or not at all. An empty batch is a no-op.
func (l *Loader) AppendBalances(ctx context.Context, table string, records []entity.BalanceRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := insertQuery(table,
		[]string{"date", "symbol", "platform", "amount", "position_type", "protocol", "address"},
		len(records))

	args := make([]any, 0, len(records)*7)
	for _, r := range records {
		args = append(args,
			r.Date.Format(dateFormat),
			r.Symbol,
			r.Platform,
			r.Amount,
			string(r.PositionType),
			nullable(r.Protocol),
			nullable(r.Address),
		)
	}

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "append %d balance rows to %s", len(records), table)
	}
	return nil
}

// AppendPrices inserts a price batch as one statement.
func (l *Loader) AppendPrices(ctx context.Context, table string, records []entity.PriceRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := insertQuery(table,
		[]string{"date", "symbol", "price", "market_cap", "total_volume"},
		len(records))

	args := make([]any, 0, len(records)*5)
	for _, r := range records {
		args = append(args,
			r.Date.Format(dateFormat),
			r.Symbol,
			r.Price,
			r.MarketCap,
			r.TotalVolume,
		)
	}

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "append %d price rows to %s", len(records), table)
	}
	return nil
}

func insertQuery(table string, columns []string, rows int) string {
	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES ")
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(row)
	}
	return b.String()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
