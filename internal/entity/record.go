package entity

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// PositionType classifies how a balance is held on a venue.
type PositionType string

const (
	PositionWallet  PositionType = "wallet"
	PositionStaked  PositionType = "staked"
	PositionDeposit PositionType = "deposit"
	PositionLoan    PositionType = "loan"
)

// BalanceRecord is one held position observed on one day. The field order
// matches the column order of every balance table.
type BalanceRecord struct {
	Date         time.Time
	Symbol       string
	Platform     string
	Amount       decimal.Decimal
	PositionType PositionType
	Protocol     string
	Address      string
}

// PriceRecord is one asset's market data for one day.
type PriceRecord struct {
	Date        time.Time
	Symbol      string
	Price       float64
	MarketCap   float64
	TotalVolume float64
}

// SymbolDirectory maps a source's machine-readable asset id to its display
// ticker. Tickers are not unique across assets, ids are.
type SymbolDirectory map[string]string

const (
	stakedSuffix  = "STRK"
	depositSuffix = "ETH"
	earnPrefix    = "LD"
)

// ClassifyPosition derives the position type for a scraped wallet row.
// A lowercase prefix before the STRK or ETH suffix marks a liquid-staking
// derivative of the base asset (xSTRK, ezETH).
func ClassifyPosition(symbol string, amount decimal.Decimal) PositionType {
	switch {
	case strings.HasSuffix(symbol, stakedSuffix) && hasLower(strings.TrimSuffix(symbol, stakedSuffix)):
		return PositionStaked
	case strings.HasSuffix(symbol, depositSuffix) && hasLower(strings.TrimSuffix(symbol, depositSuffix)):
		return PositionDeposit
	case amount.IsNegative():
		return PositionLoan
	}
	return PositionWallet
}

// DatavizSymbol folds a derivative ticker onto its base asset by dropping
// every lowercase rune: ezETH becomes ETH, xSTRK becomes STRK.
func DatavizSymbol(symbol string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLower(r) {
			return -1
		}
		return r
	}, symbol)
}

// StripEarnPrefix removes the LD marker Binance puts in front of assets
// subscribed to Earn, so LDUSDT reports as USDT.
func StripEarnPrefix(symbol string) string {
	return strings.TrimPrefix(symbol, earnPrefix)
}

func hasLower(s string) bool {
	return strings.ContainsFunc(s, unicode.IsLower)
}

// Day truncates a timestamp to its calendar date in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
