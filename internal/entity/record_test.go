package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClassifyPosition(t *testing.T) {
	tests := []struct {
		symbol string
		amount string
		want   PositionType
	}{
		{"xSTRK", "10", PositionStaked},
		{"sSTRK", "0.5", PositionStaked},
		{"ezETH", "2.5", PositionDeposit},
		{"wstETH", "1", PositionDeposit},
		{"USDC", "-50", PositionLoan},
		{"USDC", "50", PositionWallet},
		// suffix without a lowercase prefix is just the base asset
		{"STRK", "100", PositionWallet},
		{"ETH", "3", PositionWallet},
		{"ETH", "-3", PositionLoan},
	}

	for _, tt := range tests {
		amount := decimal.RequireFromString(tt.amount)
		assert.Equal(t, tt.want, ClassifyPosition(tt.symbol, amount), "symbol %s amount %s", tt.symbol, tt.amount)
	}
}

func TestDatavizSymbol(t *testing.T) {
	assert.Equal(t, "ETH", DatavizSymbol("ezETH"))
	assert.Equal(t, "STRK", DatavizSymbol("xSTRK"))
	assert.Equal(t, "USDC", DatavizSymbol("USDC"))
	assert.Equal(t, "ETH", DatavizSymbol("wstETH"))
}

func TestStripEarnPrefix(t *testing.T) {
	assert.Equal(t, "USDT", StripEarnPrefix("LDUSDT"))
	assert.Equal(t, "USDT", StripEarnPrefix("USDT"))
	assert.Equal(t, "BTC", StripEarnPrefix("LDBTC"))
}

func TestDay(t *testing.T) {
	ts := time.Date(2025, 3, 14, 15, 9, 26, 535, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), Day(ts))
}
