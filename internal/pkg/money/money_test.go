package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestApplyRate(t *testing.T) {
	rate := decimal.RequireFromString("0.11")

	tests := []struct {
		amount int64
		want   int64
	}{
		{amount: 110000, want: 12100},
		{amount: 50000, want: 5500},
		{amount: 12345, want: 1358}, // 1357.95
		{amount: 50, want: 6},       // 5.5 rounds up
		{amount: 0, want: 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ApplyRate(tt.amount, rate), "amount %d", tt.amount)
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, int64(12000), Percent(120000, decimal.NewFromInt(10)))
	assert.Equal(t, int64(1852), Percent(12345, decimal.NewFromInt(15)))
	assert.Equal(t, int64(1), Percent(5, decimal.NewFromInt(10)))
	assert.Equal(t, int64(3125), Percent(25000, decimal.RequireFromString("12.5")))
}

func TestFormatRupiah(t *testing.T) {
	tests := map[int64]string{
		0:       "Rp 0",
		999:     "Rp 999",
		1000:    "Rp 1.000",
		150000:  "Rp 150.000",
		1234567: "Rp 1.234.567",
		-5000:   "-Rp 5.000",
	}

	for amount, want := range tests {
		assert.Equal(t, want, FormatRupiah(amount))
	}
}
