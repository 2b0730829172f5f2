package services

import (
	"testing"

	"storepulse/internal/analytics"
	"storepulse/internal/repo"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampLimit(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultReportLimit},
		{-5, DefaultReportLimit},
		{1, 1},
		{50, 50},
		{500, 500},
		{501, MaxReportLimit},
		{99999, MaxReportLimit},
	}
	for _, test := range tests {
		if got := ClampLimit(test.input); got != test.expected {
			t.Errorf("ClampLimit(%d) = %d, expected %d", test.input, got, test.expected)
		}
	}
}

func TestComposeCurrencyTotals(t *testing.T) {
	conv := analytics.NewConverterWithRates("CZK", map[string]decimal.Decimal{
		"EUR": decimal.NewFromInt(25),
	})
	rows := []repo.CurrencyTotalRow{
		{
			Currency:         "EUR",
			Orders:           3,
			Total:            decimal.NewFromInt(120),
			TotalBase:        decimal.NewFromInt(2500), // precomputed for 100 EUR
			TotalMissingBase: decimal.NewFromInt(20),   // one order without a stored base
		},
		{
			Currency:         "CZK",
			Orders:           10,
			Total:            decimal.NewFromInt(9000),
			TotalBase:        decimal.NewFromInt(9000),
			TotalMissingBase: decimal.Zero,
		},
		{
			Currency:         "XXX", // no rate on file
			Orders:           1,
			Total:            decimal.NewFromInt(50),
			TotalBase:        decimal.Zero,
			TotalMissingBase: decimal.NewFromInt(50),
		},
	}

	orders, revenueBase, breakdowns := composeCurrencyTotals(rows, conv)

	assert.EqualValues(t, 14, orders)
	// 2500 + 20*25 stored EUR + 9000 CZK; XXX contributes nothing
	assert.True(t, revenueBase.Equal(decimal.NewFromInt(12000)), "got %s", revenueBase)

	require.Len(t, breakdowns, 3)
	// sorted by currency code
	assert.Equal(t, "CZK", breakdowns[0].Currency)
	assert.Equal(t, "EUR", breakdowns[1].Currency)
	assert.Equal(t, "XXX", breakdowns[2].Currency)

	require.NotNil(t, breakdowns[1].TotalBase)
	assert.True(t, breakdowns[1].TotalBase.Equal(decimal.NewFromInt(3000)))
	assert.Nil(t, breakdowns[2].TotalBase)
}

func TestComposeCurrencyTotalsEmpty(t *testing.T) {
	conv := analytics.NewConverterWithRates("CZK", nil)
	orders, revenueBase, breakdowns := composeCurrencyTotals(nil, conv)
	assert.EqualValues(t, 0, orders)
	assert.True(t, revenueBase.IsZero())
	assert.Empty(t, breakdowns)
}
