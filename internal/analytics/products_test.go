package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeProductAggregatesClampsRepeatCustomers(t *testing.T) {
	key := ProductKey{ProductID: "p1", VariantCode: "V1", Name: "Widget"}
	summary := []ProductSummaryRow{
		{Key: key, Units: decimal.NewFromInt(10), Orders: 8, UniqueCustomers: 5, DisplayName: "Widget"},
	}
	repeat := []ProductRepeatRow{{Key: key, RepeatCustomers: 7}}

	rows := MergeProductAggregates(summary, nil, repeat, testConverter())
	require.Len(t, rows, 1)

	row := rows[0]
	assert.EqualValues(t, 5, row.RepeatCustomers)
	assert.EqualValues(t, 0, row.FirstTimeCustomers)
	assert.Equal(t, 1.0, row.RepeatPurchaseRate)
}

func TestMergeProductAggregatesDropsUnknownKeys(t *testing.T) {
	known := ProductKey{ProductID: "p1", Name: "Widget"}
	unknown := ProductKey{ProductID: "p2", Name: "Gizmo"}
	summary := []ProductSummaryRow{
		{Key: known, Units: decimal.NewFromInt(3), Orders: 3, UniqueCustomers: 3, DisplayName: "Widget"},
	}
	revenue := []ProductRevenueRow{
		{Key: known, Currency: "CZK", Revenue: decimal.NewFromInt(300)},
		{Key: unknown, Currency: "CZK", Revenue: decimal.NewFromInt(9999)},
	}
	repeat := []ProductRepeatRow{{Key: unknown, RepeatCustomers: 2}}

	rows := MergeProductAggregates(summary, revenue, repeat, testConverter())
	require.Len(t, rows, 1)
	assert.Equal(t, known, rows[0].Key)
	assert.True(t, rows[0].RevenueBase.Equal(decimal.NewFromInt(300)))
	assert.EqualValues(t, 0, rows[0].RepeatCustomers)
}

func TestMergeProductAggregatesCurrencyConversion(t *testing.T) {
	key := ProductKey{ProductID: "p1", Name: "Widget"}
	summary := []ProductSummaryRow{
		{Key: key, Units: decimal.NewFromInt(4), Orders: 2, UniqueCustomers: 2, DisplayName: "Widget"},
	}
	revenue := []ProductRevenueRow{
		{Key: key, Currency: "CZK", Revenue: decimal.NewFromInt(500)},
		{Key: key, Currency: "EUR", Revenue: decimal.NewFromInt(20)},
		{Key: key, Currency: "XXX", Revenue: decimal.NewFromInt(100)}, // no rate on file
	}

	rows := MergeProductAggregates(summary, revenue, nil, testConverter())
	require.Len(t, rows, 1)
	row := rows[0]

	// 500 CZK + 20 EUR * 25; the XXX slice contributes nothing to the base total
	assert.True(t, row.RevenueBase.Equal(decimal.NewFromInt(1000)), "got %s", row.RevenueBase)
	require.Len(t, row.RevenueByCurrency, 3)

	byCurrency := map[string]CurrencyRevenue{}
	for _, cr := range row.RevenueByCurrency {
		byCurrency[cr.Currency] = cr
	}
	require.NotNil(t, byCurrency["EUR"].AmountBase)
	assert.True(t, byCurrency["EUR"].AmountBase.Equal(decimal.NewFromInt(500)))
	assert.Nil(t, byCurrency["XXX"].AmountBase)

	// 1000 base / 4 units
	require.NotNil(t, row.AvgUnitPriceBase)
	assert.True(t, row.AvgUnitPriceBase.Equal(decimal.NewFromInt(250)))
}

func TestMergeProductAggregatesDropsZeroOrderRows(t *testing.T) {
	summary := []ProductSummaryRow{
		{Key: ProductKey{Name: "Phantom"}, Units: decimal.Zero, Orders: 0, UniqueCustomers: 0},
		{Key: ProductKey{Name: "Real"}, Units: decimal.NewFromInt(1), Orders: 1, UniqueCustomers: 1, DisplayName: "Real"},
	}

	rows := MergeProductAggregates(summary, nil, nil, testConverter())
	require.Len(t, rows, 1)
	assert.Equal(t, "Real", rows[0].DisplayName)
	// zero revenue still yields an avg of 0 when units > 0
	require.NotNil(t, rows[0].AvgUnitPriceBase)
	assert.True(t, rows[0].AvgUnitPriceBase.IsZero())
}

func TestSortProductsTieBreaksOnKey(t *testing.T) {
	a := &ProductPerformance{Key: ProductKey{ProductID: "a"}, RevenueBase: decimal.NewFromInt(100)}
	b := &ProductPerformance{Key: ProductKey{ProductID: "b"}, RevenueBase: decimal.NewFromInt(100)}
	c := &ProductPerformance{Key: ProductKey{ProductID: "c"}, RevenueBase: decimal.NewFromInt(200)}

	rows := []*ProductPerformance{b, c, a}
	SortProducts(rows, ProductSortRevenue, "desc")

	assert.Equal(t, "c", rows[0].Key.ProductID)
	assert.Equal(t, "a", rows[1].Key.ProductID)
	assert.Equal(t, "b", rows[2].Key.ProductID)

	// With limit=1 the winner among tied rows is deterministic
	top := RankAndLimit([]*ProductPerformance{c}, 1)
	assert.Equal(t, 1, top[0].Rank)
}

func TestSortProductsAscending(t *testing.T) {
	rows := []*ProductPerformance{
		{Key: ProductKey{ProductID: "a"}, Orders: 5},
		{Key: ProductKey{ProductID: "b"}, Orders: 1},
	}
	SortProducts(rows, ProductSortOrders, "asc")
	assert.Equal(t, "b", rows[0].Key.ProductID)
}

func TestRankAndLimit(t *testing.T) {
	rows := []*ProductPerformance{
		{Key: ProductKey{ProductID: "a"}},
		{Key: ProductKey{ProductID: "b"}},
		{Key: ProductKey{ProductID: "c"}},
	}
	limited := RankAndLimit(rows, 2)
	assert.Len(t, limited, 2)
	assert.Equal(t, 1, limited[0].Rank)
	assert.Equal(t, 2, limited[1].Rank)

	all := RankAndLimit(rows[:1], 10)
	assert.Len(t, all, 1)
}

func TestParseProductSort(t *testing.T) {
	assert.Equal(t, ProductSortUnits, ParseProductSort("units"))
	assert.Equal(t, ProductSortRevenue, ParseProductSort(""))
	assert.Equal(t, ProductSortRevenue, ParseProductSort("bogus"))
}
