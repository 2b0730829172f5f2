package analytics

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductKey is the composite product identity (product GUID, variant
// code, line name). Any of the three may be the only reliable
// identifier, so the tuple as a whole is the merge key. It is a
// comparable value type used directly as a map key.
type ProductKey struct {
	ProductID   string `json:"product_id"`
	VariantCode string `json:"variant_code"`
	Name        string `json:"name"`
}

func (k ProductKey) less(other ProductKey) bool {
	if k.ProductID != other.ProductID {
		return k.ProductID < other.ProductID
	}
	if k.VariantCode != other.VariantCode {
		return k.VariantCode < other.VariantCode
	}
	return k.Name < other.Name
}

// ProductSummaryRow is the canonical per-key aggregate: units, distinct
// orders, distinct customers and first-non-null display fields.
type ProductSummaryRow struct {
	Key             ProductKey
	Units           decimal.Decimal
	Orders          int64
	UniqueCustomers int64
	DisplayName     string
	Brand           string
	EAN             string
}

// ProductRevenueRow is summed line revenue per (key, currency)
type ProductRevenueRow struct {
	Key      ProductKey
	Currency string
	Revenue  decimal.Decimal
}

// ProductRepeatRow counts customers who bought the key more than once
type ProductRepeatRow struct {
	Key             ProductKey
	RepeatCustomers int64
}

// CurrencyRevenue is one per-currency slice of a product's revenue
type CurrencyRevenue struct {
	Currency   string           `json:"currency"`
	Amount     decimal.Decimal  `json:"amount"`
	AmountBase *decimal.Decimal `json:"amount_base"` // nil when no rate is on file
}

// ProductPerformance is one ranked row of the products report
type ProductPerformance struct {
	Rank               int               `json:"rank"`
	Key                ProductKey        `json:"key"`
	DisplayName        string            `json:"display_name"`
	Brand              string            `json:"brand,omitempty"`
	EAN                string            `json:"ean,omitempty"`
	Units              decimal.Decimal   `json:"units"`
	Orders             int64             `json:"orders"`
	UniqueCustomers    int64             `json:"unique_customers"`
	RepeatCustomers    int64             `json:"repeat_customers"`
	FirstTimeCustomers int64             `json:"first_time_customers"`
	RepeatPurchaseRate float64           `json:"repeat_purchase_rate"`
	RevenueBase        decimal.Decimal   `json:"revenue_base"`
	RevenueByCurrency  []CurrencyRevenue `json:"revenue_by_currency"`
	AvgUnitPriceBase   *decimal.Decimal  `json:"avg_unit_price_base"` // nil when zero units sold
}

// Product report sort fields
const (
	ProductSortRevenue         = "revenue"
	ProductSortUnits           = "units"
	ProductSortOrders          = "orders"
	ProductSortRepeatRate      = "repeat_rate"
	ProductSortRepeatCustomers = "repeat_customers"
)

// ParseProductSort validates a caller-selected sort field, defaulting to revenue
func ParseProductSort(s string) string {
	switch s {
	case ProductSortRevenue, ProductSortUnits, ProductSortOrders, ProductSortRepeatRate, ProductSortRepeatCustomers:
		return s
	default:
		return ProductSortRevenue
	}
}

// MergeProductAggregates folds the three independently grouped result
// sets into one row per composite key. The merge is sequential: the
// summary pass seeds the canonical key set, the revenue pass accumulates
// converted amounts into it, the repeat pass fills repeat counts with
// clamping. Revenue or repeat rows whose key is absent from the summary
// are dropped; the summary is built from the same base filtered query
// and is structurally a superset.
func MergeProductAggregates(summary []ProductSummaryRow, revenue []ProductRevenueRow, repeat []ProductRepeatRow, conv *Converter) []*ProductPerformance {
	byKey := make(map[ProductKey]*ProductPerformance, len(summary))
	rows := make([]*ProductPerformance, 0, len(summary))

	for _, s := range summary {
		row := &ProductPerformance{
			Key:                s.Key,
			DisplayName:        s.DisplayName,
			Brand:              s.Brand,
			EAN:                s.EAN,
			Units:              RoundQuantity(s.Units),
			Orders:             s.Orders,
			UniqueCustomers:    s.UniqueCustomers,
			FirstTimeCustomers: s.UniqueCustomers,
			RevenueBase:        decimal.Zero,
			RevenueByCurrency:  []CurrencyRevenue{},
		}
		if row.DisplayName == "" {
			row.DisplayName = s.Key.Name
		}
		byKey[s.Key] = row
		rows = append(rows, row)
	}

	for _, r := range revenue {
		row, ok := byKey[r.Key]
		if !ok {
			continue
		}
		slice := CurrencyRevenue{Currency: strings.ToUpper(r.Currency), Amount: RoundMoney(r.Revenue)}
		if base, ok := conv.ToBase(r.Revenue, r.Currency); ok {
			rounded := RoundMoney(base)
			slice.AmountBase = &rounded
			row.RevenueBase = row.RevenueBase.Add(base)
		}
		row.RevenueByCurrency = append(row.RevenueByCurrency, slice)
	}

	for _, r := range repeat {
		row, ok := byKey[r.Key]
		if !ok {
			continue
		}
		clamped := r.RepeatCustomers
		if clamped > row.UniqueCustomers {
			clamped = row.UniqueCustomers
		}
		row.RepeatCustomers = clamped
		row.FirstTimeCustomers = row.UniqueCustomers - clamped
	}

	out := rows[:0]
	for _, row := range rows {
		// Join artifacts can surface keys with no qualifying orders
		if row.Orders == 0 {
			continue
		}
		if row.UniqueCustomers > 0 {
			row.RepeatPurchaseRate = RoundRatio(float64(row.RepeatCustomers) / float64(row.UniqueCustomers))
		}
		row.RevenueBase = RoundMoney(row.RevenueBase)
		if row.Units.IsPositive() {
			avg := RoundMoney(row.RevenueBase.Div(row.Units))
			row.AvgUnitPriceBase = &avg
		}
		out = append(out, row)
	}
	return out
}

// SortProducts orders rows by the selected field and direction. Numeric
// fields compare numerically, and exact ties fall back to the composite
// key so repeated calls return a stable order.
func SortProducts(rows []*ProductPerformance, field, direction string) {
	desc := direction != "asc"
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		cmp := 0
		switch field {
		case ProductSortUnits:
			cmp = a.Units.Cmp(b.Units)
		case ProductSortOrders:
			cmp = compareInt64(a.Orders, b.Orders)
		case ProductSortRepeatRate:
			cmp = compareFloat(a.RepeatPurchaseRate, b.RepeatPurchaseRate)
		case ProductSortRepeatCustomers:
			cmp = compareInt64(a.RepeatCustomers, b.RepeatCustomers)
		default:
			cmp = a.RevenueBase.Cmp(b.RevenueBase)
		}
		if cmp == 0 {
			return a.Key.less(b.Key)
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

// RankAndLimit takes the first limit rows and assigns 1-based ranks
func RankAndLimit(rows []*ProductPerformance, limit int) []*ProductPerformance {
	if limit < len(rows) {
		rows = rows[:limit]
	}
	for i, row := range rows {
		row.Rank = i + 1
	}
	return rows
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
