package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

// Output rounding: money 2 places, quantities 3, ratios 4.

// RoundMoney rounds a monetary amount to 2 decimal places
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundQuantity rounds a quantity to 3 decimal places
func RoundQuantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(3)
}

// RoundRatio rounds a ratio to 4 decimal places, mapping NaN/Inf to 0
func RoundRatio(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return math.Round(f*10000) / 10000
}
