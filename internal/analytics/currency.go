package analytics

import (
	"os"
	"strings"

	"storepulse/pkg/models"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Converter normalizes amounts recorded in heterogeneous transaction
// currencies into the single reporting base currency. Rates are a
// read-only snapshot taken at construction; the engine never writes them.
type Converter struct {
	base  string
	rates map[string]decimal.Decimal
}

// NewConverter loads the rate table from the currency_rates table.
// The base currency comes from BASE_CURRENCY (default CZK).
func NewConverter(db *gorm.DB) (*Converter, error) {
	base := strings.ToUpper(strings.TrimSpace(os.Getenv("BASE_CURRENCY")))
	if base == "" {
		base = "CZK"
	}

	var rows []models.CurrencyRate
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}

	rates := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		rates[strings.ToUpper(strings.TrimSpace(row.Code))] = row.Rate
	}

	log.Info().Str("base_currency", base).Int("rates", len(rates)).Msg("Currency converter initialized")
	return &Converter{base: base, rates: rates}, nil
}

// NewConverterWithRates builds a converter from an in-memory rate table
func NewConverterWithRates(base string, rates map[string]decimal.Decimal) *Converter {
	normalized := make(map[string]decimal.Decimal, len(rates))
	for code, rate := range rates {
		normalized[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return &Converter{base: strings.ToUpper(strings.TrimSpace(base)), rates: normalized}
}

// BaseCurrency returns the reporting base currency code
func (c *Converter) BaseCurrency() string {
	return c.base
}

// ToBase converts an amount from the given currency into the base
// currency. Conversion into the base currency itself is the identity.
// When no rate is on file the second return value is false and callers
// must treat the amount as a zero contribution, never as a failure.
func (c *Converter) ToBase(amount decimal.Decimal, code string) (decimal.Decimal, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || code == c.base {
		return amount, true
	}
	rate, ok := c.rates[code]
	if !ok {
		return decimal.Zero, false
	}
	return amount.Mul(rate), true
}
