package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConverter() *Converter {
	return NewConverterWithRates("CZK", map[string]decimal.Decimal{
		"EUR": decimal.NewFromInt(25),
		"usd": decimal.NewFromFloat(23.5),
	})
}

func TestToBaseIdentity(t *testing.T) {
	conv := testConverter()

	amount := decimal.NewFromFloat(123.45)
	got, ok := conv.ToBase(amount, "CZK")
	require.True(t, ok)
	assert.True(t, got.Equal(amount), "conversion into the base currency must be the identity")
}

func TestToBaseConvertsWithRate(t *testing.T) {
	conv := testConverter()

	// 100 EUR at rate 25 -> 2500 CZK
	got, ok := conv.ToBase(decimal.NewFromInt(100), "EUR")
	require.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromInt(2500)), "got %s", got)
}

func TestToBaseNormalizesCurrencyCode(t *testing.T) {
	conv := testConverter()

	got, ok := conv.ToBase(decimal.NewFromInt(10), " usd ")
	require.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromInt(235)))
}

func TestToBaseMissingRate(t *testing.T) {
	conv := testConverter()

	got, ok := conv.ToBase(decimal.NewFromInt(100), "JPY")
	assert.False(t, ok, "unknown currency must not convert")
	assert.True(t, got.IsZero(), "missing rate contributes zero, got %s", got)
}

func TestBaseCurrencyExposed(t *testing.T) {
	assert.Equal(t, "CZK", testConverter().BaseCurrency())
}
