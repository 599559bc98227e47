package domain

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of fractional digits kept at submission and
// display boundaries. Calculations run unrounded.
const MoneyPlaces = 2

func init() {
	// The order endpoint reads amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}
