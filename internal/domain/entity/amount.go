package entity

import "github.com/shopspring/decimal"

// AmountScale decimales que se persisten en cantidades, precios y niveles de stock (NUMERIC(18, 4)).
const AmountScale = 4

var amountLimit = decimal.New(1, 18-AmountScale)

// FitsAmount indica si d se almacena sin redondeo: a lo sumo AmountScale decimales y |d| < 10^14.
func FitsAmount(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(AmountScale)) && d.Abs().LessThan(amountLimit)
}
