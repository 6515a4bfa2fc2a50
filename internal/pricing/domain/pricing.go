// Package domain computes quantity discount brackets. It has no I/O.
package domain

import "github.com/shopspring/decimal"

type Bracket struct {
	Quantity int
	Price    decimal.Decimal
}

var tiers = [5]struct {
	quantity   int
	multiplier decimal.Decimal
}{
	{5, decimal.RequireFromString("0.95")},
	{10, decimal.RequireFromString("0.90")},
	{25, decimal.RequireFromString("0.80")},
	{50, decimal.RequireFromString("0.75")},
	{100, decimal.RequireFromString("0.70")},
}

// Calculate returns the full bracket set for a base price, each rounded
// half-up to two decimal places.
func Calculate(price decimal.Decimal) [5]Bracket {
	var out [5]Bracket
	for i, t := range tiers {
		out[i] = Bracket{
			Quantity: t.quantity,
			Price:    price.Mul(t.multiplier).Round(2),
		}
	}
	return out
}
