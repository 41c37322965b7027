package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// WholesaleThreshold is the per-line quantity at which the wholesale price applies.
	WholesaleThreshold = 5

	currencyPlaces = 2
)

// WholesaleFactor is the share of the list price paid at wholesale quantities (30% off).
var WholesaleFactor = decimal.NewFromFloat(0.7)

func (l CartLine) IsWholesale() bool {
	return l.Quantity >= WholesaleThreshold
}

// EffectiveUnitPrice is the list price, or the wholesale price once the line
// reaches WholesaleThreshold.
func (l CartLine) EffectiveUnitPrice() decimal.Decimal {
	if l.IsWholesale() {
		return l.UnitPrice.Mul(WholesaleFactor).Round(currencyPlaces)
	}
	return l.UnitPrice
}

func (l CartLine) Total() decimal.Decimal {
	return l.EffectiveUnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Savings is what the wholesale price saves on this line.
func (l CartLine) Savings() decimal.Decimal {
	return l.UnitPrice.Sub(l.EffectiveUnitPrice()).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (s CartState) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.Lines {
		total = total.Add(line.Total())
	}
	return total.Round(currencyPlaces)
}

func (s CartState) Savings() decimal.Decimal {
	savings := decimal.Zero
	for _, line := range s.Lines {
		savings = savings.Add(line.Savings())
	}
	return savings.Round(currencyPlaces)
}

// FormatPrice renders an amount the way the store shows prices in es-AR:
// "$ 12.500" or "$ 8.750,5". Cents are only shown when present.
func FormatPrice(amount decimal.Decimal) string {
	amount = amount.Round(currencyPlaces)

	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	whole := amount.Truncate(0)
	frac := amount.Sub(whole)

	digits := whole.String()
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := sign + "$ " + b.String()
	if !frac.IsZero() {
		cents := strings.TrimRight(frac.StringFixed(currencyPlaces)[2:], "0")
		out += "," + cents
	}
	return out
}
