package cart

import (
	"github.com/shopspring/decimal"
)

// TaxRate is the flat tax applied to the subtotal
var TaxRate = decimal.RequireFromString("0.18")

// Summary is the derived totals view of a cart
type Summary struct {
	ItemCount int // sum of quantities
	LineCount int
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
}

// IsEmpty reports whether the cart has no lines
func (s Summary) IsEmpty() bool {
	return s.LineCount == 0
}

// Summarize computes totals with exact decimal arithmetic, rounding money
// to two places.
func Summarize(items []LineItem) Summary {
	s := Summary{LineCount: len(items), Subtotal: decimal.Zero}
	for _, item := range items {
		s.ItemCount += item.Quantity
		line := decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
		s.Subtotal = s.Subtotal.Add(line)
	}
	s.Subtotal = s.Subtotal.Round(2)
	s.Tax = s.Subtotal.Mul(TaxRate).Round(2)
	s.Total = s.Subtotal.Add(s.Tax)
	return s
}
