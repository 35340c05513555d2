package format

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Money renders amounts in one display currency
type Money struct {
	unit     currency.Unit
	printer  *message.Printer
	symbol   string
	fraction int
}

// NewMoney creates a formatter for an ISO 4217 code in a BCP 47 locale.
// fractionDigits caps the digits after the decimal point; whole-unit
// currencies such as INR in the storefront use 0.
func NewMoney(code, locale string, fractionDigits int) (*Money, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, fmt.Errorf("currency %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("locale %q: %w", locale, err)
	}
	if fractionDigits < 0 {
		fractionDigits = 0
	}
	p := message.NewPrinter(tag)
	return &Money{
		unit:     unit,
		printer:  p,
		symbol:   p.Sprint(currency.Symbol(unit)),
		fraction: fractionDigits,
	}, nil
}

// Currency returns the ISO code
func (m *Money) Currency() string {
	return m.unit.String()
}

// Format renders amount as symbol plus grouped digits, e.g. ₹2,490
func (m *Money) Format(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := m.printer.Sprint(number.Decimal(amount,
		number.MaxFractionDigits(m.fraction),
		number.MinFractionDigits(m.fraction),
	))
	return sign + m.symbol + digits
}

// FormatDecimal renders a decimal amount, rounding half away from zero
func (m *Money) FormatDecimal(d decimal.Decimal) string {
	f, _ := d.Round(int32(m.fraction)).Float64()
	return m.Format(f)
}
