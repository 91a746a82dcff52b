package ccpricing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency converts base (EUR) prices into a display currency by
// multiplication with ChangeRate.
type Currency struct {
	Unit       currency.Unit
	ChangeRate decimal.Decimal
}

// EUR is the base currency every catalog price is expressed in.
var EUR = Currency{Unit: currency.EUR, ChangeRate: decimal.NewFromInt(1)}

// NewCurrency parses an ISO 4217 code.
func NewCurrency(code string, changeRate decimal.Decimal) (Currency, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Currency{}, fmt.Errorf("ccpricing: currency %q: %w", code, err)
	}
	if changeRate.Sign() <= 0 {
		return Currency{}, fmt.Errorf("ccpricing: currency %q: change rate must be positive, got %s", code, changeRate)
	}
	return Currency{Unit: unit, ChangeRate: changeRate}, nil
}

// MustCurrency is like NewCurrency but panics on error. Use for constants.
func MustCurrency(code string, changeRate float64) Currency {
	c, err := NewCurrency(code, decimal.NewFromFloat(changeRate))
	if err != nil {
		panic(err)
	}
	return c
}

// Code returns the ISO code, or an empty string for the zero Currency.
func (c Currency) Code() string {
	if c.IsZero() {
		return ""
	}
	return c.Unit.String()
}

// IsZero reports whether c is unset.
func (c Currency) IsZero() bool {
	return c.Unit == currency.Unit{} && c.ChangeRate.IsZero()
}

// Symbol returns the narrow currency symbol ("€", "$") for display.
func (c Currency) Symbol() string {
	if c.IsZero() {
		return ""
	}
	return printer.Sprint(currency.NarrowSymbol(c.Unit))
}

// rate is the multiplier applied by Convert. The zero Currency converts as
// the base currency.
func (c Currency) rate() decimal.Decimal {
	if c.ChangeRate.IsZero() {
		return EUR.ChangeRate
	}
	return c.ChangeRate
}

// FindCurrency returns the currency with the given code.
func FindCurrency(currencies []Currency, code string) (Currency, bool) {
	for _, c := range currencies {
		if c.Code() == code {
			return c, true
		}
	}
	return Currency{}, false
}

var printer = message.NewPrinter(language.English)

// FormatPrice renders an already converted amount with two decimals and the
// currency code: "849.74 USD".
func FormatPrice(amount decimal.Decimal, c Currency) string {
	f, _ := amount.Round(2).Float64()
	code := c.Code()
	if code == "" {
		code = EUR.Code()
	}
	return printer.Sprintf("%.2f %s", f, code)
}
