// Package money provides exact minor-unit monetary amounts.
// NEVER use float64 for money calculations.
package money

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"booking-cost/internal/errors"
)

// Currency is an ISO 4217 currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyJPY Currency = "JPY"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// Valid reports whether c is a recognised ISO 4217 code in canonical
// upper-case form
func (c Currency) Valid() bool {
	unit, err := currency.ParseISO(string(c))
	return err == nil && unit.String() == string(c)
}

// Canonical returns the upper-case ISO 4217 form of c, or c unchanged
// when it is not a recognised code.
func (c Currency) Canonical() Currency {
	unit, err := currency.ParseISO(string(c))
	if err != nil {
		return c
	}
	return Currency(unit.String())
}

// Scale returns the number of minor-unit digits (2 for USD, 0 for JPY).
func (c Currency) Scale() int32 {
	unit, err := currency.ParseISO(string(c))
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

// Money is an integer amount of minor units in a single currency.
// The amount is held as a decimal so sums and products never overflow
// or drift; it is always integral.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// New creates Money from minor units (cents for USD)
func New(minor int64, cur Currency) Money {
	return Money{amount: decimal.NewFromInt(minor), currency: cur.Canonical()}
}

// Zero creates zero money
func Zero(cur Currency) Money {
	return Money{amount: decimal.Zero, currency: cur.Canonical()}
}

// FromDecimal creates Money from a minor-unit decimal, rounding half away
// from zero to a whole minor unit.
func FromDecimal(minor decimal.Decimal, cur Currency) Money {
	return Money{amount: minor.Round(0), currency: cur.Canonical()}
}

// Parse parses a minor-unit integer string such as "4500"
func Parse(minor string, cur Currency) (Money, error) {
	d, err := decimal.NewFromString(minor)
	if err != nil {
		return Money{}, errors.Parsing("invalid money amount "+minor, err)
	}
	if !d.Equal(d.Truncate(0)) {
		return Money{}, errors.Newf(errors.TypeInput, "money amount %s is not a whole number of minor units", minor)
	}
	return Money{amount: d, currency: cur.Canonical()}, nil
}

// Amount returns the minor-unit amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// Add adds two monetary amounts. Mixing currencies is an error.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, errors.CurrencyMismatch(string(m.currency), string(other.currency))
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Neg returns the negated amount
func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// MulQuantity multiplies by a decimal quantity and rounds to a whole minor unit
func (m Money) MulQuantity(q decimal.Decimal) Money {
	return FromDecimal(m.amount.Mul(q), m.currency)
}

// IsZero returns true if amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Equal reports whether both amount and currency match
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String returns the amount in major units, e.g. "45.00 USD"
func (m Money) String() string {
	scale := m.currency.Scale()
	return fmt.Sprintf("%s %s", m.amount.Shift(-scale).StringFixed(scale), m.currency)
}

// StringRaw returns the minor-unit amount
func (m Money) StringRaw() string {
	return m.amount.String()
}

type wireMoney struct {
	Amount   json.Number `json:"amount"`
	Currency Currency    `json:"currency"`
}

// MarshalJSON encodes {"amount": <minor units>, "currency": "USD"}
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireMoney{Amount: json.Number(m.amount.String()), Currency: m.currency})
}

// UnmarshalJSON decodes the wire form produced by MarshalJSON
func (m *Money) UnmarshalJSON(data []byte) error {
	var w wireMoney
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Amount == "" {
		w.Amount = "0"
	}
	parsed, err := Parse(string(w.Amount), w.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
