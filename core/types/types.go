// Package types defines the core booking types shared across the system.
package types

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"booking-cost/core/money"
)

// Currency is re-exported so configuration and adapters need only this package
type Currency = money.Currency

const (
	CurrencyUSD = money.CurrencyUSD
	CurrencyEUR = money.CurrencyEUR
	CurrencyGBP = money.CurrencyGBP
)

// Party is a participant a line item applies to
type Party string

const (
	PartyCustomer Party = "customer"
	PartyProvider Party = "provider"
)

// Parties lists every party in display order
var Parties = []Party{PartyCustomer, PartyProvider}

// Valid reports whether p is a known party
func (p Party) Valid() bool {
	return p == PartyCustomer || p == PartyProvider
}

// UnitType is how a listing is priced
type UnitType string

const (
	UnitDay   UnitType = "day"
	UnitNight UnitType = "night"
	UnitUnits UnitType = "units"
)

// Valid reports whether u is a known unit type
func (u UnitType) Valid() bool {
	switch u {
	case UnitDay, UnitNight, UnitUnits:
		return true
	}
	return false
}

// LineCode returns the line item code that carries this unit's price
func (u UnitType) LineCode() LineItemCode {
	return LineItemCode(codePrefix + string(u))
}

// LineItemCode identifies the kind of a line item
type LineItemCode string

const codePrefix = "line-item/"

const (
	CodeDay         LineItemCode = "line-item/day"
	CodeNight       LineItemCode = "line-item/night"
	CodeUnits       LineItemCode = "line-item/units"
	CodeShippingFee LineItemCode = "line-item/shipping-fee"
	CodePickupFee   LineItemCode = "line-item/pickup-fee"
)

// Valid reports whether c has the line-item namespace and a non-empty name
func (c LineItemCode) Valid() bool {
	s := string(c)
	return strings.HasPrefix(s, codePrefix) && len(s) > len(codePrefix)
}

// IsFee reports whether c is a flat fee rather than a priced unit
func (c LineItemCode) IsFee() bool {
	return strings.HasSuffix(string(c), "-fee")
}

// Label returns the code without its namespace, e.g. "shipping-fee"
func (c LineItemCode) Label() string {
	return strings.TrimPrefix(string(c), codePrefix)
}

// LineItem is one priced component of a transaction
type LineItem struct {
	// Code identifies the line kind
	Code LineItemCode `json:"code"`

	// IncludeFor lists the parties this line applies to
	IncludeFor []Party `json:"includeFor"`

	// Quantity is an exact decimal count (days, nights, items, 1 for fees)
	Quantity decimal.Decimal `json:"quantity"`

	// UnitPrice is the price of one unit
	UnitPrice money.Money `json:"unitPrice"`

	// LineTotal is UnitPrice * Quantity, rounded to a minor unit
	LineTotal money.Money `json:"lineTotal"`

	// Reversal marks a credit or refund; its contribution is negated
	Reversal bool `json:"reversal"`
}

// IncludesParty reports whether the line applies to p
func (li LineItem) IncludesParty(p Party) bool {
	for _, q := range li.IncludeFor {
		if q == p {
			return true
		}
	}
	return false
}

// Contribution is the signed amount this line adds to a total
func (li LineItem) Contribution() money.Money {
	if li.Reversal {
		return li.LineTotal.Neg()
	}
	return li.LineTotal
}

// Clone returns a deep copy of the line
func (li LineItem) Clone() LineItem {
	out := li
	out.IncludeFor = append([]Party(nil), li.IncludeFor...)
	return out
}

// BookingPeriod is the dated stay a breakdown is for
type BookingPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days is the number of calendar days between Start and End
func (p BookingPeriod) Days() int {
	sy, sm, sd := p.Start.Date()
	ey, em, ed := p.End.Date()
	start := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
