package breakdown

import (
	"encoding/json"

	"booking-cost/core/money"
	"booking-cost/core/types"
)

// Line is one input line item paired with its signed contribution
type Line struct {
	Item         types.LineItem `json:"item"`
	Contribution money.Money    `json:"contribution"`
}

// Result is an immutable breakdown. Accessors return copies.
type Result struct {
	unitType types.UnitType
	currency money.Currency
	period   *types.BookingPeriod
	lines    []Line
	perParty map[types.Party]money.Money
	grand    money.Money
}

// UnitType returns the unit type the breakdown was computed for
func (r *Result) UnitType() types.UnitType {
	return r.unitType
}

// Currency returns the single currency of every amount in the result
func (r *Result) Currency() money.Currency {
	return r.currency
}

// Period returns the booking period, or nil for a non-dated purchase
func (r *Result) Period() *types.BookingPeriod {
	if r.period == nil {
		return nil
	}
	p := *r.period
	return &p
}

// Lines returns every line in input order
func (r *Result) Lines() []Line {
	out := make([]Line, len(r.lines))
	for i, l := range r.lines {
		out[i] = Line{Item: l.Item.Clone(), Contribution: l.Contribution}
	}
	return out
}

// Filter returns the lines visible to one party, in input order
func (r *Result) Filter(p types.Party) []Line {
	var out []Line
	for _, l := range r.lines {
		if l.Item.IncludesParty(p) {
			out = append(out, Line{Item: l.Item.Clone(), Contribution: l.Contribution})
		}
	}
	return out
}

// Total returns the sum of contributions for lines that include p
func (r *Result) Total(p types.Party) money.Money {
	if t, ok := r.perParty[p]; ok {
		return t
	}
	return money.Zero(r.currency)
}

// PerParty returns a copy of the per-party totals
func (r *Result) PerParty() map[types.Party]money.Money {
	out := make(map[types.Party]money.Money, len(r.perParty))
	for k, v := range r.perParty {
		out[k] = v
	}
	return out
}

// Grand returns the sum of every line's contribution
func (r *Result) Grand() money.Money {
	return r.grand
}

// UnitLine returns the first line priced in the breakdown's unit
// (line-item/day for day listings and so on).
func (r *Result) UnitLine() (Line, bool) {
	code := r.unitType.LineCode()
	for _, l := range r.lines {
		if l.Item.Code == code {
			return Line{Item: l.Item.Clone(), Contribution: l.Contribution}, true
		}
	}
	return Line{}, false
}

// MarshalJSON renders the result for presentation code
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		UnitType types.UnitType              `json:"unitType"`
		Currency money.Currency              `json:"currency"`
		Period   *types.BookingPeriod        `json:"period,omitempty"`
		Lines    []Line                      `json:"lines"`
		PerParty map[types.Party]money.Money `json:"perPartyTotals"`
		Grand    money.Money                 `json:"grandTotal"`
	}{
		UnitType: r.unitType,
		Currency: r.currency,
		Period:   r.period,
		Lines:    r.Lines(),
		PerParty: r.PerParty(),
		Grand:    r.grand,
	})
}
