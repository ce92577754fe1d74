// Package breakdown computes deterministic, currency-correct price breakdowns
// from priced line items.
//
// Compute is a pure function: it reads nothing but its arguments, and the
// Result it returns cannot be mutated by callers.
package breakdown

import (
	"sort"

	"booking-cost/core/money"
	"booking-cost/core/types"
	"booking-cost/internal/errors"
)

// Options tune a single Compute call
type Options struct {
	// DefaultCurrency is the currency of an empty breakdown
	DefaultCurrency money.Currency

	// Period is the dated stay, if any
	Period *types.BookingPeriod

	// VerifyLineTotals rejects non-fee lines where lineTotal != round(unitPrice * quantity)
	VerifyLineTotals bool
}

// Compute builds the breakdown for items priced per unitType.
//
// Every line is kept in the output in input order, including zero-amount
// fees. Totals are exact decimal sums, so the result does not depend on the
// order of items.
func Compute(items []types.LineItem, unitType types.UnitType, opts Options) (*Result, error) {
	if !unitType.Valid() {
		return nil, errors.Newf(errors.TypeInput, "unknown unit type %q", unitType)
	}
	if opts.Period != nil && !opts.Period.End.After(opts.Period.Start) {
		return nil, errors.Newf(errors.TypeDateRange, "booking end %s is not after start %s",
			opts.Period.End.Format("2006-01-02"), opts.Period.Start.Format("2006-01-02"))
	}

	cur, err := lineCurrency(items, opts.DefaultCurrency)
	if err != nil {
		return nil, err
	}

	res := &Result{
		unitType: unitType,
		currency: cur,
		lines:    make([]Line, 0, len(items)),
		perParty: make(map[types.Party]money.Money, len(types.Parties)),
		grand:    money.Zero(cur),
	}
	if opts.Period != nil {
		p := *opts.Period
		res.period = &p
	}
	for _, p := range types.Parties {
		res.perParty[p] = money.Zero(cur)
	}

	for i, item := range items {
		if err := checkLine(i, item, opts.VerifyLineTotals); err != nil {
			return nil, err
		}

		contribution := item.Contribution()
		res.lines = append(res.lines, Line{Item: item.Clone(), Contribution: contribution})

		// lineCurrency admitted a single currency, Add cannot fail here
		res.grand, _ = res.grand.Add(contribution)
		for _, p := range types.Parties {
			if item.IncludesParty(p) {
				res.perParty[p], _ = res.perParty[p].Add(contribution)
			}
		}
	}

	return res, nil
}

// lineCurrency returns the one currency shared by every amount of items, or
// def when there are none. More than one distinct code is a mismatch whatever
// the codes are or where they appear.
func lineCurrency(items []types.LineItem, def money.Currency) (money.Currency, error) {
	seen := make(map[money.Currency]struct{})
	for _, item := range items {
		seen[item.UnitPrice.Currency()] = struct{}{}
		seen[item.LineTotal.Currency()] = struct{}{}
	}

	cur := def.Canonical()
	if len(seen) > 1 {
		codes := make([]string, 0, len(seen))
		for c := range seen {
			codes = append(codes, string(c))
		}
		sort.Strings(codes)
		return "", errors.CurrencyMismatch(codes[0], codes[1]).WithContext("currencies", codes)
	}
	for c := range seen {
		cur = c
	}
	if !cur.Valid() {
		return "", errors.Newf(errors.TypeInput, "invalid currency %q", cur)
	}
	return cur, nil
}

func checkLine(i int, item types.LineItem, verify bool) error {
	if !item.Code.Valid() {
		return errors.Newf(errors.TypeInput, "line %d: invalid code %q", i, item.Code).WithContext("line", i)
	}
	for _, p := range item.IncludeFor {
		if !p.Valid() {
			return errors.Newf(errors.TypeInput, "line %d: unknown party %q", i, p).WithContext("line", i)
		}
	}
	if verify && !item.Code.IsFee() {
		want := item.UnitPrice.MulQuantity(item.Quantity)
		if !want.Equal(item.LineTotal) {
			return errors.Newf(errors.TypeInput, "line %d: line total %s does not match %s x %s",
				i, item.LineTotal.StringRaw(), item.UnitPrice.StringRaw(), item.Quantity.String()).
				WithContext("line", i).
				WithContext("expected", want.StringRaw())
		}
	}
	return nil
}
