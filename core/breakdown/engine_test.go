package breakdown

import (
	"encoding/json"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"booking-cost/core/money"
	"booking-cost/core/types"
	"booking-cost/internal/errors"
)

var both = []types.Party{types.PartyCustomer, types.PartyProvider}

func line(code types.LineItemCode, qty int64, unit, total int64, reversal bool) types.LineItem {
	return types.LineItem{
		Code:       code,
		IncludeFor: both,
		Quantity:   decimal.NewFromInt(qty),
		UnitPrice:  money.New(unit, money.CurrencyUSD),
		LineTotal:  money.New(total, money.CurrencyUSD),
		Reversal:   reversal,
	}
}

func TestComputeScenarios(t *testing.T) {
	period := &types.BookingPeriod{
		Start: time.Date(2017, 4, 14, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2017, 4, 15, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name      string
		items     []types.LineItem
		unitType  types.UnitType
		period    *types.BookingPeriod
		wantGrand int64
		wantLines int
	}{
		{
			name:      "single day",
			items:     []types.LineItem{line(types.CodeDay, 1, 4500, 4500, false)},
			unitType:  types.UnitDay,
			period:    period,
			wantGrand: 4500,
			wantLines: 1,
		},
		{
			name:      "multiple nights",
			items:     []types.LineItem{line(types.CodeNight, 2, 4500, 9000, false)},
			unitType:  types.UnitNight,
			wantGrand: 9000,
			wantLines: 1,
		},
		{
			name: "units with shipping",
			items: []types.LineItem{
				line(types.CodeUnits, 2, 4500, 9000, false),
				line(types.CodeShippingFee, 1, 1000, 1000, false),
			},
			unitType:  types.UnitUnits,
			wantGrand: 10000,
			wantLines: 2,
		},
		{
			name: "units with free pickup keeps the zero line",
			items: []types.LineItem{
				line(types.CodeUnits, 2, 4500, 9000, false),
				line(types.CodePickupFee, 1, 0, 0, false),
			},
			unitType:  types.UnitUnits,
			wantGrand: 9000,
			wantLines: 2,
		},
		{
			name: "reversal is subtracted",
			items: []types.LineItem{
				line(types.CodeNight, 2, 4500, 9000, false),
				line(types.CodeNight, 1, 4500, 4500, true),
			},
			unitType:  types.UnitNight,
			wantGrand: 4500,
			wantLines: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compute(tt.items, tt.unitType, Options{DefaultCurrency: money.CurrencyUSD, Period: tt.period})
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			if !res.Grand().Equal(money.New(tt.wantGrand, money.CurrencyUSD)) {
				t.Errorf("Grand() = %s, want %d", res.Grand().StringRaw(), tt.wantGrand)
			}
			if got := len(res.Lines()); got != tt.wantLines {
				t.Errorf("len(Lines()) = %d, want %d", got, tt.wantLines)
			}
		})
	}
}

func TestComputeEmpty(t *testing.T) {
	res, err := Compute(nil, types.UnitDay, Options{DefaultCurrency: money.CurrencyEUR})
	if err != nil {
		t.Fatalf("empty input must not fail: %v", err)
	}
	if !res.Grand().Equal(money.Zero(money.CurrencyEUR)) {
		t.Errorf("Grand() = %s, want 0 EUR", res.Grand())
	}
	if len(res.Lines()) != 0 {
		t.Errorf("expected no lines, got %d", len(res.Lines()))
	}
	for _, p := range types.Parties {
		if !res.Total(p).IsZero() {
			t.Errorf("Total(%s) = %s, want zero", p, res.Total(p))
		}
	}

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"lines":[]`) {
		t.Errorf("empty lines should marshal as [], got %s", data)
	}
}

func TestComputeCurrencyMismatch(t *testing.T) {
	eur := line(types.CodeShippingFee, 1, 1000, 1000, false)
	eur.UnitPrice = money.New(1000, money.CurrencyEUR)
	eur.LineTotal = money.New(1000, money.CurrencyEUR)

	gbpPrice := line(types.CodeUnits, 1, 100, 100, false)
	gbpPrice.UnitPrice = money.New(100, money.CurrencyGBP)

	cases := map[string][]types.LineItem{
		"second line":     {line(types.CodeUnits, 2, 4500, 9000, false), eur},
		"first line":      {eur, line(types.CodeUnits, 2, 4500, 9000, false)},
		"unit price only": {gbpPrice},
	}

	for name, items := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Compute(items, types.UnitUnits, Options{DefaultCurrency: money.CurrencyUSD})
			if !errors.IsType(err, errors.TypeCurrencyMismatch) {
				t.Fatalf("expected CURRENCY_MISMATCH, got %v", err)
			}
		})
	}
}

func priced(code types.LineItemCode, cur money.Currency) types.LineItem {
	item := line(code, 1, 100, 100, false)
	item.UnitPrice = money.New(100, cur)
	item.LineTotal = money.New(100, cur)
	return item
}

func TestComputeCurrencyErrorIgnoresOrder(t *testing.T) {
	badCode := priced("shipping-fee", money.CurrencyUSD)

	tests := []struct {
		name  string
		items []types.LineItem
		want  errors.Type
	}{
		{"unknown code first", []types.LineItem{priced(types.CodeUnits, "ZZZ"), priced(types.CodeUnits, money.CurrencyUSD)}, errors.TypeCurrencyMismatch},
		{"unknown code last", []types.LineItem{priced(types.CodeUnits, money.CurrencyUSD), priced(types.CodeUnits, "ZZZ")}, errors.TypeCurrencyMismatch},
		{"bad line code before mismatch", []types.LineItem{badCode, priced(types.CodeUnits, money.CurrencyEUR)}, errors.TypeCurrencyMismatch},
		{"bad line code after mismatch", []types.LineItem{priced(types.CodeUnits, money.CurrencyEUR), badCode}, errors.TypeCurrencyMismatch},
		{"single unknown code", []types.LineItem{priced(types.CodeUnits, "ZZZ"), priced(types.CodeShippingFee, "ZZZ")}, errors.TypeInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.items, types.UnitUnits, Options{DefaultCurrency: money.CurrencyUSD})
			if !errors.IsType(err, tt.want) {
				t.Fatalf("expected %s, got %v", tt.want, err)
			}
		})
	}
}

func TestComputeCanonicalizesLowerCaseCurrency(t *testing.T) {
	for _, items := range [][]types.LineItem{
		{priced(types.CodeUnits, "usd"), priced(types.CodeShippingFee, "usd")},
		{priced(types.CodeUnits, money.CurrencyUSD), priced(types.CodeShippingFee, "usd")},
		{priced(types.CodeUnits, "usd"), priced(types.CodeShippingFee, money.CurrencyUSD)},
	} {
		res, err := Compute(items, types.UnitUnits, Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Currency() != money.CurrencyUSD {
			t.Errorf("expected USD, got %s", res.Currency())
		}
		if !res.Grand().Equal(money.New(200, money.CurrencyUSD)) {
			t.Errorf("expected 200 USD, got %s", res.Grand())
		}
	}

	res, err := Compute(nil, types.UnitDay, Options{DefaultCurrency: "eur"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Currency() != money.CurrencyEUR {
		t.Errorf("expected EUR, got %s", res.Currency())
	}
}

func TestComputePeriodMustAdvance(t *testing.T) {
	day := time.Date(2017, 4, 14, 0, 0, 0, 0, time.UTC)
	for _, end := range []time.Time{day, day.AddDate(0, 0, -1)} {
		_, err := Compute(nil, types.UnitDay, Options{
			DefaultCurrency: money.CurrencyUSD,
			Period:          &types.BookingPeriod{Start: day, End: end},
		})
		if !errors.IsType(err, errors.TypeDateRange) {
			t.Errorf("end %s: expected DATE_RANGE_ERROR, got %v", end.Format("2006-01-02"), err)
		}
	}
}

func TestComputeRejectsUnknownUnitType(t *testing.T) {
	_, err := Compute(nil, types.UnitType("hour"), Options{DefaultCurrency: money.CurrencyUSD})
	if !errors.IsType(err, errors.TypeInput) {
		t.Fatalf("expected INPUT_ERROR, got %v", err)
	}
}

func TestReversalContributionIsExactNegation(t *testing.T) {
	for _, total := range []int64{0, 1, 4500, 999999999999} {
		l := line(types.CodeNight, 1, total, total, true)
		res, err := Compute([]types.LineItem{l}, types.UnitNight, Options{})
		if err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
		got := res.Lines()[0].Contribution
		if !got.Equal(l.LineTotal.Neg()) {
			t.Errorf("contribution = %s, want -%d", got.StringRaw(), total)
		}
	}
}

func TestComputeIsOrderIndependent(t *testing.T) {
	items := []types.LineItem{
		line(types.CodeNight, 3, 3333, 9999, false),
		line(types.CodeShippingFee, 1, 1001, 1001, false),
		line(types.CodePickupFee, 1, 0, 0, false),
		line(types.CodeNight, 1, 3333, 3333, true),
		{
			Code:       "line-item/provider-commission",
			IncludeFor: []types.Party{types.PartyProvider},
			Quantity:   decimal.RequireFromString("-0.1"),
			UnitPrice:  money.New(9999, money.CurrencyUSD),
			LineTotal:  money.New(-1000, money.CurrencyUSD),
		},
	}

	base, err := Compute(items, types.UnitNight, Options{})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]types.LineItem(nil), items...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		res, err := Compute(shuffled, types.UnitNight, Options{})
		if err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
		if !res.Grand().Equal(base.Grand()) {
			t.Fatalf("grand total changed under permutation: %s vs %s", res.Grand(), base.Grand())
		}
		for _, p := range types.Parties {
			if !res.Total(p).Equal(base.Total(p)) {
				t.Fatalf("%s total changed under permutation", p)
			}
		}
	}
}

func TestComputePartyViews(t *testing.T) {
	commission := types.LineItem{
		Code:       "line-item/provider-commission",
		IncludeFor: []types.Party{types.PartyProvider},
		Quantity:   decimal.NewFromInt(1),
		UnitPrice:  money.New(-900, money.CurrencyUSD),
		LineTotal:  money.New(-900, money.CurrencyUSD),
	}
	items := []types.LineItem{line(types.CodeUnits, 2, 4500, 9000, false), commission}

	res, err := Compute(items, types.UnitUnits, Options{})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	if got := res.Total(types.PartyCustomer); !got.Equal(money.New(9000, money.CurrencyUSD)) {
		t.Errorf("customer total = %s", got.StringRaw())
	}
	if got := res.Total(types.PartyProvider); !got.Equal(money.New(8100, money.CurrencyUSD)) {
		t.Errorf("provider total = %s", got.StringRaw())
	}
	if got := len(res.Filter(types.PartyCustomer)); got != 1 {
		t.Errorf("customer view has %d lines, want 1", got)
	}
	if got := len(res.Filter(types.PartyProvider)); got != 2 {
		t.Errorf("provider view has %d lines, want 2", got)
	}
}

func TestComputeVerifyLineTotals(t *testing.T) {
	half := types.LineItem{
		Code:       types.CodeDay,
		IncludeFor: both,
		Quantity:   decimal.RequireFromString("1.5"),
		UnitPrice:  money.New(4501, money.CurrencyUSD),
		LineTotal:  money.New(6752, money.CurrencyUSD), // 6751.5 rounds away from zero
	}
	if _, err := Compute([]types.LineItem{half}, types.UnitDay, Options{VerifyLineTotals: true}); err != nil {
		t.Fatalf("rounded total rejected: %v", err)
	}

	wrong := line(types.CodeDay, 2, 4500, 4500, false)
	if _, err := Compute([]types.LineItem{wrong}, types.UnitDay, Options{VerifyLineTotals: true}); !errors.IsType(err, errors.TypeInput) {
		t.Fatalf("expected INPUT_ERROR for bad line total, got %v", err)
	}

	// flat fees are exempt
	fee := line(types.CodeShippingFee, 3, 1000, 1000, false)
	if _, err := Compute([]types.LineItem{fee}, types.UnitUnits, Options{VerifyLineTotals: true}); err != nil {
		t.Fatalf("fee line rejected: %v", err)
	}
}

func TestResultIsImmutable(t *testing.T) {
	res, err := Compute([]types.LineItem{line(types.CodeDay, 1, 4500, 4500, false)}, types.UnitDay, Options{})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	lines := res.Lines()
	lines[0].Item.IncludeFor[0] = types.Party("nobody")
	lines[0].Contribution = money.New(1, money.CurrencyUSD)

	totals := res.PerParty()
	totals[types.PartyCustomer] = money.New(1, money.CurrencyUSD)

	if res.Lines()[0].Item.IncludeFor[0] != types.PartyCustomer {
		t.Error("mutating Lines() leaked into the result")
	}
	if !res.Total(types.PartyCustomer).Equal(money.New(4500, money.CurrencyUSD)) {
		t.Error("mutating PerParty() leaked into the result")
	}

	unit, ok := res.UnitLine()
	if !ok || unit.Item.Code != types.CodeDay {
		t.Errorf("UnitLine() = %v, %v", unit, ok)
	}
}
