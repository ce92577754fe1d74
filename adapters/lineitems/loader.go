// Package lineitems loads priced line items from HCL documents.
//
//	unit_type = "night"
//	currency  = "USD"
//
//	booking {
//	  start     = "2017-04-14"
//	  end       = "2017-04-16"
//	  time_zone = "Europe/Helsinki"
//	}
//
//	line_item "line-item/night" {
//	  include_for = ["customer", "provider"]
//	  quantity    = 2
//	  unit_price  = 4500
//	  line_total  = 9000
//	}
package lineitems

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"

	"booking-cost/core/money"
	"booking-cost/core/schedule"
	"booking-cost/core/types"
	"booking-cost/internal/errors"
)

// Document is a parsed line-item file
type Document struct {
	UnitType types.UnitType
	Currency money.Currency
	Period   *types.BookingPeriod
	TimeZone string
	Items    []types.LineItem
}

var fileSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "unit_type", Required: true},
		{Name: "currency"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "booking"},
		{Type: "line_item", LabelNames: []string{"code"}},
	},
}

var bookingSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "start", Required: true},
		{Name: "end", Required: true},
		{Name: "time_zone"},
	},
}

var lineItemSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "include_for", Required: true},
		{Name: "quantity", Required: true},
		{Name: "unit_price", Required: true},
		{Name: "line_total", Required: true},
		{Name: "reversal"},
		{Name: "currency"},
	},
}

// DefaultTimeZone anchors booking dates when a document names no zone
const DefaultTimeZone = "Etc/UTC"

// Load reads and parses an HCL line-item file
func Load(path string, defaultCurrency money.Currency) (*Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "failed to read %s", path)
	}
	return Parse(src, path, defaultCurrency)
}

// Parse parses an HCL line-item document. Lines without a currency use the
// document currency, which defaults to defaultCurrency.
func Parse(src []byte, filename string, defaultCurrency money.Currency) (*Document, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diagError(diags)
	}

	content, diags := file.Body.Content(fileSchema)
	if diags.HasErrors() {
		return nil, diagError(diags)
	}

	doc := &Document{Currency: defaultCurrency, TimeZone: DefaultTimeZone}

	unitType, err := stringAttr(content.Attributes["unit_type"])
	if err != nil {
		return nil, err
	}
	doc.UnitType = types.UnitType(unitType)
	if !doc.UnitType.Valid() {
		return nil, errors.Newf(errors.TypeInput, "%s: unknown unit_type %q", filename, unitType)
	}

	if attr, ok := content.Attributes["currency"]; ok {
		cur, err := stringAttr(attr)
		if err != nil {
			return nil, err
		}
		doc.Currency = money.Currency(cur).Canonical()
	}

	for _, block := range content.Blocks {
		switch block.Type {
		case "booking":
			if doc.Period != nil {
				return nil, errors.Newf(errors.TypeInput, "%s: more than one booking block", rangeOf(block.DefRange))
			}
			if err := decodeBooking(block, doc); err != nil {
				return nil, err
			}
		case "line_item":
			item, err := decodeLineItem(block, doc.Currency)
			if err != nil {
				return nil, err
			}
			doc.Items = append(doc.Items, item)
		}
	}

	return doc, nil
}

func decodeBooking(block *hcl.Block, doc *Document) error {
	content, diags := block.Body.Content(bookingSchema)
	if diags.HasErrors() {
		return diagError(diags)
	}

	if attr, ok := content.Attributes["time_zone"]; ok {
		tz, err := stringAttr(attr)
		if err != nil {
			return err
		}
		doc.TimeZone = tz
	}
	zone, err := schedule.LoadZone(doc.TimeZone)
	if err != nil {
		return err
	}

	var dates [2]string
	for i, name := range []string{"start", "end"} {
		if dates[i], err = stringAttr(content.Attributes[name]); err != nil {
			return err
		}
	}
	r, err := schedule.ParseRange(dates[0], dates[1], zone)
	if err != nil {
		return err
	}
	doc.Period = &types.BookingPeriod{Start: r.Start, End: r.End}
	return nil
}

func decodeLineItem(block *hcl.Block, docCurrency money.Currency) (types.LineItem, error) {
	content, diags := block.Body.Content(lineItemSchema)
	if diags.HasErrors() {
		return types.LineItem{}, diagError(diags)
	}

	item := types.LineItem{Code: types.LineItemCode(block.Labels[0])}
	if !item.Code.Valid() {
		return item, errors.Newf(errors.TypeInput, "%s: invalid line item code %q", rangeOf(block.LabelRanges[0]), block.Labels[0])
	}

	parties, err := stringListAttr(content.Attributes["include_for"])
	if err != nil {
		return item, err
	}
	for _, p := range parties {
		item.IncludeFor = append(item.IncludeFor, types.Party(p))
	}

	cur := docCurrency
	if attr, ok := content.Attributes["currency"]; ok {
		s, err := stringAttr(attr)
		if err != nil {
			return item, err
		}
		cur = money.Currency(s).Canonical()
	}

	if item.Quantity, err = decimalAttr(content.Attributes["quantity"]); err != nil {
		return item, err
	}
	if item.UnitPrice, err = moneyAttr(content.Attributes["unit_price"], cur); err != nil {
		return item, err
	}
	if item.LineTotal, err = moneyAttr(content.Attributes["line_total"], cur); err != nil {
		return item, err
	}
	if attr, ok := content.Attributes["reversal"]; ok {
		v, err := value(attr)
		if err != nil {
			return item, err
		}
		if v.Type() != cty.Bool {
			return item, attrError(attr, "must be a bool")
		}
		item.Reversal = v.True()
	}

	return item, nil
}

// value evaluates a literal attribute. Variables and functions are not
// available, so anything unknown or null is rejected here.
func value(attr *hcl.Attribute) (cty.Value, error) {
	v, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, diagError(diags)
	}
	if !v.IsKnown() || v.IsNull() {
		return cty.NilVal, attrError(attr, "must be a known, non-null value")
	}
	return v, nil
}

func stringAttr(attr *hcl.Attribute) (string, error) {
	v, err := value(attr)
	if err != nil {
		return "", err
	}
	if v.Type() != cty.String {
		return "", attrError(attr, "must be a string")
	}
	return v.AsString(), nil
}

func stringListAttr(attr *hcl.Attribute) ([]string, error) {
	v, err := value(attr)
	if err != nil {
		return nil, err
	}
	if !v.Type().IsTupleType() && !v.Type().IsListType() {
		return nil, attrError(attr, "must be a list of strings")
	}
	var out []string
	for _, el := range v.AsValueSlice() {
		if el.Type() != cty.String || el.IsNull() {
			return nil, attrError(attr, "must be a list of strings")
		}
		out = append(out, el.AsString())
	}
	return out, nil
}

// decimalAttr accepts a number literal or a decimal string ("1.5")
func decimalAttr(attr *hcl.Attribute) (decimal.Decimal, error) {
	v, err := value(attr)
	if err != nil {
		return decimal.Zero, err
	}
	var text string
	switch v.Type() {
	case cty.Number:
		text = v.AsBigFloat().Text('f', -1)
	case cty.String:
		text = v.AsString()
	default:
		return decimal.Zero, attrError(attr, "must be a number")
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, attrError(attr, fmt.Sprintf("invalid decimal %q", text))
	}
	return d, nil
}

func moneyAttr(attr *hcl.Attribute, cur money.Currency) (money.Money, error) {
	d, err := decimalAttr(attr)
	if err != nil {
		return money.Money{}, err
	}
	m, err := money.Parse(d.String(), cur)
	if err != nil {
		return money.Money{}, attrError(attr, "must be a whole number of minor units")
	}
	return m, nil
}

func attrError(attr *hcl.Attribute, msg string) error {
	return errors.Newf(errors.TypeInput, "%s: %s %s", rangeOf(attr.Range), attr.Name, msg)
}

func rangeOf(r hcl.Range) string {
	return fmt.Sprintf("%s:%d", r.Filename, r.Start.Line)
}

func diagError(diags hcl.Diagnostics) error {
	return errors.Parsing("invalid line item document", diags)
}
