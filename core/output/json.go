package output

import (
	"encoding/json"
	"io"

	"booking-cost/core/breakdown"
	"booking-cost/core/money"
	"booking-cost/core/types"
)

// JSONFormatter renders the breakdown as indented JSON
type JSONFormatter struct {
	opts Options
}

// Format implements Formatter
func (f *JSONFormatter) Format() Format { return FormatJSON }

type partyView struct {
	Party types.Party      `json:"party"`
	Lines []breakdown.Line `json:"lines"`
	Total money.Money      `json:"total"`
}

// Render implements Formatter
func (f *JSONFormatter) Render(w io.Writer, result *breakdown.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if f.opts.Party == "" {
		return enc.Encode(result)
	}
	lines := view(result, f.opts.Party)
	if lines == nil {
		lines = []breakdown.Line{}
	}
	return enc.Encode(partyView{
		Party: f.opts.Party,
		Lines: lines,
		Total: result.Total(f.opts.Party),
	})
}
