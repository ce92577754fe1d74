package output

import (
	"fmt"
	"io"
	"strings"

	"booking-cost/core/breakdown"
	"booking-cost/core/types"
)

// MarkdownFormatter renders a markdown table
type MarkdownFormatter struct {
	opts Options
}

// Format implements Formatter
func (f *MarkdownFormatter) Format() Format { return FormatMarkdown }

// Render implements Formatter
func (f *MarkdownFormatter) Render(w io.Writer, result *breakdown.Result) error {
	var b strings.Builder
	b.WriteString("| Item | Amount |\n|---|---:|\n")
	for _, l := range view(result, f.opts.Party) {
		fmt.Fprintf(&b, "| %s | %s |\n", lineLabel(l), l.Contribution.String())
	}
	if f.opts.Party != "" {
		fmt.Fprintf(&b, "| **Total** | **%s** |\n", result.Total(f.opts.Party).String())
	} else {
		for _, p := range types.Parties {
			fmt.Fprintf(&b, "| %s total | %s |\n", p, result.Total(p).String())
		}
		fmt.Fprintf(&b, "| **Total** | **%s** |\n", result.Grand().String())
	}
	_, err := io.WriteString(w, b.String())
	return err
}
