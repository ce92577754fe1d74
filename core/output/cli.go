package output

import (
	"fmt"
	"io"
	"strings"

	"booking-cost/core/breakdown"
	"booking-cost/core/money"
	"booking-cost/core/types"
)

const (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"
	green = "\033[32m"
	cyan  = "\033[36m"
)

// CLIFormatter renders a terminal table
type CLIFormatter struct {
	opts Options
}

// Format implements Formatter
func (f *CLIFormatter) Format() Format { return FormatCLI }

func (f *CLIFormatter) color(c, text string) string {
	if f.opts.NoColor {
		return text
	}
	return c + text + reset
}

// Render implements Formatter
func (f *CLIFormatter) Render(w io.Writer, result *breakdown.Result) error {
	lines := view(result, f.opts.Party)

	labels := make([]string, len(lines))
	width := len("Total")
	for i, l := range lines {
		labels[i] = lineLabel(l)
		if len(labels[i]) > width {
			width = len(labels[i])
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", f.color(bold+cyan, "━━━ Price breakdown ("+string(result.UnitType())+") ━━━"))
	if p := result.Period(); p != nil {
		fmt.Fprintf(&b, "%s\n", f.color(dim, p.Start.Format("2006-01-02")+" → "+p.End.Format("2006-01-02")))
	}
	b.WriteString("\n")

	if len(lines) == 0 {
		fmt.Fprintf(&b, "  %s\n", f.color(dim, "no line items"))
	}
	for i, l := range lines {
		fmt.Fprintf(&b, "  %-*s  %14s\n", width, labels[i], l.Contribution.String())
	}

	b.WriteString("  " + strings.Repeat("─", width+16) + "\n")
	if f.opts.Party != "" {
		fmt.Fprintf(&b, "  %-*s  %s\n", width, "Total", f.color(bold+green, pad(result.Total(f.opts.Party))))
	} else {
		for _, p := range types.Parties {
			fmt.Fprintf(&b, "  %-*s  %14s\n", width, strings.ToUpper(string(p[:1]))+string(p[1:]), result.Total(p).String())
		}
		fmt.Fprintf(&b, "  %-*s  %s\n", width, "Total", f.color(bold+green, pad(result.Grand())))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func pad(m money.Money) string {
	return fmt.Sprintf("%14s", m.String())
}
