// Package output provides output formatting for price breakdowns.
// This package produces human and machine-readable outputs.
package output

import (
	"fmt"
	"io"
	"sort"

	"booking-cost/core/breakdown"
	"booking-cost/core/types"
	"booking-cost/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown table
	FormatMarkdown Format = "markdown"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given breakdown
	Render(w io.Writer, result *breakdown.Result) error
}

// Options control what a formatter shows
type Options struct {
	// Party limits lines and totals to one party's view; empty shows all
	Party types.Party

	// NoColor disables ANSI colors in CLI output
	NoColor bool
}

// Registry maps formats to formatters
type Registry struct {
	formatters map[Format]Formatter
}

// NewRegistry returns a registry holding every built-in formatter
func NewRegistry(opts Options) *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	r.Register(&CLIFormatter{opts: opts})
	r.Register(&JSONFormatter{opts: opts})
	r.Register(&MarkdownFormatter{opts: opts})
	return r
}

// Register adds or replaces a formatter
func (r *Registry) Register(f Formatter) {
	r.formatters[f.Format()] = f
}

// Get returns the formatter for a format
func (r *Registry) Get(format Format) (Formatter, error) {
	f, ok := r.formatters[format]
	if !ok {
		return nil, errors.Newf(errors.TypeInput, "unknown output format %q (want one of %v)", format, r.Formats()).
			WithContext("format", string(format))
	}
	return f, nil
}

// Formats lists registered formats in sorted order
func (r *Registry) Formats() []Format {
	out := make([]Format, 0, len(r.formatters))
	for f := range r.formatters {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// view selects the lines a party sees, or all lines
func view(result *breakdown.Result, party types.Party) []breakdown.Line {
	if party == "" {
		return result.Lines()
	}
	return result.Filter(party)
}

// lineLabel renders "units x 2" style labels
func lineLabel(l breakdown.Line) string {
	label := l.Item.Code.Label()
	if l.Item.Reversal {
		label += " (refund)"
	}
	if l.Item.Code.IsFee() {
		return label
	}
	return fmt.Sprintf("%s x %s", label, l.Item.Quantity.String())
}
