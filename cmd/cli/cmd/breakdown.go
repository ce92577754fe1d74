// Package cmd - breakdown command
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"booking-cost/adapters/lineitems"
	"booking-cost/core/breakdown"
	"booking-cost/core/output"
	"booking-cost/core/types"
	"booking-cost/internal/config"
	"booking-cost/internal/errors"
	"booking-cost/internal/logging"
)

var (
	outputFormat string
	party        string
	noColor      bool
	verifyTotals bool
)

// breakdownCmd represents the breakdown command
var breakdownCmd = &cobra.Command{
	Use:   "breakdown <file.hcl>",
	Short: "Compute the price breakdown of a line-item file",
	Long: `Load priced line items from an HCL file and print the breakdown.

Every line is listed, including zero-amount fees. Totals are exact.

Examples:
  booking-cost breakdown order.hcl
  booking-cost breakdown --party customer order.hcl
  booking-cost breakdown --format markdown --verify order.hcl`,
	Args: cobra.ExactArgs(1),
	RunE: runBreakdown,
}

func init() {
	breakdownCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json, markdown)")
	breakdownCmd.Flags().StringVarP(&party, "party", "p", "", "show one party's view (customer, provider)")
	breakdownCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	breakdownCmd.Flags().BoolVar(&verifyTotals, "verify", false, "check line totals against unit price x quantity")
}

func runBreakdown(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	doc, err := lineitems.Load(args[0], cfg.Pricing.DefaultCurrency)
	if err != nil {
		return err
	}
	logging.Debug("loaded line items",
		zap.String("file", args[0]),
		zap.Int("count", len(doc.Items)),
		zap.String("unit_type", string(doc.UnitType)))

	result, err := breakdown.Compute(doc.Items, doc.UnitType, breakdown.Options{
		DefaultCurrency:  doc.Currency,
		Period:           doc.Period,
		VerifyLineTotals: verifyTotals || cfg.Pricing.VerifyLineTotals,
	})
	if err != nil {
		return err
	}

	view := types.Party(party)
	if view == "" {
		view = cfg.Output.Party
	}
	if view != "" && !view.Valid() {
		return errors.Newf(errors.TypeInput, "unknown party %q", party)
	}

	format := output.Format(outputFormat)
	if format == "" {
		format = output.Format(cfg.Output.DefaultFormat)
	}
	formatter, err := output.NewRegistry(output.Options{Party: view, NoColor: noColor}).Get(format)
	if err != nil {
		return err
	}
	return formatter.Render(cmd.OutOrStdout(), result)
}
