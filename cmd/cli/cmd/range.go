// Package cmd - range commands
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"booking-cost/core/schedule"
	"booking-cost/internal/config"
	"booking-cost/internal/errors"
	"booking-cost/internal/logging"
)

var (
	rangeZone    string
	rangeLocal   string
	rangeStart   string
	rangeEnd     string
	rangeToday   string
	rangeMaxDays int
)

// rangeCmd groups the exception range commands
var rangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Normalize and validate availability exception ranges",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var rangeValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a date range against the actionable window",
	Long: `Validate an exception range given as ISO dates in the listing's time zone.

The range must be ordered and both endpoints must lie within the window
that starts today and spans max-days days.

Examples:
  booking-cost range validate --tz Europe/Helsinki --start 2026-11-01 --end 2026-11-05
  booking-cost range validate --tz Etc/UTC --start 2017-04-15 --end 2017-04-16 --today 2017-04-01`,
	RunE: runRangeValidate,
}

var rangeNormalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Anchor picker days to the start of day in the listing's time zone",
	Long: `Normalize picker days chosen in a local time zone to start-of-day
instants in the listing's time zone, and show how they round-trip back.

Examples:
  booking-cost range normalize --tz Pacific/Auckland --local-tz America/Los_Angeles --start 2026-11-01 --end 2026-11-03`,
	RunE: runRangeNormalize,
}

func init() {
	rangeCmd.PersistentFlags().StringVar(&rangeZone, "tz", "", "listing time zone (IANA name)")
	rangeCmd.PersistentFlags().StringVar(&rangeStart, "start", "", "start date (YYYY-MM-DD)")
	rangeCmd.PersistentFlags().StringVar(&rangeEnd, "end", "", "end date (YYYY-MM-DD)")

	rangeValidateCmd.Flags().StringVar(&rangeToday, "today", "", "override today (YYYY-MM-DD)")
	rangeValidateCmd.Flags().IntVar(&rangeMaxDays, "max-days", 0, "window length in days (default from config)")

	rangeNormalizeCmd.Flags().StringVar(&rangeLocal, "local-tz", "Etc/UTC", "time zone the days were picked in")

	rangeCmd.AddCommand(rangeValidateCmd)
	rangeCmd.AddCommand(rangeNormalizeCmd)
}

func listingZone() (*time.Location, error) {
	name := rangeZone
	if name == "" {
		name = config.Get().Availability.DefaultTimeZone
	}
	return schedule.LoadZone(name)
}

func runRangeValidate(cmd *cobra.Command, args []string) error {
	zone, err := listingZone()
	if err != nil {
		return err
	}
	rg, err := schedule.ParseRange(rangeStart, rangeEnd, zone)
	if err != nil {
		return err
	}

	today := time.Now()
	if rangeToday != "" {
		if today, err = schedule.ParseISO(rangeToday, zone); err != nil {
			return err
		}
	}
	maxDays := rangeMaxDays
	if maxDays <= 0 {
		maxDays = config.Get().Availability.MaxRangeDays
	}

	if err := schedule.Validate(rg, zone, today, maxDays); err != nil {
		return err
	}

	windowStart, windowEnd := schedule.Window(today, zone, maxDays)
	logging.Debug("range validated",
		zap.String("zone", zone.String()),
		zap.Int("days", rg.Days(zone)))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "valid: %s -> %s (%d days)\n", rangeStart, rangeEnd, rg.Days(zone))
	fmt.Fprintf(out, "window: %s -> %s\n",
		schedule.FormatISO(windowStart, zone), schedule.FormatISO(windowEnd, zone))
	return nil
}

func runRangeNormalize(cmd *cobra.Command, args []string) error {
	zone, err := listingZone()
	if err != nil {
		return err
	}
	local, err := schedule.LoadZone(rangeLocal)
	if err != nil {
		return err
	}

	var raw schedule.RawRange
	if raw.Start, err = pickerDay(rangeStart, local); err != nil {
		return err
	}
	if raw.End, err = pickerDay(rangeEnd, local); err != nil {
		return err
	}

	normalized, err := schedule.Normalize(raw, zone)
	if err != nil {
		return err
	}
	shown := schedule.Display(normalized, zone, local)

	out := cmd.OutOrStdout()
	for _, row := range []struct {
		label   string
		at, see time.Time
	}{{"start", normalized.Start, shown.Start}, {"end", normalized.End, shown.End}} {
		if row.at.IsZero() {
			fmt.Fprintf(out, "%-5s  (none)\n", row.label)
			continue
		}
		fmt.Fprintf(out, "%-5s  %s  %s  shown as %s\n", row.label,
			schedule.FormatISO(row.at, zone), row.at.Format(time.RFC3339), row.see.Format(time.RFC3339))
	}
	return nil
}

// pickerDay turns an ISO date into the local-noon instant a date picker emits
func pickerDay(s string, local *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(schedule.ISODate, s, local)
	if err != nil {
		return time.Time{}, errors.Parsing(fmt.Sprintf("invalid date %q", s), err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, local), nil
}
