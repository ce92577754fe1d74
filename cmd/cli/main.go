// Package main is the entry point for the booking-cost CLI.
package main

import (
	"os"
	_ "time/tzdata"

	"booking-cost/cmd/cli/cmd"
	"booking-cost/internal/logging"
)

func main() {
	defer logging.Sync()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
