// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"booking-cost/core/types"
	"booking-cost/internal/errors"
	"booking-cost/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Pricing contains breakdown settings
	Pricing PricingConfig `json:"pricing"`

	// Availability contains exception window settings
	Availability AvailabilityConfig `json:"availability"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Server contains HTTP server settings
	Server ServerConfig `json:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// PricingConfig contains pricing-related settings
type PricingConfig struct {
	// DefaultCurrency is used for empty breakdowns
	DefaultCurrency types.Currency `json:"default_currency"`

	// VerifyLineTotals checks lineTotal == unitPrice * quantity
	VerifyLineTotals bool `json:"verify_line_totals"`
}

// AvailabilityConfig contains availability exception settings
type AvailabilityConfig struct {
	// MaxRangeDays is the length of the actionable window
	MaxRangeDays int `json:"max_range_days"`

	// DefaultTimeZone is used when a listing carries no zone
	DefaultTimeZone string `json:"default_time_zone"`

	// Storage selects the exception store backend (memory, file)
	Storage string `json:"storage"`

	// StoragePath is the directory of the file backend
	StoragePath string `json:"storage_path,omitempty"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format"`

	// Party limits the rendered breakdown to one party view
	Party types.Party `json:"party,omitempty"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr"`

	// ReadTimeoutSeconds bounds request reads
	ReadTimeoutSeconds int `json:"read_timeout_seconds"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Pricing: PricingConfig{
			DefaultCurrency: types.CurrencyUSD,
		},
		Availability: AvailabilityConfig{
			MaxRangeDays:    366,
			DefaultTimeZone: "Etc/UTC",
			Storage:         "memory",
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
		},
		Server: ServerConfig{
			Addr:               ":8080",
			ReadTimeoutSeconds: 15,
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns $HOME/.booking-cost.json
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".booking-cost.json")
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "invalid config file "+path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration for values the engines cannot use
func (c *Config) Validate() error {
	c.Pricing.DefaultCurrency = c.Pricing.DefaultCurrency.Canonical()
	if !c.Pricing.DefaultCurrency.Valid() {
		return errors.Newf(errors.TypeConfig, "pricing.default_currency %q is not an ISO 4217 code", c.Pricing.DefaultCurrency)
	}
	if c.Availability.MaxRangeDays <= 0 {
		return errors.New(errors.TypeConfig, "availability.max_range_days must be positive")
	}
	if s := c.Availability.Storage; s != "" && s != "memory" && s != "file" {
		return errors.Newf(errors.TypeConfig, "availability.storage %q is not memory or file", s)
	}
	if c.Output.Party != "" && !c.Output.Party.Valid() {
		return errors.Newf(errors.TypeConfig, "output.party %q is not customer or provider", c.Output.Party)
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
