package config

import (
	"os"
	"path/filepath"
	"testing"

	"booking-cost/internal/errors"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Availability.MaxRangeDays != 366 {
		t.Errorf("expected 366, got %d", cfg.Availability.MaxRangeDays)
	}
	if cfg.Pricing.DefaultCurrency != "USD" {
		t.Errorf("expected USD, got %s", cfg.Pricing.DefaultCurrency)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.Pricing.DefaultCurrency = "EUR"
	cfg.Availability.MaxRangeDays = 90
	cfg.Availability.Storage = "file"
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Pricing.DefaultCurrency != "EUR" || loaded.Availability.MaxRangeDays != 90 || loaded.Availability.Storage != "file" {
		t.Fatalf("round trip lost values: %+v", loaded)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad json":     `{`,
		"bad currency": `{"pricing": {"default_currency": "DOLLARS"}}`,
		"bad window":   `{"availability": {"max_range_days": 0}}`,
		"bad storage":  `{"availability": {"storage": "s3"}}`,
		"bad party":    `{"output": {"party": "operator"}}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.IsType(err, errors.TypeConfig) {
				t.Fatalf("expected CONFIG_ERROR, got %v", err)
			}
		})
	}
}
