package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/property-calc/pkg/calc"
	"github.com/iwvelando/property-calc/pkg/constants"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Test fixture",
			configPath: "../../test/test_config.yaml",
		},
		{
			name:       "Example config",
			configPath: "../../" + constants.ExampleConfigFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
				return
			}
			if err := config.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	config, err := LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.Logging.Level != "debug" || config.Logging.Format != "console" {
		t.Errorf("Logging = %+v, expected debug/console", config.Logging)
	}
	if config.Output.Format != constants.OutputFormatJSON {
		t.Errorf("Output.Format = %s, expected json", config.Output.Format)
	}
	if config.Borrowing.Multiplier != 5.5 || config.Borrowing.DependantDeduction != 7500 {
		t.Errorf("Borrowing = %+v, expected 5.5/7500", config.Borrowing)
	}

	brackets := config.Tax.Brackets
	if len(brackets) != 5 {
		t.Fatalf("expected 5 brackets, got %d", len(brackets))
	}
	if brackets[4].Max != nil {
		t.Errorf("expected top bracket to be unbounded, got max %v", *brackets[4].Max)
	}
	if brackets[1].Max == nil || *brackets[1].Max != 45000 {
		t.Errorf("expected second bracket to end at 45000")
	}
	if got := brackets.CalculateTax(45000); math.Abs(got-5092) > 0.005 {
		t.Errorf("CalculateTax(45000) = %.2f, expected 5092.00", got)
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: warn\n")

	config, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %s, expected warn", config.Logging.Level)
	}
	if config.Logging.Format != "json" {
		t.Errorf("Logging.Format = %s, expected json default", config.Logging.Format)
	}
	if config.Output.Format != constants.OutputFormatPretty {
		t.Errorf("Output.Format = %s, expected pretty default", config.Output.Format)
	}
	if config.Borrowing != calc.DefaultBorrowingPolicy() {
		t.Errorf("Borrowing = %+v, expected defaults", config.Borrowing)
	}
	if len(config.Tax.Brackets) != len(calc.DefaultTaxTable()) {
		t.Errorf("expected default tax table, got %d brackets", len(config.Tax.Brackets))
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadConfigurationEnvironmentOverride(t *testing.T) {
	t.Setenv("PROPERTYCALC_BORROWING_MULTIPLIER", "4.25")
	t.Setenv("PROPERTYCALC_OUTPUT_FORMAT", "json")

	config, err := LoadConfigurationFromReader(strings.NewReader("borrowing:\n  multiplier: 7\n"))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if config.Borrowing.Multiplier != 4.25 {
		t.Errorf("Borrowing.Multiplier = %v, expected environment value 4.25", config.Borrowing.Multiplier)
	}
	if config.Output.Format != "json" {
		t.Errorf("Output.Format = %s, expected environment value json", config.Output.Format)
	}
}

func TestLoadConfigurationMalformed(t *testing.T) {
	path := writeConfig(t, "borrowing: [unterminated\n")
	if _, err := LoadConfiguration(path); err == nil {
		t.Error("LoadConfiguration() expected error for malformed YAML")
	}
}

func TestConfigurationValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Configuration)
		wantError error
	}{
		{
			name:   "defaults",
			modify: func(*Configuration) {},
		},
		{
			name:      "zero multiplier",
			modify:    func(c *Configuration) { c.Borrowing.Multiplier = 0 },
			wantError: calc.ErrInvalidInput,
		},
		{
			name: "bracket gap",
			modify: func(c *Configuration) {
				c.Tax.Brackets = calc.TaxTable{
					{Min: 0, Max: calc.Bound(1000), Rate: 0},
					{Min: 2000, Rate: 0.2},
				}
			},
			wantError: calc.ErrInvalidTaxTable,
		},
		{
			name:      "unknown output format",
			modify:    func(c *Configuration) { c.Output.Format = "csv" },
			wantError: errors.New("any"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.modify(config)

			err := config.Validate()
			if tt.wantError == nil {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected error but got none")
			}
			if errors.Is(tt.wantError, calc.ErrInvalidInput) && !errors.Is(err, tt.wantError) {
				t.Errorf("Validate() error = %v, expected %v", err, tt.wantError)
			}
		})
	}
}

func TestValidateConfiguration(t *testing.T) {
	if warnings := Default().ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("expected no warnings for defaults, got %v", warnings)
	}

	conf := Default()
	conf.Borrowing = calc.BorrowingPolicy{Multiplier: 12}
	conf.Tax.Brackets = calc.TaxTable{
		{Min: 0, Max: calc.Bound(50000), Rate: 0.3},
		{Min: 50000, Rate: 0},
	}

	warnings := conf.ValidateConfiguration()
	if len(warnings) != 4 {
		t.Errorf("expected 4 warnings, got %d: %v", len(warnings), warnings)
	}
	for i, warning := range warnings {
		t.Logf("%d. %s", i+1, warning)
	}
	const multiplierWarning = "borrowing multiplier 12.0 is above the typical lending limit of 10"
	found := false
	for _, warning := range warnings {
		if strings.Contains(warning, "%!") {
			t.Errorf("malformed warning %q", warning)
		}
		found = found || warning == multiplierWarning
	}
	if !found {
		t.Errorf("expected warning %q in %v", multiplierWarning, warnings)
	}
	if err := conf.Validate(); err != nil {
		t.Errorf("warnings must not fail validation: %v", err)
	}
}
