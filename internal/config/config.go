// Package config defines the data structures related to configuration and
// includes functions for loading, defaulting and validating it.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/property-calc/pkg/calc"
	"github.com/iwvelando/property-calc/pkg/constants"
	"github.com/iwvelando/property-calc/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for property-calc.
type Configuration struct {
	Logging   LoggingConfig        `yaml:"logging,omitempty"`
	Output    OutputConfig         `yaml:"output,omitempty"`
	Borrowing calc.BorrowingPolicy `yaml:"borrowing,omitempty"`
	Tax       TaxConfig            `yaml:"tax,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, json
}

// TaxConfig holds the bracket table used for every tax calculation.
type TaxConfig struct {
	Brackets calc.TaxTable `yaml:"brackets,omitempty"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Configuration {
	return &Configuration{
		Logging:   LoggingConfig{Level: "info", Format: "json"},
		Output:    OutputConfig{Format: constants.OutputFormatPretty},
		Borrowing: calc.DefaultBorrowingPolicy(),
		Tax:       TaxConfig{Brackets: calc.DefaultTaxTable()},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("borrowing.multiplier", constants.DefaultBorrowingMultiplier)
	v.SetDefault("borrowing.dependantDeduction", constants.DefaultDependantDeduction)

	// PROPERTYCALC_BORROWING_MULTIPLIER overrides borrowing.multiplier
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Settings missing from the file take their defaults.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if len(configuration.Tax.Brackets) == 0 {
		configuration.Tax.Brackets = calc.DefaultTaxTable()
	}

	return &configuration, nil
}

// Validate rejects configuration that would make calculations fail.
func (c *Configuration) Validate() error {
	if err := validation.Struct(c.Borrowing); err != nil {
		return fmt.Errorf("borrowing: %w", err)
	}
	if err := c.Tax.Brackets.Validate(); err != nil {
		return fmt.Errorf("tax: %w", err)
	}
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			return fmt.Errorf("output: %w", err)
		}
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings for settings that are legal but unusual.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if !c.Tax.Brackets.IsProgressive() {
		warnings = append(warnings, "tax brackets are not progressive: a higher band has a lower rate than the band below it")
	}
	if n := len(c.Tax.Brackets); n > 0 && c.Tax.Brackets[n-1].Rate == 0 {
		warnings = append(warnings, "top tax bracket has a zero rate")
	}
	if c.Borrowing.Multiplier > maxTypicalMultiplier {
		warnings = append(warnings, fmt.Sprintf("borrowing multiplier %.1f is above the typical lending limit of %.0f", c.Borrowing.Multiplier, maxTypicalMultiplier))
	}
	if c.Borrowing.DependantDeduction == 0 {
		warnings = append(warnings, "dependant deduction is zero: dependants will not reduce borrowing capacity")
	}

	return warnings
}

// maxTypicalMultiplier is the income multiple above which lenders rarely go.
const maxTypicalMultiplier = 10.0
