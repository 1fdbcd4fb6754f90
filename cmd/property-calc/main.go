// Package main provides the property-calc command line. It wires the
// calculation subcommands and the HTTP server, loads configuration and
// initializes logging.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/iwvelando/property-calc/internal/config"
	"github.com/iwvelando/property-calc/pkg/constants"
	"github.com/iwvelando/property-calc/pkg/output"
	"github.com/iwvelando/property-calc/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// app carries state shared by every subcommand once the root command has
// loaded configuration.
type app struct {
	configPath   string
	logLevel     string
	outputFormat string

	conf   *config.Configuration
	logger *zap.Logger
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "property-calc",
		Short:         "Mortgage, borrowing capacity and tax calculators for property investors",
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", constants.DefaultConfigFile, "path to configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.StringVar(&a.outputFormat, "output-format", "", "type of output override: pretty, json")

	rootCmd.AddCommand(
		mortgageCommand(a),
		borrowingCommand(a),
		taxCommand(a),
		householdCommand(a),
		growthCommand(a),
		portfolioCommand(a),
		validateCommand(a),
		serveCommand(a),
	)

	return rootCmd
}

// load reads the configuration file, starts the logger and settles the output
// format. A missing default configuration file falls back to the built-in
// defaults; an explicitly named file must exist.
func (a *app) load() error {
	conf, err := config.LoadConfiguration(a.configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || a.configPath != constants.DefaultConfigFile {
			return fmt.Errorf("failed to load configuration at %s: %w", a.configPath, err)
		}
		conf = config.Default()
	}
	if err := conf.Validate(); err != nil {
		return fmt.Errorf("invalid configuration at %s: %w", a.configPath, err)
	}
	a.conf = conf

	logger, err := initializeLogger(conf.Logging, a.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	// CLI override takes precedence over config
	if a.outputFormat == "" {
		a.outputFormat = conf.Output.Format
	}
	if a.outputFormat == "" {
		a.outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(a.outputFormat); err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		a.logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.load"),
		)
	}
	return nil
}

// write renders a calculation result to the command's output.
func (a *app) write(cmd *cobra.Command, result any) error {
	return output.Write(cmd.OutOrStdout(), a.outputFormat, result)
}
