package main

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dora-network/num2int/logger"
	"github.com/dora-network/num2int/numeric"
	"github.com/dora-network/num2int/planner"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format     string // "table" | "json"
	ConfigPath string
	LogLevel   string

	config *planner.Config
	logger zerolog.Logger
}

// Config loads the worker configuration on first use, from ConfigPath when set and the
// NUM2INT_* environment otherwise. Only commands that reach redis or Kafka call it.
func (o *RootOptions) Config() (planner.Config, error) {
	if o.config != nil {
		return *o.config, nil
	}
	var (
		cfg planner.Config
		err error
	)
	if o.ConfigPath != "" {
		cfg, err = planner.LoadConfigFile(o.ConfigPath)
	} else {
		cfg, err = planner.LoadConfig()
	}
	if err != nil {
		return planner.Config{}, err
	}
	o.config = &cfg
	return cfg, nil
}

var ValidFormats = []string{"table", "json"}

// NewRootCommand creates the root command of the num2int CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "num2int",
		Short: "Exact comparisons between integers and decimal or float values",
		Long: `num2int compares integers with decimals and floats exactly, folds such comparisons
in predicates into plain integer comparisons, and runs the catalog-backed folding worker.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			l, err := logger.New(opts.LogLevel, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", opts.LogLevel, err)
			}
			opts.logger = l
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "table", "output format (table|json)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML config file, overridden by NUM2INT_* variables")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level for command output")

	cmd.AddCommand(NewCompareCommand(opts))
	cmd.AddCommand(NewFoldCommand(opts))
	cmd.AddCommand(NewHashCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

func widthFlag(cmd *cobra.Command, p *string) {
	cmd.Flags().StringVarP(p, "width", "w", "int4", "integer column type (int2|int4|int8)")
}

func parseWidthFlag(s string) (numeric.Width, error) {
	w, err := numeric.ParseWidth(s)
	if err != nil {
		return 0, fmt.Errorf("--width: %w", err)
	}
	return w, nil
}
