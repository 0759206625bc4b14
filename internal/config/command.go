package config

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/salesdash/internal/dashboard"
)

// FromCommand loads the configuration for a command, honoring the persistent
// --config and --verbose flags. Diagnostics go to the command's stderr when
// --verbose is set and are discarded otherwise. output.color: false turns
// off ANSI colors.
func FromCommand(cmd *cobra.Command) (*Config, dashboard.Options, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := Load(path)
	if err != nil {
		return nil, dashboard.Options{}, err
	}

	if !cfg.Output.Color {
		color.NoColor = true
	}

	opts := cfg.DashboardOptions()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		opts.Logger = dashboard.NewLogger(cmd.ErrOrStderr())
	}
	return cfg, opts, nil
}
