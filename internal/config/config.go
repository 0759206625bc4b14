// Package config manages application configuration from files and environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/klytics/salesdash/internal/aggregate"
	"github.com/klytics/salesdash/internal/dashboard"
	"github.com/klytics/salesdash/internal/locate"
	"github.com/klytics/salesdash/internal/report"
	"github.com/klytics/salesdash/internal/sales"
)

// EnvPrefix prefixes every environment override, e.g. SALESDASH_OUTPUT_FILE.
const EnvPrefix = "SALESDASH"

// LocalFile is picked up from the working directory before the user config.
const LocalFile = "salesdash.yaml"

// Config holds the application configuration.
type Config struct {
	Input struct {
		Extensions []string `mapstructure:"extensions"`
		LockPrefix string   `mapstructure:"lock_prefix"`
	} `mapstructure:"input"`
	Output struct {
		File  string `mapstructure:"file"`
		Sheet string `mapstructure:"sheet"`
		Color bool   `mapstructure:"color"`
	} `mapstructure:"output"`
	Report struct {
		Title          string `mapstructure:"title"`
		TotalLabel     string `mapstructure:"total_label"`
		CurrencyFormat string `mapstructure:"currency_format"`
	} `mapstructure:"report"`
	Theme   report.Theme `mapstructure:"theme"`
	Columns struct {
		sales.Columns `mapstructure:",squash"`
		Annual        string `mapstructure:"annual"`
	} `mapstructure:"columns"`
}

// Load reads the configuration from path (or the default locations) and
// SALESDASH_* environment variables. A missing default file is not an error;
// a missing explicit path is.
func Load(path string) (*Config, error) {
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	file := path
	if file == "" {
		file = findConfigFile()
	}
	if file != "" {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			if path != "" || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("could not read config %s: %w", file, err)
			}
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("could not parse config: %w", err)
	}
	return &cfg, nil
}

// DashboardOptions maps the configuration onto a pipeline run.
func (c *Config) DashboardOptions() dashboard.Options {
	return dashboard.Options{
		Output: c.Output.File,
		Locate: locate.Options{
			Extensions: c.Input.Extensions,
			LockPrefix: c.Input.LockPrefix,
		},
		Columns: c.Columns.Columns,
		Annual:  c.Columns.Annual,
		Report: report.Options{
			SheetName:      c.Output.Sheet,
			Title:          c.Report.Title,
			TotalLabel:     c.Report.TotalLabel,
			CurrencyFormat: c.Report.CurrencyFormat,
			Theme:          c.Theme,
		},
	}
}

func setDefaults() {
	opts := report.DefaultOptions()
	cols := sales.DefaultColumns()

	viper.SetDefault("input.extensions", locate.DefaultExtensions)
	viper.SetDefault("input.lock_prefix", locate.DefaultLockPrefix)

	viper.SetDefault("output.file", dashboard.DefaultOutputFile)
	viper.SetDefault("output.sheet", opts.SheetName)
	viper.SetDefault("output.color", true)

	viper.SetDefault("report.title", opts.Title)
	viper.SetDefault("report.total_label", opts.TotalLabel)
	viper.SetDefault("report.currency_format", opts.CurrencyFormat)

	viper.SetDefault("theme.brand", opts.Theme.Brand)
	viper.SetDefault("theme.background", opts.Theme.Background)
	viper.SetDefault("theme.text", opts.Theme.Text)
	viper.SetDefault("theme.label", opts.Theme.Label)
	viper.SetDefault("theme.header", opts.Theme.Header)
	viper.SetDefault("theme.neutral", opts.Theme.Neutral)
	viper.SetDefault("theme.palette", opts.Theme.Palette)

	viper.SetDefault("columns.value", cols.Value)
	viper.SetDefault("columns.plan", cols.Plan)
	viper.SetDefault("columns.subscription_type", cols.SubscriptionType)
	viper.SetDefault("columns.auto_renewal", cols.AutoRenewal)
	viper.SetDefault("columns.annual", aggregate.DefaultAnnual)
}

// findConfigFile prefers ./salesdash.yaml over the user config.
func findConfigFile() string {
	if _, err := os.Stat(LocalFile); err == nil {
		return LocalFile
	}
	return ConfigPath()
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".salesdash"
	}
	return filepath.Join(home, ".salesdash")
}
