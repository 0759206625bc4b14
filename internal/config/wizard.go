package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ConfigIssue represents a validation finding.
type ConfigIssue struct {
	Key      string `json:"key"`
	Severity string `json:"severity"` // "error", "warning", "info"
	Message  string `json:"message"`
	Fix      string `json:"fix"`
}

var hexColor = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)

// Excel rejects these characters in sheet names.
const invalidSheetChars = `[]:*?/\`

// Extensions excelize can save a workbook as.
var outputExtensions = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

var listKeys = []string{"input.extensions", "theme.palette"}

// Wizard prompts for the most common report settings and saves them.
// If reader is nil, reads from os.Stdin.
func Wizard(reader io.Reader) error {
	if reader == nil {
		reader = os.Stdin
	}
	scanner := bufio.NewScanner(reader)

	fmt.Println("salesdash setup")
	fmt.Println("Press Enter to keep the current value.")
	fmt.Println(strings.Repeat("-", 48))

	prompts := []struct {
		key, label string
	}{
		{"report.title", "Dashboard title"},
		{"output.file", "Output file"},
		{"report.currency_format", "Currency format"},
		{"theme.brand", "Brand color (#RRGGBB)"},
		{"columns.value", "Revenue column"},
		{"columns.plan", "Plan column"},
	}
	for i, p := range prompts {
		fmt.Printf("[%d/%d] %s [%s]: ", i+1, len(prompts), p.label, viper.GetString(p.key))
		if !scanner.Scan() {
			break
		}
		if v := strings.TrimSpace(scanner.Text()); v != "" {
			viper.Set(p.key, v)
		}
	}
	fmt.Println()

	if issues := errorsOnly(Validate()); len(issues) > 0 {
		return fmt.Errorf("invalid %s: %s", issues[0].Key, issues[0].Message)
	}
	if err := SaveConfig(); err != nil {
		return fmt.Errorf("could not save config: %w", err)
	}

	fmt.Printf("Config file: %s\n", configFile())
	fmt.Println("Type 'salesdash config show' to see all settings.")
	return nil
}

// WizardNonInteractive writes the defaults to the config file.
func WizardNonInteractive() error {
	return SaveConfig()
}

// Validate checks config values and returns a list of issues.
func Validate() []ConfigIssue {
	var issues []ConfigIssue

	for _, key := range []string{"theme.brand", "theme.background", "theme.text", "theme.label", "theme.header", "theme.neutral"} {
		if c := viper.GetString(key); !hexColor.MatchString(c) {
			issues = append(issues, ConfigIssue{
				Key:      key,
				Severity: "error",
				Message:  fmt.Sprintf("%q is not a #RRGGBB color", c),
				Fix:      fmt.Sprintf("salesdash config set %s #107C10", key),
			})
		}
	}
	for _, c := range viper.GetStringSlice("theme.palette") {
		if !hexColor.MatchString(c) {
			issues = append(issues, ConfigIssue{
				Key:      "theme.palette",
				Severity: "error",
				Message:  fmt.Sprintf("palette entry %q is not a #RRGGBB color", c),
				Fix:      "salesdash config set theme.palette #7FBA00,#3A96DD",
			})
		}
	}

	out := viper.GetString("output.file")
	if ext := strings.ToLower(filepath.Ext(out)); !lo.Contains(outputExtensions, ext) {
		issues = append(issues, ConfigIssue{
			Key:      "output.file",
			Severity: "error",
			Message:  fmt.Sprintf("output %q must end in one of %s", out, strings.Join(outputExtensions, ", ")),
			Fix:      "salesdash config set output.file Dashboard.xlsx",
		})
	}

	if msg := checkSheetName(viper.GetString("output.sheet")); msg != "" {
		issues = append(issues, ConfigIssue{
			Key:      "output.sheet",
			Severity: "error",
			Message:  msg,
			Fix:      "salesdash config set output.sheet Dashboard",
		})
	}

	for _, key := range []string{"columns.value", "columns.plan"} {
		if strings.TrimSpace(viper.GetString(key)) == "" {
			issues = append(issues, ConfigIssue{
				Key:      key,
				Severity: "error",
				Message:  "required column name is empty",
				Fix:      "salesdash config reset",
			})
		}
	}
	for _, key := range []string{"columns.subscription_type", "columns.auto_renewal", "columns.annual"} {
		if strings.TrimSpace(viper.GetString(key)) == "" {
			issues = append(issues, ConfigIssue{
				Key:      key,
				Severity: "warning",
				Message:  "column name is empty; the renewal chart will always show the fallback",
			})
		}
	}

	if len(viper.GetStringSlice("input.extensions")) == 0 {
		issues = append(issues, ConfigIssue{
			Key:      "input.extensions",
			Severity: "error",
			Message:  "no input extensions configured",
			Fix:      "salesdash config set input.extensions .xlsx,.xlsm",
		})
	}

	if viper.GetString("report.currency_format") == "" {
		issues = append(issues, ConfigIssue{
			Key:      "report.currency_format",
			Severity: "warning",
			Message:  "currency format is empty; values render without a symbol",
		})
	}

	if used := viper.ConfigFileUsed(); used != "" {
		if _, err := os.Stat(used); err == nil {
			issues = append(issues, ConfigIssue{
				Key:      "config",
				Severity: "info",
				Message:  fmt.Sprintf("loaded %s", used),
			})
		}
	}

	return issues
}

func checkSheetName(name string) string {
	switch {
	case name == "":
		return "sheet name is empty"
	case len([]rune(name)) > 31:
		return fmt.Sprintf("sheet name %q is longer than 31 characters", name)
	case strings.ContainsAny(name, invalidSheetChars):
		return fmt.Sprintf("sheet name %q contains one of %s", name, invalidSheetChars)
	}
	return ""
}

func errorsOnly(issues []ConfigIssue) []ConfigIssue {
	return lo.Filter(issues, func(i ConfigIssue, _ int) bool { return i.Severity == "error" })
}

// ToEnv returns all config values as a map of env var name -> value.
func ToEnv() map[string]string {
	env := make(map[string]string)
	for _, key := range viper.AllKeys() {
		name := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if lo.Contains(listKeys, key) {
			env[name] = strings.Join(viper.GetStringSlice(key), ",")
			continue
		}
		env[name] = viper.GetString(key)
	}
	return env
}

// Set sets a config value and saves to disk. List keys take a
// comma-separated value.
func Set(key, value string) error {
	key = strings.ToLower(key)
	if !lo.Contains(viper.AllKeys(), key) {
		return fmt.Errorf("unknown config key %q; run 'salesdash config show' to list keys", key)
	}

	switch {
	case lo.Contains(listKeys, key):
		parts := lo.Map(strings.Split(value, ","), func(s string, _ int) string { return strings.TrimSpace(s) })
		viper.Set(key, lo.Compact(parts))
	case key == "output.color":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("output.color must be true or false, got %q", value)
		}
		viper.Set(key, b)
	default:
		viper.Set(key, value)
	}
	return SaveConfig()
}

// Get retrieves a config value.
func Get(key string) string {
	if lo.Contains(listKeys, key) {
		return strings.Join(viper.GetStringSlice(key), ",")
	}
	return viper.GetString(key)
}

// Keys lists every known config key, sorted.
func Keys() []string {
	keys := viper.AllKeys()
	sort.Strings(keys)
	return keys
}

// ResetConfig deletes the config file and restores the defaults.
func ResetConfig() error {
	path := configFile()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete config: %w", err)
	}
	viper.Reset()
	setDefaults()
	return nil
}

// SaveConfig writes the current config to the file it was loaded from,
// or ~/.salesdash/config.yaml.
func SaveConfig() error {
	path := configFile()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("could not write config: %w", err)
	}
	return nil
}

// ConfigPath returns the path to the user config file.
func ConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

func configFile() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return ConfigPath()
}

// ShowConfig returns the effective configuration as YAML.
func ShowConfig() (string, error) {
	data, err := yaml.Marshal(viper.AllSettings())
	if err != nil {
		return "", fmt.Errorf("could not render config: %w", err)
	}
	return fmt.Sprintf("# Config: %s\n%s", configFile(), data), nil
}
