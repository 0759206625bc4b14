// Package doctor provides the "salesdash doctor" command for checking that a
// directory is ready for dashboard generation.
package doctor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/salesdash/internal/config"
	"github.com/klytics/salesdash/internal/dashboard"
	"github.com/klytics/salesdash/internal/locate"
	"github.com/klytics/salesdash/internal/output"
)

// Check represents a single health check result.
type Check struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Message string `json:"message"`
}

// NewCommand creates the "doctor" command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [dir]",
		Short: "Check configuration and input before generating",
		Long:  "Run diagnostic checks to verify salesdash can build a dashboard in dir.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path, _ := cmd.Flags().GetString("config")
			checks := RunChecks(dir, path)
			out := cmd.OutOrStdout()

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return output.PrintJSON(out, "doctor", checks)
			}

			green := color.New(color.FgGreen).SprintFunc()
			yellow := color.New(color.FgYellow).SprintFunc()
			red := color.New(color.FgRed).SprintFunc()

			fmt.Fprintln(out, "salesdash doctor")
			fmt.Fprintln(out, "================")
			fmt.Fprintln(out)

			okCount, warnCount, errCount := 0, 0, 0
			for _, c := range checks {
				var icon string
				switch c.Status {
				case "ok":
					icon = green("✓")
					okCount++
				case "warning":
					icon = yellow("!")
					warnCount++
				case "error":
					icon = red("✗")
					errCount++
				}
				fmt.Fprintf(out, "  %s %s: %s\n", icon, c.Name, c.Message)
			}

			fmt.Fprintln(out)
			fmt.Fprintf(out, "  %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

			if errCount > 0 {
				return fmt.Errorf("%d check(s) failed", errCount)
			}
			return nil
		},
	}
}

// RunChecks inspects the runtime, the configuration at configPath (empty
// means the usual lookup) and the input and output locations of dir.
func RunChecks(dir, configPath string) []Check {
	checks := []Check{{
		Name:    "Go Runtime",
		Status:  "ok",
		Message: fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
	}}

	cfg, err := config.Load(configPath)
	if err != nil {
		return append(checks, Check{Name: "Config", Status: "error", Message: err.Error()})
	}

	bad := 0
	for _, issue := range config.Validate() {
		switch issue.Severity {
		case "error", "warning":
			bad++
			checks = append(checks, Check{
				Name:    "Config " + issue.Key,
				Status:  issue.Severity,
				Message: issue.Message,
			})
		}
	}
	if bad == 0 {
		checks = append(checks, Check{Name: "Config", Status: "ok", Message: "valid"})
	}

	opts := cfg.DashboardOptions()
	checks = append(checks, inputCheck(dir, opts))
	checks = append(checks, outputCheck(dashboard.OutputPath(dir, opts.Output)))
	return checks
}

func inputCheck(dir string, opts dashboard.Options) Check {
	c := Check{Name: "Input"}
	path, err := dashboard.Resolve(dir, opts)
	switch {
	case err == nil:
		c.Status = "ok"
		c.Message = filepath.Base(path)
	case errors.Is(err, locate.ErrNoInput):
		c.Status = "warning"
		c.Message = fmt.Sprintf("no spreadsheet found in %s", dir)
		return c
	default:
		c.Status = "error"
		c.Message = err.Error()
		return c
	}

	res, err := dashboard.Analyze(path, opts)
	if err != nil {
		c.Status = "warning"
		c.Message = fmt.Sprintf("%s: %v", filepath.Base(path), err)
		return c
	}
	c.Message = fmt.Sprintf("%s (sheet %q, %d rows)", filepath.Base(path), res.Sheet, res.Records)
	return c
}

func outputCheck(target string) Check {
	c := Check{Name: "Output"}
	dir := filepath.Dir(target)
	f, err := os.CreateTemp(dir, ".salesdash-*")
	if err != nil {
		c.Status = "error"
		c.Message = fmt.Sprintf("%s is not writable: %v", dir, err)
		return c
	}
	f.Close()
	os.Remove(f.Name())

	c.Status = "ok"
	c.Message = target
	if _, err := os.Stat(target); err == nil {
		c.Message += " (will be overwritten)"
	}
	return c
}
