// Package generate provides the "salesdash generate" command.
package generate

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/salesdash/internal/config"
	"github.com/klytics/salesdash/internal/dashboard"
	"github.com/klytics/salesdash/internal/locate"
	"github.com/klytics/salesdash/internal/output"
	"github.com/klytics/salesdash/internal/progress"
	"github.com/klytics/salesdash/internal/sales"
)

// Flags are the generate options that override the configuration.
type Flags struct {
	Input     string
	Output    string
	SheetName string
}

// Outcome is the JSON payload of a generate run.
type Outcome struct {
	Generated bool   `json:"generated"`
	Reason    string `json:"reason,omitempty"`
	*dashboard.Result
}

// NewCommand returns the generate command.
func NewCommand() *cobra.Command {
	var f Flags

	cmd := &cobra.Command{
		Use:   "generate [dir]",
		Short: "Build the sales dashboard from the first workbook in a directory",
		Long: `Scans dir (default: the current directory) for a spreadsheet, picks the
first sheet that has "Total Value" and "Plan" columns, and writes a dashboard
workbook with the total revenue, revenue per plan and the annual auto-renewal
split.

Lock files (~$*) and the dashboard itself are never picked as input.

Examples:
  salesdash generate
  salesdash generate ./vendas --output Q3.xlsx
  salesdash generate --input exports/october.xlsx --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return Run(cmd, dir, f)
		},
	}

	cmd.Flags().StringVarP(&f.Input, "input", "i", "", "Use this workbook instead of scanning the directory")
	cmd.Flags().StringVarP(&f.Output, "output", "o", "", "Dashboard file (default: Dashboard_Xbox_Finalizado.xlsx)")
	cmd.Flags().StringVar(&f.SheetName, "sheet-name", "", "Dashboard worksheet name (default: Dashboard)")

	return cmd
}

// Run generates the dashboard for dir and reports the outcome on the
// command's output. The "not found" conditions end cleanly with exit 0.
func Run(cmd *cobra.Command, dir string, f Flags) error {
	jsonFlag, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	_, opts, err := config.FromCommand(cmd)
	if err != nil {
		return fail(out, jsonFlag, err)
	}
	if f.Output != "" {
		opts.Output = f.Output
	}
	if f.SheetName != "" {
		opts.Report.SheetName = f.SheetName
	}

	if !jsonFlag {
		color.New(color.FgCyan, color.Bold).Fprintln(out, "Starting sales dashboard generation...")
	}

	spinner := progress.NewSpinner("Building dashboard")
	if jsonFlag {
		spinner.Enabled = false
	}
	spinner.Start()

	var res *dashboard.Result
	if f.Input != "" {
		res, err = dashboard.Generate(f.Input, opts)
	} else {
		res, err = dashboard.Run(dir, opts)
	}
	spinner.Stop("")

	if reason, ok := NotFound(err); ok {
		if jsonFlag {
			return output.PrintJSON(out, "generate", Outcome{Reason: reason})
		}
		color.New(color.FgYellow).Fprintf(out, "%s.\n", Hint(err, dir))
		return nil
	}
	if err != nil {
		return fail(out, jsonFlag, err)
	}

	if jsonFlag {
		return output.PrintJSON(out, "generate", Outcome{Generated: true, Result: res})
	}
	PrintSummary(out, res)
	color.New(color.FgGreen).Fprintf(out, "Success! Dashboard '%s' written.\n", res.Output)
	return nil
}

// NotFound reports whether err is one of the clean early exits, with a
// machine-readable reason.
func NotFound(err error) (string, bool) {
	switch {
	case errors.Is(err, locate.ErrNoInput):
		return "no_input", true
	case errors.Is(err, sales.ErrNoQualifyingSheet):
		return "no_qualifying_sheet", true
	}
	return "", false
}

// Hint renders a not-found error for people.
func Hint(err error, dir string) string {
	if errors.Is(err, sales.ErrNoQualifyingSheet) {
		return `Data not found: no sheet has both "Total Value" and "Plan" columns`
	}
	abs, absErr := filepath.Abs(dir)
	if absErr != nil {
		abs = dir
	}
	return fmt.Sprintf("No data file found in %s (looking for .xlsx/.xlsm, skipping ~$ lock files)", abs)
}

// PrintSummary writes the input and aggregate lines of a run.
func PrintSummary(w io.Writer, res *dashboard.Result) {
	dim := color.New(color.FgHiBlack)
	dim.Fprintf(w, "  Input:   %s (sheet %q, %d rows)\n", res.Input, res.Sheet, res.Records)
	dim.Fprintf(w, "  Total:   %.2f\n", res.Summary.Total)
	dim.Fprintf(w, "  Plans:   %d\n", len(res.Summary.ByPlan))
	if res.Summary.RenewalFallback {
		dim.Fprintln(w, "  Renewal: columns missing, showing the No/Yes placeholder")
	} else {
		dim.Fprintf(w, "  Renewal: %d groups (annual subscriptions)\n", len(res.Summary.ByRenewal))
	}
}

func fail(w io.Writer, jsonFlag bool, err error) error {
	if jsonFlag {
		if encErr := output.PrintJSONError(w, "generate", err); encErr != nil {
			return encErr
		}
	}
	if errors.Is(err, sales.ErrUnreadable) {
		return fmt.Errorf("%w\nCheck that the file is a valid .xlsx workbook and is not open in another program", err)
	}
	return err
}
