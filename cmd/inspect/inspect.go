// Package inspect provides the "salesdash inspect" command: a dry run that
// shows which workbook and sheet would be used and what would be plotted.
package inspect

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/salesdash/cmd/generate"
	"github.com/klytics/salesdash/internal/aggregate"
	"github.com/klytics/salesdash/internal/config"
	"github.com/klytics/salesdash/internal/dashboard"
	"github.com/klytics/salesdash/internal/formats/xlsx"
	"github.com/klytics/salesdash/internal/locate"
	"github.com/klytics/salesdash/internal/output"
)

// Report is the JSON payload of inspect.
type Report struct {
	Candidates []locate.FileInfo `json:"candidates"`
	Reason     string            `json:"reason,omitempty"`
	*dashboard.Result
}

// NewCommand returns the inspect command.
func NewCommand() *cobra.Command {
	var (
		input string
		rows  int
	)

	cmd := &cobra.Command{
		Use:   "inspect [dir]",
		Short: "Show the chosen input and its aggregates without writing anything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			jsonFlag, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			_, opts, err := config.FromCommand(cmd)
			if err != nil {
				return err
			}

			lopts := opts.Locate
			lopts.Exclude = append(lopts.Exclude, dashboard.OutputPath(dir, opts.Output))
			candidates, err := locate.Candidates(dir, lopts)
			if err != nil {
				return err
			}
			report := Report{Candidates: candidates}

			if input == "" {
				input, err = dashboard.Resolve(dir, opts)
			}
			var res *dashboard.Result
			if err == nil {
				res, err = dashboard.Analyze(input, opts)
			}

			if reason, ok := generate.NotFound(err); ok {
				report.Reason = reason
				if jsonFlag {
					return output.PrintJSON(out, "inspect", report)
				}
				printCandidates(out, candidates, "")
				color.New(color.FgYellow).Fprintf(out, "%s.\n", generate.Hint(err, dir))
				return nil
			}
			if err != nil {
				if jsonFlag {
					output.PrintJSONError(out, "inspect", err)
				}
				return err
			}
			report.Result = res

			if jsonFlag {
				return output.PrintJSON(out, "inspect", report)
			}

			printCandidates(out, candidates, res.Input)
			generate.PrintSummary(out, res)
			fmt.Fprintln(out)
			printGroups(out, "Revenue by plan", "Plan", res.Summary.ByPlan)
			printGroups(out, "Annual revenue by auto renewal", "Auto Renewal", res.Summary.ByRenewal)

			if rows > 0 {
				return printPreview(out, res.Input, res.Sheet, rows)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Inspect this workbook instead of scanning the directory")
	cmd.Flags().IntVar(&rows, "rows", 0, "Also preview the first N rows of the chosen sheet")

	return cmd
}

func printCandidates(w io.Writer, files []locate.FileInfo, chosen string) {
	color.New(color.Bold, color.FgCyan).Fprintf(w, "Candidates (%d)\n", len(files))
	if len(files) == 0 {
		color.New(color.FgHiBlack).Fprintln(w, "  (none)")
		return
	}
	rows := make([][]string, len(files))
	for i, f := range files {
		mark := ""
		if f.Path == chosen {
			mark = "*"
		}
		rows[i] = []string{mark, f.Name, locate.FormatSize(f.Size), f.ModifiedAt.Format("2006-01-02 15:04")}
	}
	output.NewWriterTo(w).WriteTable([]string{"", "name", "size", "modified"}, rows)
	fmt.Fprintln(w)
}

func printGroups(w io.Writer, title, key string, groups []aggregate.Group) {
	color.New(color.Bold, color.FgCyan).Fprintln(w, title)
	if len(groups) == 0 {
		color.New(color.FgHiBlack).Fprintln(w, "  (no rows)")
		fmt.Fprintln(w)
		return
	}
	rows := make([][]string, len(groups))
	for i, g := range groups {
		rows[i] = []string{g.Key, fmt.Sprintf("%.2f", g.Value)}
	}
	output.NewWriterTo(w).WriteTable([]string{key, "revenue"}, rows)
	fmt.Fprintln(w)
}

// printPreview shows the first n data rows of a sheet as an aligned grid.
func printPreview(w io.Writer, path, sheetName string, n int) error {
	wb, err := xlsx.ReadFile(path)
	if err != nil {
		return err
	}
	sheet, err := wb.GetSheet(sheetName)
	if err != nil {
		return err
	}

	color.New(color.Bold, color.FgCyan).Fprintf(w, "Sheet: %s\n", sheet.Name)
	shown := sheet.Rows
	if len(shown) > n+1 {
		shown = shown[:n+1]
	}

	widths := columnWidths(shown)
	dim := color.New(color.FgHiBlack)
	printRow(w, sheet.Header(), widths, color.New(color.Bold))
	dim.Fprint(w, "  ")
	for j, cw := range widths {
		if j > 0 {
			dim.Fprint(w, "+-")
		}
		dim.Fprint(w, strings.Repeat("-", cw+1))
	}
	fmt.Fprintln(w)
	for _, row := range shown[1:] {
		printRow(w, row, widths, nil)
	}
	dim.Fprintf(w, "  (%d of %d rows)\n", len(shown)-1, len(sheet.Body()))
	return nil
}

func columnWidths(rows [][]string) []int {
	var widths []int
	for _, row := range rows {
		for j, cell := range row {
			for len(widths) <= j {
				widths = append(widths, 0)
			}
			widths[j] = max(widths[j], utf8.RuneCountInString(cell))
		}
	}
	for i := range widths {
		widths[i] = min(max(widths[i], 3), 40)
	}
	return widths
}

func printRow(w io.Writer, row []string, widths []int, style *color.Color) {
	fmt.Fprint(w, "  ")
	for j := range widths {
		if j > 0 {
			fmt.Fprint(w, "| ")
		}
		cell := ""
		if j < len(row) {
			cell = row[j]
		}
		if r := []rune(cell); len(r) > widths[j] {
			cell = string(r[:widths[j]-1]) + "~"
		}
		padded := cell + strings.Repeat(" ", widths[j]-utf8.RuneCountInString(cell)+1)
		if style != nil {
			style.Fprint(w, padded)
		} else {
			fmt.Fprint(w, padded)
		}
	}
	fmt.Fprintln(w)
}
