// Package dashboard runs the report pipeline: locate the input workbook,
// extract the sales table, aggregate it and render the dashboard.
package dashboard

import (
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/klytics/salesdash/internal/aggregate"
	"github.com/klytics/salesdash/internal/locate"
	"github.com/klytics/salesdash/internal/report"
	"github.com/klytics/salesdash/internal/sales"
)

// DefaultOutputFile is the dashboard file name written next to the input.
const DefaultOutputFile = "Dashboard_Xbox_Finalizado.xlsx"

// Options configures a pipeline run. The zero value uses the stock settings.
type Options struct {
	Output  string // bare file names land next to the input; empty = DefaultOutputFile
	Locate  locate.Options
	Columns sales.Columns
	Annual  string
	Report  report.Options
	Logger  *log.Logger
}

// Result describes one pipeline run.
type Result struct {
	Input   string             `json:"input"`
	Sheet   string             `json:"sheet"`
	Records int                `json:"records"`
	Summary *aggregate.Summary `json:"summary"`
	Layout  *report.Layout     `json:"layout,omitempty"`
	Output  string             `json:"output,omitempty"`
}

// NewLogger returns the pipeline's diagnostic logger writing to w.
// A nil writer discards everything.
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = io.Discard
	}
	return log.New(w, "[dashboard] ", log.LstdFlags)
}

// Run resolves the input in dir and generates the dashboard there.
// It returns locate.ErrNoInput without touching the output when dir holds
// no candidate workbook.
func Run(dir string, opts Options) (*Result, error) {
	input, err := Resolve(dir, opts)
	if err != nil {
		return nil, err
	}
	opts.Output = OutputPath(dir, opts.Output)
	return Generate(input, opts)
}

// Resolve picks the input workbook in dir, skipping the dashboard output.
func Resolve(dir string, opts Options) (string, error) {
	logger := opts.logger()
	lopts := opts.Locate
	out := filepath.Base(OutputPath(dir, opts.Output))
	lopts.Exclude = append(append([]string{}, lopts.Exclude...), out)

	input, err := locate.Resolve(dir, lopts)
	if err != nil {
		logger.Printf("no input in %s: %v", dir, err)
		return "", err
	}
	logger.Printf("using input %s", input)
	return input, nil
}

// Analyze loads and aggregates inputPath without writing anything.
func Analyze(inputPath string, opts Options) (*Result, error) {
	logger := opts.logger()

	t, err := sales.Load(inputPath, mergeColumns(opts.Columns))
	if err != nil {
		logger.Printf("could not load %s: %v", inputPath, err)
		return nil, err
	}
	logger.Printf("sheet %q: %d records, renewal columns: %v", t.Sheet, len(t.Records), t.HasRenewal)

	s := aggregate.Summarize(t, aggregate.Options{Annual: opts.Annual})
	logger.Printf("total %.2f across %d plans, %d renewal groups", s.Total, len(s.ByPlan), len(s.ByRenewal))

	return &Result{
		Input:   inputPath,
		Sheet:   t.Sheet,
		Records: len(t.Records),
		Summary: s,
	}, nil
}

// Generate renders the dashboard for inputPath. The output defaults to
// DefaultOutputFile in the input's directory and is overwritten if present.
func Generate(inputPath string, opts Options) (*Result, error) {
	res, err := Analyze(inputPath, opts)
	if err != nil {
		return nil, err
	}

	output := OutputPath(filepath.Dir(inputPath), opts.Output)
	if same, _ := samePath(inputPath, output); same {
		return nil, fmt.Errorf("output %s would overwrite the input; choose another --output", output)
	}

	layout, err := report.Render(res.Summary, output, opts.Report)
	if err != nil {
		return nil, fmt.Errorf("could not render dashboard: %w", err)
	}
	opts.logger().Printf("wrote %s (%d charts)", output, len(layout.Charts))

	res.Layout = layout
	res.Output = output
	return res, nil
}

// OutputPath places name in dir unless it is absolute or already carries
// a directory. An empty name means DefaultOutputFile.
func OutputPath(dir, name string) string {
	if name == "" {
		name = DefaultOutputFile
	}
	if filepath.IsAbs(name) || filepath.Dir(name) != "." {
		return name
	}
	return filepath.Join(dir, name)
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return NewLogger(nil)
}

func mergeColumns(c sales.Columns) sales.Columns {
	def := sales.DefaultColumns()
	if c.Value == "" {
		c.Value = def.Value
	}
	if c.Plan == "" {
		c.Plan = def.Plan
	}
	if c.SubscriptionType == "" {
		c.SubscriptionType = def.SubscriptionType
	}
	if c.AutoRenewal == "" {
		c.AutoRenewal = def.AutoRenewal
	}
	return c
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}
