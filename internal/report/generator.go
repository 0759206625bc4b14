// Package report renders the sales dashboard workbook: a title, the total
// revenue, two lookup tables and the column and doughnut charts that plot them.
package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/klytics/salesdash/internal/aggregate"
)

// Theme is the light color scheme of the dashboard. Colors are #RRGGBB.
type Theme struct {
	Brand      string   `json:"brand" mapstructure:"brand"`
	Background string   `json:"background" mapstructure:"background"`
	Text       string   `json:"text" mapstructure:"text"`
	Label      string   `json:"label" mapstructure:"label"`
	Header     string   `json:"header" mapstructure:"header"`
	Neutral    string   `json:"neutral" mapstructure:"neutral"`
	Palette    []string `json:"palette" mapstructure:"palette"`
}

// Options configures rendering.
type Options struct {
	SheetName      string `json:"sheetName"`
	Title          string `json:"title"`
	TotalLabel     string `json:"totalLabel"`
	CurrencyFormat string `json:"currencyFormat"`
	Theme          Theme  `json:"theme"`
}

// DefaultTheme returns the light Xbox-green scheme.
func DefaultTheme() Theme {
	return Theme{
		Brand:      "#107C10",
		Background: "#FFFFFF",
		Text:       "#000000",
		Label:      "#555555",
		Header:     "#E0E0E0",
		Neutral:    "#CCCCCC",
		Palette:    []string{"#7FBA00", "#3A96DD", "#FFB900", "#E74856", "#8764B8"},
	}
}

// DefaultOptions returns the stock dashboard settings.
func DefaultOptions() Options {
	return Options{
		SheetName:      "Dashboard",
		Title:          "XBOX GAME PASS - SALES DASHBOARD",
		TotalLabel:     "FATURAMENTO TOTAL",
		CurrencyFormat: `"R$" #,##0`,
		Theme:          DefaultTheme(),
	}
}

// Table and chart captions.
const (
	planHeader      = "Plano"
	renewalHeader   = "Renovação"
	revenueHeader   = "Receita"
	planChartTitle  = "Receita por Plano (R$)"
	renewChartTitle = "Renovação Automática (Anual)"
)

// Render writes the dashboard for s to path, replacing any existing file.
func Render(s *aggregate.Summary, path string, opts Options) (*Layout, error) {
	opts = withDefaults(opts)

	f := excelize.NewFile()
	defer f.Close()

	sheet := opts.SheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("could not name sheet %q: %w", sheet, err)
	}

	st, err := newStyles(f, opts)
	if err != nil {
		return nil, err
	}

	if err := writeSummary(f, sheet, s.Total, opts, st); err != nil {
		return nil, err
	}

	layout := &Layout{
		Sheet:   sheet,
		Plan:    tableRange(planKeyCol, len(s.ByPlan)),
		Renewal: tableRange(renewalKeyCol, len(s.ByRenewal)),
	}
	if err := writeTable(f, sheet, layout.Plan, planHeader, s.ByPlan, st); err != nil {
		return nil, err
	}
	if err := writeTable(f, sheet, layout.Renewal, renewalHeader, s.ByRenewal, st); err != nil {
		return nil, err
	}

	if !layout.Plan.Empty() {
		if err := f.AddChart(sheet, columnChartAnchor, columnChart(sheet, layout.Plan, opts)); err != nil {
			return nil, fmt.Errorf("could not add plan chart: %w", err)
		}
		layout.Charts = append(layout.Charts, chartInfo("column", columnChartAnchor, sheet, layout.Plan))
	}
	if !layout.Renewal.Empty() {
		if err := f.AddChart(sheet, doughnutChartAnchor, doughnutChart(sheet, layout.Renewal, opts)); err != nil {
			return nil, fmt.Errorf("could not add renewal chart: %w", err)
		}
		layout.Charts = append(layout.Charts, chartInfo("doughnut", doughnutChartAnchor, sheet, layout.Renewal))
	}

	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("could not save %s: %w", path, err)
	}
	return layout, nil
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	setDefault(&opts.SheetName, def.SheetName)
	setDefault(&opts.Title, def.Title)
	setDefault(&opts.TotalLabel, def.TotalLabel)
	setDefault(&opts.CurrencyFormat, def.CurrencyFormat)

	t := &opts.Theme
	setDefault(&t.Brand, def.Theme.Brand)
	setDefault(&t.Background, def.Theme.Background)
	setDefault(&t.Text, def.Theme.Text)
	setDefault(&t.Label, def.Theme.Label)
	setDefault(&t.Header, def.Theme.Header)
	setDefault(&t.Neutral, def.Theme.Neutral)
	if len(t.Palette) == 0 {
		t.Palette = def.Theme.Palette
	}
	return opts
}

func setDefault(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func writeSummary(f *excelize.File, sheet string, total float64, opts Options, st *styles) error {
	if err := f.SetColWidth(sheet, "A", "Z", 15); err != nil {
		return fmt.Errorf("could not size columns: %w", err)
	}
	if err := f.SetColStyle(sheet, "A:Z", st.background); err != nil {
		return fmt.Errorf("could not style columns: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", "B", 25); err != nil {
		return fmt.Errorf("could not size column B: %w", err)
	}

	cells := []struct {
		cell  string
		value any
		style int
	}{
		{titleCell, opts.Title, st.title},
		{labelCell, opts.TotalLabel, st.label},
		{totalCell, total, st.total},
	}
	for _, c := range cells {
		if err := setStyled(f, sheet, c.cell, c.value, c.style); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, r Range, keyHeader string, groups []aggregate.Group, st *styles) error {
	if err := setStyledAt(f, sheet, r.KeyCol, r.Header, keyHeader, st.tableHeader); err != nil {
		return err
	}
	if err := setStyledAt(f, sheet, r.ValueCol, r.Header, revenueHeader, st.tableHeader); err != nil {
		return err
	}

	for i, g := range groups {
		row := r.First + i
		if err := setStyledAt(f, sheet, r.KeyCol, row, g.Key, st.tableCell); err != nil {
			return err
		}
		if err := setStyledAt(f, sheet, r.ValueCol, row, g.Value, st.tableMoney); err != nil {
			return err
		}
	}
	return nil
}

func setStyledAt(f *excelize.File, sheet string, col, row int, value any, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("invalid cell coordinates: %w", err)
	}
	return setStyled(f, sheet, cell, value, style)
}

func setStyled(f *excelize.File, sheet, cell string, value any, style int) error {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("could not set cell %s: %w", cell, err)
	}
	if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
		return fmt.Errorf("could not style cell %s: %w", cell, err)
	}
	return nil
}

// rgb strips the leading '#' for DrawingML color values.
func rgb(c string) string {
	return strings.ToUpper(strings.TrimPrefix(c, "#"))
}
