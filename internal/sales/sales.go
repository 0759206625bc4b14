// Package sales extracts typed sales records from a workbook.
//
// A sheet qualifies when its normalized header row contains both the value
// and plan columns. The subscription-type and auto-renewal columns are
// optional and only count when both are present.
package sales

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/klytics/salesdash/internal/formats/xlsx"
)

var (
	// ErrUnreadable wraps any failure to open or parse the input workbook.
	ErrUnreadable = errors.New("could not read data file")
	// ErrNoQualifyingSheet means no sheet carries the required columns.
	ErrNoQualifyingSheet = errors.New("data not found")
	// ErrInvalidValue means a value cell holds non-numeric text.
	ErrInvalidValue = errors.New("invalid value")
)

// Columns names the header cells to look for, after normalization.
type Columns struct {
	Value            string `json:"value" mapstructure:"value"`
	Plan             string `json:"plan" mapstructure:"plan"`
	SubscriptionType string `json:"subscriptionType" mapstructure:"subscription_type"`
	AutoRenewal      string `json:"autoRenewal" mapstructure:"auto_renewal"`
}

// DefaultColumns returns the column names of the sales export.
func DefaultColumns() Columns {
	return Columns{
		Value:            "Total Value",
		Plan:             "Plan",
		SubscriptionType: "Subscription Type",
		AutoRenewal:      "Auto Renewal",
	}
}

// Record is one sales row. Empty categorical cells stay empty; an empty
// value cell reads as zero.
type Record struct {
	Plan             string  `json:"plan"`
	TotalValue       float64 `json:"totalValue"`
	SubscriptionType string  `json:"subscriptionType,omitempty"`
	AutoRenewal      string  `json:"autoRenewal,omitempty"`
}

// Table is the qualifying sheet of a workbook.
type Table struct {
	File       string   `json:"file,omitempty"`
	Sheet      string   `json:"sheet"`
	Records    []Record `json:"records"`
	HasRenewal bool     `json:"hasRenewal"`
}

// Load reads the workbook at path and extracts the first qualifying sheet.
func Load(path string, cols Columns) (*Table, error) {
	wb, err := xlsx.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	t, err := Extract(wb, cols)
	if err != nil {
		return nil, err
	}
	t.File = path
	return t, nil
}

// Extract walks the sheets in declared order and returns the first whose
// header contains both the value and plan columns.
func Extract(wb *xlsx.Workbook, cols Columns) (*Table, error) {
	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		idx, ok := indexColumns(sheet.Header(), cols)
		if !ok {
			continue
		}
		return buildTable(sheet, idx)
	}
	return nil, ErrNoQualifyingSheet
}

// columnIndex holds header positions; -1 marks an absent optional column.
type columnIndex struct {
	value, plan, subType, renewal int
}

func (c columnIndex) hasRenewal() bool {
	return c.subType >= 0 && c.renewal >= 0
}

func indexColumns(header []string, cols Columns) (columnIndex, bool) {
	idx := columnIndex{
		value:   lo.IndexOf(header, cols.Value),
		plan:    lo.IndexOf(header, cols.Plan),
		subType: lo.IndexOf(header, cols.SubscriptionType),
		renewal: lo.IndexOf(header, cols.AutoRenewal),
	}
	return idx, idx.value >= 0 && idx.plan >= 0
}

func buildTable(sheet *xlsx.Sheet, idx columnIndex) (*Table, error) {
	t := &Table{
		Sheet:      sheet.Name,
		HasRenewal: idx.hasRenewal(),
		Records:    make([]Record, 0, len(sheet.Body())),
	}

	for i, row := range sheet.Body() {
		raw := cell(row, idx.value)
		value, err := parseValue(raw)
		if err != nil {
			// i+2: one for the header, one for 1-based rows
			return nil, fmt.Errorf("%w: sheet %q row %d: %q is not a number", ErrInvalidValue, sheet.Name, i+2, raw)
		}

		rec := Record{
			Plan:       cell(row, idx.plan),
			TotalValue: value,
		}
		if t.HasRenewal {
			rec.SubscriptionType = cell(row, idx.subType)
			rec.AutoRenewal = cell(row, idx.renewal)
		}
		t.Records = append(t.Records, rec)
	}

	return t, nil
}

// cell returns the cell at col, or "" for short rows and absent columns.
func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// missingTokens are the spellings of a missing value that spreadsheet
// exports commonly carry. They count as empty cells.
var missingTokens = []string{
	"#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || lo.Contains(missingTokens, s) {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}
