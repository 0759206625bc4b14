package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Fixed anchors on the dashboard sheet. Rows and columns are 1-based.
const (
	titleCell = "B2"
	labelCell = "B4"
	totalCell = "B5"

	tableHeaderRow = 21
	planKeyCol     = 2 // B
	renewalKeyCol  = 5 // E

	columnChartAnchor   = "B7"
	doughnutChartAnchor = "G7"
)

// Range locates one auxiliary table: a header row followed by one data row
// per group. The data rows double as chart series ranges.
type Range struct {
	Header   int `json:"header"`
	First    int `json:"first"`
	Last     int `json:"last"`
	KeyCol   int `json:"keyCol"`
	ValueCol int `json:"valueCol"`
}

// tableRange sizes a table anchored at the shared header row.
func tableRange(keyCol, rows int) Range {
	return Range{
		Header:   tableHeaderRow,
		First:    tableHeaderRow + 1,
		Last:     tableHeaderRow + rows,
		KeyCol:   keyCol,
		ValueCol: keyCol + 1,
	}
}

// Rows is the number of data rows.
func (r Range) Rows() int {
	return r.Last - r.First + 1
}

// Empty reports whether the table has no data rows.
func (r Range) Empty() bool {
	return r.Rows() <= 0
}

// Categories is the absolute reference to the key column's data rows.
func (r Range) Categories(sheet string) string {
	return columnRef(sheet, r.KeyCol, r.First, r.Last)
}

// Values is the absolute reference to the value column's data rows.
func (r Range) Values(sheet string) string {
	return columnRef(sheet, r.ValueCol, r.First, r.Last)
}

// SeriesName references the value column's header cell.
func (r Range) SeriesName(sheet string) string {
	return columnRef(sheet, r.ValueCol, r.Header, r.Header)
}

func columnRef(sheet string, col, first, last int) string {
	name, _ := excelize.ColumnNumberToName(col)
	ref := fmt.Sprintf("%s!$%s$%d", quoteSheet(sheet), name, first)
	if last != first {
		ref += fmt.Sprintf(":$%s$%d", name, last)
	}
	return ref
}

func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// Chart records where a chart was placed and what it plots.
type Chart struct {
	Kind       string `json:"kind"`
	Anchor     string `json:"anchor"`
	Categories string `json:"categories"`
	Values     string `json:"values"`
}

// Layout is the cell geometry of a rendered dashboard.
type Layout struct {
	Sheet   string  `json:"sheet"`
	Plan    Range   `json:"plan"`
	Renewal Range   `json:"renewal"`
	Charts  []Chart `json:"charts"`
}
