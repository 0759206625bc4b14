// Package xlsx provides reading and writing capabilities for .xlsx (Excel) files.
package xlsx

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet represents a single worksheet's data. Cells hold raw (unformatted)
// values, so numbers read back as plain decimal text.
type Sheet struct {
	Name string     `json:"name"`
	Rows [][]string `json:"rows"`
}

// Workbook represents a parsed Excel file with all its sheets in declared order.
type Workbook struct {
	Path   string  `json:"path,omitempty"`
	Sheets []Sheet `json:"sheets"`
}

// ReadFile reads an .xlsx file and returns its structured data.
func ReadFile(path string) (*Workbook, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s; check that the path is correct", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: is this a valid .xlsx file? %w", path, err)
	}
	defer f.Close()

	wb, err := readWorkbook(f)
	if err != nil {
		return nil, err
	}
	wb.Path = path
	return wb, nil
}

func readWorkbook(f *excelize.File) (*Workbook, error) {
	wb := &Workbook{}

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("could not read sheet %q: %w", name, err)
		}

		wb.Sheets = append(wb.Sheets, Sheet{
			Name: name,
			Rows: rows,
		})
	}

	return wb, nil
}

// GetSheet returns a specific sheet by name. Returns an error if the sheet is not found.
func (wb *Workbook) GetSheet(name string) (*Sheet, error) {
	for i := range wb.Sheets {
		if wb.Sheets[i].Name == name {
			return &wb.Sheets[i], nil
		}
	}

	available := make([]string, len(wb.Sheets))
	for i, s := range wb.Sheets {
		available[i] = s.Name
	}
	return nil, fmt.Errorf("sheet %q not found; available sheets: %v", name, available)
}

// Header returns the first row with every cell trimmed of surrounding
// whitespace. An empty sheet has no header.
func (s *Sheet) Header() []string {
	if len(s.Rows) == 0 {
		return nil
	}
	header := make([]string, len(s.Rows[0]))
	for i, cell := range s.Rows[0] {
		header[i] = strings.TrimSpace(cell)
	}
	return header
}

// Body returns the rows below the header.
func (s *Sheet) Body() [][]string {
	if len(s.Rows) < 2 {
		return nil
	}
	return s.Rows[1:]
}
