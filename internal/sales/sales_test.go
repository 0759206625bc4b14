package sales

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klytics/salesdash/internal/formats/xlsx"
)

func TestExtractNormalizesHeaders(t *testing.T) {
	wb := &xlsx.Workbook{Sheets: []xlsx.Sheet{{
		Name: "Data",
		Rows: [][]string{
			{" Plan ", "  Total Value", "Region"},
			{"Ultimate", "10", "North"},
		},
	}}}

	tbl, err := Extract(wb, DefaultColumns())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if tbl.Sheet != "Data" {
		t.Errorf("expected sheet Data, got %q", tbl.Sheet)
	}
	if len(tbl.Records) != 1 || tbl.Records[0].Plan != "Ultimate" || tbl.Records[0].TotalValue != 10 {
		t.Errorf("unexpected records: %+v", tbl.Records)
	}
}

func TestExtractSelectsFirstQualifyingSheet(t *testing.T) {
	wb := &xlsx.Workbook{Sheets: []xlsx.Sheet{
		{Name: "Cover", Rows: [][]string{{"Report"}, {"Q3"}}},
		{Name: "Sales", Rows: [][]string{{"Plan", "Total Value"}, {"Core", "5"}}},
		{Name: "Pivot", Rows: [][]string{{"Total Value", "Region"}, {"1", "x"}}},
	}}

	tbl, err := Extract(wb, DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Sheet != "Sales" {
		t.Errorf("expected the second sheet, got %q", tbl.Sheet)
	}
}

func TestExtractPrefersEarlierQualifyingSheet(t *testing.T) {
	wb := &xlsx.Workbook{Sheets: []xlsx.Sheet{
		{Name: "First", Rows: [][]string{{"Plan", "Total Value"}, {"A", "1"}}},
		{Name: "Second", Rows: [][]string{{"Plan", "Total Value"}, {"B", "2"}}},
	}}

	tbl, err := Extract(wb, DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Sheet != "First" {
		t.Errorf("expected First, got %q", tbl.Sheet)
	}
}

func TestExtractNoQualifyingSheet(t *testing.T) {
	wb := &xlsx.Workbook{Sheets: []xlsx.Sheet{
		{Name: "Empty"},
		{Name: "Partial", Rows: [][]string{{"Plan", "Amount"}}},
		{Name: "Lowercase", Rows: [][]string{{"plan", "total value"}}},
	}}

	_, err := Extract(wb, DefaultColumns())
	if !errors.Is(err, ErrNoQualifyingSheet) {
		t.Errorf("expected ErrNoQualifyingSheet, got %v", err)
	}
}

func TestExtractRenewalColumns(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   bool
	}{
		{"both present", []string{"Plan", "Total Value", "Subscription Type", "Auto Renewal"}, true},
		{"renewal missing", []string{"Plan", "Total Value", "Subscription Type"}, false},
		{"type missing", []string{"Plan", "Total Value", "Auto Renewal"}, false},
		{"neither", []string{"Plan", "Total Value"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := make([]string, len(tt.header))
			row[0], row[1] = "Core", "1"
			for i := 2; i < len(row); i++ {
				row[i] = "x"
			}
			wb := &xlsx.Workbook{Sheets: []xlsx.Sheet{{Name: "S", Rows: [][]string{tt.header, row}}}}

			tbl, err := Extract(wb, DefaultColumns())
			if err != nil {
				t.Fatal(err)
			}
			if tbl.HasRenewal != tt.want {
				t.Errorf("HasRenewal = %v, want %v", tbl.HasRenewal, tt.want)
			}
			if !tt.want && (tbl.Records[0].AutoRenewal != "" || tbl.Records[0].SubscriptionType != "") {
				t.Errorf("renewal fields should stay empty without both columns: %+v", tbl.Records[0])
			}
		})
	}
}

func TestExtractShortRowsAndEmptyValues(t *testing.T) {
	wb := &xlsx.Workbook{Sheets: []xlsx.Sheet{{
		Name: "S",
		Rows: [][]string{
			{"Total Value", "Plan", "Subscription Type", "Auto Renewal"},
			{"", "Core"},
			{"7.5"},
			{},
		},
	}}}

	tbl, err := Extract(wb, DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(tbl.Records))
	}
	if tbl.Records[0].TotalValue != 0 || tbl.Records[0].Plan != "Core" {
		t.Errorf("record 0 = %+v", tbl.Records[0])
	}
	if tbl.Records[1].TotalValue != 7.5 || tbl.Records[1].Plan != "" {
		t.Errorf("record 1 = %+v", tbl.Records[1])
	}
}

func TestExtractInvalidValue(t *testing.T) {
	wb := &xlsx.Workbook{Sheets: []xlsx.Sheet{{
		Name: "S",
		Rows: [][]string{
			{"Plan", "Total Value"},
			{"Core", "10"},
			{"Core", "ten"},
		},
	}}}

	_, err := Extract(wb, DefaultColumns())
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}

func TestExtractMissingTokens(t *testing.T) {
	tests := []string{"NaN", "nan", "N/A", "n/a", "NA", "#N/A", "NULL", "null", "None", "<NA>", " NaN "}
	for _, tok := range tests {
		t.Run(tok, func(t *testing.T) {
			wb := &xlsx.Workbook{Sheets: []xlsx.Sheet{{
				Name: "S",
				Rows: [][]string{{"Plan", "Total Value"}, {"A", "10"}, {"A", tok}, {"B", "7"}},
			}}}

			tbl, err := Extract(wb, DefaultColumns())
			if err != nil {
				t.Fatalf("%q should read as missing, got %v", tok, err)
			}
			if v := tbl.Records[1].TotalValue; v != 0 {
				t.Errorf("%q = %v, want 0", tok, v)
			}
		})
	}
}

func TestExtractRejectsNonFinite(t *testing.T) {
	tests := []string{"Inf", "-Inf", "+inf", "infinity", "NAN"}
	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			wb := &xlsx.Workbook{Sheets: []xlsx.Sheet{{
				Name: "S",
				Rows: [][]string{{"Plan", "Total Value"}, {"A", raw}},
			}}}

			_, err := Extract(wb, DefaultColumns())
			if !errors.Is(err, ErrInvalidValue) {
				t.Fatalf("expected ErrInvalidValue for %q, got %v", raw, err)
			}
		})
	}
}

func TestExtractNegativeValuesPassThrough(t *testing.T) {
	wb := &xlsx.Workbook{Sheets: []xlsx.Sheet{{
		Name: "S",
		Rows: [][]string{{"Plan", "Total Value"}, {"Refund", "-25"}},
	}}}

	tbl, err := Extract(wb, DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Records[0].TotalValue != -25 {
		t.Errorf("expected -25, got %v", tbl.Records[0].TotalValue)
	}
}

func TestExtractCustomColumns(t *testing.T) {
	wb := &xlsx.Workbook{Sheets: []xlsx.Sheet{{
		Name: "S",
		Rows: [][]string{{"Tier", "Amount"}, {"Core", "3"}},
	}}}

	cols := DefaultColumns()
	cols.Plan, cols.Value = "Tier", "Amount"

	tbl, err := Extract(wb, cols)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Records[0].Plan != "Core" || tbl.Records[0].TotalValue != 3 {
		t.Errorf("unexpected record: %+v", tbl.Records[0])
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	err := xlsx.WriteFile(&xlsx.Workbook{Sheets: []xlsx.Sheet{
		{Name: "Notes", Rows: [][]string{{"nothing here"}}},
		{Name: "Sales", Rows: [][]string{
			{"Plan", " Total Value ", "Subscription Type", "Auto Renewal"},
			{"Ultimate", "10", "Annual", "Yes"},
			{"Core", "5", "Monthly", "No"},
		}},
	}}, path)
	if err != nil {
		t.Fatal(err)
	}

	tbl, err := Load(path, DefaultColumns())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tbl.File != path || tbl.Sheet != "Sales" {
		t.Errorf("unexpected table origin: %s / %s", tbl.File, tbl.Sheet)
	}
	if !tbl.HasRenewal || len(tbl.Records) != 2 {
		t.Errorf("unexpected table: %+v", tbl)
	}
	if tbl.Records[0].AutoRenewal != "Yes" || tbl.Records[0].SubscriptionType != "Annual" {
		t.Errorf("unexpected record: %+v", tbl.Records[0])
	}
}

func TestLoadUnreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	if err := os.WriteFile(path, []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path, DefaultColumns())
	if !errors.Is(err, ErrUnreadable) {
		t.Errorf("expected ErrUnreadable, got %v", err)
	}
}
