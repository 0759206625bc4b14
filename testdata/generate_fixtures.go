//go:build ignore

// This program generates the sample sales export used by the benchmarks and
// for trying the CLI by hand: go run testdata/generate_fixtures.go
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/klytics/salesdash/internal/formats/xlsx"
)

func main() {
	if err := generateSales(); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating sample.xlsx: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Test fixtures generated successfully.")
}

func generateSales() error {
	plans := []string{"Game Pass Ultimate", "Game Pass Core", "PC Game Pass", "Game Pass Standard"}
	types := []string{"Annual", "Monthly", "Quarterly"}
	renewals := []string{"Yes", "No"}

	rows := [][]string{{"Subscriber ID", "Plan", "Subscription Type", "Auto Renewal", "Total Value"}}
	for i := 0; i < 240; i++ {
		value := 9.99 * float64(1+i%12)
		rows = append(rows, []string{
			fmt.Sprintf("XBX-%05d", 1000+i),
			plans[i%len(plans)],
			types[i%len(types)],
			renewals[(i/3)%len(renewals)],
			strconv.FormatFloat(value, 'f', 2, 64),
		})
	}

	wb := &xlsx.Workbook{
		Sheets: []xlsx.Sheet{
			{
				Name: "Notes",
				Rows: [][]string{
					{"Export", "Xbox subscriptions"},
					{"Generated by", "testdata/generate_fixtures.go"},
				},
			},
			{Name: "Sales", Rows: rows},
		},
	}

	return xlsx.WriteFile(wb, "testdata/sample.xlsx")
}
