package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/viper"

	"github.com/klytics/salesdash/internal/dashboard"
	"github.com/klytics/salesdash/internal/formats/xlsx"
	"github.com/klytics/salesdash/internal/output"
	"github.com/klytics/salesdash/internal/shell"
)

// setup isolates HOME, the working directory and viper for one test and
// returns the working directory.
func setup(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SALESDASH_NO_PROGRESS", "1")
	dir := t.TempDir()
	t.Chdir(dir)
	color.NoColor = true
	t.Cleanup(viper.Reset)
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeSales(t *testing.T, path string) {
	t.Helper()
	wb := &xlsx.Workbook{Sheets: []xlsx.Sheet{{Name: "Sales", Rows: [][]string{
		{"Plan", "Total Value", "Subscription Type", "Auto Renewal"},
		{"Ultimate", "10", "Annual", "Yes"},
		{"Core", "5", "Annual", "No"},
		{"Ultimate", "7", "Monthly", "Yes"},
	}}}}
	if err := xlsx.WriteFile(wb, path); err != nil {
		t.Fatal(err)
	}
}

func TestAllCommandsExist(t *testing.T) {
	setup(t)
	out, err := run(t, "--help")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"generate", "inspect", "watch", "config", "shell", "doctor", "completion", "version"} {
		if !strings.Contains(out, name) {
			t.Errorf("--help should list %q", name)
		}
	}
}

func TestNoArgsGenerates(t *testing.T) {
	dir := setup(t)
	writeSales(t, filepath.Join(dir, "Vendas.xlsx"))

	out, err := run(t)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Starting sales dashboard generation") || !strings.Contains(out, "Success!") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, dashboard.DefaultOutputFile)); err != nil {
		t.Errorf("dashboard not written: %v", err)
	}
}

func TestNoArgsWithoutInputExitsCleanly(t *testing.T) {
	dir := setup(t)

	out, err := run(t)
	if err != nil {
		t.Fatalf("missing input should not be an error, got %v", err)
	}
	if !strings.Contains(out, "No data file found") {
		t.Errorf("expected a not-found message, got:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, dashboard.DefaultOutputFile)); err == nil {
		t.Error("no dashboard should be written")
	}
}

func TestGenerateJSON(t *testing.T) {
	dir := setup(t)
	writeSales(t, filepath.Join(dir, "Vendas.xlsx"))

	out, err := run(t, "generate", "--json", "--output", "Q3.xlsx")
	if err != nil {
		t.Fatal(err)
	}

	var res struct {
		output.JSONResult
		Data struct {
			Generated bool   `json:"generated"`
			Output    string `json:"output"`
			Sheet     string `json:"sheet"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if !res.OK || !res.Data.Generated || res.Data.Sheet != "Sales" {
		t.Errorf("unexpected result: %+v", res)
	}
	if filepath.Base(res.Data.Output) != "Q3.xlsx" {
		t.Errorf("output = %q, want Q3.xlsx", res.Data.Output)
	}
}

func TestGenerateJSONNoInput(t *testing.T) {
	setup(t)

	out, err := run(t, "generate", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var res struct {
		OK   bool `json:"ok"`
		Data struct {
			Generated bool   `json:"generated"`
			Reason    string `json:"reason"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if !res.OK || res.Data.Generated || res.Data.Reason != "no_input" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestGenerateUnreadableFails(t *testing.T) {
	dir := setup(t)
	os.WriteFile(filepath.Join(dir, "broken.xlsx"), []byte("not a zip"), 0644)

	out, err := run(t, "generate", "--json")
	if err == nil {
		t.Fatal("expected an error for an unreadable workbook")
	}
	var res output.JSONResult
	if jsonErr := json.Unmarshal([]byte(out), &res); jsonErr != nil {
		t.Fatalf("invalid JSON: %v\n%s", jsonErr, out)
	}
	if res.OK || res.Code != output.ExitSystemError {
		t.Errorf("unexpected envelope: %+v", res)
	}
}

func TestInspectWritesNothing(t *testing.T) {
	dir := setup(t)
	writeSales(t, filepath.Join(dir, "Vendas.xlsx"))

	out, err := run(t, "inspect", "--rows", "2")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Vendas.xlsx", "Revenue by plan", "Ultimate", "Sheet: Sales", "(2 of 3 rows)"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, dashboard.DefaultOutputFile)); err == nil {
		t.Error("inspect must not write the dashboard")
	}
}

func TestConfigSetThenGet(t *testing.T) {
	setup(t)

	if _, err := run(t, "config", "set", "report.title", "Vendas Q3"); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "config", "get", "report.title")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Vendas Q3") {
		t.Errorf("expected saved title, got %q", out)
	}
}

func TestVersionOutput(t *testing.T) {
	setup(t)
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "salesdash ") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestWatchStatusNotRunning(t *testing.T) {
	setup(t)
	out, err := run(t, "watch", "status")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "not running") {
		t.Errorf("unexpected status output %q", out)
	}
}

func TestDoctorRuns(t *testing.T) {
	dir := setup(t)
	writeSales(t, filepath.Join(dir, "Vendas.xlsx"))

	out, err := run(t, "doctor")
	if err != nil {
		t.Fatalf("doctor failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Vendas.xlsx") || !strings.Contains(out, "0 errors") {
		t.Errorf("unexpected doctor output:\n%s", out)
	}
}

func TestShellRunner(t *testing.T) {
	setup(t)

	var out bytes.Buffer
	if err := shell.DefaultRunner(context.Background(), []string{"version"}, &out, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "salesdash ") {
		t.Errorf("unexpected runner output %q", out.String())
	}
	if err := shell.DefaultRunner(context.Background(), []string{"shell"}, &out, &bytes.Buffer{}); err == nil {
		t.Error("nested shell should be refused")
	}
}

func TestAllCommandsHaveHelp(t *testing.T) {
	setup(t)
	paths := [][]string{
		{"generate"}, {"inspect"},
		{"watch"}, {"watch", "status"}, {"watch", "stop"},
		{"config", "init"}, {"config", "show"}, {"config", "set"}, {"config", "validate"}, {"config", "env"},
		{"shell"}, {"doctor"}, {"completion"}, {"version"},
	}
	for _, path := range paths {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			out, err := run(t, append(path, "--help")...)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, "Usage:") {
				t.Errorf("help output missing Usage:\n%s", out)
			}
		})
	}
}
