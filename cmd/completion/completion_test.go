package completion

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func testRootCmd() *cobra.Command {
	root := &cobra.Command{Use: "salesdash"}
	root.AddCommand(&cobra.Command{Use: "generate", Short: "Build the dashboard"})
	root.AddCommand(&cobra.Command{Use: "inspect", Short: "Dry run"})
	return root
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{"bash", "__start_salesdash"},
		{"zsh", "compdef"},
		{"fish", "complete -c salesdash"},
		{"powershell", "salesdash"},
	}
	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Generate(testRootCmd(), &buf, tt.shell); err != nil {
				t.Fatal(err)
			}
			out := buf.String()
			if !strings.HasPrefix(out, "# salesdash") {
				t.Errorf("missing install header:\n%s", out[:min(len(out), 80)])
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("%s completion should contain %q", tt.shell, tt.want)
			}
		})
	}
}

func TestGenerateUnsupportedShell(t *testing.T) {
	err := Generate(testRootCmd(), &bytes.Buffer{}, "tcsh")
	if err == nil || !strings.Contains(err.Error(), "unsupported shell") {
		t.Errorf("expected unsupported shell error, got %v", err)
	}
}

func TestCommandWritesToOut(t *testing.T) {
	root := testRootCmd()
	root.AddCommand(NewCommand(root))

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"completion", "fish"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "complete -c salesdash") {
		t.Error("completion output not written to the command's writer")
	}
}
