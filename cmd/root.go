// Package cmd contains all CLI commands for the salesdash binary.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/salesdash/cmd/completion"
	cmdconfig "github.com/klytics/salesdash/cmd/config"
	"github.com/klytics/salesdash/cmd/doctor"
	"github.com/klytics/salesdash/cmd/generate"
	"github.com/klytics/salesdash/cmd/inspect"
	cmdshell "github.com/klytics/salesdash/cmd/shell"
	"github.com/klytics/salesdash/cmd/version"
	cmdwatch "github.com/klytics/salesdash/cmd/watch"
	"github.com/klytics/salesdash/internal/shell"
)

// NewRootCommand creates and returns the root cobra command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var (
		jsonOutput bool
		verbose    bool
		noColor    bool
		configPath string
	)

	rootCmd := &cobra.Command{
		Use:   "salesdash",
		Short: "Build an Excel sales dashboard from the first workbook in a directory",
		Long: `salesdash reads the sales export sitting next to it and writes
Dashboard_Xbox_Finalizado.xlsx: total revenue, a bar chart of revenue per plan
and a doughnut of annual revenue by auto-renewal status.

Run without a subcommand to generate the dashboard for the current directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor || os.Getenv("NO_COLOR") != "" {
				color.NoColor = true
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return generate.Run(cmd, ".", generate.Flags{})
		},
	}

	// Global persistent flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log pipeline diagnostics to stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI color output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./salesdash.yaml, then ~/.salesdash/config.yaml)")

	rootCmd.AddCommand(generate.NewCommand())
	rootCmd.AddCommand(inspect.NewCommand())
	rootCmd.AddCommand(cmdwatch.NewCommand())
	rootCmd.AddCommand(cmdconfig.NewCommand())
	rootCmd.AddCommand(cmdshell.NewCommand())
	rootCmd.AddCommand(doctor.NewCommand())
	rootCmd.AddCommand(completion.NewCommand(rootCmd))
	rootCmd.AddCommand(version.NewCommand())

	return rootCmd
}

func init() {
	shell.DefaultRunner = runInShell
}

// runInShell executes one shell line against a fresh command tree.
func runInShell(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "shell" {
		return errors.New("already in a shell")
	}
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// Execute runs the root command and handles any returned errors.
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
