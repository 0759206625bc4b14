// Package watch provides the "salesdash watch" command, which rebuilds the
// dashboard whenever the input workbook changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/salesdash/cmd/generate"
	"github.com/klytics/salesdash/internal/config"
	"github.com/klytics/salesdash/internal/dashboard"
	"github.com/klytics/salesdash/internal/output"
	w "github.com/klytics/salesdash/internal/watch"
)

// NewCommand creates the "watch" command with its status and stop subcommands.
func NewCommand() *cobra.Command {
	var (
		debounce int
		out      string
	)

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Rebuild the dashboard whenever a workbook in dir changes",
		Long: `Generates the dashboard once, then watches dir for new or modified
spreadsheets and regenerates it after the changes settle. The dashboard file
itself and Office lock files are ignored.

Example:
  salesdash watch ./vendas --debounce 1000
  salesdash watch status
  salesdash watch stop`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return run(cmd, dir, out, debounce)
		},
	}

	cmd.Flags().IntVar(&debounce, "debounce", w.DefaultDebounce, "Quiet period in milliseconds before rebuilding")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Dashboard file (default: Dashboard_Xbox_Finalizado.xlsx)")

	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newStopCmd())

	return cmd
}

func run(cmd *cobra.Command, dir, out string, debounce int) error {
	stdout := cmd.OutOrStdout()

	_, opts, err := config.FromCommand(cmd)
	if err != nil {
		return err
	}
	if out != "" {
		opts.Output = out
	}
	target := dashboard.OutputPath(dir, opts.Output)

	rebuild := func() error {
		res, err := dashboard.Run(dir, opts)
		if _, ok := generate.NotFound(err); ok {
			color.New(color.FgYellow).Fprintf(stdout, "%s.\n", generate.Hint(err, dir))
			return nil
		}
		if err != nil {
			color.New(color.FgRed).Fprintf(stdout, "Rebuild failed: %v\n", err)
			return err
		}
		color.New(color.FgGreen).Fprintf(stdout, "Dashboard '%s' updated from %s (total %.2f)\n",
			res.Output, filepath.Base(res.Input), res.Summary.Total)
		return nil
	}

	// Errors are reported and the watch keeps going.
	_ = rebuild()

	lopts := opts.Locate
	lopts.Exclude = append(lopts.Exclude, target)
	cfg := w.Config{Dir: dir, Output: target, Debounce: debounce}

	watcher, err := w.New(cfg, lopts.Match)
	if err != nil {
		return err
	}
	watcher.Handler = func(string) error { return rebuild() }
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		watcher.Logger = log.New(cmd.ErrOrStderr(), "[watch] ", log.LstdFlags)
	} else {
		watcher.Logger = log.New(io.Discard, "", 0)
	}

	stateDir := w.DefaultStateDir()
	if err := w.WritePIDFile(stateDir); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not write PID file: %v\n", err)
	}
	defer w.RemovePIDFile(stateDir)
	if err := w.SaveConfig(stateDir, watcher.Config); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not save watch state: %v\n", err)
	}

	abs, _ := filepath.Abs(dir)
	color.New(color.FgCyan, color.Bold).Fprintf(stdout, "Watching %s (debounce %dms)\n", abs, watcher.Config.Debounce)
	fmt.Fprintln(stdout, "Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Fprintf(stdout, "Stopped after %d rebuild(s)\n", watcher.GetStatus().EventCount)
	return nil
}

// running returns the PID of a live watcher, clearing a stale PID file.
func running(stateDir string) (int, bool) {
	pid, err := w.ReadPIDFile(stateDir)
	if err != nil {
		return 0, false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return 0, false
	}
	if err := process.Signal(syscall.Signal(0)); err != nil {
		w.RemovePIDFile(stateDir)
		return 0, false
	}
	return pid, true
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a watcher is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stateDir := w.DefaultStateDir()
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			pid, ok := running(stateDir)
			if !ok {
				if jsonOut {
					return output.PrintJSON(out, "watch status", map[string]any{"running": false})
				}
				fmt.Fprintln(out, "Watcher is not running")
				return nil
			}

			cfg, _ := w.LoadConfig(stateDir)
			status := map[string]any{"running": true, "pid": pid}
			if cfg != nil {
				status["dir"] = cfg.Dir
				status["output"] = cfg.Output
				status["debounceMs"] = cfg.Debounce
			}
			if jsonOut {
				return output.PrintJSON(out, "watch status", status)
			}

			color.New(color.FgGreen).Fprintf(out, "Watcher is running (PID %d)\n", pid)
			if cfg != nil {
				fmt.Fprintf(out, "  Directory: %s\n", cfg.Dir)
				fmt.Fprintf(out, "  Output:    %s\n", cfg.Output)
				fmt.Fprintf(out, "  Debounce:  %dms\n", cfg.Debounce)
			}
			return nil
		},
	}
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running watcher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stateDir := w.DefaultStateDir()
			pid, ok := running(stateDir)
			if !ok {
				return fmt.Errorf("no watcher running (PID file not found)")
			}

			process, err := os.FindProcess(pid)
			if err != nil {
				return fmt.Errorf("could not find process %d: %w", pid, err)
			}
			if err := process.Signal(syscall.SIGTERM); err != nil {
				w.RemovePIDFile(stateDir)
				return fmt.Errorf("could not stop watcher (PID %d): %w", pid, err)
			}
			w.RemovePIDFile(stateDir)

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return output.PrintJSON(cmd.OutOrStdout(), "watch stop", map[string]any{"stopped": true, "pid": pid})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped watcher (PID %d)\n", pid)
			return nil
		},
	}
}
