// Package shell provides the interactive salesdash REPL.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/samber/lo"
)

// CommandRunner executes a salesdash command and returns its output.
// This is set by the cmd package to avoid import cycles.
type CommandRunner func(ctx context.Context, args []string, stdout, stderr io.Writer) error

// DefaultRunner is the command runner used by the shell session.
var DefaultRunner CommandRunner

// Session manages an interactive salesdash shell session.
type Session struct {
	LastOutput     string
	CommandHistory []string
	HistoryFile    string
	StartTime      time.Time

	// KnownCommands is the list of top-level commands for completion.
	KnownCommands []string
}

var subcommands = map[string][]string{
	"config": {"init", "show", "get", "set", "path", "reset", "validate", "env"},
	"watch":  {"status", "stop"},
}

// NewSession creates a new interactive session.
func NewSession() (*Session, error) {
	home, _ := os.UserHomeDir()
	histFile := filepath.Join(home, ".salesdash", "shell_history")

	if err := os.MkdirAll(filepath.Dir(histFile), 0755); err != nil {
		return nil, fmt.Errorf("could not create history directory: %w", err)
	}

	return &Session{
		HistoryFile: histFile,
		StartTime:   time.Now(),
		KnownCommands: []string{
			"generate", "inspect", "watch", "config", "doctor",
			"completion", "version",
			"help", "exit", "quit", "history", "cd", "pwd", "ls",
		},
	}, nil
}

// Run starts the REPL loop. Blocks until 'exit' or Ctrl+D.
func (s *Session) Run(ctx context.Context) error {
	if DefaultRunner == nil {
		return fmt.Errorf("shell runner not configured")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "salesdash> ",
		HistoryFile:     s.HistoryFile,
		AutoComplete:    readline.NewPrefixCompleter(s.buildCompleter()...),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("salesdash interactive shell")
	fmt.Println("Type 'help' for commands, 'exit' to quit.")
	fmt.Println()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		s.CommandHistory = append(s.CommandHistory, line)

		if line == "exit" || line == "quit" {
			fmt.Printf("\nSession ended. %d commands run in %s.\n",
				len(s.CommandHistory)-1, formatDuration(time.Since(s.StartTime)))
			return nil
		}

		output, err := s.Eval(ctx, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		} else if output != "" {
			fmt.Print(output)
			if !strings.HasSuffix(output, "\n") {
				fmt.Println()
			}
		}
	}

	return nil
}

// Eval runs a single command string and returns its output. Shell builtins
// (help, history, cd, pwd, ls) are handled here; everything else goes to the runner.
func (s *Session) Eval(ctx context.Context, command string) (string, error) {
	args := strings.Fields(command)
	if len(args) == 0 {
		return "", nil
	}

	if out, handled, err := s.builtin(args); handled {
		s.LastOutput = out
		return out, err
	}

	if DefaultRunner == nil {
		return "", fmt.Errorf("shell runner not configured")
	}

	var stdout, stderr bytes.Buffer
	err := DefaultRunner(ctx, args, &stdout, &stderr)

	output := stdout.String()
	s.LastOutput = output

	if errOut := stderr.String(); errOut != "" && err != nil {
		return output, fmt.Errorf("%s", strings.TrimSpace(errOut))
	}

	return output, err
}

func (s *Session) builtin(args []string) (string, bool, error) {
	switch args[0] {
	case "help":
		return helpText, true, nil
	case "history":
		var sb strings.Builder
		for i, cmd := range s.CommandHistory {
			fmt.Fprintf(&sb, "  %d  %s\n", i+1, cmd)
		}
		return sb.String(), true, nil
	case "pwd":
		wd, err := os.Getwd()
		return wd + "\n", true, err
	case "cd":
		if len(args) != 2 {
			return "", true, fmt.Errorf("usage: cd <directory>")
		}
		if err := os.Chdir(args[1]); err != nil {
			return "", true, fmt.Errorf("could not change directory: %w", err)
		}
		wd, _ := os.Getwd()
		return wd + "\n", true, nil
	case "ls":
		entries, err := os.ReadDir(".")
		if err != nil {
			return "", true, err
		}
		names := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
			return e.Name(), !e.IsDir()
		})
		if len(names) == 0 {
			return "", true, nil
		}
		return strings.Join(names, "\n") + "\n", true, nil
	}
	return "", false, nil
}

// Complete returns tab-completion candidates for the given input.
func (s *Session) Complete(input string) []string {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return s.KnownCommands
	}

	if len(parts) == 1 && !strings.HasSuffix(input, " ") {
		matches := lo.Filter(s.KnownCommands, func(cmd string, _ int) bool {
			return strings.HasPrefix(cmd, parts[0])
		})
		sort.Strings(matches)
		return matches
	}

	last := parts[len(parts)-1]
	if strings.HasPrefix(last, "-") || strings.HasSuffix(input, " -") {
		return []string{"--json", "--verbose", "--help", "--output", "--input", "--sheet-name"}
	}

	if len(parts) == 2 && !strings.HasSuffix(input, " ") {
		return lo.Filter(subcommands[parts[0]], func(sub string, _ int) bool {
			return strings.HasPrefix(sub, parts[1])
		})
	}
	if len(parts) == 1 {
		return subcommands[parts[0]]
	}
	return nil
}

const helpText = `Available commands:

  generate [dir]   build the dashboard from the first workbook in dir
  inspect [dir]    show the chosen input and its aggregates
  watch [dir]      rebuild whenever the input changes
  config           show, get, set, validate settings
  doctor           check the environment
  version

Shell commands:
  cd <dir>   change the working directory
  pwd, ls    show the working directory and its files
  history    show command history
  exit       exit the shell
`

func (s *Session) buildCompleter() []readline.PrefixCompleterInterface {
	var items []readline.PrefixCompleterInterface
	for _, cmd := range s.KnownCommands {
		subItems := lo.Map(subcommands[cmd], func(sub string, _ int) readline.PrefixCompleterInterface {
			return readline.PcItem(sub)
		})
		items = append(items, readline.PcItem(cmd, subItems...))
	}
	return items
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", m, s)
}
