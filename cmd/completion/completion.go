// Package completion provides shell completion generation commands.
package completion

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewCommand returns the completion command.
func NewCommand(rootCmd *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completions",
		Long: `Generate shell completion scripts for salesdash.

Install instructions:
  Bash:       salesdash completion bash > /etc/bash_completion.d/salesdash
              echo 'source <(salesdash completion bash)' >> ~/.bashrc
  Zsh:        salesdash completion zsh > ~/.zsh/completions/_salesdash
  Fish:       salesdash completion fish > ~/.config/fish/completions/salesdash.fish
  PowerShell: salesdash completion powershell >> $PROFILE`,
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Generate(rootCmd, cmd.OutOrStdout(), args[0])
		},
	}
	return cmd
}

// Generate writes the completion script for shell to w.
func Generate(rootCmd *cobra.Command, w io.Writer, shell string) error {
	switch shell {
	case "bash":
		fmt.Fprintln(w, "# salesdash bash completion")
		fmt.Fprintln(w, "# Install: echo 'source <(salesdash completion bash)' >> ~/.bashrc")
		fmt.Fprintln(w)
		return rootCmd.GenBashCompletion(w)
	case "zsh":
		fmt.Fprintln(w, "# salesdash zsh completion")
		fmt.Fprintln(w, "# Install: salesdash completion zsh > ~/.zsh/completions/_salesdash")
		fmt.Fprintln(w)
		return rootCmd.GenZshCompletion(w)
	case "fish":
		fmt.Fprintln(w, "# salesdash fish completion")
		fmt.Fprintln(w, "# Install: salesdash completion fish > ~/.config/fish/completions/salesdash.fish")
		fmt.Fprintln(w)
		return rootCmd.GenFishCompletion(w, true)
	case "powershell":
		fmt.Fprintln(w, "# salesdash PowerShell completion")
		fmt.Fprintln(w, "# Install: salesdash completion powershell >> $PROFILE")
		fmt.Fprintln(w)
		return rootCmd.GenPowerShellCompletionWithDesc(w)
	default:
		return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish, powershell)", shell)
	}
}
