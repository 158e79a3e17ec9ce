package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// completionCmd generates shell completion scripts for drill.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for drill.

To install completions:

  Bash (Linux):
    drill completion bash | sudo tee /etc/bash_completion.d/drill > /dev/null

  Bash (macOS with Homebrew):
    drill completion bash > $(brew --prefix)/etc/bash_completion.d/drill

  Zsh:
    drill completion zsh > "${fpath[1]}/_drill"
    # or
    drill completion zsh > ~/.zsh/completions/_drill

  Fish:
    drill completion fish > ~/.config/fish/completions/drill.fish

  PowerShell:
    drill completion powershell > drill.ps1
    # Then add ". drill.ps1" to your PowerShell profile`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(cmd.OutOrStdout(), true)
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
