package cli

import (
	"github.com/spf13/cobra"
)

func newCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for coffea and print it to stdout.

Load it directly for the current session:

  source <(coffea completion bash)

or install it permanently:

  coffea completion bash > /etc/bash_completion.d/coffea
  coffea completion zsh  > "${fpath[1]}/_coffea"
  coffea completion fish > ~/.config/fish/completions/coffea.fish

For PowerShell, pipe the script into Invoke-Expression or source it
from your profile:

  coffea completion powershell | Out-String | Invoke-Expression`,
		// Completion needs neither config nor logging; skip the parent's
		// PersistentPreRunE.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Args:              cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:         []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}

			return nil
		},
	}

	return cmd
}
