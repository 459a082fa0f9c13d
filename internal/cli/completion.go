package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// completionCommand generates shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Long: `Generate shell completion scripts for topoviz.

  bash:        source <(topoviz completion bash)
  zsh:         topoviz completion zsh > "${fpath[1]}/_topoviz"
  fish:        topoviz completion fish | source
  powershell:  topoviz completion powershell | Out-String | Invoke-Expression

Variant and constraint flags complete their allowed values.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return genCompletion(cmd.Root(), args[0], cmd.OutOrStdout())
		},
	}

	return cmd
}

// genCompletion writes the completion script for shell to w.
func genCompletion(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	}
	return fmt.Errorf("unsupported shell %q", shell)
}
