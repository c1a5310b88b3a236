package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faceauth/cli/internal/api"
	"github.com/faceauth/cli/internal/config"
	"github.com/faceauth/cli/internal/flow"
	"github.com/faceauth/cli/internal/prompt"
	"github.com/faceauth/cli/internal/session"
	"github.com/faceauth/cli/internal/tui"
)

// UICmd starts the interactive terminal interface
var UICmd = &cobra.Command{
	Use:   "ui",
	Short: "Interactive terminal interface",
	Long: `Start the interactive terminal interface.

It covers the same flows as the auth, 2fa and password commands and starts
on the home page when a session is already stored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !prompt.IsInteractive() {
			return fmt.Errorf("the terminal interface needs an interactive terminal")
		}

		ephemeral, _ := cmd.Flags().GetBool("ephemeral")

		cfg := config.Get()
		var store session.Store = session.NewConfigStore()
		if ephemeral {
			store = session.NewMemoryStore()
		}
		client := api.NewClientFromConfig(cfg, store)
		return tui.Run(cmd.Context(), client, store, flow.TimingsFromConfig(cfg.UI))
	},
}

func init() {
	UICmd.Flags().Bool("ephemeral", false, "Keep the session in memory only; nothing is written to the config file")
}
