package password

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faceauth/cli/internal/api"
	"github.com/faceauth/cli/internal/config"
	"github.com/faceauth/cli/internal/flow"
	"github.com/faceauth/cli/internal/format"
	"github.com/faceauth/cli/internal/prompt"
	"github.com/faceauth/cli/internal/session"
)

// PasswordCmd represents the password command
var PasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Password management commands",
}

// changeCmd changes the password of the current user
var changeCmd = &cobra.Command{
	Use:   "change",
	Short: "Change your password",
	Long: `Change the password of the logged-in account.

The new password needs at least 8 characters with an uppercase letter, a
lowercase letter, a digit and a special character.`,
	RunE: runChange,
}

func runChange(cmd *cobra.Command, args []string) error {
	current, _ := cmd.Flags().GetString("current")
	next, _ := cmd.Flags().GetString("new")
	confirm, _ := cmd.Flags().GetString("confirm")

	store := session.NewConfigStore()
	if _, ok := store.Load(); !ok {
		return fmt.Errorf("not logged in")
	}

	var err error
	if current, err = prompt.ValueOr(current, "Current password", prompt.Secret); err != nil {
		return err
	}
	if next, err = prompt.ValueOr(next, "New password", prompt.Secret); err != nil {
		return err
	}
	if confirm, err = prompt.ValueOr(confirm, "Confirm new password", prompt.Secret); err != nil {
		return err
	}

	client := api.NewClientFromConfig(config.Get(), store)
	form := flow.NewPasswordChange(client, nil)
	form.SetCurrent(current)
	form.SetNew(next)
	form.SetConfirm(confirm)

	if err := form.Submit(cmd.Context()); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	format.PrintSuccess("✓ %s", form.Snapshot().Message)
	return nil
}

func init() {
	changeCmd.Flags().String("current", "", "Current password (prompted when omitted)")
	changeCmd.Flags().String("new", "", "New password (prompted when omitted)")
	changeCmd.Flags().String("confirm", "", "New password confirmation (prompted when omitted)")

	PasswordCmd.AddCommand(changeCmd)
}
