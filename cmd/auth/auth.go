package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/faceauth/cli/internal/api"
	"github.com/faceauth/cli/internal/config"
	"github.com/faceauth/cli/internal/flow"
	"github.com/faceauth/cli/internal/format"
	"github.com/faceauth/cli/internal/prompt"
	"github.com/faceauth/cli/internal/session"
	"github.com/faceauth/cli/internal/totp"
)

// AuthCmd represents the auth command
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long: `Authentication commands for FaceAuth CLI.

This command group includes login (with a second factor when required),
registration, logout and session status.`,
}

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to FaceAuth",
	Long: `Authenticate with email and password.

When the account has two-factor authentication enabled, the code is taken
from --code, generated from --totp-secret, or prompted for.`,
	RunE: runLogin,
}

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long:  "Create a new FaceAuth account. Registration does not log you in.",
	RunE:  runRegister,
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from FaceAuth",
	Long:  "Revoke the current session on the server and remove it locally",
	RunE:  runLogout,
}

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long:  "Display the stored session and what its access token reveals",
	RunE:  runStatus,
}

// newMachine wires a state machine to the configured server and session file
func newMachine() (*flow.Machine, session.Store) {
	cfg := config.Get()
	store := session.NewConfigStore()
	client := api.NewClientFromConfig(cfg, store)
	return flow.NewMachine(client, store, flow.Options{Timings: flow.TimingsFromConfig(cfg.UI)}), store
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	code, _ := cmd.Flags().GetString("code")
	secret, _ := cmd.Flags().GetString("totp-secret")

	email, err := prompt.ValueOr(email, "Email", prompt.Line)
	if err != nil {
		return err
	}
	password, err = prompt.ValueOr(password, "Password", prompt.Secret)
	if err != nil {
		return err
	}

	machine, _ := newMachine()
	machine.SetEmail(email)
	machine.SetPassword(password)

	format.PrintInfo("Logging in as %s...", email)
	if err := machine.Submit(cmd.Context()); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if machine.Snapshot().Stage == flow.StageAwaitingSecondFactor {
		if err := secondFactor(cmd, machine, code, secret); err != nil {
			// nothing of a half-finished login is kept
			_ = machine.CancelSecondFactor()
			return err
		}
	}

	format.PrintSuccess("✓ Successfully logged in as %s", email)
	return nil
}

// secondFactor completes a login waiting for a one-time code
func secondFactor(cmd *cobra.Command, machine *flow.Machine, code, secret string) error {
	var err error
	switch {
	case code != "":
	case secret != "":
		code, err = totp.Code(secret, time.Now())
		if err != nil {
			return err
		}
		format.PrintDebug("generated TOTP code from --totp-secret")
	default:
		format.PrintInfo("%s", flow.MsgTwoFactorRequired)
		code, err = prompt.Line("Code")
		if err != nil {
			if errors.Is(err, prompt.ErrNoInput) {
				return fmt.Errorf("two-factor code required: use --code or --totp-secret")
			}
			return err
		}
	}

	machine.SetCode(code)
	if err := machine.SubmitSecondFactor(cmd.Context()); err != nil {
		return fmt.Errorf("two-factor verification failed: %w", err)
	}
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	confirm, _ := cmd.Flags().GetString("confirm")

	email, err := prompt.ValueOr(email, "Email", prompt.Line)
	if err != nil {
		return err
	}
	password, err = prompt.ValueOr(password, "Password", prompt.Secret)
	if err != nil {
		return err
	}
	confirm, err = prompt.ValueOr(confirm, "Confirm password", prompt.Secret)
	if err != nil {
		return err
	}

	machine, _ := newMachine()
	machine.SetMode(flow.ModeRegister)
	machine.SetEmail(email)
	machine.SetPassword(password)
	machine.SetConfirmPassword(confirm)

	if err := machine.Submit(cmd.Context()); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	format.PrintSuccess("✓ %s", machine.Snapshot().Feedback.Message)
	format.PrintInfo("run 'faceauth auth login -e %s' to sign in", email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	machine, store := newMachine()
	sess, ok := store.Load()
	if !ok {
		return fmt.Errorf("not logged in")
	}

	format.PrintInfo("Logging out %s...", sess.Email)
	if err := machine.Logout(cmd.Context()); err != nil {
		// the local session is gone either way
		format.PrintWarning("the server did not confirm the logout: %v", err)
	}

	format.PrintSuccess("✓ Successfully logged out")
	return nil
}

// statusView is the flattened output of auth status
type statusView struct {
	LoggedIn       bool       `json:"logged_in"`
	Email          string     `json:"email,omitempty"`
	Server         string     `json:"server"`
	TokenType      string     `json:"token_type,omitempty"`
	Subject        string     `json:"subject,omitempty"`
	IssuedAt       *time.Time `json:"issued_at,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	Expired        bool       `json:"expired,omitempty"`
	RefreshPresent bool       `json:"refresh_token_present"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	sess, ok := session.NewConfigStore().Load()

	view := statusView{
		LoggedIn: ok,
		Server:   cfg.Server.URL,
	}
	if ok {
		info := session.Describe(sess.AccessToken, time.Now())
		view.Email = sess.Email
		view.TokenType = "jwt"
		if info.Opaque {
			view.TokenType = "opaque"
		}
		view.Subject = info.Subject
		view.IssuedAt = info.IssuedAt
		view.ExpiresAt = info.ExpiresAt
		view.Expired = info.Expired
		view.RefreshPresent = sess.RefreshToken != ""
	}

	if err := format.Print(view); err != nil {
		return err
	}
	if view.Expired && !format.Structured() {
		format.PrintWarning("the access token has expired; the server will reject it")
	}
	return nil
}

func init() {
	// Add login command flags
	loginCmd.Flags().StringP("email", "e", "", "Email address")
	loginCmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")
	loginCmd.Flags().String("code", "", "Two-factor code or backup code")
	loginCmd.Flags().String("totp-secret", "", "Base32 TOTP secret to generate the two-factor code from")

	// Add register command flags
	registerCmd.Flags().StringP("email", "e", "", "Email address")
	registerCmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")
	registerCmd.Flags().String("confirm", "", "Password confirmation (prompted when omitted)")

	// Add subcommands
	AuthCmd.AddCommand(loginCmd)
	AuthCmd.AddCommand(registerCmd)
	AuthCmd.AddCommand(logoutCmd)
	AuthCmd.AddCommand(statusCmd)
}
