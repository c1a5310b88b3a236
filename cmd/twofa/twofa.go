package twofa

import (
	"errors"
	"fmt"
	"os"
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

// TwoFACmd represents the 2fa command
var TwoFACmd = &cobra.Command{
	Use:   "2fa",
	Short: "Two-factor authentication commands",
	Long: `Two-factor authentication commands for FaceAuth CLI.

This command group shows the 2FA status of the current account, enrolls an
authenticator app and removes the second factor.`,
}

// statusCmd shows the 2FA status
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show two-factor status",
	Long: `Show whether two-factor authentication is enabled.

While it is disabled the server prepares a pending secret; each call may
replace it, so only the secret shown last is valid for 'faceauth 2fa enable'.`,
	RunE: runStatus,
}

// enableCmd enrolls an authenticator app
var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable two-factor authentication",
	Long: `Fetch a fresh secret, show it with the backup codes and confirm it
with a code from the authenticator app.`,
	RunE: runEnable,
}

// disableCmd removes the second factor
var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable two-factor authentication",
	Long: `Disable two-factor authentication for the current account.

The server then prepares a new pending secret, which is printed with its
backup codes. 'faceauth 2fa enable' fetches another one, so only scan the
secret shown last.`,
	RunE: runDisable,
}

func newSettings() *flow.TwoFactorSettings {
	store := session.NewConfigStore()
	client := api.NewClientFromConfig(config.Get(), store)
	return flow.NewTwoFactorSettings(client, nil)
}

// statusView is the flattened output of 2fa status
type statusView struct {
	Enabled     bool     `json:"enabled"`
	Issuer      string   `json:"issuer,omitempty"`
	Account     string   `json:"account,omitempty"`
	Secret      string   `json:"secret,omitempty"`
	Digits      int      `json:"digits,omitempty"`
	Period      uint64   `json:"period,omitempty"`
	Algorithm   string   `json:"algorithm,omitempty"`
	BackupCodes []string `json:"backup_codes,omitempty"`
	QRFile      string   `json:"qr_file,omitempty"`
}

func newStatusView(st flow.TwoFactorState) statusView {
	view := statusView{Enabled: st.Enabled}
	if st.Enrollment == nil {
		return view
	}

	view.BackupCodes = st.Enrollment.BackupCodes
	if st.Enrollment.OTPAuthURL != "" {
		key, err := totp.Inspect(st.Enrollment.OTPAuthURL)
		if err != nil {
			format.PrintDebug("cannot read provisioning URL: %v", err)
			return view
		}
		view.Issuer = key.Issuer
		view.Account = key.Account
		view.Secret = key.Secret
		view.Digits = key.Digits
		view.Period = key.Period
		view.Algorithm = key.Algorithm
	}
	return view
}

// writeQR saves the enrollment QR code as a PNG file
func writeQR(path string, e *flow.Enrollment) error {
	if e == nil {
		return errors.New("the server sent no enrollment data")
	}
	data, err := totp.QRImage(e.QRImage, e.OTPAuthURL)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write QR code: %w", err)
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	qrFile, _ := cmd.Flags().GetString("qr-file")

	settings := newSettings()
	if err := settings.Refresh(cmd.Context()); err != nil {
		return fmt.Errorf("failed to get 2FA status: %w", err)
	}

	st := settings.Snapshot()
	view := newStatusView(st)
	if qrFile != "" && !st.Enabled {
		if err := writeQR(qrFile, st.Enrollment); err != nil {
			return err
		}
		view.QRFile = qrFile
	}
	return format.Print(view)
}

func runEnable(cmd *cobra.Command, args []string) error {
	qrFile, _ := cmd.Flags().GetString("qr-file")
	code, _ := cmd.Flags().GetString("code")
	secret, _ := cmd.Flags().GetString("totp-secret")

	settings := newSettings()
	if err := settings.StartConfiguration(cmd.Context()); err != nil {
		return fmt.Errorf("failed to start 2FA setup: %w", err)
	}

	st := settings.Snapshot()
	if st.Enabled {
		format.PrintInfo("Two-factor authentication is already enabled")
		return nil
	}

	view := newStatusView(st)
	if qrFile != "" {
		if err := writeQR(qrFile, st.Enrollment); err != nil {
			return err
		}
		view.QRFile = qrFile
	}
	if err := format.Print(view); err != nil {
		return err
	}

	var err error
	switch {
	case code != "":
	case secret != "":
		code, err = totp.Code(secret, time.Now())
	default:
		format.PrintInfo("Add the secret to your authenticator app and keep the backup codes safe")
		code, err = prompt.Line("Code")
	}
	if err != nil {
		return err
	}

	if err := settings.Enable(cmd.Context(), code); err != nil {
		return fmt.Errorf("failed to enable 2FA: %w", err)
	}

	format.PrintSuccess("✓ %s", settings.Snapshot().Message)
	return nil
}

func runDisable(cmd *cobra.Command, args []string) error {
	settings := newSettings()
	if err := settings.Disable(cmd.Context()); err != nil {
		return fmt.Errorf("failed to disable 2FA: %w", err)
	}

	format.PrintSuccess("✓ %s", flow.MsgTwoFactorDisabled)
	return format.Print(newStatusView(settings.Snapshot()))
}

func init() {
	statusCmd.Flags().String("qr-file", "", "Write the pending enrollment QR code to this PNG file")

	enableCmd.Flags().String("qr-file", "", "Write the enrollment QR code to this PNG file")
	enableCmd.Flags().String("code", "", "Code from the authenticator app")
	enableCmd.Flags().String("totp-secret", "", "Generate the code from this base32 secret")

	TwoFACmd.AddCommand(statusCmd)
	TwoFACmd.AddCommand(enableCmd)
	TwoFACmd.AddCommand(disableCmd)
}
