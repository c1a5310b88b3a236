package config

import (
	"fmt"

	"github.com/spf13/cobra"

	appConfig "github.com/faceauth/cli/internal/config"
	"github.com/faceauth/cli/internal/format"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "CLI configuration commands",
	Long: `CLI configuration commands for FaceAuth CLI.

This command group shows the configuration, prints the file in use and
updates single settings.`,
}

// showCmd prints the configuration
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configuration",
	Long:  "Show the current configuration. Stored tokens are masked.",
	RunE:  runShow,
}

// pathCmd prints the configuration file path
var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(format.Out, appConfig.Path())
		return nil
	},
}

// setCmd updates a setting
var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value, for example:

  faceauth config set server.url https://auth.example.com
  faceauth config set ui.error_cooldown 2s`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

// settingsView is the flattened output of config show
type settingsView struct {
	ServerURL       string  `json:"server_url"`
	Timeout         string  `json:"timeout"`
	RateLimit       float64 `json:"rate_limit"`
	RateBurst       int     `json:"rate_burst"`
	Email           string  `json:"email,omitempty"`
	AccessToken     string  `json:"access_token,omitempty"`
	RefreshToken    string  `json:"refresh_token,omitempty"`
	Format          string  `json:"format"`
	Colors          bool    `json:"colors"`
	SuccessDisplay  string  `json:"success_display"`
	ErrorCooldown   string  `json:"error_cooldown"`
	NetworkCooldown string  `json:"network_cooldown"`
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Get()
	return format.Print(settingsView{
		ServerURL:       cfg.Server.URL,
		Timeout:         cfg.Server.Timeout,
		RateLimit:       cfg.Server.RateLimit,
		RateBurst:       cfg.Server.RateBurst,
		Email:           cfg.Auth.Email,
		AccessToken:     mask(cfg.Auth.AccessToken),
		RefreshToken:    mask(cfg.Auth.RefreshToken),
		Format:          cfg.Format.Default,
		Colors:          cfg.Format.Colors,
		SuccessDisplay:  cfg.UI.SuccessDisplay,
		ErrorCooldown:   cfg.UI.ErrorCooldown,
		NetworkCooldown: cfg.UI.NetworkCooldown,
	})
}

// mask keeps only the last characters of a secret
func mask(secret string) string {
	const visible = 4
	if secret == "" {
		return ""
	}
	if len(secret) <= visible*2 {
		return "****"
	}
	return "****" + secret[len(secret)-visible:]
}

func runSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	if err := appConfig.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	if err := appConfig.Get().Validate(); err != nil {
		format.PrintWarning("the configuration is not valid yet: %v", err)
	}

	format.PrintSuccess("✓ %s set to %s", key, value)
	return nil
}

func init() {
	ConfigCmd.AddCommand(showCmd)
	ConfigCmd.AddCommand(pathCmd)
	ConfigCmd.AddCommand(setCmd)
}
