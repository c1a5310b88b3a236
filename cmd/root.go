package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faceauth/cli/cmd/auth"
	"github.com/faceauth/cli/cmd/config"
	"github.com/faceauth/cli/cmd/password"
	"github.com/faceauth/cli/cmd/twofa"
	"github.com/faceauth/cli/cmd/ui"
	appConfig "github.com/faceauth/cli/internal/config"
	"github.com/faceauth/cli/internal/format"
	"github.com/faceauth/cli/internal/utils"
)

// skipValidation marks commands that must run with an invalid configuration
const skipValidation = "skip-config-validation"

var (
	cfgFile string
	debug   bool
	output  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "faceauth",
	Short: "FaceAuth CLI - sign in, manage two-factor authentication and passwords",
	Long: `FaceAuth CLI is a client for the FaceAuth authentication service.

It logs in (with a second factor when the account requires one), registers
accounts, enrolls and removes two-factor authentication and changes passwords.
The session is kept in the configuration file until you log out.

Run 'faceauth ui' for the interactive terminal interface.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize configuration
		if err := appConfig.Initialize(cfgFile); err != nil {
			return fmt.Errorf("failed to initialize configuration: %w", err)
		}

		// Set debug mode
		if debug {
			appConfig.SetDebug(true)
			format.PrintDebug("using config file %s", appConfig.Path())
		}

		// Set output format
		if output != "" {
			appConfig.SetOutputFormat(output)
		}

		if skipsValidation(cmd) {
			return nil
		}
		if err := appConfig.Get().Validate(); err != nil {
			reportInvalidConfig(err)
			return fmt.Errorf("invalid configuration in %s", appConfig.Path())
		}
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
// Errors are printed here; the caller only sets the exit status.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	format.PrintError("%v", err)
	if utils.IsAuthError(err) {
		format.PrintInfo("run 'faceauth auth login' to sign in again")
	}
	return err
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/"+appConfig.DefaultFileName+")")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug mode")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "output format (table, json, json-compact, yaml, text)")

	// Add subcommands
	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(twofa.TwoFACmd)
	rootCmd.AddCommand(password.PasswordCmd)
	rootCmd.AddCommand(config.ConfigCmd)
	rootCmd.AddCommand(ui.UICmd)

	config.ConfigCmd.Annotations = map[string]string{skipValidation: "true"}
}

// skipsValidation reports whether cmd or one of its parents opts out of config validation
func skipsValidation(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipValidation] == "true" {
			return true
		}
	}
	return false
}

func reportInvalidConfig(err error) {
	var multi *utils.MultiError
	if !errors.As(err, &multi) {
		format.PrintError("%v", err)
		return
	}
	for _, e := range multi.Errors {
		format.PrintError("%v", e)
	}
	format.PrintInfo("fix it with 'faceauth config set <key> <value>'")
}
