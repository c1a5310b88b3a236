package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/faceauth/cli/internal/utils"
)

// DefaultFileName is the config file created in the home directory
const DefaultFileName = ".faceauth.yaml"

// Config represents the application configuration
type Config struct {
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Auth   AuthConfig   `yaml:"auth" mapstructure:"auth"`
	Format FormatConfig `yaml:"format" mapstructure:"format"`
	UI     UIConfig     `yaml:"ui" mapstructure:"ui"`
}

// ServerConfig contains server connection settings
type ServerConfig struct {
	URL     string `yaml:"url" mapstructure:"url"`
	Timeout string `yaml:"timeout" mapstructure:"timeout"`
	// RateLimit caps outgoing requests per second; zero disables pacing.
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// AuthConfig holds the persisted session
type AuthConfig struct {
	Email        string `yaml:"email" mapstructure:"email"`
	AccessToken  string `yaml:"access_token" mapstructure:"access_token"`
	RefreshToken string `yaml:"refresh_token" mapstructure:"refresh_token"`
}

// FormatConfig contains output formatting settings
type FormatConfig struct {
	Default string `yaml:"default" mapstructure:"default"`
	Colors  bool   `yaml:"colors" mapstructure:"colors"`
}

// UIConfig contains feedback display intervals
type UIConfig struct {
	SuccessDisplay  string `yaml:"success_display" mapstructure:"success_display"`
	ErrorCooldown   string `yaml:"error_cooldown" mapstructure:"error_cooldown"`
	NetworkCooldown string `yaml:"network_cooldown" mapstructure:"network_cooldown"`
}

// Default intervals, used when the configured value is missing or malformed
const (
	DefaultTimeout         = 30 * time.Second
	DefaultSuccessDisplay  = 1200 * time.Millisecond
	DefaultErrorCooldown   = 3 * time.Second
	DefaultNetworkCooldown = 5 * time.Second
)

var (
	globalConfig *Config
	debug        bool
	outputFormat string

	// authMu serializes token writes so both tokens change in one step
	authMu sync.Mutex
)

// Initialize loads the configuration from file, creating a default one when it does not exist
func Initialize(configFile string) error {
	configPath := configFile
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get home directory: %w", err)
		}
		configPath = filepath.Join(home, DefaultFileName)
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("FACEAUTH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		if err := createDefaultConfig(configPath); err != nil {
			return fmt.Errorf("could not create default config: %w", err)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("could not unmarshal config: %w", err)
	}
	globalConfig = cfg

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.url", "https://localhost")
	viper.SetDefault("server.timeout", "30s")
	viper.SetDefault("server.rate_limit", 0)
	viper.SetDefault("server.rate_burst", 1)
	viper.SetDefault("auth.email", "")
	viper.SetDefault("auth.access_token", "")
	viper.SetDefault("auth.refresh_token", "")
	viper.SetDefault("format.default", "table")
	viper.SetDefault("format.colors", true)
	viper.SetDefault("ui.success_display", "1200ms")
	viper.SetDefault("ui.error_cooldown", "3s")
	viper.SetDefault("ui.network_cooldown", "5s")
}

// defaultConfig mirrors setDefaults
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			URL:       "https://localhost",
			Timeout:   "30s",
			RateBurst: 1,
		},
		Format: FormatConfig{
			Default: "table",
			Colors:  true,
		},
		UI: UIConfig{
			SuccessDisplay:  "1200ms",
			ErrorCooldown:   "3s",
			NetworkCooldown: "5s",
		},
	}
}

// createDefaultConfig writes a default configuration file
func createDefaultConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(defaultConfig())
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg := defaultConfig()
		globalConfig = &cfg
	}
	return globalConfig
}

// Path returns the config file in use
func Path() string {
	return viper.ConfigFileUsed()
}

// Save saves the current configuration to file
func Save() error {
	if globalConfig == nil {
		return fmt.Errorf("no configuration to save")
	}

	configPath := Path()
	if configPath == "" {
		return fmt.Errorf("configuration not initialized")
	}

	data, err := yaml.Marshal(globalConfig)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// Set updates a single key, persists it and reloads the typed configuration
func Set(key, value string) error {
	if globalConfig == nil {
		return fmt.Errorf("configuration not initialized")
	}
	if !viper.IsSet(key) {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	viper.Set(key, value)
	if err := viper.WriteConfig(); err != nil {
		return err
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("could not unmarshal config: %w", err)
	}
	globalConfig = cfg
	return nil
}

// Validate reports every invalid setting
func (c *Config) Validate() error {
	errs := utils.NewMultiError()

	if err := utils.ValidateURL(c.Server.URL); err != nil {
		errs.Add(utils.NewValidationError("server.url", err.Error()))
	}
	if c.Server.RateLimit < 0 {
		errs.Add(utils.NewValidationError("server.rate_limit", "must not be negative"))
	}

	durations := map[string]string{
		"server.timeout":      c.Server.Timeout,
		"ui.success_display":  c.UI.SuccessDisplay,
		"ui.error_cooldown":   c.UI.ErrorCooldown,
		"ui.network_cooldown": c.UI.NetworkCooldown,
	}
	for key, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			errs.Add(utils.NewValidationError(key, "invalid duration "+value))
		}
	}

	switch c.Format.Default {
	case "", "table", "json", "json-compact", "yaml", "text":
	default:
		errs.Add(utils.NewValidationError("format.default", "unsupported format "+c.Format.Default))
	}

	return errs.ErrorOrNil()
}

// ParseDuration parses value, returning fallback when it is empty or malformed
func ParseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

// RequestTimeout returns the HTTP timeout
func (s ServerConfig) RequestTimeout() time.Duration {
	return ParseDuration(s.Timeout, DefaultTimeout)
}

// SetDebug sets the debug mode
func SetDebug(enabled bool) {
	debug = enabled
}

// IsDebug returns whether debug mode is enabled
func IsDebug() bool {
	return debug
}

// SetOutputFormat sets the output format
func SetOutputFormat(format string) {
	outputFormat = format
}

// GetOutputFormat returns the current output format
func GetOutputFormat() string {
	if outputFormat != "" {
		return outputFormat
	}
	if globalConfig != nil && globalConfig.Format.Default != "" {
		return globalConfig.Format.Default
	}
	return "table"
}

// UpdateAuth stores a session in one write. When the write fails the
// previous session stays in effect.
func UpdateAuth(email, accessToken, refreshToken string) error {
	authMu.Lock()
	defer authMu.Unlock()

	if globalConfig == nil {
		return fmt.Errorf("configuration not initialized")
	}

	next := AuthConfig{
		Email:        email,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
	prev := globalConfig.Auth

	setAuthKeys(next)
	if err := viper.WriteConfig(); err != nil {
		setAuthKeys(prev)
		return err
	}

	globalConfig.Auth = next
	return nil
}

func setAuthKeys(a AuthConfig) {
	viper.Set("auth.email", a.Email)
	viper.Set("auth.access_token", a.AccessToken)
	viper.Set("auth.refresh_token", a.RefreshToken)
}

// ClearAuth removes the stored session in one write
func ClearAuth() error {
	return UpdateAuth("", "", "")
}

// Auth returns a copy of the stored session fields
func Auth() AuthConfig {
	authMu.Lock()
	defer authMu.Unlock()

	if globalConfig == nil {
		return AuthConfig{}
	}
	return globalConfig.Auth
}
