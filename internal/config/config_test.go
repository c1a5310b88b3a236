package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func initTemp(t *testing.T) string {
	t.Helper()
	viper.Reset()
	globalConfig = nil
	t.Cleanup(func() {
		viper.Reset()
		globalConfig = nil
	})
	path := filepath.Join(t.TempDir(), "nested", DefaultFileName)
	require.NoError(t, Initialize(path))
	return path
}

func TestInitializeCreatesDefaultFile(t *testing.T) {
	path := initTemp(t)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	cfg := Get()
	require.Equal(t, "https://localhost", cfg.Server.URL)
	require.Equal(t, "table", cfg.Format.Default)
	require.Equal(t, "3s", cfg.UI.ErrorCooldown)
	require.NoError(t, cfg.Validate())
	require.Equal(t, path, Path())
}

func TestSet(t *testing.T) {
	path := initTemp(t)

	require.NoError(t, Set("server.url", "https://auth.example.com"))
	require.Equal(t, "https://auth.example.com", Get().Server.URL)

	require.NoError(t, Set("server.rate_limit", "2.5"))
	require.Equal(t, 2.5, Get().Server.RateLimit)

	require.Error(t, Set("server.nope", "x"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "https://auth.example.com")
}

func TestUpdateAuthWritesBothTokens(t *testing.T) {
	path := initTemp(t)

	require.NoError(t, UpdateAuth("ada@example.com", "a", "r"))
	require.Equal(t, AuthConfig{Email: "ada@example.com", AccessToken: "a", RefreshToken: "r"}, Auth())

	require.NoError(t, ClearAuth())
	require.Equal(t, AuthConfig{}, Auth())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "access_token: a")
}

func TestUpdateAuthKeepsSessionWhenWriteFails(t *testing.T) {
	path := initTemp(t)
	require.NoError(t, UpdateAuth("ada@example.com", "a", "r"))

	require.NoError(t, os.RemoveAll(filepath.Dir(path)))
	require.Error(t, UpdateAuth("bob@example.com", "b", "s"))

	require.Equal(t, AuthConfig{Email: "ada@example.com", AccessToken: "a", RefreshToken: "r"}, Auth())
	require.Equal(t, "a", viper.GetString("auth.access_token"))

	require.Error(t, ClearAuth())
	require.Equal(t, "a", Auth().AccessToken)
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.URL = "ftp://example.com"
	cfg.Server.RateLimit = -1
	cfg.UI.ErrorCooldown = "soon"
	cfg.Format.Default = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "4 errors")
}

func TestParseDuration(t *testing.T) {
	require.Equal(t, 2*time.Second, ParseDuration("2s", time.Minute))
	require.Equal(t, time.Minute, ParseDuration("", time.Minute))
	require.Equal(t, time.Minute, ParseDuration("bogus", time.Minute))
	require.Equal(t, time.Minute, ParseDuration("-1s", time.Minute))
	require.Equal(t, DefaultTimeout, ServerConfig{}.RequestTimeout())
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("FACEAUTH_SERVER_URL", "https://env.example.com")
	initTemp(t)

	require.Equal(t, "https://env.example.com", Get().Server.URL)
}

func TestOutputFormat(t *testing.T) {
	initTemp(t)
	t.Cleanup(func() { SetOutputFormat("") })

	require.Equal(t, "table", GetOutputFormat())
	SetOutputFormat("json")
	require.Equal(t, "json", GetOutputFormat())
}
