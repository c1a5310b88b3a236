package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/faceauth/cli/internal/config"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	_, ok := s.Load()
	require.False(t, ok)

	require.NoError(t, s.Save(Session{AccessToken: "a", RefreshToken: "r", Email: "ada@example.com"}))
	got, ok := s.Load()
	require.True(t, ok)
	require.Equal(t, "r", got.RefreshToken)

	require.NoError(t, s.Clear())
	got, ok = s.Load()
	require.False(t, ok)
	require.Equal(t, Session{}, got)
}

func TestMemoryStoreRefreshOnlyIsNotASession(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Save(Session{RefreshToken: "r"}))
	_, ok := s.Load()
	require.False(t, ok)
}

func TestConfigStorePersists(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	path := filepath.Join(t.TempDir(), "faceauth.yaml")
	require.NoError(t, config.Initialize(path))

	s := NewConfigStore()
	require.NoError(t, s.Save(Session{AccessToken: "a", RefreshToken: "r", Email: "ada@example.com"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "access_token: a")
	require.Contains(t, string(data), "refresh_token: r")

	// a fresh load sees the same session
	viper.Reset()
	require.NoError(t, config.Initialize(path))
	got, ok := s.Load()
	require.True(t, ok)
	require.Equal(t, Session{AccessToken: "a", RefreshToken: "r", Email: "ada@example.com"}, got)

	require.NoError(t, s.Clear())
	viper.Reset()
	require.NoError(t, config.Initialize(path))
	_, ok = s.Load()
	require.False(t, ok)
	require.Empty(t, config.Auth().RefreshToken)
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestDescribe(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	iat := now.Add(-time.Hour)
	exp := now.Add(time.Hour)

	info := Describe(signed(t, jwt.MapClaims{
		"user_id": 42,
		"iat":     iat.Unix(),
		"exp":     exp.Unix(),
	}), now)

	require.False(t, info.Opaque)
	require.Equal(t, "42", info.Subject)
	require.NotNil(t, info.IssuedAt)
	require.True(t, iat.Equal(*info.IssuedAt))
	require.True(t, exp.Equal(*info.ExpiresAt))
	require.False(t, info.Expired)

	require.True(t, Describe(signed(t, jwt.MapClaims{"sub": "ada", "exp": now.Add(-time.Minute).Unix()}), now).Expired)
}

func TestDescribeOpaque(t *testing.T) {
	require.True(t, Describe("", time.Now()).Opaque)
	require.True(t, Describe("3f1c9a0d2b", time.Now()).Opaque)
}
