package twofa

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/faceauth/cli/internal/config"
	"github.com/faceauth/cli/internal/format"
)

const pendingURL = "otpauth://totp/FaceAuth:ada@example.com?secret=JBSWY3DPEHPK3PXP&issuer=FaceAuth"

func setup(t *testing.T, h http.Handler) *bytes.Buffer {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	viper.Reset()
	t.Cleanup(viper.Reset)
	require.NoError(t, config.Initialize(filepath.Join(t.TempDir(), config.DefaultFileName)))
	require.NoError(t, config.Set("server.url", srv.URL))
	require.NoError(t, config.UpdateAuth("ada@example.com", "access", "refresh"))

	config.SetOutputFormat("json")
	t.Cleanup(func() { config.SetOutputFormat("") })

	stdout, stderr := format.Out, format.Err
	t.Cleanup(func() { format.Out, format.Err = stdout, stderr })

	var out bytes.Buffer
	format.Out = &out
	format.Err = &bytes.Buffer{}
	return &out
}

func TestDisablePrintsFreshEnrollment(t *testing.T) {
	var confirms, statuses int
	out := setup(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/2fa/confirm/":
			confirms++
			_, _ = w.Write([]byte(`{"ok": true}`))
		case "/api/v1/2fa/status/":
			statuses++
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"is_enabled":   false,
				"backup_codes": []string{"11111111"},
				"otpauth_url":  pendingURL,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	disableCmd.SetContext(context.Background())
	require.NoError(t, runDisable(disableCmd, nil))

	require.Equal(t, 1, confirms)
	require.Equal(t, 1, statuses)

	var view statusView
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	require.False(t, view.Enabled)
	require.Equal(t, "JBSWY3DPEHPK3PXP", view.Secret)
	require.Equal(t, []string{"11111111"}, view.BackupCodes)
}
