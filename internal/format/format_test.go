package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type sample struct {
	Enabled     bool     `json:"enabled"`
	Account     string   `json:"account,omitempty"`
	BackupCodes []string `json:"backup_codes,omitempty"`
	hidden      string
}

func TestProperties(t *testing.T) {
	props, ok := properties(sample{Enabled: true, BackupCodes: []string{"1"}, hidden: "x"})
	require.True(t, ok)
	require.Equal(t, []property{
		{Key: "enabled", Value: true},
		{Key: "backup_codes", Value: []string{"1"}},
	}, props)

	props, ok = properties(map[string]int{"b": 2, "a": 1})
	require.True(t, ok)
	require.Equal(t, "a", props[0].Key)

	_, ok = properties([]string{"x"})
	require.False(t, ok)
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter().Format(&buf, sample{Account: "ada", BackupCodes: []string{"11", "22"}}))

	require.Equal(t, "Enabled: false\nAccount: ada\nBackup Codes:\n  11\n  22\n", buf.String())
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(false).Format(&buf, sample{Enabled: true, Account: "ada"}))

	out := buf.String()
	require.Contains(t, out, "PROPERTY")
	require.Contains(t, out, "Account")
	require.Contains(t, out, "ada")
	require.Contains(t, out, "true")
}

func TestTableFormatterList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(false).Format(&buf, []string{"first", "second"}))
	require.Contains(t, buf.String(), "second")

	buf.Reset()
	require.NoError(t, NewTableFormatter(false).Format(&buf, []string{}))
	require.Equal(t, "No data to display\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(false).Format(&buf, sample{Enabled: true}))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, map[string]interface{}{"enabled": true}, got)
	require.False(t, strings.Contains(strings.TrimSpace(buf.String()), "\n"))
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter().Format(&buf, map[string]string{"secret": "JBSWY3DPEHPK3PXP"}))

	var got map[string]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "JBSWY3DPEHPK3PXP", got["secret"])
}

func TestGetFormatter(t *testing.T) {
	for _, name := range []string{"table", "json", "json-compact", "yaml", "text"} {
		f, err := GetFormatter(name)
		require.NoError(t, err, name)
		require.NotNil(t, f)
	}
	_, err := GetFormatter("xml")
	require.Error(t, err)
}

func TestFormatHeader(t *testing.T) {
	require.Equal(t, "Refresh Token Present", formatHeader("refresh_token_present"))
}
