package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFieldMessages(t *testing.T) {
	tests := []struct {
		raw    string
		want   []string
		wantOK bool
	}{
		{`["Too short.", "", "Too common."]`, []string{"Too short.", "Too common."}, true},
		{`"Wrong password."`, []string{"Wrong password."}, true},
		{`[]`, []string{}, false},
		{`""`, nil, false},
		{`{"nested": true}`, nil, false},
		{`42`, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := FieldMessages(json.RawMessage(tt.raw))
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFieldMessageListRejectsBareStrings(t *testing.T) {
	_, ok := FieldMessageList(json.RawMessage(`"token_not_valid"`))
	require.False(t, ok)

	got, ok := FieldMessageList(json.RawMessage(`["a", ""]`))
	require.True(t, ok)
	require.Equal(t, []string{"a"}, got)
}

func TestIsFieldKey(t *testing.T) {
	require.True(t, IsFieldKey("password"))
	require.True(t, IsFieldKey("new_password2"))
	require.False(t, IsFieldKey("detail"))
	require.False(t, IsFieldKey("non_field_errors"))
	require.False(t, IsFieldKey("2fa_required"))
	require.False(t, IsFieldKey("messages"))
}

func TestConfirmTwoFARequestOmitsCode(t *testing.T) {
	data, err := json.Marshal(ConfirmTwoFARequest{Enable: false})
	require.NoError(t, err)
	require.JSONEq(t, `{"enable": false}`, string(data))
}
