package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidatePasswordReportsFirstFailingRule(t *testing.T) {
	tests := []struct {
		password string
		want     error
	}{
		{"short", ErrPasswordTooShort},
		{"Sh0rt!", ErrPasswordTooShort},
		{"Sh0rt!x", ErrPasswordTooShort},
		{"", ErrPasswordTooShort},
		{"longenough1", ErrPasswordNoUpper},
		{"longenough", ErrPasswordNoUpper},
		{"LONGENOUGH1!", ErrPasswordNoLower},
		{"Longenough!", ErrPasswordNoDigit},
		{"Longenough1", ErrPasswordNoSymbol},
		{"Longenough1!", nil},
		{"Aa1[aaaa", nil},
		{`Aa1\aaaa`, nil},
		{"Aa1 aaaa", ErrPasswordNoSymbol},
		{"Ąą1!ąąąą", ErrPasswordNoUpper},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidatePasswordCountsCharacters(t *testing.T) {
	// eight characters, more than eight bytes
	require.NotErrorIs(t, ValidatePassword("Aa1!ééé"+"é"), ErrPasswordTooShort)
	require.ErrorIs(t, ValidatePassword("Aa1!ééé"), ErrPasswordTooShort)
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"ada@example.com", true},
		{"@", true},
		{"a@b@c", true},
		{"no-at-sign", false},
		{"", false},
		{"ada(at)example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			require.Equal(t, tt.want, ValidateEmail(tt.email))
		})
	}
}

func TestValidateURL(t *testing.T) {
	require.NoError(t, ValidateURL("https://auth.example.com"))
	require.NoError(t, ValidateURL("http://localhost:8000"))
	require.Error(t, ValidateURL(""))
	require.Error(t, ValidateURL("auth.example.com"))
	require.Error(t, ValidateURL("ftp://auth.example.com"))
}

func TestMultiError(t *testing.T) {
	errs := NewMultiError()
	require.NoError(t, errs.ErrorOrNil())

	errs.Add(nil)
	require.False(t, errs.HasErrors())

	errs.Add(NewValidationError("server.url", "invalid URL format"))
	require.EqualError(t, errs.ErrorOrNil(), "validation error for field 'server.url': invalid URL format")

	errs.Add(NewValidationError("", "second"))
	require.EqualError(t, errs, "2 errors occurred")
}

func TestIsAuthError(t *testing.T) {
	require.True(t, IsAuthError(ErrNotAuthenticated))
	require.True(t, IsAuthError(NewAPIError(401, "expired")))
	require.True(t, IsAuthError(NewAPIError(403, "forbidden")))
	require.False(t, IsAuthError(NewAPIError(400, "bad")))
	require.False(t, IsAuthError(&NetworkError{Op: "login"}))
}

func TestAPIErrorFields(t *testing.T) {
	e := &APIError{
		FieldErrors: map[string][]string{"email": {"taken"}},
		Invalid:     []string{"email", "password"},
	}
	require.ElementsMatch(t, []string{"email", "password"}, e.Fields())
}
