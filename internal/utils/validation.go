package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the minimum number of characters a password must have
const MinPasswordLength = 8

// passwordSymbols is the punctuation set accepted as a password symbol
const passwordSymbols = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// Password strength violations, reported in this order
var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordNoUpper  = errors.New("password must contain an uppercase letter")
	ErrPasswordNoLower  = errors.New("password must contain a lowercase letter")
	ErrPasswordNoDigit  = errors.New("password must contain a digit")
	ErrPasswordNoSymbol = errors.New("password must contain a special character")
)

// ValidateEmail reports whether email contains an '@'.
//
// The check is intentionally minimal; the service performs the real validation.
func ValidateEmail(email string) bool {
	return strings.Contains(email, "@")
}

// ValidatePassword returns the first strength rule the password violates, or nil.
// Rules are checked in fixed order: length, uppercase, lowercase, digit, symbol.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	switch {
	case !hasUpper:
		return ErrPasswordNoUpper
	case !hasLower:
		return ErrPasswordNoLower
	case !hasDigit:
		return ErrPasswordNoDigit
	case !hasSymbol:
		return ErrPasswordNoSymbol
	}
	return nil
}

// ValidateRequired validates that a string is not empty
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(fieldName, fmt.Sprintf("%s is required", fieldName))
	}
	return nil
}

// ValidateURL validates a service base URL
func ValidateURL(raw string) error {
	if err := ValidateRequired(raw, "URL"); err != nil {
		return err
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid URL format")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https")
	}

	return nil
}
