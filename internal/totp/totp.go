// Package totp wraps the one-time password helpers used by the CLI: generating
// a login code from a shared secret and inspecting enrollment material.
package totp

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Code returns the current code for a base32 secret
func Code(secret string, now time.Time) (string, error) {
	secret = normalizeSecret(secret)
	if secret == "" {
		return "", errors.New("empty TOTP secret")
	}
	code, err := totp.GenerateCode(secret, now)
	if err != nil {
		return "", fmt.Errorf("generate TOTP code: %w", err)
	}
	return code, nil
}

// normalizeSecret strips the spacing authenticator apps show secrets with
func normalizeSecret(secret string) string {
	secret = strings.ToUpper(strings.TrimSpace(secret))
	return strings.ReplaceAll(secret, " ", "")
}

// KeyInfo describes an otpauth:// provisioning URL
type KeyInfo struct {
	Issuer    string `json:"issuer,omitempty"`
	Account   string `json:"account,omitempty"`
	Secret    string `json:"secret"`
	Digits    int    `json:"digits"`
	Period    uint64 `json:"period"`
	Algorithm string `json:"algorithm"`
}

// Inspect parses a provisioning URL so the secret can be typed in manually
func Inspect(url string) (KeyInfo, error) {
	key, err := otp.NewKeyFromURL(url)
	if err != nil {
		return KeyInfo{}, fmt.Errorf("parse otpauth URL: %w", err)
	}
	if key.Type() != "totp" {
		return KeyInfo{}, fmt.Errorf("unsupported OTP type %q", key.Type())
	}
	return KeyInfo{
		Issuer:    key.Issuer(),
		Account:   key.AccountName(),
		Secret:    key.Secret(),
		Digits:    key.Digits().Length(),
		Period:    key.Period(),
		Algorithm: key.Algorithm().String(),
	}, nil
}

const pngDataPrefix = "data:image/png;base64,"

// QRImage returns PNG bytes for an enrollment. The service's data URI is
// preferred; without one the image is rendered from the provisioning URL.
func QRImage(dataURI, otpauthURL string) ([]byte, error) {
	if dataURI != "" {
		return decodeDataURI(dataURI)
	}
	if otpauthURL == "" {
		return nil, errors.New("enrollment carries no QR code")
	}

	key, err := otp.NewKeyFromURL(otpauthURL)
	if err != nil {
		return nil, fmt.Errorf("parse otpauth URL: %w", err)
	}
	img, err := key.Image(256, 256)
	if err != nil {
		return nil, fmt.Errorf("render QR code: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode QR code: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeDataURI(dataURI string) ([]byte, error) {
	if !strings.HasPrefix(dataURI, pngDataPrefix) {
		// some services send the bare base64 payload
		if strings.HasPrefix(dataURI, "data:") {
			return nil, errors.New("QR code is not a base64 PNG data URI")
		}
		dataURI = pngDataPrefix + dataURI
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURI, pngDataPrefix))
	if err != nil {
		return nil, fmt.Errorf("decode QR code: %w", err)
	}
	return data, nil
}
