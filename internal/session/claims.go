package session

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what can be read from a token without verifying it
type TokenInfo struct {
	Opaque    bool       `json:"opaque"`
	Subject   string     `json:"subject,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired,omitempty"`
}

// Describe decodes a JWT-shaped token for display.
// The signature is not checked and the result never gates a request;
// tokens that are not JWTs are reported as opaque.
func Describe(token string, now time.Time) TokenInfo {
	if token == "" {
		return TokenInfo{Opaque: true}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{Opaque: true}
	}

	info := TokenInfo{}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		info.Subject = sub
	} else if uid, ok := claims["user_id"]; ok {
		info.Subject = jsonString(uid)
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		info.IssuedAt = &t
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
		info.Expired = now.After(t)
	}
	return info
}

func jsonString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}
