package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/faceauth/cli/internal/config"
	"github.com/faceauth/cli/internal/format"
	"github.com/faceauth/cli/internal/models"
	"github.com/faceauth/cli/internal/session"
	"github.com/faceauth/cli/internal/utils"
)

// APIPrefix is appended to the server URL
const APIPrefix = "/api/v1"

// maxBodySize bounds how much of a response is read
const maxBodySize = 1 << 20

// Client represents the API client
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	store   session.Store
	limiter *rate.Limiter
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.HTTPClient = hc
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.HTTPClient.Timeout = d
	}
}

// WithRateLimit paces outgoing requests; a non-positive rps disables pacing
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a new API client that reads bearer tokens from store
func NewClient(baseURL string, store session.Store, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: config.DefaultTimeout,
			Jar:     jar,
		},
		store: store,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig creates a client for the configured server
func NewClientFromConfig(cfg *config.Config, store session.Store) *Client {
	return NewClient(cfg.Server.URL, store,
		WithTimeout(cfg.Server.RequestTimeout()),
		WithRateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst),
	)
}

// LoginResult is the successful outcome of Login.
// Either Token is set, or TwoFactorRequired is true.
type LoginResult struct {
	Token             string
	Refresh           string
	TwoFactorRequired bool
	TempToken         string
	Message           string
}

// TokenPair is a freshly issued session
type TokenPair struct {
	Token   string
	Refresh string
}

// Login authenticates with email and password
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var resp models.LoginResponse
	req := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/login/", req, authNone, &resp); err != nil {
		return nil, err
	}

	if resp.TwoFARequired {
		return &LoginResult{TwoFactorRequired: true, TempToken: resp.TempToken, Message: resp.Message}, nil
	}
	if resp.Token == "" {
		return nil, &utils.NetworkError{Op: "login", Err: errors.New("response carries no token")}
	}
	return &LoginResult{Token: resp.Token, Refresh: resp.Refresh, Message: resp.Message}, nil
}

// Register creates an account. It never establishes a session.
func (c *Client) Register(ctx context.Context, email, password, passwordConfirm string) (string, error) {
	var resp models.StatusResponse
	req := models.RegisterRequest{Email: email, Password: password, RePassword: passwordConfirm}
	if err := c.do(ctx, http.MethodPost, "/register/", req, authNone, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// VerifyTwoFactor completes a login that required a second factor
func (c *Client) VerifyTwoFactor(ctx context.Context, tempToken, code string) (*TokenPair, error) {
	var resp models.TokenResponse
	req := models.VerifyTwoFARequest{TempToken: tempToken, Code: code}
	if err := c.do(ctx, http.MethodPost, "/login/2fa/", req, authNone, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &utils.NetworkError{Op: "2fa verification", Err: errors.New("response carries no token")}
	}
	return &TokenPair{Token: resp.Token, Refresh: resp.Refresh}, nil
}

// Logout revokes the stored session on the server. It is best-effort:
// callers clear the local session whatever the outcome.
func (c *Client) Logout(ctx context.Context) error {
	sess, _ := c.store.Load()
	req := models.LogoutRequest{Refresh: sess.RefreshToken}
	return c.do(ctx, http.MethodPost, "/logout/", req, authOptional, nil)
}

// TwoFactorStatus fetches the 2FA state and, while 2FA is off, a pending enrollment
func (c *Client) TwoFactorStatus(ctx context.Context) (*models.TwoFAStatus, error) {
	var resp models.TwoFAStatus
	if err := c.do(ctx, http.MethodGet, "/2fa/status/", nil, authRequired, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConfirmTwoFactor enables 2FA with code, or disables it when enable is false.
// The code is omitted from the request when nil.
func (c *Client) ConfirmTwoFactor(ctx context.Context, code *string, enable bool) error {
	req := models.ConfirmTwoFARequest{Code: code, Enable: enable}
	return c.do(ctx, http.MethodPost, "/2fa/confirm/", req, authRequired, nil)
}

// ChangePassword changes the password of the current user
func (c *Client) ChangePassword(ctx context.Context, current, newPassword, newConfirm string) (string, error) {
	var resp models.StatusResponse
	req := models.ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     newPassword,
		NewPassword2:    newConfirm,
	}
	if err := c.do(ctx, http.MethodPost, "/change_password/", req, authRequired, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// IsAuthenticated checks if a session is stored
func (c *Client) IsAuthenticated() bool {
	_, ok := c.store.Load()
	return ok
}

// authMode says whether a request carries the bearer token
type authMode int

const (
	authNone authMode = iota
	authOptional
	authRequired
)

// do sends one request and normalizes the answer. The returned error is nil,
// *utils.APIError, *utils.NetworkError or utils.ErrNotAuthenticated.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}, auth authMode, out interface{}) error {
	var bearer string
	if auth != authNone {
		sess, ok := c.store.Load()
		if !ok && auth == authRequired {
			return utils.ErrNotAuthenticated
		}
		bearer = sess.AccessToken
	}

	op := strings.Trim(path, "/")

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &utils.NetworkError{Op: op, Err: err}
		}
	}

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return &utils.NetworkError{Op: op, Err: fmt.Errorf("failed to marshal request: %w", err)}
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+APIPrefix+path, body)
	if err != nil {
		return &utils.NetworkError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		format.PrintDebug("%s %s request_id=%s failed: %v", method, path, requestID, err)
		return &utils.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	format.PrintDebug("%s %s request_id=%s status=%d duration=%s",
		method, path, requestID, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &utils.NetworkError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	// Non-JSON bodies (proxy error pages and the like) count as empty.
	if !isJSON(resp.Header.Get("Content-Type")) || len(bytes.TrimSpace(raw)) == 0 {
		raw = nil
	}

	var fields map[string]json.RawMessage
	if raw != nil {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return &utils.NetworkError{Op: op, Err: fmt.Errorf("failed to parse response: %w", err)}
		}
	}

	if resp.StatusCode >= http.StatusBadRequest || explicitlyNotOK(fields) {
		return newAPIError(resp.StatusCode, fields)
	}

	if out != nil && raw != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &utils.NetworkError{Op: op, Err: fmt.Errorf("failed to parse response: %w", err)}
		}
	}
	return nil
}

// isJSON reports whether a Content-Type declares a JSON document
func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// explicitlyNotOK reports a success status whose body still says "ok": false
func explicitlyNotOK(fields map[string]json.RawMessage) bool {
	raw, ok := fields["ok"]
	if !ok {
		return false
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil || v {
		return false
	}
	// a token in the body still means the call succeeded
	_, hasToken := fields["token"]
	_, hasChallenge := fields["2fa_required"]
	return !hasToken && !hasChallenge
}
