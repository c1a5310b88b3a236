package models

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" yaml:"email"`
	Password string `json:"password" yaml:"password"`
}

// LoginResponse represents a login response.
// Either Token is set, or TwoFARequired is true and TempToken identifies the pending login.
type LoginResponse struct {
	OK            bool   `json:"ok"`
	Message       string `json:"message,omitempty"`
	Token         string `json:"token,omitempty"`
	Refresh       string `json:"refresh,omitempty"`
	TwoFARequired bool   `json:"2fa_required,omitempty"`
	TempToken     string `json:"temp_token,omitempty"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email      string `json:"email" yaml:"email"`
	Password   string `json:"password" yaml:"password"`
	RePassword string `json:"re_password" yaml:"re_password"`
}

// VerifyTwoFARequest completes a login that requires a second factor
type VerifyTwoFARequest struct {
	TempToken string `json:"temp_token"`
	Code      string `json:"code"`
}

// TokenResponse carries a freshly issued token pair
type TokenResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token"`
	Refresh string `json:"refresh"`
}

// LogoutRequest represents a logout request
type LogoutRequest struct {
	Refresh string `json:"refresh,omitempty"`
}

// TwoFAStatus describes the 2FA state of the current user.
// Every fetch may issue a new pending secret, so QRCode and BackupCodes can change between calls.
type TwoFAStatus struct {
	IsEnabled   bool     `json:"is_enabled" yaml:"is_enabled"`
	QRCode      string   `json:"qr_code,omitempty" yaml:"qr_code,omitempty"`
	BackupCodes []string `json:"backup_codes,omitempty" yaml:"backup_codes,omitempty"`
	OTPAuthURL  string   `json:"otpauth_url,omitempty" yaml:"otpauth_url,omitempty"`
}

// ConfirmTwoFARequest enables (with a code) or disables (without one) 2FA
type ConfirmTwoFARequest struct {
	Code   *string `json:"code,omitempty"`
	Enable bool    `json:"enable"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	NewPassword2    string `json:"new_password2"`
}
