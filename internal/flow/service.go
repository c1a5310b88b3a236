package flow

import (
	"context"
	"errors"

	"github.com/faceauth/cli/internal/api"
	"github.com/faceauth/cli/internal/models"
)

// AuthService is the remote API as seen by the controllers. *api.Client implements it.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
	Register(ctx context.Context, email, password, passwordConfirm string) (string, error)
	VerifyTwoFactor(ctx context.Context, tempToken, code string) (*api.TokenPair, error)
	Logout(ctx context.Context) error
	TwoFactorStatus(ctx context.Context) (*models.TwoFAStatus, error)
	ConfirmTwoFactor(ctx context.Context, code *string, enable bool) error
	ChangePassword(ctx context.Context, current, newPassword, newConfirm string) (string, error)
}

var _ AuthService = (*api.Client)(nil)

var (
	// ErrSubmitInFlight is returned when a form is submitted again before its previous submission resolved.
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	// ErrWrongStage is returned when an intent does not apply to the current stage.
	ErrWrongStage = errors.New("action not available in the current stage")
	// ErrSuperseded is returned when a cancel or logout overtook the request.
	ErrSuperseded = errors.New("request superseded")
)
