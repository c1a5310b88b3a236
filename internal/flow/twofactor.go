package flow

import (
	"context"
	"strings"
	"sync"

	"github.com/faceauth/cli/internal/models"
	"github.com/faceauth/cli/internal/utils"
)

// Enrollment is the material needed to register an authenticator app
type Enrollment struct {
	// QRImage is the QR code as a data URI.
	QRImage     string
	BackupCodes []string
	// OTPAuthURL is the provisioning URL, when the service sends it.
	OTPAuthURL string
}

// TwoFactorState is a read-only snapshot of TwoFactorSettings
type TwoFactorState struct {
	Loaded      bool
	Enabled     bool
	Configuring bool
	Busy        bool
	Enrollment  *Enrollment
	Message     string
	IsError     bool
}

// TwoFactorSettings enrolls and removes the second factor of the current user.
//
// Fetching the status may make the service issue a new pending secret, so
// Refresh is only called on entering the settings page and on starting
// configuration.
type TwoFactorSettings struct {
	svc      AuthService
	onChange func()

	mu          sync.Mutex
	loaded      bool
	enabled     bool
	configuring bool
	busy        bool
	enrollment  *Enrollment
	message     string
	isError     bool
	epoch       uint64
}

// NewTwoFactorSettings returns an empty controller
func NewTwoFactorSettings(svc AuthService, onChange func()) *TwoFactorSettings {
	return &TwoFactorSettings{svc: svc, onChange: onChange}
}

// Snapshot returns a copy of the current state
func (s *TwoFactorSettings) Snapshot() TwoFactorState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := TwoFactorState{
		Loaded:      s.loaded,
		Enabled:     s.enabled,
		Configuring: s.configuring,
		Busy:        s.busy,
		Message:     s.message,
		IsError:     s.isError,
	}
	if s.enrollment != nil {
		e := *s.enrollment
		e.BackupCodes = append([]string(nil), s.enrollment.BackupCodes...)
		st.Enrollment = &e
	}
	return st
}

// Refresh fetches the 2FA status and the pending enrollment
func (s *TwoFactorSettings) Refresh(ctx context.Context) error {
	epoch, err := s.begin()
	if err != nil {
		return err
	}

	status, err := s.svc.TwoFactorStatus(ctx)

	return s.finish(epoch, err, func() {
		s.loaded = true
		s.enabled = status.IsEnabled
		s.enrollment = enrollmentFrom(status)
		if s.isError {
			s.message = ""
			s.isError = false
		}
	})
}

// StartConfiguration fetches a fresh enrollment and enters configuring mode
func (s *TwoFactorSettings) StartConfiguration(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	if !s.enabled {
		s.configuring = true
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// CancelConfiguration leaves configuring mode
func (s *TwoFactorSettings) CancelConfiguration() {
	s.mu.Lock()
	s.configuring = false
	s.message = ""
	s.isError = false
	s.mu.Unlock()
	s.notify()
}

// Enable confirms the enrollment with a code from the authenticator app.
// An empty code is refused without contacting the service.
func (s *TwoFactorSettings) Enable(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		s.mu.Lock()
		s.message = MsgCodeRequired
		s.isError = true
		s.mu.Unlock()
		s.notify()
		return utils.NewValidationError(string(FieldCode), MsgCodeRequired)
	}

	epoch, err := s.begin()
	if err != nil {
		return err
	}

	err = s.svc.ConfirmTwoFactor(ctx, &code, true)

	return s.finish(epoch, err, func() {
		s.enabled = true
		s.configuring = false
		s.message = MsgTwoFactorEnabled
		s.isError = false
	})
}

// Disable turns 2FA off and fetches a fresh enrollment for a later re-enable
func (s *TwoFactorSettings) Disable(ctx context.Context) error {
	epoch, err := s.begin()
	if err != nil {
		return err
	}

	err = s.svc.ConfirmTwoFactor(ctx, nil, false)

	if err := s.finish(epoch, err, func() {
		s.enabled = false
		s.configuring = false
		s.enrollment = nil
		s.message = MsgTwoFactorDisabled
		s.isError = false
	}); err != nil {
		return err
	}

	return s.Refresh(ctx)
}

// Reset discards the enrollment and every message, as when the page is left.
// A request in flight still blocks new ones until it returns.
func (s *TwoFactorSettings) Reset() {
	s.reset()
	s.notify()
}

func (s *TwoFactorSettings) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.loaded = false
	s.enabled = false
	s.configuring = false
	s.enrollment = nil
	s.message = ""
	s.isError = false
}

// begin marks a request in flight
func (s *TwoFactorSettings) begin() (uint64, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return 0, ErrSubmitInFlight
	}
	s.busy = true
	epoch := s.epoch
	s.mu.Unlock()
	s.notify()
	return epoch, nil
}

// finish applies a completed request: success runs apply, failure sets the message
func (s *TwoFactorSettings) finish(epoch uint64, err error, apply func()) error {
	s.mu.Lock()
	s.busy = false
	if epoch != s.epoch {
		s.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		s.message, _ = describeFailure(err)
		s.isError = true
	} else {
		apply()
	}
	s.mu.Unlock()
	s.notify()
	return err
}

func (s *TwoFactorSettings) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

func enrollmentFrom(status *models.TwoFAStatus) *Enrollment {
	if status.QRCode == "" && status.OTPAuthURL == "" && len(status.BackupCodes) == 0 {
		return nil
	}
	return &Enrollment{
		QRImage:     status.QRCode,
		BackupCodes: append([]string(nil), status.BackupCodes...),
		OTPAuthURL:  status.OTPAuthURL,
	}
}
