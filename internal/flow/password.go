package flow

import (
	"context"
	"sync"

	"github.com/faceauth/cli/internal/utils"
)

// PasswordState is a read-only snapshot of PasswordChange
type PasswordState struct {
	Current string
	New     string
	Confirm string
	Busy    bool
	Message string
	IsError bool
	Invalid FieldSet
}

// PasswordChange drives the change-password form of an authenticated user
type PasswordChange struct {
	svc      AuthService
	onChange func()

	mu      sync.Mutex
	current string
	next    string
	confirm string
	busy    bool
	message string
	isError bool
	invalid FieldSet
	epoch   uint64
}

// NewPasswordChange returns an empty form
func NewPasswordChange(svc AuthService, onChange func()) *PasswordChange {
	return &PasswordChange{svc: svc, onChange: onChange, invalid: NewFieldSet()}
}

// Snapshot returns a copy of the current state
func (p *PasswordChange) Snapshot() PasswordState {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PasswordState{
		Current: p.current,
		New:     p.next,
		Confirm: p.confirm,
		Busy:    p.busy,
		Message: p.message,
		IsError: p.isError,
		Invalid: p.invalid.clone(),
	}
}

// SetCurrent updates the current password field
func (p *PasswordChange) SetCurrent(v string) {
	p.edit(func() { p.current = v })
}

// SetNew updates the new password field
func (p *PasswordChange) SetNew(v string) {
	p.edit(func() { p.next = v })
}

// SetConfirm updates the new password confirmation field
func (p *PasswordChange) SetConfirm(v string) {
	p.edit(func() { p.confirm = v })
}

func (p *PasswordChange) edit(fn func()) {
	p.mu.Lock()
	fn()
	p.mu.Unlock()
	p.notify()
}

// Submit validates the form and asks the service to change the password
func (p *PasswordChange) Submit(ctx context.Context) error {
	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return ErrSubmitInFlight
	}

	p.message = ""
	p.isError = false
	p.invalid = NewFieldSet()

	if err := p.validate(); err != nil {
		p.mu.Unlock()
		p.notify()
		return err
	}

	current, next, confirm := p.current, p.next, p.confirm
	epoch := p.epoch
	p.busy = true
	p.mu.Unlock()
	p.notify()

	msg, err := p.svc.ChangePassword(ctx, current, next, confirm)

	p.mu.Lock()
	defer p.notify()
	defer p.mu.Unlock()

	p.busy = false
	if epoch != p.epoch {
		return ErrSuperseded
	}

	if err != nil {
		p.message, p.invalid = describeFailure(err)
		p.isError = true
		return err
	}

	p.current = ""
	p.next = ""
	p.confirm = ""
	p.message = msg
	if p.message == "" {
		p.message = MsgPasswordChanged
	}
	return nil
}

// validate runs the local checks in order. Caller holds mu.
func (p *PasswordChange) validate() error {
	switch {
	case utils.ValidateRequired(p.current, string(FieldCurrentPassword)) != nil:
		p.fail(MsgCurrentRequired, FieldCurrentPassword)
		return utils.NewValidationError(string(FieldCurrentPassword), MsgCurrentRequired)
	case p.next != p.confirm:
		p.fail(MsgPasswordMismatch, FieldNewPassword, FieldConfirmNewPassword)
		return utils.NewValidationError(string(FieldConfirmNewPassword), MsgPasswordMismatch)
	}
	if err := utils.ValidatePassword(p.next); err != nil {
		p.fail(err.Error(), FieldNewPassword)
		return utils.NewValidationError(string(FieldNewPassword), err.Error())
	}
	return nil
}

func (p *PasswordChange) fail(msg string, fields ...Field) {
	p.message = msg
	p.isError = true
	p.invalid = NewFieldSet(fields...)
}

// Reset empties the form. A request in flight keeps the form busy until it
// returns; its result is then dropped.
func (p *PasswordChange) Reset() {
	p.reset()
	p.notify()
}

func (p *PasswordChange) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.epoch++
	p.current = ""
	p.next = ""
	p.confirm = ""
	p.message = ""
	p.isError = false
	p.invalid = NewFieldSet()
}

func (p *PasswordChange) notify() {
	if p.onChange != nil {
		p.onChange()
	}
}
