package flow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/faceauth/cli/internal/api"
	"github.com/faceauth/cli/internal/session"
	"github.com/faceauth/cli/internal/utils"
)

// MinSecondFactorLength is the shortest code sent for verification
const MinSecondFactorLength = 6

// Stage is the top-level authentication state
type Stage int

const (
	StageUnauthenticated Stage = iota
	StageAwaitingSecondFactor
	StageAuthenticated
)

func (s Stage) String() string {
	switch s {
	case StageUnauthenticated:
		return "unauthenticated"
	case StageAwaitingSecondFactor:
		return "awaiting_second_factor"
	case StageAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Mode selects the credential form
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

// Page is the view shown to an authenticated user
type Page int

const (
	PageHome Page = iota
	PageTwoFactorSettings
	PageChangePassword
)

func (p Page) String() string {
	switch p {
	case PageTwoFactorSettings:
		return "two_factor_settings"
	case PageChangePassword:
		return "change_password"
	default:
		return "home"
	}
}

// Options tune a Machine
type Options struct {
	Scheduler Scheduler
	Timings   Timings
	// OnChange is called after every state change, outside the lock.
	OnChange func()
}

// State is a read-only snapshot of a Machine
type State struct {
	Stage Stage
	Mode  Mode
	Page  Page

	Email           string
	Password        string
	ConfirmPassword string
	ShowPassword    bool
	Code            string

	// Busy is true while a submit, verification or logout is in flight.
	Busy     bool
	Feedback Feedback
}

// Machine is the authentication state machine
type Machine struct {
	svc      AuthService
	store    session.Store
	timings  Timings
	onChange func()

	settings *TwoFactorSettings
	changer  *PasswordChange

	mu sync.Mutex

	stage Stage
	mode  Mode
	page  Page

	email        string
	password     string
	confirm      string
	showPassword bool
	code         string
	pendingToken string

	feedback Feedback
	mood     moodLock

	submitting bool
	verifying  bool
	loggingOut bool

	// epoch changes on cancel and logout; completions from an older epoch are dropped
	epoch uint64
}

// NewMachine returns a machine in the initial Unauthenticated/Login state
func NewMachine(svc AuthService, store session.Store, opts Options) *Machine {
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler
	}
	if opts.Timings == (Timings{}) {
		opts.Timings = DefaultTimings()
	}

	m := &Machine{
		svc:      svc,
		store:    store,
		timings:  opts.Timings,
		onChange: opts.OnChange,
		mood:     moodLock{sched: opts.Scheduler},
		feedback: Feedback{Invalid: NewFieldSet(), Mood: MoodIdle},
	}
	m.settings = NewTwoFactorSettings(svc, opts.OnChange)
	m.changer = NewPasswordChange(svc, opts.OnChange)
	return m
}

// TwoFactor returns the 2FA settings controller
func (m *Machine) TwoFactor() *TwoFactorSettings {
	return m.settings
}

// PasswordChange returns the change-password controller
func (m *Machine) PasswordChange() *PasswordChange {
	return m.changer
}

// Restore enters Authenticated/Home when the store already holds a session.
// It reports whether a session was found.
func (m *Machine) Restore() bool {
	sess, ok := m.store.Load()
	if !ok {
		return false
	}

	m.mu.Lock()
	m.stage = StageAuthenticated
	m.page = PageHome
	m.email = sess.Email
	m.feedback = Feedback{Invalid: NewFieldSet(), Mood: MoodIdle}
	m.mu.Unlock()

	m.notify()
	return true
}

// Snapshot returns a copy of the current state
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return State{
		Stage:           m.stage,
		Mode:            m.mode,
		Page:            m.page,
		Email:           m.email,
		Password:        m.password,
		ConfirmPassword: m.confirm,
		ShowPassword:    m.showPassword,
		Code:            m.code,
		Busy:            m.submitting || m.verifying || m.loggingOut,
		Feedback:        m.feedback.clone(),
	}
}

// SetEmail updates the email field
func (m *Machine) SetEmail(email string) {
	m.edit(func() { m.email = email })
}

// SetPassword updates the password field
func (m *Machine) SetPassword(password string) {
	m.edit(func() { m.password = password })
}

// SetConfirmPassword updates the registration confirmation field
func (m *Machine) SetConfirmPassword(confirm string) {
	m.edit(func() { m.confirm = confirm })
}

// SetShowPassword toggles clear-text display of the password
func (m *Machine) SetShowPassword(show bool) {
	m.edit(func() { m.showPassword = show })
}

// SetCode updates the second factor code field
func (m *Machine) SetCode(code string) {
	m.edit(func() { m.code = code })
}

// SetMode switches between the login and registration forms
func (m *Machine) SetMode(mode Mode) {
	m.edit(func() {
		if m.stage != StageUnauthenticated || m.mode == mode {
			return
		}
		m.mode = mode
		m.feedback.Message = ""
		m.feedback.IsError = false
		m.feedback.Invalid = NewFieldSet()
	})
}

func (m *Machine) edit(fn func()) {
	m.mu.Lock()
	fn()
	m.deriveMood()
	m.mu.Unlock()
	m.notify()
}

// Submit sends the credential form: login or registration depending on the mode.
// Local validation failures never reach the service.
func (m *Machine) Submit(ctx context.Context) error {
	m.mu.Lock()
	if m.stage != StageUnauthenticated {
		m.mu.Unlock()
		return ErrWrongStage
	}
	if m.submitting {
		m.mu.Unlock()
		return ErrSubmitInFlight
	}

	m.clearFeedback()
	if err := m.validateCredentials(); err != nil {
		m.mu.Unlock()
		m.notify()
		return err
	}

	mode, email, password, confirm := m.mode, m.email, m.password, m.confirm
	epoch := m.epoch
	m.submitting = true
	m.mu.Unlock()
	m.notify()

	var (
		login *api.LoginResult
		err   error
	)
	if mode == ModeLogin {
		login, err = m.svc.Login(ctx, email, password)
	} else {
		_, err = m.svc.Register(ctx, email, password, confirm)
	}

	m.mu.Lock()
	defer m.notify()
	defer m.mu.Unlock()

	m.submitting = false
	if epoch != m.epoch {
		return ErrSuperseded
	}

	if err != nil {
		m.failService(err, MoodConcern)
		return err
	}

	switch {
	case mode == ModeRegister:
		m.mode = ModeLogin
		m.password = ""
		m.confirm = ""
		m.feedback.Message = MsgAccountCreated
		m.lockMood(MoodSuccess, m.timings.SuccessDisplay)
		return nil
	case login.TwoFactorRequired:
		m.mood.stop()
		m.stage = StageAwaitingSecondFactor
		m.pendingToken = login.TempToken
		m.code = ""
		m.feedback.Message = MsgTwoFactorRequired
		m.feedback.Mood = MoodPeek
		return nil
	default:
		return m.establish(session.Session{AccessToken: login.Token, RefreshToken: login.Refresh, Email: email})
	}
}

// validateCredentials runs the local checks for the current mode. Caller holds mu.
func (m *Machine) validateCredentials() error {
	if !utils.ValidateEmail(m.email) {
		m.failLocal(MsgInvalidEmail, FieldEmail)
		return utils.NewValidationError(string(FieldEmail), MsgInvalidEmail)
	}
	if m.mode != ModeRegister {
		return nil
	}
	if m.password != m.confirm {
		m.failLocal(MsgPasswordMismatch, FieldPassword, FieldConfirmPassword)
		return utils.NewValidationError(string(FieldConfirmPassword), MsgPasswordMismatch)
	}
	if err := utils.ValidatePassword(m.password); err != nil {
		m.failLocal(err.Error(), FieldPassword)
		return utils.NewValidationError(string(FieldPassword), err.Error())
	}
	return nil
}

// SubmitSecondFactor verifies the code entered for a pending login
func (m *Machine) SubmitSecondFactor(ctx context.Context) error {
	m.mu.Lock()
	if m.stage != StageAwaitingSecondFactor {
		m.mu.Unlock()
		return ErrWrongStage
	}
	if m.verifying {
		m.mu.Unlock()
		return ErrSubmitInFlight
	}

	m.clearFeedback()
	code := strings.TrimSpace(m.code)
	if utf8.RuneCountInString(code) < MinSecondFactorLength {
		m.failLocal(MsgCodeTooShort, FieldCode)
		m.mu.Unlock()
		m.notify()
		return utils.NewValidationError(string(FieldCode), MsgCodeTooShort)
	}

	tempToken, email := m.pendingToken, m.email
	epoch := m.epoch
	m.verifying = true
	m.mu.Unlock()
	m.notify()

	pair, err := m.svc.VerifyTwoFactor(ctx, tempToken, code)

	m.mu.Lock()
	defer m.notify()
	defer m.mu.Unlock()

	m.verifying = false
	if epoch != m.epoch {
		return ErrSuperseded
	}
	if err != nil {
		m.failService(err, MoodSad)
		return err
	}
	return m.establish(session.Session{AccessToken: pair.Token, RefreshToken: pair.Refresh, Email: email})
}

// CancelSecondFactor abandons a pending login and returns to the login form
func (m *Machine) CancelSecondFactor() error {
	m.mu.Lock()
	if m.stage != StageAwaitingSecondFactor {
		m.mu.Unlock()
		return ErrWrongStage
	}
	err := m.store.Clear()
	m.resetLocked()
	m.mu.Unlock()

	m.notify()
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Logout ends the session. The service is told on a best-effort basis; the
// local session is cleared and the machine reset whatever it answers. The
// service error, if any, is returned for reporting.
func (m *Machine) Logout(ctx context.Context) error {
	m.mu.Lock()
	if m.loggingOut {
		m.mu.Unlock()
		return ErrSubmitInFlight
	}
	m.loggingOut = true
	m.mu.Unlock()
	m.notify()

	var remoteErr error
	if _, ok := m.store.Load(); ok {
		remoteErr = m.svc.Logout(ctx)
	}

	m.mu.Lock()
	m.loggingOut = false
	clearErr := m.store.Clear()
	m.resetLocked()
	m.mu.Unlock()
	m.notify()

	if clearErr != nil {
		return fmt.Errorf("clear session: %w", clearErr)
	}
	return remoteErr
}

// Navigate switches the authenticated page. It never contacts the service.
func (m *Machine) Navigate(page Page) error {
	m.mu.Lock()
	if m.stage != StageAuthenticated {
		m.mu.Unlock()
		return ErrWrongStage
	}
	leaving := m.page == PageTwoFactorSettings && page != PageTwoFactorSettings
	m.page = page
	m.mu.Unlock()

	if leaving {
		m.settings.Reset()
	}
	m.notify()
	return nil
}

// establish stores the session and enters Authenticated/Home. Caller holds mu.
func (m *Machine) establish(sess session.Session) error {
	if !sess.Valid() {
		m.failLocal(MsgSessionNotSaved)
		return utils.NewValidationError("", "service issued an empty access token")
	}
	if err := m.store.Save(sess); err != nil {
		m.feedback.Message = MsgSessionNotSaved
		m.feedback.IsError = true
		m.lockMood(MoodDizzy, m.timings.NetworkCooldown)
		return fmt.Errorf("save session: %w", err)
	}

	m.stage = StageAuthenticated
	m.page = PageHome
	m.pendingToken = ""
	m.password = ""
	m.confirm = ""
	m.code = ""
	m.showPassword = false
	m.feedback = Feedback{Invalid: NewFieldSet()}
	m.lockMood(MoodSuccess, m.timings.SuccessDisplay)
	return nil
}

// resetLocked returns to Unauthenticated/Login with every transient field cleared. Caller holds mu.
func (m *Machine) resetLocked() {
	m.epoch++
	m.mood.stop()

	m.stage = StageUnauthenticated
	m.mode = ModeLogin
	m.page = PageHome
	m.email = ""
	m.password = ""
	m.confirm = ""
	m.showPassword = false
	m.code = ""
	m.pendingToken = ""
	m.feedback = Feedback{Invalid: NewFieldSet(), Mood: MoodIdle}

	// sub-controllers are reset without notifying; the caller notifies once mu is released
	m.settings.reset()
	m.changer.reset()
}

func (m *Machine) clearFeedback() {
	m.feedback.Message = ""
	m.feedback.IsError = false
	m.feedback.Invalid = NewFieldSet()
}

// failLocal reports a validation failure caught before any request. Caller holds mu.
func (m *Machine) failLocal(msg string, fields ...Field) {
	m.feedback.Message = msg
	m.feedback.IsError = true
	m.feedback.Invalid = NewFieldSet(fields...)
	m.lockMood(MoodFlip, m.timings.ErrorCooldown)
}

// failService reports a failed request. Caller holds mu.
func (m *Machine) failService(err error, rejectedMood Mood) {
	msg, fields := describeFailure(err)
	m.feedback.Message = msg
	m.feedback.IsError = true
	m.feedback.Invalid = fields

	switch api.Classify(err) {
	case api.OutcomeNetworkFailure:
		m.lockMood(MoodDizzy, m.timings.NetworkCooldown)
	default:
		m.lockMood(rejectedMood, m.timings.ErrorCooldown)
	}
}

// lockMood shows mood for d, then lets the face settle. Caller holds mu.
func (m *Machine) lockMood(mood Mood, d time.Duration) {
	m.feedback.Mood = mood
	m.mood.hold(d, m.releaseMood)
}

func (m *Machine) releaseMood(gen uint64) {
	m.mu.Lock()
	if !m.mood.expire(gen) {
		m.mu.Unlock()
		return
	}
	m.feedback.Mood = m.restingMood()
	m.mu.Unlock()
	m.notify()
}

// restingMood is the face when nothing is pinned. Caller holds mu.
func (m *Machine) restingMood() Mood {
	switch m.stage {
	case StageAuthenticated:
		return MoodIdle
	case StageAwaitingSecondFactor:
		return MoodPeek
	default:
		return DeriveMood(m.email, m.password, m.showPassword)
	}
}

// deriveMood re-evaluates the face after a field edit. Caller holds mu.
func (m *Machine) deriveMood() {
	if m.mood.locked || m.stage != StageUnauthenticated {
		return
	}
	m.feedback.Mood = DeriveMood(m.email, m.password, m.showPassword)
}

func (m *Machine) notify() {
	if m.onChange != nil {
		m.onChange()
	}
}
