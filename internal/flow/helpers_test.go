package flow

import (
	"context"
	"sync"
	"time"

	"github.com/faceauth/cli/internal/api"
	"github.com/faceauth/cli/internal/models"
)

type fakeService struct {
	mu    sync.Mutex
	calls map[string]int

	login          func(email, password string) (*api.LoginResult, error)
	register       func(email, password, confirm string) (string, error)
	verify         func(tempToken, code string) (*api.TokenPair, error)
	logout         func() error
	status         func() (*models.TwoFAStatus, error)
	confirm        func(code *string, enable bool) error
	changePassword func(current, next, confirm string) (string, error)
}

func newFakeService() *fakeService {
	return &fakeService{calls: make(map[string]int)}
}

func (f *fakeService) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeService) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeService) Login(_ context.Context, email, password string) (*api.LoginResult, error) {
	f.record("login")
	if f.login == nil {
		return &api.LoginResult{Token: "access", Refresh: "refresh"}, nil
	}
	return f.login(email, password)
}

func (f *fakeService) Register(_ context.Context, email, password, confirm string) (string, error) {
	f.record("register")
	if f.register == nil {
		return "", nil
	}
	return f.register(email, password, confirm)
}

func (f *fakeService) VerifyTwoFactor(_ context.Context, tempToken, code string) (*api.TokenPair, error) {
	f.record("verify")
	if f.verify == nil {
		return &api.TokenPair{Token: "access", Refresh: "refresh"}, nil
	}
	return f.verify(tempToken, code)
}

func (f *fakeService) Logout(context.Context) error {
	f.record("logout")
	if f.logout == nil {
		return nil
	}
	return f.logout()
}

func (f *fakeService) TwoFactorStatus(context.Context) (*models.TwoFAStatus, error) {
	f.record("status")
	if f.status == nil {
		return &models.TwoFAStatus{}, nil
	}
	return f.status()
}

func (f *fakeService) ConfirmTwoFactor(_ context.Context, code *string, enable bool) error {
	f.record("confirm")
	if f.confirm == nil {
		return nil
	}
	return f.confirm(code, enable)
}

func (f *fakeService) ChangePassword(_ context.Context, current, next, confirm string) (string, error) {
	f.record("change_password")
	if f.changePassword == nil {
		return "", nil
	}
	return f.changePassword(current, next, confirm)
}

// manualScheduler holds callbacks until fire is called
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// pending returns the durations of timers that have neither fired nor been stopped
func (s *manualScheduler) pending() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []time.Duration
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t.d)
		}
	}
	return out
}

// fireAll runs every timer, including stopped ones when includeStopped is set,
// which simulates a stopped timer whose callback was already scheduled
func (s *manualScheduler) fireAll(includeStopped bool) {
	s.mu.Lock()
	timers := append([]*manualTimer(nil), s.timers...)
	s.mu.Unlock()

	for _, t := range timers {
		if t.fired || (t.stopped && !includeStopped) {
			continue
		}
		t.fired = true
		t.f()
	}
}

var testTimings = Timings{
	SuccessDisplay:  time.Second,
	ErrorCooldown:   3 * time.Second,
	NetworkCooldown: 5 * time.Second,
}
