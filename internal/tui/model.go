// Package tui is the interactive terminal front end. It renders the
// snapshots of the flow controllers and forwards key presses to their intent
// methods.
package tui

import (
	"context"
	"errors"
	"fmt"
	"unicode"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/faceauth/cli/internal/flow"
	"github.com/faceauth/cli/internal/session"
)

// backupCodeLimit bounds the backup code input
const backupCodeLimit = 32

// operation names an asynchronous intent
type operation int

const (
	opSubmit operation = iota
	opVerify
	opLogout
	opRefresh
	opConfigure
	opEnable
	opDisable
	opChangePassword
)

// resultMsg carries the error of a finished intent
type resultMsg struct {
	op  operation
	err error
}

// input is a text field bound to a controller setter
type input struct {
	model *textinput.Model
	set   func(string)
	field flow.Field
	label string
}

// Model is the bubbletea model of the application
type Model struct {
	ctx      context.Context
	machine  *flow.Machine
	notifier *Notifier

	email     textinput.Model
	password  textinput.Model
	confirm   textinput.Model
	code      textinput.Model
	enrollKey textinput.Model
	current   textinput.Model
	next      textinput.Model
	nextAgain textinput.Model

	spinner spinner.Model

	focus     int
	screen    string
	useBackup bool
	notice    string
	width     int
	quitting  bool
}

// New builds a model over machine. notifier must be the one passed to the
// machine's Options.OnChange.
func New(ctx context.Context, machine *flow.Machine, notifier *Notifier) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	m := &Model{
		ctx:       ctx,
		machine:   machine,
		notifier:  notifier,
		email:     newInput("you@example.com", 0, false),
		password:  newInput("password", 0, true),
		confirm:   newInput("repeat password", 0, true),
		code:      newInput("000000", flow.MinSecondFactorLength, false),
		enrollKey: newInput("000000", flow.MinSecondFactorLength, false),
		current:   newInput("current password", 0, true),
		next:      newInput("new password", 0, true),
		nextAgain: newInput("repeat new password", 0, true),
		spinner:   s,
	}
	m.sync()
	return m
}

func newInput(placeholder string, limit int, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = limit
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return ti
}

// Run starts the terminal UI and blocks until the user quits
func Run(ctx context.Context, svc flow.AuthService, store session.Store, timings flow.Timings) error {
	notifier := NewNotifier()
	machine := flow.NewMachine(svc, store, flow.Options{
		Timings:  timings,
		OnChange: notifier.Notify,
	})
	machine.Restore()

	m := New(ctx, machine, notifier)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run terminal UI: %w", err)
	}
	return nil
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.notifier.wait())
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case changedMsg:
		m.sync()
		return m, m.notifier.wait()

	case resultMsg:
		m.handleResult(msg)
		m.sync()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		m.notice = ""
		cmd, handled := m.handleKey(msg)
		if !handled {
			cmd = m.forward(msg)
		}
		m.sync()
		return m, cmd
	}

	// cursor blinks and the like belong to the focused input
	if fields := m.inputs(); len(fields) > 0 {
		f := fields[m.focus]
		updated, cmd := f.model.Update(msg)
		*f.model = updated
		return m, cmd
	}
	return m, nil
}

// run executes an intent off the event loop
func (m *Model) run(op operation, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return resultMsg{op: op, err: fn(ctx)}
	}
}

func (m *Model) handleResult(msg resultMsg) {
	if errors.Is(msg.err, flow.ErrSubmitInFlight) || errors.Is(msg.err, flow.ErrSuperseded) {
		return
	}
	switch msg.op {
	case opLogout:
		if msg.err != nil {
			m.notice = "Logged out locally; the server did not confirm the logout"
		}
	case opEnable:
		if msg.err == nil {
			m.enrollKey.SetValue("")
		}
	}
}

// handleKey runs screen shortcuts. It reports false for keys meant for the focused input.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	key := msg.String()
	fields := m.inputs()

	switch key {
	case "tab", "down":
		m.moveFocus(1, len(fields))
		return nil, true
	case "shift+tab", "up":
		m.moveFocus(-1, len(fields))
		return nil, true
	}

	st := m.machine.Snapshot()
	switch st.Stage {
	case flow.StageUnauthenticated:
		return m.credentialKey(key, st)
	case flow.StageAwaitingSecondFactor:
		return m.secondFactorKey(key)
	default:
		return m.authenticatedKey(key, st, len(fields) > 0)
	}
}

func (m *Model) credentialKey(key string, st flow.State) (tea.Cmd, bool) {
	switch key {
	case "enter":
		return m.run(opSubmit, m.machine.Submit), true
	case "ctrl+r":
		if st.Mode == flow.ModeLogin {
			m.machine.SetMode(flow.ModeRegister)
		} else {
			m.machine.SetMode(flow.ModeLogin)
		}
		return nil, true
	case "ctrl+s":
		m.machine.SetShowPassword(!st.ShowPassword)
		return nil, true
	}
	return nil, false
}

func (m *Model) secondFactorKey(key string) (tea.Cmd, bool) {
	switch key {
	case "enter":
		return m.run(opVerify, m.machine.SubmitSecondFactor), true
	case "esc":
		_ = m.machine.CancelSecondFactor()
		return nil, true
	case "ctrl+b":
		m.useBackup = !m.useBackup
		m.code.SetValue("")
		m.machine.SetCode("")
		if m.useBackup {
			m.code.CharLimit = backupCodeLimit
			m.code.Placeholder = "backup code"
		} else {
			m.code.CharLimit = flow.MinSecondFactorLength
			m.code.Placeholder = "000000"
		}
		return nil, true
	}
	return nil, false
}

func (m *Model) authenticatedKey(key string, st flow.State, typing bool) (tea.Cmd, bool) {
	switch key {
	case "ctrl+l":
		return m.run(opLogout, m.machine.Logout), true
	case "alt+1":
		return m.navigate(flow.PageHome), true
	case "alt+2":
		return m.navigate(flow.PageTwoFactorSettings), true
	case "alt+3":
		return m.navigate(flow.PageChangePassword), true
	}

	if !typing {
		switch key {
		case "1":
			return m.navigate(flow.PageHome), true
		case "2":
			return m.navigate(flow.PageTwoFactorSettings), true
		case "3":
			return m.navigate(flow.PageChangePassword), true
		case "q":
			m.quitting = true
			return tea.Quit, true
		}
	}

	switch st.Page {
	case flow.PageTwoFactorSettings:
		return m.twoFactorKey(key)
	case flow.PageChangePassword:
		switch key {
		case "enter":
			return m.run(opChangePassword, m.machine.PasswordChange().Submit), true
		case "esc":
			m.machine.PasswordChange().Reset()
			return m.navigate(flow.PageHome), true
		}
	}
	return nil, false
}

func (m *Model) twoFactorKey(key string) (tea.Cmd, bool) {
	settings := m.machine.TwoFactor()
	tf := settings.Snapshot()

	if tf.Configuring {
		switch key {
		case "enter":
			code := m.enrollKey.Value()
			return m.run(opEnable, func(ctx context.Context) error {
				return settings.Enable(ctx, code)
			}), true
		case "esc":
			m.enrollKey.SetValue("")
			settings.CancelConfiguration()
			return nil, true
		}
		return nil, false
	}

	switch key {
	case "e":
		if !tf.Enabled && !tf.Busy {
			return m.run(opConfigure, settings.StartConfiguration), true
		}
	case "d":
		if tf.Enabled && !tf.Busy {
			return m.run(opDisable, settings.Disable), true
		}
	case "r":
		return m.run(opRefresh, settings.Refresh), true
	case "esc":
		return m.navigate(flow.PageHome), true
	}
	return nil, true
}

func (m *Model) navigate(page flow.Page) tea.Cmd {
	before := m.machine.Snapshot().Page
	if err := m.machine.Navigate(page); err != nil {
		return nil
	}
	// status is fetched on entry only; each fetch may rotate the pending secret
	if page == flow.PageTwoFactorSettings && before != page {
		return m.run(opRefresh, m.machine.TwoFactor().Refresh)
	}
	return nil
}

// forward hands a key to the focused input and pushes its value to the controller
func (m *Model) forward(msg tea.KeyMsg) tea.Cmd {
	fields := m.inputs()
	if len(fields) == 0 {
		return nil
	}
	f := fields[m.focus]

	if msg.Type == tea.KeyRunes && f.field == flow.FieldCode && !m.codeAcceptsAny(f) {
		for _, r := range msg.Runes {
			if !unicode.IsDigit(r) {
				return nil
			}
		}
	}

	updated, cmd := f.model.Update(msg)
	*f.model = updated
	if f.set != nil {
		f.set(f.model.Value())
	}
	return cmd
}

// codeAcceptsAny reports whether a code input takes backup codes
func (m *Model) codeAcceptsAny(f input) bool {
	return f.model == &m.code && m.useBackup
}

// inputs lists the text fields of the current screen in focus order
func (m *Model) inputs() []input {
	st := m.machine.Snapshot()
	switch st.Stage {
	case flow.StageUnauthenticated:
		fields := []input{
			{model: &m.email, set: m.machine.SetEmail, field: flow.FieldEmail, label: "Email"},
			{model: &m.password, set: m.machine.SetPassword, field: flow.FieldPassword, label: "Password"},
		}
		if st.Mode == flow.ModeRegister {
			fields = append(fields, input{model: &m.confirm, set: m.machine.SetConfirmPassword, field: flow.FieldConfirmPassword, label: "Confirm password"})
		}
		return fields
	case flow.StageAwaitingSecondFactor:
		return []input{{model: &m.code, set: m.machine.SetCode, field: flow.FieldCode, label: "Code"}}
	}

	switch st.Page {
	case flow.PageTwoFactorSettings:
		if m.machine.TwoFactor().Snapshot().Configuring {
			return []input{{model: &m.enrollKey, field: flow.FieldCode, label: "Code"}}
		}
	case flow.PageChangePassword:
		pc := m.machine.PasswordChange()
		return []input{
			{model: &m.current, set: pc.SetCurrent, field: flow.FieldCurrentPassword, label: "Current password"},
			{model: &m.next, set: pc.SetNew, field: flow.FieldNewPassword, label: "New password"},
			{model: &m.nextAgain, set: pc.SetConfirm, field: flow.FieldConfirmNewPassword, label: "Confirm password"},
		}
	}
	return nil
}

func (m *Model) moveFocus(delta, n int) {
	if n == 0 {
		return
	}
	m.focus = (m.focus + delta + n) % n
}

// sync copies controller state into the inputs and moves focus on screen changes
func (m *Model) sync() {
	st := m.machine.Snapshot()
	tf := m.machine.TwoFactor().Snapshot()
	pc := m.machine.PasswordChange().Snapshot()

	setValue(&m.email, st.Email)
	setValue(&m.password, st.Password)
	setValue(&m.confirm, st.ConfirmPassword)
	setValue(&m.code, st.Code)
	setValue(&m.current, pc.Current)
	setValue(&m.next, pc.New)
	setValue(&m.nextAgain, pc.Confirm)

	if st.ShowPassword {
		m.password.EchoMode = textinput.EchoNormal
		m.confirm.EchoMode = textinput.EchoNormal
	} else {
		m.password.EchoMode = textinput.EchoPassword
		m.confirm.EchoMode = textinput.EchoPassword
	}

	screen := fmt.Sprintf("%s/%s/%s/%t", st.Stage, st.Mode, st.Page, tf.Configuring)
	if screen != m.screen {
		m.screen = screen
		if st.Stage != flow.StageAwaitingSecondFactor {
			m.useBackup = false
			m.code.CharLimit = flow.MinSecondFactorLength
			m.code.Placeholder = "000000"
		}
		if st.Stage == flow.StageUnauthenticated && st.Email != "" {
			// after registration the email is kept, so the password is next
			m.focus = 1
		} else {
			m.focus = 0
		}
	}

	fields := m.inputs()
	if m.focus >= len(fields) {
		m.focus = 0
	}
	for _, ti := range []*textinput.Model{&m.email, &m.password, &m.confirm, &m.code, &m.enrollKey, &m.current, &m.next, &m.nextAgain} {
		ti.Blur()
	}
	if len(fields) > 0 {
		fields[m.focus].model.Focus()
	}
}

func setValue(ti *textinput.Model, v string) {
	if ti.Value() != v {
		ti.SetValue(v)
	}
}
