package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/faceauth/cli/internal/flow"
	"github.com/faceauth/cli/internal/totp"
)

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.machine.Snapshot()
	var body string
	switch st.Stage {
	case flow.StageUnauthenticated:
		body = m.credentialView(st)
	case flow.StageAwaitingSecondFactor:
		body = m.secondFactorView(st)
	default:
		body = m.authenticatedView(st)
	}

	if m.notice != "" {
		body += "\n" + warningStyle.Render(m.notice)
	}
	return boxStyle.Render(body) + "\n"
}

func (m *Model) credentialView(st flow.State) string {
	var b strings.Builder

	title := "Log in"
	help := "enter log in • tab next field • ctrl+r create account • ctrl+s show password • ctrl+c quit"
	if st.Mode == flow.ModeRegister {
		title = "Create account"
		help = "enter register • tab next field • ctrl+r back to log in • ctrl+s show password • ctrl+c quit"
	}

	b.WriteString(titleStyle.Render(title) + "\n")
	b.WriteString(Face(st.Feedback.Mood) + "\n")
	b.WriteString(m.renderInputs(st.Feedback.Invalid))
	b.WriteString(m.status(st.Busy, st.Feedback.Message, st.Feedback.IsError))
	b.WriteString("\n" + dimStyle.Render(help))
	return b.String()
}

func (m *Model) secondFactorView(st flow.State) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Two-factor verification") + "\n")
	b.WriteString(Face(st.Feedback.Mood) + "\n")

	prompt := "Enter the 6-digit code from your authenticator app."
	toggle := "ctrl+b use a backup code"
	if m.useBackup {
		prompt = "Enter one of your backup codes."
		toggle = "ctrl+b use an app code"
	}
	b.WriteString(prompt + "\n\n")
	b.WriteString(m.renderInputs(st.Feedback.Invalid))
	b.WriteString(m.status(st.Busy, st.Feedback.Message, st.Feedback.IsError))
	b.WriteString("\n" + dimStyle.Render("enter verify • "+toggle+" • esc cancel login"))
	return b.String()
}

func (m *Model) authenticatedView(st flow.State) string {
	var content string
	switch st.Page {
	case flow.PageTwoFactorSettings:
		content = m.twoFactorView()
	case flow.PageChangePassword:
		content = m.passwordView()
	default:
		content = m.homeView(st)
	}

	sidebar := sidebarStyle.Render(m.sidebar(st.Page))
	view := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, content)
	if st.Busy {
		view += "\n" + m.spinner.View() + " Logging out..."
	}
	return view
}

func (m *Model) sidebar(page flow.Page) string {
	items := []struct {
		key   string
		label string
		page  flow.Page
	}{
		{"1", "Home", flow.PageHome},
		{"2", "Two-factor", flow.PageTwoFactorSettings},
		{"3", "Password", flow.PageChangePassword},
	}

	var b strings.Builder
	for _, item := range items {
		line := item.key + " " + item.label
		if item.page == page {
			b.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString(dimStyle.Render("  "+line) + "\n")
		}
	}
	b.WriteString("\n" + dimStyle.Render("ctrl+l log out"))
	return b.String()
}

func (m *Model) homeView(st flow.State) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Welcome") + "\n")
	b.WriteString(Face(st.Feedback.Mood) + "\n")
	if st.Email != "" {
		b.WriteString("Signed in as " + selectedStyle.Render(st.Email) + "\n")
	} else {
		b.WriteString("Signed in\n")
	}
	b.WriteString("\n" + dimStyle.Render("1-3 switch page • ctrl+l log out • q quit"))
	return b.String()
}

func (m *Model) twoFactorView() string {
	tf := m.machine.TwoFactor().Snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Two-factor authentication") + "\n")

	switch {
	case !tf.Loaded && tf.Busy:
		b.WriteString(m.spinner.View() + " Loading status...\n")
	case !tf.Loaded:
		b.WriteString(dimStyle.Render("Status unknown") + "\n")
	case tf.Enabled:
		b.WriteString(successStyle.Render("Enabled") + "\n")
	default:
		b.WriteString(warningStyle.Render("Disabled") + "\n")
	}

	help := "r reload • esc back"
	if tf.Configuring {
		b.WriteString(enrollmentView(tf.Enrollment))
		b.WriteString("\n" + m.renderInputs(flow.NewFieldSet()))
		help = "enter enable • esc cancel"
	} else if tf.Loaded && tf.Enabled {
		help = "d disable • " + help
	} else if tf.Loaded {
		help = "e set up • " + help
	}

	b.WriteString(m.status(tf.Busy && tf.Loaded, tf.Message, tf.IsError))
	b.WriteString("\n" + dimStyle.Render(help))
	return b.String()
}

// enrollmentView shows the secret for manual entry and the backup codes
func enrollmentView(e *flow.Enrollment) string {
	if e == nil {
		return dimStyle.Render("The server sent no enrollment data.") + "\n"
	}

	var b strings.Builder
	if e.OTPAuthURL != "" {
		if key, err := totp.Inspect(e.OTPAuthURL); err == nil {
			b.WriteString("Add this key to your authenticator app:\n")
			b.WriteString("  " + selectedStyle.Render(key.Secret) + "\n")
			if key.Account != "" {
				b.WriteString(dimStyle.Render("  account "+key.Account) + "\n")
			}
		}
	}
	if e.QRImage != "" {
		b.WriteString(dimStyle.Render("Run `faceauth 2fa status --qr-file qr.png` to save the QR code.") + "\n")
	}
	if len(e.BackupCodes) > 0 {
		b.WriteString("\nBackup codes, keep them somewhere safe:\n")
		for _, code := range e.BackupCodes {
			b.WriteString("  " + code + "\n")
		}
	}
	return b.String()
}

func (m *Model) passwordView() string {
	pc := m.machine.PasswordChange().Snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Change password") + "\n")
	b.WriteString(m.renderInputs(pc.Invalid))
	b.WriteString(m.status(pc.Busy, pc.Message, pc.IsError))
	b.WriteString("\n" + dimStyle.Render("enter save • tab next field • esc back"))
	return b.String()
}

func (m *Model) renderInputs(invalid flow.FieldSet) string {
	var b strings.Builder
	for _, f := range m.inputs() {
		label := labelStyle.Render(f.label)
		if invalid.Has(f.field) {
			label = invalidLabelStyle.Render(f.label)
		}
		b.WriteString(label + f.model.View() + "\n")
	}
	return b.String()
}

// status renders the spinner while busy, otherwise the feedback message
func (m *Model) status(busy bool, message string, isError bool) string {
	switch {
	case busy:
		return "\n" + m.spinner.View() + " Working...\n"
	case message == "":
		return "\n"
	case isError:
		return "\n" + errorStyle.Render(message) + "\n"
	default:
		return "\n" + successStyle.Render(message) + "\n"
	}
}
