package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/faceauth/cli/internal/flow"
)

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorAccent  = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			MarginBottom(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	labelStyle = lipgloss.NewStyle().
			Width(18)

	invalidLabelStyle = labelStyle.Copy().
				Foreground(colorError)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2)

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(colorMuted).
			PaddingRight(2).
			MarginRight(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	faceStyle = lipgloss.NewStyle().
			Bold(true).
			MarginBottom(1)
)

// faces maps each mood to the avatar drawn above the form
var faces = map[flow.Mood]string{
	flow.MoodIdle:      "( •_• )",
	flow.MoodHappy:     "( ^‿^ )",
	flow.MoodPeek:      "( -_o )",
	flow.MoodConcern:   "( •︵• )",
	flow.MoodConfident: "( ¬‿¬ )",
	flow.MoodFlip:      "(╯°□°)╯",
	flow.MoodSuccess:   "( ★‿★ )",
	flow.MoodSad:       "( ;_; )",
	flow.MoodDizzy:     "( @_@ )",
}

// Face renders the avatar for mood
func Face(mood flow.Mood) string {
	face, ok := faces[mood]
	if !ok {
		face = faces[flow.MoodIdle]
	}

	style := faceStyle.Copy()
	switch mood {
	case flow.MoodFlip, flow.MoodSad, flow.MoodDizzy:
		style = style.Foreground(colorError)
	case flow.MoodConcern:
		style = style.Foreground(colorWarning)
	case flow.MoodSuccess, flow.MoodConfident:
		style = style.Foreground(colorAccent)
	default:
		style = style.Foreground(colorPrimary)
	}
	return style.Render(face)
}
