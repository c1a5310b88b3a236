package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// changedMsg tells the model a controller changed state off the event loop
type changedMsg struct{}

// Notifier turns controller callbacks into messages. Notify never blocks, so
// it is safe to call from inside Update; bursts collapse into one message.
type Notifier struct {
	ch chan struct{}
}

// NewNotifier returns a ready notifier
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{}, 1)}
}

// Notify records a pending change
func (n *Notifier) Notify() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

// wait blocks until the next change
func (n *Notifier) wait() tea.Cmd {
	return func() tea.Msg {
		<-n.ch
		return changedMsg{}
	}
}
