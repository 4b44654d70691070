package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/polyglotlabs/polyglot/internal/chat"
)

// turnDoneMsg signals that a submitted turn has fully resolved. By the time
// it arrives both the user message and the reply (or the error notice) are in
// the store.
type turnDoneMsg struct {
	accepted bool
}

// startTurn creates a command that runs one turn to completion. The
// controller handles snapshotting, the loading flag, and both failure nets;
// the command only reports acceptance back to the event loop.
//
// Goroutine lifecycle: Bubble Tea runs the command in its own goroutine and
// delivers the returned message; no extra synchronization is needed.
func (t *TUI) startTurn(text string, audio *chat.AudioPayload) tea.Cmd {
	return func() tea.Msg {
		return turnDoneMsg{accepted: t.ctrl.Submit(t.ctx, text, audio)}
	}
}
