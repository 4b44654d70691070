package tui

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/polyglotlabs/polyglot/internal/chat"
)

// Slash command constants.
const (
	cmdHelp      = "/help"
	cmdLanguages = "/languages"
	cmdExit      = "/exit"
	cmdQuit      = "/quit"
)

// keyMap holds key bindings for help bar display.
type keyMap struct {
	Submit     key.Binding
	NewLine    key.Binding
	Mode       key.Binding
	Party      key.Binding
	Theme      key.Binding
	Record     key.Binding
	Languages  key.Binding
	Cancel     key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding

	// Setup form bindings
	NextField key.Binding
	Save      key.Binding
	CloseForm key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		NewLine:    key.NewBinding(key.WithKeys("shift+enter"), key.WithHelp("s+enter", "newline")),
		Mode:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "mode")),
		Party:      key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "party")),
		Theme:      key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "theme")),
		Record:     key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "record")),
		Languages:  key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "languages")),
		Cancel:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "cancel")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "exit")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),

		NextField: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Save:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		CloseForm: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

//nolint:gocyclo // Keyboard handler requires branching for all key combinations
func (t *TUI) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	// Check for Ctrl modifier
	if k.Mod&tea.ModCtrl != 0 {
		switch k.Code {
		case 'c':
			return t.handleCtrlC()
		case 'd':
			return t, t.cleanup()
		case 'p':
			return t.handlePartyToggle()
		case 't':
			return t.handleThemeToggle()
		case 'r':
			return t.handleRecordToggle()
		case 'l':
			return t, t.openSetup()
		}
	}

	// Check special keys
	switch k.Code {
	case tea.KeyEnter:
		if t.state == StateInput && k.Mod&tea.ModShift == 0 {
			// Enter without Shift = submit, Shift+Enter = newline
			return t.handleSubmit()
		}

	case tea.KeyTab:
		return t, t.cycleMode()

	case tea.KeyEscape:
		if t.state == StateRecording {
			return t.discardRecording()
		}
		t.alert = ""
		return t, nil

	case tea.KeyPgUp:
		t.viewport.PageUp()
		return t, nil

	case tea.KeyPgDown:
		t.viewport.PageDown()
		return t, nil
	}

	// Pass keys to the textarea — typing stays available while a turn is in
	// flight so the next message can be prepared.
	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return t, cmd
}

func (t *TUI) handleCtrlC() (tea.Model, tea.Cmd) {
	now := time.Now()

	// Double Ctrl+C within 1 second = quit
	if now.Sub(t.lastCtrlC) < time.Second {
		return t, t.cleanup()
	}
	t.lastCtrlC = now

	if t.state == StateRecording {
		return t.discardRecording()
	}
	t.input.Reset()
	t.alert = ""
	return t, nil
}

func (t *TUI) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(t.input.Value())
	if text == "" {
		return t, nil
	}

	if strings.HasPrefix(text, "/") {
		return t.handleSlashCommand(text)
	}

	return t, t.dispatchTurn(text, nil)
}

// dispatchTurn clears the input and runs the turn as a background command.
// The controller is the final arbiter of acceptance; the waiting state here
// only drives the indicator.
func (t *TUI) dispatchTurn(text string, audio *chat.AudioPayload) tea.Cmd {
	t.input.Reset()
	t.alert = ""
	t.state = StateWaiting
	t.rebuildViewportContent()
	t.viewport.GotoBottom()
	return tea.Batch(t.spinner.Tick, t.startTurn(text, audio))
}

func (t *TUI) handlePartyToggle() (tea.Model, tea.Cmd) {
	if t.session.Mode() != chat.ModeHarmony {
		t.alert = "Party switching applies to Harmony Mediation. Tab to switch modes."
		return t, nil
	}
	party := t.session.ToggleParty()
	t.alert = "Speaking as " + party.String() + "."
	t.updatePlaceholder()
	t.rebuildViewportContent()
	return t, nil
}

func (t *TUI) handleThemeToggle() (tea.Model, tea.Cmd) {
	t.styles = StylesForTheme(t.session.ToggleTheme())
	t.rebuildViewportContent()
	return t, nil
}

func (t *TUI) handleRecordToggle() (tea.Model, tea.Cmd) {
	if t.recorder == nil {
		t.alert = "Voice capture unavailable: no recorder binary found."
		return t, nil
	}

	switch t.state {
	case StateRecording:
		payload, err := t.recorder.Stop()
		t.state = StateInput
		if err != nil {
			t.logger.Warn("capture failed", "error", err)
			t.alert = "Recording failed: " + err.Error()
			t.rebuildViewportContent()
			return t, nil
		}
		// Any typed text rides along with the captured audio.
		return t, t.dispatchTurn(strings.TrimSpace(t.input.Value()), payload)

	case StateInput:
		if err := t.recorder.Start(); err != nil {
			t.logger.Warn("capture start failed", "error", err)
			t.alert = "Recording failed: " + err.Error()
			return t, nil
		}
		t.state = StateRecording
		t.alert = ""
		t.rebuildViewportContent()
		t.viewport.GotoBottom()
		return t, t.spinner.Tick

	default:
		return t, nil
	}
}

// discardRecording stops the capture and drops the result.
func (t *TUI) discardRecording() (tea.Model, tea.Cmd) {
	if _, err := t.recorder.Stop(); err != nil {
		t.logger.Debug("discarding capture", "error", err)
	}
	t.state = StateInput
	t.alert = "Recording discarded."
	t.rebuildViewportContent()
	return t, nil
}

func (t *TUI) handleSlashCommand(cmd string) (tea.Model, tea.Cmd) {
	switch cmd {
	case cmdHelp:
		t.help.ShowAll = !t.help.ShowAll
	case cmdLanguages:
		t.input.Reset()
		return t, t.openSetup()
	case cmdExit, cmdQuit:
		return t, t.cleanup()
	default:
		t.alert = "Unknown command: " + cmd
	}
	t.input.Reset()
	return t, nil
}
