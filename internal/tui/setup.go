package tui

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/polyglotlabs/polyglot/internal/chat"
)

// setupForm collects the two Harmony party languages. Labels are free text;
// the only validation is non-blankness, enforced by the session on save.
type setupForm struct {
	inputs  [2]textinput.Model
	focus   int
	errText string
}

var setupLabels = [2]string{"User A speaks", "User B speaks"}

// newSetupForm creates the form, pre-filled from the existing config when
// editing.
func newSetupForm(existing *chat.MediationConfig) *setupForm {
	f := &setupForm{}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Placeholder = "e.g. Tamil, Hinglish, French..."
		ti.CharLimit = 64
		f.inputs[i] = ti
	}
	if existing != nil {
		f.inputs[0].SetValue(existing.PartyALanguage)
		f.inputs[1].SetValue(existing.PartyBLanguage)
	}
	return f
}

// focusField moves focus to the given field index, wrapping around.
func (f *setupForm) focusField(idx int) tea.Cmd {
	f.focus = (idx + len(f.inputs)) % len(f.inputs)
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == f.focus {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

// values returns the trimmed field contents.
func (f *setupForm) values() (string, string) {
	return strings.TrimSpace(f.inputs[0].Value()), strings.TrimSpace(f.inputs[1].Value())
}

// update forwards non-key messages (cursor blinks) to the focused field.
func (f *setupForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// openSetup opens the Harmony setup form, pre-filled when a config already
// exists. No-op if already open.
func (t *TUI) openSetup() tea.Cmd {
	if t.setup != nil {
		return nil
	}
	t.setup = newSetupForm(t.session.MediationConfig())
	t.input.Blur()
	t.layout()
	return t.setup.focusField(0)
}

// closeSetup dismisses the form and restores the input area.
func (t *TUI) closeSetup() tea.Cmd {
	t.setup = nil
	t.layout()
	return t.input.Focus()
}

// handleSetupKey routes keys while the setup form is open.
func (t *TUI) handleSetupKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	f := t.setup
	k := msg.Key()

	if k.Mod&tea.ModCtrl != 0 {
		switch k.Code {
		case 'c', 'd':
			return t, t.cleanup()
		}
	}

	switch k.Code {
	case tea.KeyTab, tea.KeyDown:
		if k.Mod&tea.ModShift != 0 {
			return t, f.focusField(f.focus - 1)
		}
		return t, f.focusField(f.focus + 1)

	case tea.KeyUp:
		return t, f.focusField(f.focus - 1)

	case tea.KeyEnter:
		return t.handleSetupSave()

	case tea.KeyEscape:
		// Dismissal is only possible once a valid config exists; a first
		// visit must either save or exit the program.
		if t.session.ConfigState() == chat.Configured {
			return t, t.closeSetup()
		}
		f.errText = "Set both languages to start mediating."
		return t, nil
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return t, cmd
}

// handleSetupSave validates and saves the mediation config. A blank label
// keeps the form open with an inline error and leaves any prior config
// untouched.
func (t *TUI) handleSetupSave() (tea.Model, tea.Cmd) {
	a, b := t.setup.values()
	if err := t.session.SetMediationConfig(a, b); err != nil {
		t.setup.errText = "Both languages are required."
		return t, nil
	}

	t.ctrl.AnnounceMediation(*t.session.MediationConfig())
	t.updatePlaceholder()
	cmd := t.closeSetup()
	t.rebuildViewportContent()
	t.viewport.GotoBottom()
	return t, cmd
}
