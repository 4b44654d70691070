package tui

import (
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/polyglotlabs/polyglot/internal/chat"
)

// View implements tea.Model.
// Uses AltScreen with a viewport for the scrollable conversation log.
func (t *TUI) View() tea.View {
	t.viewBuf.Reset()

	// Viewport (scrollable conversation area)
	_, _ = t.viewBuf.WriteString(t.viewport.View())
	_, _ = t.viewBuf.WriteString("\n")

	// Separator line above input
	_, _ = t.viewBuf.WriteString(t.renderSeparator())
	_, _ = t.viewBuf.WriteString("\n")

	if t.setup != nil {
		_, _ = t.viewBuf.WriteString(t.renderSetupForm())
	} else {
		// Input prompt — always shown; typing stays available while a
		// turn is in flight.
		_, _ = t.viewBuf.WriteString(t.styles.Prompt.Render("> "))
		_, _ = t.viewBuf.WriteString(t.input.View())
		_, _ = t.viewBuf.WriteString("\n")
	}

	// Separator line below input
	_, _ = t.viewBuf.WriteString(t.renderSeparator())
	_, _ = t.viewBuf.WriteString("\n")

	// Mode line and help bar
	_, _ = t.viewBuf.WriteString(t.renderModeLine())
	_, _ = t.viewBuf.WriteString("\n")
	_, _ = t.viewBuf.WriteString(t.renderStatusBar())

	v := tea.NewView(t.viewBuf.String())
	v.AltScreen = true
	return v
}

// rebuildViewportContent reconstructs the viewport from the active mode's
// log. Called after every store or display-state change; switching modes
// swaps the entire conversation.
func (t *TUI) rebuildViewportContent() {
	var b strings.Builder

	// Banner (ASCII art) and tips
	_, _ = b.WriteString(t.styles.RenderBanner())
	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(t.styles.RenderWelcomeTips())
	_, _ = b.WriteString("\n")

	mode := t.session.Mode()
	for _, msg := range t.store.Messages(mode) {
		t.renderMessage(&b, mode, msg)
		_, _ = b.WriteString("\n")
	}

	// Waiting indicator
	if t.state == StateWaiting {
		_, _ = b.WriteString(t.spinner.View())
		_, _ = b.WriteString(" Translating...\n\n")
	}

	// Recording indicator
	if t.state == StateRecording {
		_, _ = b.WriteString(t.spinner.View())
		_, _ = b.WriteString(t.styles.Alert.Render(" Recording... Ctrl+R to send, Esc to discard"))
		_, _ = b.WriteString("\n\n")
	}

	t.viewport.SetContent(b.String())
}

// renderMessage writes one message with its annotations.
func (t *TUI) renderMessage(b *strings.Builder, mode chat.Mode, msg chat.Message) {
	switch msg.Sender {
	case chat.SenderUser:
		label := "You> "
		if mode == chat.ModeHarmony {
			label = "User A> "
		}
		_, _ = b.WriteString(t.styles.User.Render(label))
		_, _ = b.WriteString(msg.Text)
		_, _ = b.WriteString("\n")

	case chat.SenderPartner:
		_, _ = b.WriteString(t.styles.Partner.Render("User B> "))
		_, _ = b.WriteString(msg.Text)
		_, _ = b.WriteString("\n")

	case chat.SenderBot:
		_, _ = b.WriteString(t.styles.Bot.Render("PolyGlot> "))
		if msg.Emotion == "Error" {
			_, _ = b.WriteString(t.styles.Error.Render(msg.Text))
		} else {
			_, _ = b.WriteString(t.markdown.Render(msg.Text))
		}
		_, _ = b.WriteString("\n")

		if tag := annotationTag(msg); tag != "" {
			_, _ = b.WriteString(t.styles.Annotation.Render(tag))
			_, _ = b.WriteString("\n")
		}
		if msg.Transliteration != "" {
			_, _ = b.WriteString(t.styles.Annotation.Render("(" + msg.Transliteration + ")"))
			_, _ = b.WriteString("\n")
		}
		if msg.CulturalInsight != "" {
			_, _ = b.WriteString(t.styles.Insight.Render("💡 " + msg.CulturalInsight))
			_, _ = b.WriteString("\n")
		}
	}
}

// annotationTag builds the bracketed emotion/language tag, e.g.
// "[Joyful · Hinglish]". Empty when neither annotation is present.
func annotationTag(msg chat.Message) string {
	parts := make([]string, 0, 2)
	if msg.Emotion != "" {
		parts = append(parts, msg.Emotion)
	}
	if msg.DetectedLanguage != "" {
		parts = append(parts, msg.DetectedLanguage)
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, " · ") + "]"
}

// renderSeparator returns a horizontal line separator.
func (t *TUI) renderSeparator() string {
	width := t.width
	if width <= 0 {
		width = 80 // Default width
	}
	return t.styles.Separator.Render(strings.Repeat("─", width))
}

// renderModeLine returns the status line describing the active mode, the
// backing model, and any transient alert.
func (t *TUI) renderModeLine() string {
	mode := t.session.Mode()
	parts := []string{mode.String()}

	if mode == chat.ModeHarmony {
		if cfg := t.session.MediationConfig(); cfg != nil {
			parts = append(parts, cfg.PartyALanguage+" ⇄ "+cfg.PartyBLanguage)
		}
		parts = append(parts, "speaking as "+t.session.Party().String())
	}
	switch {
	case t.state == StateWaiting:
		parts = append(parts, "Processing…")
	case t.modelName != "":
		parts = append(parts, t.modelName)
	}

	line := t.styles.StatusBar.Render(strings.Join(parts, " · "))
	if t.alert != "" {
		line += "  " + t.styles.Alert.Render(t.alert)
	}
	return line
}

// renderStatusBar returns state-appropriate keyboard shortcut help.
func (t *TUI) renderStatusBar() string {
	if t.setup != nil {
		return t.help.ShortHelpView([]key.Binding{
			t.keys.NextField, t.keys.Save, t.keys.CloseForm, t.keys.Quit,
		})
	}

	if t.help.ShowAll {
		return t.help.FullHelpView([][]key.Binding{
			{t.keys.Submit, t.keys.NewLine, t.keys.Mode},
			{t.keys.Party, t.keys.Theme, t.keys.Record, t.keys.Languages},
			{t.keys.Cancel, t.keys.Quit, t.keys.ScrollUp, t.keys.ScrollDown},
		})
	}

	switch t.state {
	case StateRecording:
		return t.help.ShortHelpView([]key.Binding{
			t.keys.Record, t.keys.Cancel, t.keys.Quit,
		})
	case StateWaiting:
		return t.help.ShortHelpView([]key.Binding{
			t.keys.Mode, t.keys.ScrollUp, t.keys.ScrollDown, t.keys.Quit,
		})
	default:
		return t.help.ShortHelpView([]key.Binding{
			t.keys.Submit, t.keys.Mode, t.keys.Party,
			t.keys.Record, t.keys.Theme, t.keys.Quit,
		})
	}
}

// renderSetupForm returns the Harmony language form occupying the input area.
func (t *TUI) renderSetupForm() string {
	f := t.setup
	var b strings.Builder

	_, _ = b.WriteString(t.styles.FormTitle.Render("Harmony Mediation Setup"))
	_, _ = b.WriteString("\n")

	for i := range f.inputs {
		cursor := "  "
		if i == f.focus {
			cursor = t.styles.Prompt.Render("> ")
		}
		_, _ = b.WriteString(cursor)
		_, _ = b.WriteString(t.styles.FormLabel.Render(setupLabels[i] + ": "))
		_, _ = b.WriteString(f.inputs[i].View())
		_, _ = b.WriteString("\n")
	}

	if f.errText != "" {
		_, _ = b.WriteString(t.styles.Error.Render(f.errText))
	}
	_, _ = b.WriteString("\n")
	return b.String()
}
