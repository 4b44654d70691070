// Package tui provides the Bubble Tea terminal interface for PolyGlot.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/polyglotlabs/polyglot/internal/chat"
)

// State represents the TUI state machine.
type State int

// TUI state machine states. The Harmony setup form overlays any state and is
// tracked separately, since a pending turn may resolve while the form is open.
const (
	StateInput     State = iota // Awaiting user input
	StateWaiting                // A turn is in flight
	StateRecording              // Microphone capture running
)

// Layout constants for viewport height calculation.
const (
	separatorLines = 2 // Two separator lines (above and below input)
	statusLines    = 2 // Mode line + help bar
	promptLines    = 1 // Prompt prefix line
	minViewport    = 3 // Minimum viewport height
	setupLines     = 7 // Setup form replaces the input area with a taller block
)

// AudioCapturer is the voice capture boundary. A nil capturer means no
// recorder binary was found; the text path stays fully usable.
type AudioCapturer interface {
	Recording() bool
	Start() error
	Stop() (*chat.AudioPayload, error)
}

// Config contains the TUI's dependencies.
type Config struct {
	Store      *chat.Store
	Session    *chat.Session
	Controller *chat.Controller
	Recorder   AudioCapturer // nil disables voice capture
	Logger     *slog.Logger
	ModelName  string // shown in the status line
}

func (cfg Config) validate() error {
	if cfg.Store == nil {
		return errors.New("tui.New: store is required")
	}
	if cfg.Session == nil {
		return errors.New("tui.New: session is required")
	}
	if cfg.Controller == nil {
		return errors.New("tui.New: controller is required")
	}
	return nil
}

// TUI is the Bubble Tea model for the PolyGlot terminal interface.
type TUI struct {
	// Input (textarea for multi-line support, Shift+Enter for newline)
	input textarea.Model

	// State
	state     State
	lastCtrlC time.Time
	alert     string // transient status notice (capture failures etc.)

	// Harmony setup form, non-nil while open
	setup *setupForm

	// Output
	spinner spinner.Model
	viewBuf strings.Builder // Reusable buffer for View() to reduce allocations

	// Scrollable conversation viewport
	viewport viewport.Model

	// Help bar for keyboard shortcuts
	help help.Model
	keys keyMap

	// Dependencies; the store is the single source of truth for the
	// conversation, the viewport is rebuilt from it after every change.
	store     *chat.Store
	session   *chat.Session
	ctrl      *chat.Controller
	recorder  AudioCapturer
	logger    *slog.Logger
	modelName string
	ctx       context.Context
	ctxCancel context.CancelFunc // For canceling all operations on exit

	// Dimensions
	width  int
	height int

	// Styles
	styles Styles

	// Markdown rendering (nil = graceful degradation to plain text)
	markdown *markdownRenderer
}

// New creates a TUI model wired to the conversation core.
//
// IMPORTANT: ctx MUST be the same context passed to tea.WithContext()
// to ensure consistent cancellation behavior.
func New(ctx context.Context, cfg Config) (*TUI, error) {
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	// Create cancellable context for cleanup on exit
	ctx, cancel := context.WithCancel(ctx)

	// Enter submits, Shift+Enter adds newline (default behavior)
	ta := textarea.New()
	ta.Placeholder = "Type in any language..."
	ta.SetHeight(1)
	ta.SetWidth(120) // Updated on WindowSizeMsg
	ta.MaxWidth = 0
	ta.ShowLineNumbers = false

	// No background colors, just simple text
	cleanStyle := textarea.StyleState{
		Base:        lipgloss.NewStyle(),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Prompt:      lipgloss.NewStyle(),
	}
	ta.SetStyles(textarea.Styles{
		Focused: cleanStyle,
		Blurred: cleanStyle,
	})
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Disable built-in keyboard handling — keys are routed explicitly in
	// handleKey to avoid conflicts with the textarea.
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{}

	h := help.New()

	t := &TUI{
		store:     cfg.Store,
		session:   cfg.Session,
		ctrl:      cfg.Controller,
		recorder:  cfg.Recorder,
		logger:    cfg.Logger,
		modelName: cfg.ModelName,
		ctx:       ctx,
		ctxCancel: cancel,
		input:     ta,
		spinner:   sp,
		viewport:  vp,
		help:      h,
		keys:      newKeyMap(),
		styles:    StylesForTheme(cfg.Session.DarkTheme()),
		markdown:  newMarkdownRenderer(80),
		width:     80, // Default width until WindowSizeMsg arrives
	}
	t.rebuildViewportContent()
	return t, nil
}

// Init implements tea.Model.
func (t *TUI) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		t.spinner.Tick,
		t.input.Focus(),
	)
}

// Update implements tea.Model.
func (t *TUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if t.setup != nil {
			return t.handleSetupKey(msg)
		}
		return t.handleKey(msg)

	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		t.layout()
		t.rebuildViewportContent()
		return t, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		t.viewport, cmd = t.viewport.Update(msg)
		return t, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		t.spinner, cmd = t.spinner.Update(msg)
		// Rebuild viewport to animate the waiting/recording indicator
		if t.state != StateInput {
			t.rebuildViewportContent()
		}
		return t, cmd

	case turnDoneMsg:
		t.state = StateInput
		if !msg.accepted {
			// Rejected turns are silent no-ops in the log; surface a hint
			// in the status area only.
			t.alert = "Nothing sent."
		}
		t.rebuildViewportContent()
		t.viewport.GotoBottom()
		return t, t.input.Focus()
	}

	if t.setup != nil {
		return t, t.setup.update(msg)
	}
	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return t, cmd
}

// layout recomputes the viewport and input dimensions for the current
// terminal size and form state.
func (t *TUI) layout() {
	if t.width <= 0 || t.height <= 0 {
		return
	}

	inputHeight := t.input.Height() + promptLines
	if t.setup != nil {
		inputHeight = setupLines
	}
	fixedHeight := separatorLines + inputHeight + statusLines
	vpHeight := max(t.height-fixedHeight, minViewport)

	t.viewport.SetWidth(t.width)
	t.viewport.SetHeight(vpHeight)
	t.input.SetWidth(t.width - 4) // Room for "> " prompt
	t.help.SetWidth(t.width)
	t.markdown.UpdateWidth(t.width)
}

// cycleMode advances to the next conversation mode. Entering Harmony with no
// saved mediation config opens the setup form immediately.
func (t *TUI) cycleMode() tea.Cmd {
	modes := chat.Modes()
	current := t.session.Mode()
	next := modes[0]
	for i, m := range modes {
		if m == current {
			next = modes[(i+1)%len(modes)]
			break
		}
	}

	t.session.SetMode(next)
	t.alert = ""
	t.updatePlaceholder()

	var cmd tea.Cmd
	if next == chat.ModeHarmony && t.session.ConfigState() == chat.Unconfigured {
		cmd = t.openSetup()
	}
	t.rebuildViewportContent()
	t.viewport.GotoBottom()
	return cmd
}

// updatePlaceholder refreshes the input placeholder from the active mode,
// party, and mediation languages.
func (t *TUI) updatePlaceholder() {
	switch t.session.Mode() {
	case chat.ModeCultural:
		t.input.Placeholder = "Ask about culture, or just chat..."
	case chat.ModeHarmony:
		party := t.session.Party()
		label := "Message as " + party.String()
		if cfg := t.session.MediationConfig(); cfg != nil {
			lang := cfg.PartyALanguage
			if party == chat.PartyB {
				lang = cfg.PartyBLanguage
			}
			label += " (" + lang + ")"
		}
		t.input.Placeholder = label + "..."
	default:
		t.input.Placeholder = "Type in any language..."
	}
}

// cleanup cancels the root context and returns the quit command.
func (t *TUI) cleanup() tea.Cmd {
	if t.ctxCancel != nil {
		t.ctxCancel()
		t.ctxCancel = nil
	}
	return tea.Quit
}
