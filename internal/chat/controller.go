package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// errorReplyText is the outer safety net's reply, appended when an error
// escapes the generation client boundary. It is deliberately distinct from
// the client's own connection-failure fallback.
const errorReplyText = "I encountered an error processing that request. Please check your API key or connection."

// mediationActiveFormat announces a saved mediation config in the Harmony log.
const mediationActiveFormat = "Harmony Mode Active. Mediating between %s (User A) and %s (User B)."

// GenerationRequest carries everything the generation client needs for one
// turn: the captured prior history, the new input, and the composed
// instruction and response contract.
type GenerationRequest struct {
	History     []Message
	Text        string
	Audio       *AudioPayload // nil when the turn is text-only
	Instruction string
	Contract    *jsonschema.Schema
}

// Generator is the external generation service boundary. Implementations
// must recover their own transport, credential, and decode failures into a
// fallback StructuredReply and return a nil error for them; a non-nil error
// is the unexpected-failure path and is handled one layer up.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (StructuredReply, error)
}

// ControllerConfig contains the Controller's required dependencies.
type ControllerConfig struct {
	Store     *Store
	Session   *Session
	Generator Generator
	Logger    *slog.Logger
}

func (cfg ControllerConfig) validate() error {
	if cfg.Store == nil {
		return errors.New("store is required")
	}
	if cfg.Session == nil {
		return errors.New("session is required")
	}
	if cfg.Generator == nil {
		return errors.New("generator is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// Controller orchestrates one user turn: it validates input, appends the
// user message optimistically, invokes the generator, and appends the reply.
// It is the sole writer to conversation logs and the loading flag.
type Controller struct {
	store   *Store
	session *Session
	gen     Generator
	logger  *slog.Logger
}

// NewController creates a Controller.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Controller{
		store:   cfg.Store,
		session: cfg.Session,
		gen:     cfg.Generator,
		logger:  cfg.Logger,
	}, nil
}

// Submit runs one complete turn synchronously and reports whether the turn
// was accepted. Rejected turns (blank input with no audio, or a turn already
// in flight) are silent no-ops: nothing is appended and no state changes.
//
// The active mode, party, and mediation config are snapshotted before the
// generation call; a mode switch while the call is outstanding must not
// redirect the reply, which is always appended to the sending mode's log.
func (c *Controller) Submit(ctx context.Context, text string, audio *AudioPayload) bool {
	text = strings.TrimSpace(text)
	if text == "" && audio == nil {
		return false
	}

	// Loading flag is the turn mutex: one outstanding turn, no queueing.
	if !c.session.beginTurn() {
		c.logger.Debug("turn rejected: already submitting")
		return false
	}
	defer c.session.endTurn()

	// Snapshot the sending context. Everything after this point uses these
	// locals, never the live session.
	sendingMode := c.session.Mode()
	mediation := c.session.MediationConfig()
	speaker := SenderUser
	if sendingMode == ModeHarmony && c.session.Party() == PartyB {
		speaker = SenderPartner
	}

	// Prior history excludes the current turn.
	history := c.store.Messages(sendingMode)

	// Optimistic append before the external call resolves.
	c.store.Append(sendingMode, NewUserMessage(speaker, text, audio != nil))

	c.logger.Debug("turn submitted",
		"mode", sendingMode.String(),
		"speaker", speaker.String(),
		"audio", audio != nil,
	)

	reply, err := c.generate(ctx, GenerationRequest{
		History:     history,
		Text:        text,
		Audio:       audio,
		Instruction: ComposeInstruction(sendingMode, mediation, speaker),
		Contract:    ResponseContract(),
	})
	if err != nil {
		// Second-layer safety net: the generator's own fallback did not
		// engage, so degrade to the fixed error reply.
		c.logger.Error("generation failed past client boundary", "error", err)
		c.store.Append(sendingMode, NewBotNotice(errorReplyText, "Error"))
		return true
	}

	c.store.Append(sendingMode, NewBotMessage(reply))
	return true
}

// generate invokes the generator with panic containment, so even a crashing
// client implementation degrades to the error reply instead of taking down
// the UI loop.
func (c *Controller) generate(ctx context.Context, req GenerationRequest) (reply StructuredReply, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()
	return c.gen.Generate(ctx, req)
}

// AnnounceMediation appends the one bot message announcing a successfully
// saved mediation config. It goes to the Harmony log only, regardless of the
// active mode.
func (c *Controller) AnnounceMediation(cfg MediationConfig) {
	text := fmt.Sprintf(mediationActiveFormat, cfg.PartyALanguage, cfg.PartyBLanguage)
	c.store.Append(ModeHarmony, NewBotNotice(text, "Ready"))
}
