// Package gemini implements the generation-service boundary on the Gemini
// API. All transport, credential, and decode failures are recovered locally
// into a fixed fallback reply; callers never see an error for them.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/polyglotlabs/polyglot/internal/chat"
)

const (
	// fallbackReplyText is returned whenever the external call fails for
	// any reason. Distinct from the turn controller's outer error reply.
	fallbackReplyText = "I'm having trouble connecting to the linguistic engine right now."

	// audioAnalysisPlaceholder guarantees every request carries at least
	// one text part even for audio-only turns.
	audioAnalysisPlaceholder = "Analyze this audio input."

	// defaultAudioMIMEType is assumed when a capture arrives untyped.
	defaultAudioMIMEType = "audio/ogg"
)

// Config contains the client's construction parameters.
type Config struct {
	// APIKey for the Gemini API. May be empty: construction still
	// succeeds and every Generate call degrades to the fallback reply,
	// keeping the text UI alive.
	APIKey string

	ModelName   string
	Temperature float32

	// HistoryLimit caps how many prior messages are mapped into the
	// request. Zero means no cap.
	HistoryLimit int

	// Limiter paces outbound requests. Nil gets a default of 5 rps with
	// a burst of 10. Waiting on the limiter precedes the single attempt
	// and is not a retry.
	Limiter *rate.Limiter

	Logger *slog.Logger
}

// Client calls the Gemini generateContent endpoint with a structured-output
// schema. Exactly one outbound attempt is made per turn; there are no
// automatic retries and no timeout beyond the transport's own.
type Client struct {
	models       *genai.Models // nil when no credential is available
	modelName    string
	temperature  float32
	historyLimit int
	limiter      *rate.Limiter
	logger       *slog.Logger
}

// New creates a Client. A missing API key is not a construction error; it
// is surfaced per-call through the fallback reply path.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ModelName == "" {
		return nil, errors.New("model name is required")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger is required")
	}

	limiter := cfg.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(5, 10)
	}

	c := &Client{
		modelName:    cfg.ModelName,
		temperature:  cfg.Temperature,
		historyLimit: cfg.HistoryLimit,
		limiter:      limiter,
		logger:       cfg.Logger,
	}

	if cfg.APIKey == "" {
		cfg.Logger.Warn("GEMINI_API_KEY not set; generation will degrade to fallback replies")
		return c, nil
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		// Treated like a missing credential: degrade, don't crash.
		cfg.Logger.Error("gemini client init failed; degrading to fallback replies", "error", err)
		return c, nil
	}
	c.models = gc.Models

	return c, nil
}

// Generate implements chat.Generator. The returned error is always nil:
// every failure terminates in the fixed fallback reply.
func (c *Client) Generate(ctx context.Context, req chat.GenerationRequest) (chat.StructuredReply, error) {
	if c.models == nil {
		c.logger.Debug("generate skipped: no API credential")
		return fallbackReply(), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.Warn("rate limiter wait aborted", "error", err)
		return fallbackReply(), nil
	}

	contents, err := buildContents(req)
	if err != nil {
		c.logger.Error("building request contents failed", "error", err)
		return fallbackReply(), nil
	}
	if c.historyLimit > 0 && len(contents) > c.historyLimit+1 {
		// Keep the newest turns plus the current one at the tail.
		contents = contents[len(contents)-c.historyLimit-1:]
	}

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.Instruction, genai.RoleUser),
		Temperature:       genai.Ptr(c.temperature),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    toGenaiSchema(req.Contract),
	}

	resp, err := c.models.GenerateContent(ctx, c.modelName, contents, genCfg)
	if err != nil {
		c.logger.Error("generateContent call failed", "model", c.modelName, "error", err)
		return fallbackReply(), nil
	}

	reply, ok := decodeReply(resp.Text())
	if !ok {
		c.logger.Error("structured reply decode failed", "model", c.modelName)
		return fallbackReply(), nil
	}
	return reply, nil
}

// buildContents maps the prior history plus the current turn into the wire
// format: bot messages take the model role, every other sender maps to the
// user role.
func buildContents(req chat.GenerationRequest) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, msg := range req.History {
		role := genai.Role(genai.RoleUser)
		if msg.Sender == chat.SenderBot {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Text, role))
	}

	current, err := currentTurnContent(req.Text, req.Audio)
	if err != nil {
		return nil, err
	}
	return append(contents, current), nil
}

// currentTurnContent builds the new turn's content. Audio rides as an
// inline binary part; the accompanying text part is never omitted.
func currentTurnContent(text string, audio *chat.AudioPayload) (*genai.Content, error) {
	if audio == nil {
		return genai.NewContentFromText(text, genai.RoleUser), nil
	}

	data, err := base64.StdEncoding.DecodeString(audio.Data)
	if err != nil {
		return nil, err
	}
	mimeType := audio.MIMEType
	if mimeType == "" {
		mimeType = defaultAudioMIMEType
	}
	if text == "" {
		text = audioAnalysisPlaceholder
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(data, mimeType),
		genai.NewPartFromText(text),
	}
	return genai.NewContentFromParts(parts, genai.RoleUser), nil
}

// decodeReply parses the returned payload against the declared shape. An
// absent payload or one missing the required fields is a decode failure.
func decodeReply(payload string) (chat.StructuredReply, bool) {
	if payload == "" {
		return chat.StructuredReply{}, false
	}

	var reply chat.StructuredReply
	if err := json.Unmarshal([]byte(payload), &reply); err != nil {
		return chat.StructuredReply{}, false
	}
	if reply.Reply == "" || reply.DetectedEmotion == "" || reply.DetectedLanguage == "" {
		return chat.StructuredReply{}, false
	}
	return reply, true
}

// fallbackReply is the fixed degraded reply for any failure at this
// boundary.
func fallbackReply() chat.StructuredReply {
	return chat.StructuredReply{
		Reply:            fallbackReplyText,
		DetectedEmotion:  "Neutral",
		DetectedLanguage: "Unknown",
		CulturalInsight:  nil,
	}
}
