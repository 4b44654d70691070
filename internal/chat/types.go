// Package chat implements the conversation core: per-mode append-only logs,
// session state, prompt composition, and the per-turn controller that routes
// user input through the external generation service.
package chat

import (
	"time"

	"github.com/google/uuid"
)

// Mode selects which conversation log is active and which prompt template
// applies. The set is closed; users may switch freely at any time.
type Mode int

const (
	// ModeStandard is direct multilingual chat.
	ModeStandard Mode = iota

	// ModeCultural annotates every reply with cultural nuance.
	ModeCultural

	// ModeHarmony mediates between two parties speaking different languages.
	ModeHarmony
)

// Modes returns all modes in display order.
func Modes() []Mode {
	return []Mode{ModeStandard, ModeCultural, ModeHarmony}
}

// String returns the display label for the mode.
func (m Mode) String() string {
	switch m {
	case ModeStandard:
		return "Standard"
	case ModeCultural:
		return "Cultural Context"
	case ModeHarmony:
		return "Harmony Mediation"
	default:
		return "Unknown"
	}
}

// Sender identifies who authored a message.
type Sender int

const (
	// SenderUser is the primary human participant (party A).
	SenderUser Sender = iota

	// SenderPartner is party B; only meaningful in Harmony mode.
	SenderPartner

	// SenderBot is the model.
	SenderBot
)

// String returns the display label for the sender.
func (s Sender) String() string {
	switch s {
	case SenderUser:
		return "user"
	case SenderPartner:
		return "partner"
	case SenderBot:
		return "bot"
	default:
		return "unknown"
	}
}

// Party identifies which human participant is active in Harmony mode.
type Party int

const (
	// PartyA is the primary participant (sends as SenderUser).
	PartyA Party = iota

	// PartyB is the partner (sends as SenderPartner).
	PartyB
)

// String returns the display label for the party.
func (p Party) String() string {
	if p == PartyB {
		return "User B"
	}
	return "User A"
}

// Message is one utterance in a conversation log. Messages are immutable
// once created; annotation fields are only set on bot-authored messages,
// with the empty string meaning absent.
type Message struct {
	ID        uuid.UUID
	Sender    Sender
	Text      string
	Timestamp time.Time

	// Bot annotations (optional)
	Emotion          string
	CulturalInsight  string
	DetectedLanguage string
	Transliteration  string

	// IsAudio marks user messages that originated from a voice capture.
	IsAudio bool
}

// NewUserMessage creates a user-authored message. An empty text with an
// audio capture gets the fixed audio placeholder.
func NewUserMessage(sender Sender, text string, isAudio bool) Message {
	if text == "" && isAudio {
		text = audioSentPlaceholder
	}
	return Message{
		ID:        uuid.New(),
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now(),
		IsAudio:   isAudio,
	}
}

// NewBotMessage creates a bot-authored message from a structured reply,
// surfacing every populated annotation unchanged.
func NewBotMessage(reply StructuredReply) Message {
	msg := Message{
		ID:               uuid.New(),
		Sender:           SenderBot,
		Text:             reply.Reply,
		Timestamp:        time.Now(),
		Emotion:          reply.DetectedEmotion,
		DetectedLanguage: reply.DetectedLanguage,
		Transliteration:  reply.Transliteration,
	}
	if reply.CulturalInsight != nil {
		msg.CulturalInsight = *reply.CulturalInsight
	}
	return msg
}

// NewBotNotice creates a bot-authored message carrying fixed client-side
// text (announcements, error replies) with an emotion label. No model call
// is involved.
func NewBotNotice(text, emotion string) Message {
	return Message{
		ID:        uuid.New(),
		Sender:    SenderBot,
		Text:      text,
		Timestamp: time.Now(),
		Emotion:   emotion,
	}
}

// StructuredReply is the declared JSON shape the generation service returns.
// cultural_insight is explicitly nullable on the wire.
type StructuredReply struct {
	Reply              string  `json:"reply"`
	DetectedEmotion    string  `json:"detected_emotion"`
	CulturalInsight    *string `json:"cultural_insight"`
	DetectedLanguage   string  `json:"detected_language"`
	HarmonyTranslation string  `json:"harmony_translation,omitempty"`
	Transliteration    string  `json:"transliteration,omitempty"`
}

// MediationConfig pairs the two free-text language labels for Harmony mode.
type MediationConfig struct {
	PartyALanguage string
	PartyBLanguage string
}

// AudioPayload carries one captured voice recording as an opaque
// base64-encoded blob with its declared mime type.
type AudioPayload struct {
	Data     string // base64-encoded audio bytes
	MIMEType string
}

// audioSentPlaceholder is the display text for an audio-only user turn.
const audioSentPlaceholder = "🎤 Audio message sent"
