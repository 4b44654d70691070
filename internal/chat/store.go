package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store holds one ordered, append-only message log per mode. Logs are never
// reordered, truncated, or merged; switching modes only changes which log is
// read. All state lives in memory and dies with the process.
//
// Store is safe for concurrent use: turn completion is delivered from a
// Bubble Tea command goroutine while the UI reads logs for rendering.
type Store struct {
	mu   sync.RWMutex
	logs map[Mode][]Message
}

// NewStore creates a store with each mode's log seeded with its single
// static welcome message. No network call is involved.
func NewStore() *Store {
	now := time.Now()
	seed := func(text, emotion, language string) []Message {
		return []Message{{
			ID:               uuid.New(),
			Sender:           SenderBot,
			Text:             text,
			Timestamp:        now,
			Emotion:          emotion,
			DetectedLanguage: language,
		}}
	}

	return &Store{
		logs: map[Mode][]Message{
			ModeStandard: seed(
				"Namaste! Hello! Vanakkam! I am your PolyGlot linguistic companion. "+
					"I can speak multiple languages mixed together. How can I help you today?",
				"Welcoming", "English/Hindi/Tamil"),
			ModeCultural: seed(
				"Welcome to Cultural Context mode. I analyze messages for cultural nuances, "+
					"etiquette, and hidden meanings. Try saying something polite or rude in any language.",
				"Respectful", "English"),
			ModeHarmony: seed(
				"Welcome to Harmony Mediation. I help translate and mediate conversations "+
					"between two people to ensure understanding and prevent conflict. "+
					"Please configure languages to start.",
				"Peaceful", "English"),
		},
	}
}

// Append places msg at the end of the given mode's log.
func (s *Store) Append(mode Mode, msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[mode] = append(s.logs[mode], msg)
}

// Messages returns a copy of the given mode's log for safe iteration.
func (s *Store) Messages(mode Mode) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.logs[mode]
	out := make([]Message, len(log))
	copy(out, log)
	return out
}

// Len returns the number of messages in the given mode's log.
func (s *Store) Len(mode Mode) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs[mode])
}
