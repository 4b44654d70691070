package chat

import (
	"errors"
	"strings"
	"sync"
)

// ErrEmptyLanguage indicates a mediation config save with a blank language
// label. The save is rejected with no state change.
var ErrEmptyLanguage = errors.New("mediation language labels must be non-empty")

// ConfigState reports the mediation configuration lifecycle.
type ConfigState int

const (
	// Unconfigured means no valid mediation config has been saved yet.
	// Mediation turns are not meaningful in this state.
	Unconfigured ConfigState = iota

	// Configured means both party languages are set. The state persists
	// across mode switches until explicitly edited.
	Configured
)

// Session holds transient, process-wide UI state. Nothing here is persisted;
// a restart resets every field to its default.
//
// Writers split by ownership: user-facing controls mutate mode, party,
// theme, and mediation config; the turn controller alone toggles the
// loading flag.
type Session struct {
	mu        sync.RWMutex
	mode      Mode
	party     Party
	darkTheme bool
	loading   bool
	mediation *MediationConfig
}

// NewSession creates a session with initial defaults: Standard mode,
// party A, dark theme, not loading, mediation unset.
func NewSession() *Session {
	return &Session{
		mode:      ModeStandard,
		party:     PartyA,
		darkTheme: true,
	}
}

// Mode returns the active mode.
func (s *Session) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode switches the active mode. No transition restrictions apply.
func (s *Session) SetMode(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}

// Party returns the active mediation party.
func (s *Session) Party() Party {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.party
}

// SetParty selects the active mediation party.
func (s *Session) SetParty(p Party) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.party = p
}

// ToggleParty flips the active mediation party and returns the new value.
func (s *Session) ToggleParty() Party {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.party == PartyA {
		s.party = PartyB
	} else {
		s.party = PartyA
	}
	return s.party
}

// DarkTheme reports whether the dark theme is active.
func (s *Session) DarkTheme() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.darkTheme
}

// SetDarkTheme sets the theme flag.
func (s *Session) SetDarkTheme(dark bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.darkTheme = dark
}

// ToggleTheme flips the theme and returns true if dark is now active.
func (s *Session) ToggleTheme() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.darkTheme = !s.darkTheme
	return s.darkTheme
}

// Loading reports whether a generation request is outstanding.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// beginTurn atomically checks-and-sets the loading flag. It returns false
// if a turn is already outstanding: the flag acts as a mutex with no
// queueing, so rejected attempts are dropped, not deferred.
func (s *Session) beginTurn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return false
	}
	s.loading = true
	return true
}

// endTurn clears the loading flag.
func (s *Session) endTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

// ConfigState reports whether mediation is configured.
func (s *Session) ConfigState() ConfigState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.mediation == nil {
		return Unconfigured
	}
	return Configured
}

// MediationConfig returns a copy of the current config, or nil if unset.
func (s *Session) MediationConfig() *MediationConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.mediation == nil {
		return nil
	}
	cfg := *s.mediation
	return &cfg
}

// SetMediationConfig saves the two party languages. Saving with either
// label empty (after trimming) is rejected with ErrEmptyLanguage and leaves
// any previous config unchanged. The config may be updated any number of
// times and survives mode switches, but not restarts.
func (s *Session) SetMediationConfig(partyALang, partyBLang string) error {
	a := strings.TrimSpace(partyALang)
	b := strings.TrimSpace(partyBLang)
	if a == "" || b == "" {
		return ErrEmptyLanguage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mediation = &MediationConfig{PartyALanguage: a, PartyBLanguage: b}
	return nil
}
