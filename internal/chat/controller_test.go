package chat

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/polyglotlabs/polyglot/internal/log"
)

// mockGenerator is a deterministic Generator for controller tests. An
// optional entered/release channel pair lets tests hold a turn in flight.
type mockGenerator struct {
	mu    sync.Mutex
	reply StructuredReply
	err   error
	panic bool
	calls []GenerationRequest

	entered chan struct{} // closed-like signal: one send per call, if set
	release chan struct{} // call blocks until readable, if set
}

func (m *mockGenerator) Generate(_ context.Context, req GenerationRequest) (StructuredReply, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	entered, release := m.entered, m.release
	m.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if release != nil {
		<-release
	}
	if m.panic {
		panic("synthetic generator crash")
	}
	return m.reply, m.err
}

func (m *mockGenerator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockGenerator) lastCall(t *testing.T) GenerationRequest {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		t.Fatal("generator was never called")
	}
	return m.calls[len(m.calls)-1]
}

func okReply() StructuredReply {
	return StructuredReply{
		Reply:            "bonjour",
		DetectedEmotion:  "Joyful",
		DetectedLanguage: "French",
	}
}

func newTestController(t *testing.T, gen Generator) (*Controller, *Store, *Session) {
	t.Helper()
	store := NewStore()
	session := NewSession()
	ctrl, err := NewController(ControllerConfig{
		Store:     store,
		Session:   session,
		Generator: gen,
		Logger:    log.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return ctrl, store, session
}

func TestNewController_RequiresDependencies(t *testing.T) {
	store, session, gen := NewStore(), NewSession(), &mockGenerator{}

	tests := []struct {
		name string
		cfg  ControllerConfig
	}{
		{"missing store", ControllerConfig{Session: session, Generator: gen, Logger: log.NewNop()}},
		{"missing session", ControllerConfig{Store: store, Generator: gen, Logger: log.NewNop()}},
		{"missing generator", ControllerConfig{Store: store, Session: session, Logger: log.NewNop()}},
		{"missing logger", ControllerConfig{Store: store, Session: session, Generator: gen}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewController(tt.cfg); err == nil {
				t.Error("expected construction error")
			}
		})
	}
}

func TestSubmit_RejectsEmptyInput(t *testing.T) {
	gen := &mockGenerator{reply: okReply()}
	ctrl, store, session := newTestController(t, gen)

	for _, input := range []string{"", "   ", "\n\t "} {
		if ctrl.Submit(context.Background(), input, nil) {
			t.Errorf("Submit(%q) accepted, want rejection", input)
		}
	}

	if store.Len(ModeStandard) != 1 {
		t.Error("rejected turns must not append messages")
	}
	if session.Loading() {
		t.Error("rejected turns must not touch the loading flag")
	}
	if gen.callCount() != 0 {
		t.Error("rejected turns must not reach the generator")
	}
}

func TestSubmit_AcceptsAudioOnlyTurn(t *testing.T) {
	gen := &mockGenerator{reply: okReply()}
	ctrl, store, _ := newTestController(t, gen)

	audio := &AudioPayload{Data: "b64payload", MIMEType: "audio/ogg"}
	if !ctrl.Submit(context.Background(), "   ", audio) {
		t.Fatal("audio-only turn should be accepted")
	}

	msgs := store.Messages(ModeStandard)
	if len(msgs) != 3 {
		t.Fatalf("log length = %d, want 3 (welcome + user + bot)", len(msgs))
	}
	if msgs[1].Text != audioSentPlaceholder || !msgs[1].IsAudio {
		t.Errorf("audio user message = %+v, want placeholder text and IsAudio", msgs[1])
	}

	req := gen.lastCall(t)
	if req.Audio == nil || req.Audio.Data != "b64payload" {
		t.Error("audio payload not forwarded to the generator")
	}
	if req.Text != "" {
		t.Errorf("request text = %q, want empty (placeholder substitution is the client's job)", req.Text)
	}
}

func TestSubmit_RejectsWhileTurnInFlight(t *testing.T) {
	gen := &mockGenerator{
		reply:   okReply(),
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	ctrl, store, session := newTestController(t, gen)

	done := make(chan bool)
	go func() { done <- ctrl.Submit(context.Background(), "first", nil) }()
	<-gen.entered

	if !session.Loading() {
		t.Error("loading flag should be set while the call is outstanding")
	}
	if ctrl.Submit(context.Background(), "second", nil) {
		t.Error("second turn must be rejected while one is outstanding")
	}

	close(gen.release)
	if !<-done {
		t.Fatal("first turn should have been accepted")
	}

	if gen.callCount() != 1 {
		t.Errorf("generator calls = %d, want 1", gen.callCount())
	}
	// welcome + first user + bot reply; the rejected "second" left no trace
	if got := store.Len(ModeStandard); got != 3 {
		t.Errorf("log length = %d, want 3", got)
	}
	if session.Loading() {
		t.Error("loading flag must clear after the turn resolves")
	}
}

func TestSubmit_SenderFollowsHarmonyParty(t *testing.T) {
	tests := []struct {
		name       string
		mode       Mode
		party      Party
		wantSender Sender
	}{
		{"harmony party B", ModeHarmony, PartyB, SenderPartner},
		{"harmony party A", ModeHarmony, PartyA, SenderUser},
		{"party B outside harmony", ModeStandard, PartyB, SenderUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGenerator{reply: okReply()}
			ctrl, store, session := newTestController(t, gen)
			session.SetMode(tt.mode)
			session.SetParty(tt.party)

			if !ctrl.Submit(context.Background(), "hello", nil) {
				t.Fatal("turn should be accepted")
			}

			msgs := store.Messages(tt.mode)
			if msgs[1].Sender != tt.wantSender {
				t.Errorf("user message sender = %v, want %v", msgs[1].Sender, tt.wantSender)
			}
		})
	}
}

func TestSubmit_ReplyGoesToSendingModeAfterSwitch(t *testing.T) {
	gen := &mockGenerator{
		reply:   okReply(),
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	ctrl, store, session := newTestController(t, gen)
	session.SetMode(ModeCultural)

	done := make(chan bool)
	go func() { done <- ctrl.Submit(context.Background(), "nuance please", nil) }()
	<-gen.entered

	// User wanders off to another mode while the reply is outstanding.
	session.SetMode(ModeHarmony)
	close(gen.release)
	<-done

	if got := store.Len(ModeCultural); got != 3 {
		t.Errorf("Cultural log length = %d, want 3 (reply must land in the sending mode)", got)
	}
	if got := store.Len(ModeHarmony); got != 1 {
		t.Errorf("Harmony log length = %d, want untouched 1", got)
	}
}

func TestSubmit_SnapshotsHistoryBeforeOptimisticAppend(t *testing.T) {
	gen := &mockGenerator{reply: okReply()}
	ctrl, _, _ := newTestController(t, gen)

	if !ctrl.Submit(context.Background(), "hello", nil) {
		t.Fatal("turn should be accepted")
	}

	req := gen.lastCall(t)
	if len(req.History) != 1 {
		t.Fatalf("history length = %d, want 1 (welcome only, current turn excluded)", len(req.History))
	}
	if req.History[0].Sender != SenderBot {
		t.Error("history should start with the seeded welcome message")
	}
	if req.Text != "hello" {
		t.Errorf("request text = %q, want %q", req.Text, "hello")
	}
}

func TestSubmit_ComposesInstructionFromCapturedContext(t *testing.T) {
	gen := &mockGenerator{reply: okReply()}
	ctrl, _, session := newTestController(t, gen)
	session.SetMode(ModeHarmony)
	session.SetParty(PartyB)
	if err := session.SetMediationConfig("Hindi", "Tamil"); err != nil {
		t.Fatal(err)
	}

	if !ctrl.Submit(context.Background(), "hello", nil) {
		t.Fatal("turn should be accepted")
	}

	req := gen.lastCall(t)
	if !strings.Contains(req.Instruction, "CURRENT INPUT IS FROM: User B") {
		t.Error("instruction must reflect the captured speaker")
	}
	if !strings.Contains(req.Instruction, "MUST be in Hindi") {
		t.Error("instruction must target party A's language when party B speaks")
	}
	if req.Contract == nil {
		t.Fatal("response contract missing from request")
	}
}

func TestSubmit_GeneratorErrorAppendsErrorReply(t *testing.T) {
	gen := &mockGenerator{err: context.DeadlineExceeded}
	ctrl, store, session := newTestController(t, gen)

	if !ctrl.Submit(context.Background(), "hello", nil) {
		t.Fatal("turn should be accepted even when generation fails")
	}

	msgs := store.Messages(ModeStandard)
	if len(msgs) != 3 {
		t.Fatalf("log length = %d, want 3", len(msgs))
	}
	last := msgs[2]
	if last.Sender != SenderBot {
		t.Errorf("error reply sender = %v, want SenderBot", last.Sender)
	}
	if last.Text != errorReplyText {
		t.Errorf("error reply text = %q, want fixed error text", last.Text)
	}
	if last.Emotion != "Error" {
		t.Errorf("error reply emotion = %q, want Error", last.Emotion)
	}
	if session.Loading() {
		t.Error("loading flag must clear after a failed turn")
	}
}

func TestSubmit_GeneratorPanicIsContained(t *testing.T) {
	gen := &mockGenerator{panic: true}
	ctrl, store, session := newTestController(t, gen)

	if !ctrl.Submit(context.Background(), "hello", nil) {
		t.Fatal("turn should be accepted")
	}

	msgs := store.Messages(ModeStandard)
	last := msgs[len(msgs)-1]
	if last.Text != errorReplyText || last.Emotion != "Error" {
		t.Errorf("panic should degrade to the fixed error reply, got %+v", last)
	}
	if session.Loading() {
		t.Error("loading flag must clear even after a generator panic")
	}
}

func TestSubmit_RoundTripsOptionalFields(t *testing.T) {
	insight := "they used a festival idiom"
	gen := &mockGenerator{reply: StructuredReply{
		Reply:              "reply text",
		DetectedEmotion:    "Empathetic",
		DetectedLanguage:   "Tamil",
		CulturalInsight:    &insight,
		Transliteration:    "vanakkam",
		HarmonyTranslation: "literal",
	}}
	ctrl, store, _ := newTestController(t, gen)

	if !ctrl.Submit(context.Background(), "hello", nil) {
		t.Fatal("turn should be accepted")
	}

	bot := store.Messages(ModeStandard)[2]
	if bot.CulturalInsight != insight {
		t.Errorf("CulturalInsight = %q, want %q", bot.CulturalInsight, insight)
	}
	if bot.Transliteration != "vanakkam" {
		t.Errorf("Transliteration = %q, want vanakkam", bot.Transliteration)
	}
	if bot.DetectedLanguage != "Tamil" || bot.Emotion != "Empathetic" {
		t.Errorf("required annotations not surfaced: %+v", bot)
	}
}

func TestAnnounceMediation_AppendsToHarmonyLogOnly(t *testing.T) {
	gen := &mockGenerator{reply: okReply()}
	ctrl, store, session := newTestController(t, gen)
	session.SetMode(ModeStandard) // active mode must not matter

	ctrl.AnnounceMediation(MediationConfig{PartyALanguage: "Hindi", PartyBLanguage: "Tamil"})

	if got := store.Len(ModeHarmony); got != 2 {
		t.Fatalf("Harmony log length = %d, want 2", got)
	}
	if got := store.Len(ModeStandard); got != 1 {
		t.Errorf("Standard log length = %d, want untouched 1", got)
	}

	msg := store.Messages(ModeHarmony)[1]
	if msg.Sender != SenderBot || msg.Emotion != "Ready" {
		t.Errorf("announcement = %+v, want bot message with emotion Ready", msg)
	}
	for _, want := range []string{"Hindi", "Tamil", "User A", "User B"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("announcement text %q missing %q", msg.Text, want)
		}
	}
}

func TestSubmit_LoadingClearsWithinDeadline(t *testing.T) {
	gen := &mockGenerator{reply: okReply()}
	ctrl, _, session := newTestController(t, gen)

	ctrl.Submit(context.Background(), "hello", nil)

	deadline := time.Now().Add(time.Second)
	for session.Loading() {
		if time.Now().After(deadline) {
			t.Fatal("loading flag stuck after synchronous Submit returned")
		}
		time.Sleep(time.Millisecond)
	}
}
