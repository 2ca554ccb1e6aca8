package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/MinilikBelachew/voice-chat/models"
	"github.com/MinilikBelachew/voice-chat/voice"

	"github.com/google/uuid"
)

// SessionState is the lifecycle state of a conversation session
type SessionState string

const (
	StateIdle         SessionState = "idle"
	StateConnecting   SessionState = "connecting"
	StateConnected    SessionState = "connected"
	StateDisconnected SessionState = "disconnected"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrGateway         = errors.New("voice gateway unavailable")
)

// Gateway is the voice provider surface the orchestrator depends on.
// Satisfied by voice.Client.
type Gateway interface {
	GetSignedURL(ctx context.Context) (string, error)
	OpenSession(ctx context.Context, signedURL string, overrides *voice.Overrides, metadata map[string]string) (voice.LiveSession, error)
}

// TranscriptAnalyzer is an optional post-session pass that distills a
// transcript into high-importance facts
type TranscriptAnalyzer interface {
	Analyze(ctx context.Context, utterances []models.Utterance) ([]string, error)
}

// SessionService orchestrates conversation sessions: it fetches the
// connection credential and personalization snapshot, opens the gateway
// session with persona overrides, buffers the transcript, and turns the
// finished transcript into memories.
type SessionService struct {
	gateway  Gateway
	users    UserStore
	memories MemoryStore
	analyzer TranscriptAnalyzer
	now      func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// SessionServiceOption is a functional option for SessionService
type SessionServiceOption func(*SessionService)

// SessionWithGateway sets the voice gateway
func SessionWithGateway(gateway Gateway) SessionServiceOption {
	return func(s *SessionService) {
		s.gateway = gateway
	}
}

// SessionWithUserStore sets the user store
func SessionWithUserStore(users UserStore) SessionServiceOption {
	return func(s *SessionService) {
		s.users = users
	}
}

// SessionWithMemoryStore sets the memory store
func SessionWithMemoryStore(memories MemoryStore) SessionServiceOption {
	return func(s *SessionService) {
		s.memories = memories
	}
}

// SessionWithAnalyzer sets the optional transcript analyzer
func SessionWithAnalyzer(analyzer TranscriptAnalyzer) SessionServiceOption {
	return func(s *SessionService) {
		s.analyzer = analyzer
	}
}

// SessionWithClock sets the time source (used in tests)
func SessionWithClock(now func() time.Time) SessionServiceOption {
	return func(s *SessionService) {
		s.now = now
	}
}

// NewSessionService creates a new session service
func NewSessionService(opts ...SessionServiceOption) *SessionService {
	s := &SessionService{
		now:      time.Now,
		sessions: make(map[uuid.UUID]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session is one live (or just-finished) conversation. The transcript
// buffer belongs exclusively to the session and is discarded after fact
// extraction; it is never persisted.
type Session struct {
	ID     uuid.UUID
	userID *uuid.UUID // nil for anonymous sessions
	svc    *SessionService
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	state   SessionState
	buffer  []models.Utterance
	live    voice.LiveSession
	stopped bool
}

// Start opens a new session. For authenticated users the personalization
// snapshot (profile + top memories) is fetched and applied as overrides;
// anonymous sessions run with the agent's defaults and remain stateless.
// Credential or snapshot failures abort the start and leave nothing behind.
func (s *SessionService) Start(ctx context.Context, userID *uuid.UUID) (*Session, error) {
	if s.gateway == nil {
		return nil, errors.New("voice gateway not set")
	}

	sessCtx, cancel := context.WithCancel(context.Background())
	sess := &Session{
		ID:     uuid.New(),
		userID: userID,
		svc:    s,
		cancel: cancel,
		done:   make(chan struct{}),
		state:  StateConnecting,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	// Stop during connecting cancels sessCtx and aborts the dial
	live, err := s.connect(sessCtx, sess)
	if err != nil {
		sess.mu.Lock()
		sess.state = StateIdle
		sess.mu.Unlock()
		s.remove(sess.ID)
		cancel()
		close(sess.done)
		return nil, err
	}

	sess.mu.Lock()
	if sess.stopped {
		// Stop won the race against the dial: the cancel landed after
		// the connection was already established, so close it here
		// instead of committing to connected.
		sess.state = StateIdle
		sess.mu.Unlock()
		_ = live.Close()
		s.remove(sess.ID)
		close(sess.done)
		return nil, context.Canceled
	}
	sess.live = live
	sess.state = StateConnected
	sess.buffer = nil // fresh buffer per session
	sess.mu.Unlock()

	go sess.run(live)

	return sess, nil
}

// connect fetches the credential and snapshot and dials the gateway
func (s *SessionService) connect(ctx context.Context, sess *Session) (voice.LiveSession, error) {
	signedURL, err := s.gateway.GetSignedURL(ctx)
	if err != nil {
		log.Printf("session: failed to fetch signed URL: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	var overrides *voice.Overrides
	var metadata map[string]string

	if sess.userID != nil {
		if s.users == nil || s.memories == nil {
			return nil, errors.New("user and memory stores not set")
		}

		user, err := s.users.GetByID(ctx, *sess.userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load user for session: %w", err)
		}
		memories, err := s.memories.ListTopByImportance(ctx, *sess.userID, topMemoryCount)
		if err != nil {
			return nil, fmt.Errorf("failed to load memories for session: %w", err)
		}

		contents := make([]string, 0, len(memories))
		for _, m := range memories {
			contents = append(contents, m.Content)
		}

		cfg := BuildSessionConfig(user, contents, s.now())
		overrides = &voice.Overrides{
			Prompt:       cfg.SystemPrompt,
			FirstMessage: cfg.FirstMessage,
			VoiceID:      cfg.VoiceID,
		}
		metadata = map[string]string{"user_id": sess.userID.String()}
	}

	live, err := s.gateway.OpenSession(ctx, signedURL, overrides, metadata)
	if err != nil {
		log.Printf("session: failed to open gateway session: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	return live, nil
}

// Stop terminates a session. Safe to call while connecting or connected;
// the session always reaches idle.
func (s *SessionService) Stop(id uuid.UUID) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.Stop()
	return nil
}

// Get returns a session by ID while it is still tracked
func (s *SessionService) Get(id uuid.UUID) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *SessionService) remove(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Stop terminates the session from any state
func (sess *Session) Stop() {
	sess.mu.Lock()
	sess.stopped = true
	live := sess.live
	sess.mu.Unlock()
	sess.cancel()
	if live != nil {
		_ = live.Close()
	}
}

// State returns the current lifecycle state
func (sess *Session) State() SessionState {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state
}

// UtteranceCount returns the number of buffered transcript entries
func (sess *Session) UtteranceCount() int {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return len(sess.buffer)
}

// Done is closed once the session has fully wound down, including the
// end-of-session memory pipeline
func (sess *Session) Done() <-chan struct{} {
	return sess.done
}

// run consumes transcript events until the gateway stream ends, then
// triggers the end-of-session pipeline exactly once
func (sess *Session) run(live voice.LiveSession) {
	for event := range live.Events() {
		sess.append(event.Role, event.Text)
	}
	sess.finish()
}

// append adds an utterance to the buffer, suppressing immediate
// duplicates the provider may re-deliver
func (sess *Session) append(role models.Role, text string) {
	if text == "" {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if n := len(sess.buffer); n > 0 {
		last := sess.buffer[n-1]
		if last.Role == role && last.Text == text {
			return
		}
	}
	sess.buffer = append(sess.buffer, models.Utterance{Role: role, Text: text})
}

// finish runs fact extraction and best-effort memory persistence, then
// returns the session to idle. Anonymous sessions skip the pipeline.
func (sess *Session) finish() {
	sess.mu.Lock()
	sess.state = StateDisconnected
	buffer := sess.buffer
	sess.mu.Unlock()

	if sess.userID != nil && sess.svc.memories != nil {
		sess.persistFacts(buffer)
	}

	sess.mu.Lock()
	sess.buffer = nil
	sess.state = StateIdle
	sess.mu.Unlock()

	sess.svc.remove(sess.ID)
	sess.cancel()
	close(sess.done)
}

// persistFacts writes derived memories one at a time to preserve the
// creation order of facts. Failures are logged and swallowed: a broken
// memory write must never block the next session.
func (sess *Session) persistFacts(buffer []models.Utterance) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	facts := ExtractFacts(buffer, sess.svc.now())
	for _, fact := range facts {
		memory := &models.Memory{
			UserID:     *sess.userID,
			Content:    fact,
			Category:   models.CategoryAutomatic,
			Importance: models.DefaultImportance,
		}
		if err := sess.svc.memories.Create(ctx, memory); err != nil {
			log.Printf("session: failed to persist memory %q: %v", fact, err)
		}
	}

	if sess.svc.analyzer == nil {
		return
	}
	insights, err := sess.svc.analyzer.Analyze(ctx, buffer)
	if err != nil {
		log.Printf("session: transcript analysis failed: %v", err)
		return
	}
	for _, insight := range insights {
		memory := &models.Memory{
			UserID:     *sess.userID,
			Content:    insight,
			Category:   models.CategoryAutomaticAnalysis,
			Importance: models.AnalysisImportance,
		}
		if err := sess.svc.memories.Create(ctx, memory); err != nil {
			log.Printf("session: failed to persist analysis memory: %v", err)
		}
	}
}
