package services

import (
	"fmt"
	"sync"
	"time"
)

type SessionState string

const (
	StateIdle       SessionState = "idle"
	StateExtracting SessionState = "extracting"
	StateReady      SessionState = "ready"
	StateAnalyzing  SessionState = "analyzing"
	StateAnswering  SessionState = "answering"
)

var sessionTransitions = map[SessionState][]SessionState{
	StateIdle:       {StateExtracting},
	StateExtracting: {StateReady, StateIdle},
	StateReady:      {StateExtracting, StateAnalyzing, StateAnswering},
	StateAnalyzing:  {StateReady},
	StateAnswering:  {StateReady},
}

func (s SessionState) canMoveTo(next SessionState) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Session is one user's working context: the text extracted from the last
// successfully parsed document and the last analysis response. Only the
// Assistant mutates it.
type Session struct {
	ID string

	mu            sync.RWMutex
	state         SessionState
	documentID    string
	documentName  string
	extractedText string
	lastResponse  string
	hasResponse   bool
	lastSeen      time.Time

	worker Worker
}

// SessionSnapshot is a consistent copy of a session's fields.
type SessionSnapshot struct {
	ID            string
	State         SessionState
	DocumentID    string
	DocumentName  string
	ExtractedText string
	LastResponse  string
	HasResponse   bool
}

func NewSession(id string) *Session {
	return &Session{
		ID:       id,
		state:    StateIdle,
		lastSeen: time.Now(),
		worker:   NewWorker(),
	}
}

func (s *Session) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SessionSnapshot{
		ID:            s.ID,
		State:         s.state,
		DocumentID:    s.documentID,
		DocumentName:  s.documentName,
		ExtractedText: s.extractedText,
		LastResponse:  s.lastResponse,
		HasResponse:   s.hasResponse,
	}
}

func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) ExtractedText() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.extractedText, s.extractedText != ""
}

func (s *Session) LastResponse() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastResponse, s.hasResponse
}

func (s *Session) moveTo(next SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.canMoveTo(next) {
		return fmt.Errorf("invalid session transition %s -> %s", s.state, next)
	}
	s.state = next
	return nil
}

// settle returns the session to Ready when it holds text, Idle otherwise.
func (s *Session) settle() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.extractedText != "" {
		s.state = StateReady
	} else {
		s.state = StateIdle
	}
}

func (s *Session) cachedText(documentID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if documentID == "" || documentID != s.documentID || s.extractedText == "" {
		return "", false
	}
	return s.extractedText, true
}

func (s *Session) setExtracted(documentID, documentName, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documentID = documentID
	s.documentName = documentName
	s.extractedText = text
}

func (s *Session) setLastResponse(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastResponse = text
	s.hasResponse = true
}

func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateIdle
	s.documentID = ""
	s.documentName = ""
	s.extractedText = ""
	s.lastResponse = ""
	s.hasResponse = false
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.lastSeen)
}

// SessionStore holds the sessions of this process. Nothing is persisted.
type SessionStore interface {
	// Get returns the session for id, creating an empty one if needed.
	Get(id string) *Session
	Delete(id string)
	Len() int
}

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates an in-memory store. Sessions idle for longer than
// ttl are dropped on the next Get; a zero ttl keeps them forever.
func NewSessionStore(ttl time.Duration) SessionStore {
	return &memorySessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *memorySessionStore) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.pruneLocked(now)

	sess, ok := m.sessions[id]
	if !ok {
		sess = NewSession(id)
		m.sessions[id] = sess
	}
	sess.touch(now)
	return sess
}

func (m *memorySessionStore) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *memorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *memorySessionStore) pruneLocked(now time.Time) {
	if m.ttl <= 0 {
		return
	}
	for id, sess := range m.sessions {
		if sess.idleSince(now) > m.ttl && !sess.worker.Busy() {
			delete(m.sessions, id)
		}
	}
}
