// Package flow implements the RioBot conversation state machine.
//
// The engine owns per-sender session state through an injected session
// store, dispatches inbound text against the current stage and produces the
// scripted replies and lead captures.
package flow

import (
	"log/slog"
	"sync"

	"github.com/hadassaviagens/riobot/internal/models"
)

// SessionStore holds per-sender conversation sessions. Sessions are created
// lazily on first lookup and retained for the process lifetime.
type SessionStore interface {
	// Get returns the sender's session, creating an idle one if absent.
	Get(senderID string) models.Session

	// SetStage updates the sender's stage.
	SetStage(senderID string, stage models.Stage)

	// SetName updates the sender's display name.
	SetName(senderID string, name string)
}

// InMemorySessionStore is a mutex-guarded map of sessions.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

// NewInMemorySessionStore creates an empty session store.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string]models.Session)}
}

// Get returns the sender's session, creating an idle one if absent.
func (s *InMemorySessionStore) Get(senderID string) models.Session {
	s.mu.RLock()
	session, ok := s.sessions[senderID]
	s.mu.RUnlock()
	if ok {
		return session
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[senderID]; ok {
		return session
	}
	session = models.Session{Stage: models.StageIdle}
	s.sessions[senderID] = session
	slog.Debug("Session created", "sender", senderID)
	return session
}

// SetStage updates the sender's stage, creating the session if needed.
func (s *InMemorySessionStore) SetStage(senderID string, stage models.Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.sessions[senderID]
	session.Stage = stage
	s.sessions[senderID] = session
	slog.Debug("Session stage set", "sender", senderID, "stage", stage)
}

// SetName updates the sender's display name, creating the session if needed.
func (s *InMemorySessionStore) SetName(senderID string, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.sessions[senderID]
	session.Name = name
	s.sessions[senderID] = session
}

// Len returns the number of known sessions.
func (s *InMemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
