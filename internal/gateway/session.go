package gateway

import (
	"sync"

	"github.com/opsgate/opsgate/internal/extract"
)

type dialogState int

const (
	stateIdle dialogState = iota
	stateAwaitEmail
	stateAwaitPhone
	stateAwaitPassword
	stateAwaitPackageFilter
)

// pendingExtraction stages the last extraction result for the "Save
// results" action. The token ties a save button to exactly this staging;
// a stale button with another token saves nothing.
type pendingExtraction struct {
	kind   extract.Kind
	values []string
	token  string
}

// session holds the per-user dialogue state. The mutex serializes all
// event handling for one user, so two updates from the same user never
// interleave; different users proceed independently.
type session struct {
	mu      sync.Mutex
	state   dialogState
	pending *pendingExtraction
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

// get returns the user's session, creating it on first interaction.
func (s *sessionStore) get(userID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[userID]; ok {
		return existing
	}
	created := &session{state: stateIdle}
	s.sessions[userID] = created
	return created
}
