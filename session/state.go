package session

import (
	"sync"

	"github.com/upb/quiz-client/models"
)

// credential pairs the raw token with the identity decoded from it. The
// two only ever change together, so one cannot exist without the other.
type credential struct {
	token    string
	identity models.Identity
}

// State is the process-wide session. Readers use the exported methods;
// only Controller mutates it.
type State struct {
	mu   sync.RWMutex
	cred *credential
}

// NewState creates an empty session
func NewState() *State {
	return &State{}
}

// Snapshot is a consistent copy of the session at one instant
type Snapshot struct {
	Token         string
	Identity      models.Identity
	Authenticated bool
}

// Snapshot returns token and identity read under one lock
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return Snapshot{}
	}
	return Snapshot{
		Token:         s.cred.token,
		Identity:      s.cred.identity,
		Authenticated: true,
	}
}

// Token returns the bearer token, or "" when signed out
func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return ""
	}
	return s.cred.token
}

// Identity returns the signed-in identity, or the zero value
func (s *State) Identity() models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return models.Identity{}
	}
	return s.cred.identity
}

func (s *State) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred != nil
}

func (s *State) IsAdmin() bool {
	return s.Identity().IsAdmin()
}

func (s *State) Username() string {
	return s.Identity().Username
}

func (s *State) set(token string, identity models.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = &credential{token: token, identity: identity}
}

// clear reports whether there was anything to clear
func (s *State) clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	had := s.cred != nil
	s.cred = nil
	return had
}
