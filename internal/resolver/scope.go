package resolver

import (
	"context"
	"sync"
)

type scope struct {
	token  uint64
	cancel context.CancelFunc
}

// ScopeManager hands out per-session resolution scopes. Beginning a new
// scope cancels the session's previous one, so an in-flight resolution for
// a since-abandoned selection is cut short and its result discarded instead
// of overwriting newer state.
type ScopeManager struct {
	mu     sync.Mutex
	scopes map[string]*scope
	next   uint64
}

func NewScopeManager() *ScopeManager {
	return &ScopeManager{
		scopes: make(map[string]*scope),
	}
}

// Begin opens a new resolution scope for the session, cancelling any
// previous one, and returns the scope context with its token.
func (m *ScopeManager) Begin(parent context.Context, sessionID string) (context.Context, uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.scopes[sessionID]; ok {
		prev.cancel()
	}

	ctx, cancel := context.WithCancel(parent)
	m.next++
	m.scopes[sessionID] = &scope{token: m.next, cancel: cancel}
	return ctx, m.next
}

// Current reports whether the token still identifies the session's newest
// scope. Stale holders must drop their result.
func (m *ScopeManager) Current(sessionID string, token uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.scopes[sessionID]
	return ok && s.token == token
}

// End closes the session's scope when the token still identifies it,
// releasing the scope context and dropping the entry so finished sessions
// do not accumulate. It reports whether the token was current; a stale
// token leaves the newer scope untouched.
func (m *ScopeManager) End(sessionID string, token uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.scopes[sessionID]
	if !ok || s.token != token {
		return false
	}
	s.cancel()
	delete(m.scopes, sessionID)
	return true
}

// Len returns the number of sessions with an open scope.
func (m *ScopeManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.scopes)
}
