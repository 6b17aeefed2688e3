package paymentmethods

import "sync"

// SessionRegistry hands out one selection session per user. Sessions are
// in-memory only; they last as long as the process, which matches the
// lifetime of the checkout flows they track.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionRegistry builds an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Session)}
}

// Session returns the user's session, creating it on first use.
func (r *SessionRegistry) Session(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[userID]; ok {
		return s
	}
	s := NewSession()
	r.sessions[userID] = s
	return s
}

// Reset drops the user's session so the next checkout flow bootstraps fresh.
func (r *SessionRegistry) Reset(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}
