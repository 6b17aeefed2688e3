package cart

import "sync"

// SelectionRegistry hands out one selection per user. Like the payment-method
// sessions, selections are in-memory and last as long as the process.
type SelectionRegistry struct {
	mu         sync.Mutex
	selections map[string]*Selection
}

// NewSelectionRegistry builds an empty registry.
func NewSelectionRegistry() *SelectionRegistry {
	return &SelectionRegistry{selections: make(map[string]*Selection)}
}

// Selection returns the user's selection, creating it on first use.
func (r *SelectionRegistry) Selection(userID string) *Selection {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.selections[userID]; ok {
		return s
	}
	s := NewSelection()
	r.selections[userID] = s
	return s
}

// Reset drops the user's selection after the selected items leave the cart.
func (r *SelectionRegistry) Reset(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.selections, userID)
}
