package cart

import (
	"sync"

	"github.com/designdrip/storefront-core/pkg/backend"
	pkgerrors "github.com/designdrip/storefront-core/pkg/errors"
)

// Selection tracks which cart items are marked for checkout. Insertion order
// is preserved: the submitted item-id list reads back in the order items were
// selected.
type Selection struct {
	mu  sync.Mutex
	ids []string
	set map[string]struct{}
}

// NewSelection starts empty.
func NewSelection() *Selection {
	return &Selection{set: make(map[string]struct{})}
}

// Toggle flips one item's membership and reports whether it is now selected.
func (s *Selection) Toggle(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.set[itemID]; ok {
		delete(s.set, itemID)
		for i, id := range s.ids {
			if id == itemID {
				s.ids = append(s.ids[:i], s.ids[i+1:]...)
				break
			}
		}
		return false
	}
	s.set[itemID] = struct{}{}
	s.ids = append(s.ids, itemID)
	return true
}

// SelectAll marks every item in the cart, in cart order.
func (s *Selection) SelectAll(cart *backend.Cart) {
	if cart == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids = s.ids[:0]
	s.set = make(map[string]struct{}, len(cart.Items))
	for _, item := range cart.Items {
		s.set[item.ID] = struct{}{}
		s.ids = append(s.ids, item.ID)
	}
}

// Clear drops every selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = s.ids[:0]
	s.set = make(map[string]struct{})
}

// IDs returns the selected item ids in selection order.
func (s *Selection) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Selected reports one item's membership.
func (s *Selection) Selected(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.set[itemID]
	return ok
}

// Subtotal sums the selected items' totals from a cart snapshot. Selected ids
// missing from the snapshot contribute nothing.
func (s *Selection) Subtotal(cart *backend.Cart) int64 {
	if cart == nil {
		return 0
	}
	totals := make(map[string]int64, len(cart.Items))
	for _, item := range cart.Items {
		totals[item.ID] = item.Total()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var subtotal int64
	for _, id := range s.ids {
		subtotal += totals[id]
	}
	return subtotal
}

// CheckoutIDs returns the selection for checkout handoff, rejecting an empty
// selection before any network call is made.
func (s *Selection) CheckoutIDs() ([]string, error) {
	ids := s.IDs()
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no items selected")
	}
	return ids, nil
}
