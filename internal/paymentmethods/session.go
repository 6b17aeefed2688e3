package paymentmethods

import (
	"strings"
	"sync"

	"github.com/designdrip/storefront-core/pkg/backend"
	pkgerrors "github.com/designdrip/storefront-core/pkg/errors"
)

// Session tracks which payment method is active for one in-progress checkout.
// Selection is purely local state: nothing here calls the backend, the chosen
// id only leaves the session inside the final checkout submission.
type Session struct {
	mu           sync.Mutex
	selectedID   string
	bootstrapped bool
	adding       bool
}

// NewSession starts with no selection.
func NewSession() *Session {
	return &Session{}
}

// ApplyCheckoutInfo bootstraps the selection from the account default. Only
// the first load of an attempt bootstraps; refetches never override a choice
// the user has already made (or cleared).
func (s *Session) ApplyCheckoutInfo(info *backend.CheckoutInfo) {
	if info == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bootstrapped {
		return
	}
	s.bootstrapped = true
	if info.DefaultPaymentMethod != nil {
		s.selectedID = info.DefaultPaymentMethod.ID
	}
}

// Select records the user's choice. Rejected while the add-method sub-flow is
// active, since the selection UI is suspended for its duration.
func (s *Session) Select(paymentMethodID string) error {
	trimmed := strings.TrimSpace(paymentMethodID)
	if trimmed == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.adding {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "selection is suspended while adding a payment method")
	}
	s.selectedID = trimmed
	return nil
}

// SelectedID returns the active payment method id, if any.
func (s *Session) SelectedID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID, s.selectedID != ""
}

// BeginAdd suspends selection for the add-method sub-flow.
func (s *Session) BeginAdd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adding = true
}

// CompleteAdd closes the sub-flow and selects the newly added method.
func (s *Session) CompleteAdd(paymentMethodID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.adding = false
	if trimmed := strings.TrimSpace(paymentMethodID); trimmed != "" {
		s.selectedID = trimmed
	}
}

// CancelAdd closes the sub-flow leaving the prior selection untouched.
func (s *Session) CancelAdd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adding = false
}

// Adding reports whether the add-method sub-flow is active.
func (s *Session) Adding() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adding
}
