package checkout

import pkgerrors "github.com/designdrip/storefront-core/pkg/errors"

// State is one phase of a checkout attempt.
type State string

const (
	StateIdle           State = "idle"
	StateSubmitting     State = "submitting"
	StateAuthenticating State = "authenticating_payment"
	StateSucceeded      State = "succeeded"
	StatePending        State = "pending"
	StateFailed         State = "failed"
)

// String implements fmt.Stringer.
func (s State) String() string {
	return string(s)
}

// IsTerminal reports whether the attempt has reached an end state. A new
// attempt starts a fresh Idle cycle; terminal states never transition.
func (s State) IsTerminal() bool {
	switch s {
	case StateSucceeded, StatePending, StateFailed:
		return true
	}
	return false
}

var transitions = map[State][]State{
	StateIdle:           {StateSubmitting},
	StateSubmitting:     {StateAuthenticating, StateSucceeded, StatePending, StateFailed},
	StateAuthenticating: {StateSucceeded, StatePending, StateFailed},
	StateSucceeded:      {},
	StatePending:        {},
	StateFailed:         {},
}

// CanTransition checks whether moving from one state to another is allowed.
func CanTransition(from, to State) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Transition validates and returns the next state.
func Transition(from, to State) (State, error) {
	if !CanTransition(from, to) {
		return from, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot transition from "+from.String()+" to "+to.String())
	}
	return to, nil
}
