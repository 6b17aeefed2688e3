package checkout

import "testing"

func TestTransitionTable(t *testing.T) {
	allowed := []struct{ from, to State }{
		{StateIdle, StateSubmitting},
		{StateSubmitting, StateAuthenticating},
		{StateSubmitting, StateSucceeded},
		{StateSubmitting, StatePending},
		{StateSubmitting, StateFailed},
		{StateAuthenticating, StateSucceeded},
		{StateAuthenticating, StatePending},
		{StateAuthenticating, StateFailed},
	}
	for _, tt := range allowed {
		if !CanTransition(tt.from, tt.to) {
			t.Fatalf("expected %s -> %s allowed", tt.from, tt.to)
		}
	}

	denied := []struct{ from, to State }{
		{StateIdle, StateSucceeded},
		{StateIdle, StateAuthenticating},
		{StateAuthenticating, StateSubmitting},
		{StateSucceeded, StateSubmitting},
		{StatePending, StateFailed},
		{StateFailed, StateSubmitting},
		{State("bogus"), StateSubmitting},
	}
	for _, tt := range denied {
		if CanTransition(tt.from, tt.to) {
			t.Fatalf("expected %s -> %s denied", tt.from, tt.to)
		}
	}
}

func TestTransitionReturnsStateConflict(t *testing.T) {
	next, err := Transition(StateSucceeded, StateSubmitting)
	if err == nil {
		t.Fatalf("expected error from terminal state")
	}
	if next != StateSucceeded {
		t.Fatalf("failed transition must not move state, got %s", next)
	}

	next, err = Transition(StateIdle, StateSubmitting)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if next != StateSubmitting {
		t.Fatalf("unexpected state %s", next)
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []State{StateSucceeded, StatePending, StateFailed} {
		if !s.IsTerminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range []State{StateIdle, StateSubmitting, StateAuthenticating} {
		if s.IsTerminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}
