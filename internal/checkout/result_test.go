package checkout

import (
	"testing"

	"github.com/designdrip/storefront-core/pkg/backend"
)

func TestClassifyRequiresActionNeedsSecret(t *testing.T) {
	result := Classify(&backend.CheckoutResponse{
		RequiresAction: true,
		ClientSecret:   "pi_1_secret_2",
		Status:         "requires_action",
	})
	action, ok := result.(RequiresAction)
	if !ok {
		t.Fatalf("expected RequiresAction, got %T", result)
	}
	if action.ClientSecret != "pi_1_secret_2" {
		t.Fatalf("unexpected secret %q", action.ClientSecret)
	}

	// Flag without a secret cannot be acted on.
	result = Classify(&backend.CheckoutResponse{RequiresAction: true, Status: "processing"})
	if _, ok := result.(Pending); !ok {
		t.Fatalf("expected Pending, got %T", result)
	}
}

func TestClassifySucceededIsCaseInsensitive(t *testing.T) {
	for _, status := range []string{"succeeded", "Succeeded", "SUCCEEDED", " succeeded "} {
		result := Classify(&backend.CheckoutResponse{Status: status, OrderID: "order-1"})
		if _, ok := result.(Succeeded); !ok {
			t.Fatalf("status %q: expected Succeeded, got %T", status, result)
		}
	}
}

func TestClassifyUnknownStatusIsPending(t *testing.T) {
	for _, status := range []string{"", "processing", "pending", "weird_state"} {
		result := Classify(&backend.CheckoutResponse{Status: status})
		if _, ok := result.(Pending); !ok {
			t.Fatalf("status %q: expected Pending, got %T", status, result)
		}
	}
	if _, ok := Classify(nil).(Pending); !ok {
		t.Fatalf("nil response should classify as Pending")
	}
}

func TestOrderRefPreference(t *testing.T) {
	s := Succeeded{OrderID: "order-1", PaymentIntentID: "pi_1"}
	if s.OrderRef() != "order-1" {
		t.Fatalf("order id should win, got %q", s.OrderRef())
	}

	s = Succeeded{PaymentIntentID: "pi_1"}
	if s.OrderRef() != "pi_1" {
		t.Fatalf("intent id fallback, got %q", s.OrderRef())
	}

	a := RequiresAction{OrderID: "order-2", PaymentIntentID: "pi_2"}
	if a.OrderRef() != "order-2" {
		t.Fatalf("order id should win for requires-action, got %q", a.OrderRef())
	}
}
