package checkout

import (
	"strings"

	"github.com/designdrip/storefront-core/pkg/backend"
)

// Result is the tagged interpretation of a checkout submission response.
// Exactly one variant holds for any response; the three-way branch in the
// coordinator switches over it exhaustively instead of probing optional
// fields.
type Result interface {
	isResult()
}

// RequiresAction carries the client secret for the additional-authentication
// step. OrderRef is carried through because the submit response, not the
// confirmation outcome, names the order to navigate to afterwards.
type RequiresAction struct {
	ClientSecret    string
	OrderID         string
	PaymentIntentID string
}

// Succeeded is a synchronously settled payment.
type Succeeded struct {
	OrderID         string
	PaymentIntentID string
}

// Pending is an accepted order whose settlement is not yet final.
type Pending struct{}

func (RequiresAction) isResult() {}
func (Succeeded) isResult()      {}
func (Pending) isResult()        {}

// OrderRef picks the navigation target: the order id when the backend has
// one, otherwise the payment-intent id (the order row may not exist yet at
// the moment of the synchronous response).
func (s Succeeded) OrderRef() string {
	if s.OrderID != "" {
		return s.OrderID
	}
	return s.PaymentIntentID
}

// OrderRef mirrors Succeeded.OrderRef for the post-confirmation path.
func (r RequiresAction) OrderRef() string {
	if r.OrderID != "" {
		return r.OrderID
	}
	return r.PaymentIntentID
}

// Classify folds the response union into exactly one variant. Additional
// authentication takes priority only when a client secret is actually
// present; a requiresAction flag without one falls through to the status
// check. Anything neither actionable nor succeeded is Pending.
func Classify(resp *backend.CheckoutResponse) Result {
	if resp == nil {
		return Pending{}
	}
	if resp.RequiresAction && resp.ClientSecret != "" {
		return RequiresAction{
			ClientSecret:    resp.ClientSecret,
			OrderID:         resp.OrderID,
			PaymentIntentID: resp.PaymentIntentID,
		}
	}
	if strings.EqualFold(strings.TrimSpace(resp.Status), "succeeded") {
		return Succeeded{
			OrderID:         resp.OrderID,
			PaymentIntentID: resp.PaymentIntentID,
		}
	}
	return Pending{}
}
