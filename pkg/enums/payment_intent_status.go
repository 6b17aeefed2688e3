package enums

import "strings"

// PaymentIntentStatus is the closed set of provider payment-intent states the
// client distinguishes. Providers disagree on casing, so parsing folds case
// instead of comparing literals.
type PaymentIntentStatus string

const (
	PaymentIntentStatusSucceeded      PaymentIntentStatus = "succeeded"
	PaymentIntentStatusProcessing     PaymentIntentStatus = "processing"
	PaymentIntentStatusRequiresAction PaymentIntentStatus = "requires_action"
	PaymentIntentStatusCanceled       PaymentIntentStatus = "canceled"
	PaymentIntentStatusFailed         PaymentIntentStatus = "failed"
	PaymentIntentStatusUnknown        PaymentIntentStatus = "unknown"
)

// String implements fmt.Stringer.
func (p PaymentIntentStatus) String() string {
	return string(p)
}

// IsFinal reports whether the status terminates an intent's lifecycle.
func (p PaymentIntentStatus) IsFinal() bool {
	switch p {
	case PaymentIntentStatusSucceeded, PaymentIntentStatusCanceled, PaymentIntentStatusFailed:
		return true
	}
	return false
}

// ParsePaymentIntentStatus folds provider status strings into the closed set.
// Unrecognized values map to PaymentIntentStatusUnknown rather than erroring:
// the caller treats unknown as not-yet-final.
func ParsePaymentIntentStatus(value string) PaymentIntentStatus {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "succeeded":
		return PaymentIntentStatusSucceeded
	case "processing", "pending":
		return PaymentIntentStatusProcessing
	case "requires_action", "requiresaction":
		return PaymentIntentStatusRequiresAction
	case "canceled", "cancelled":
		return PaymentIntentStatusCanceled
	case "failed", "requires_payment_method":
		return PaymentIntentStatusFailed
	default:
		return PaymentIntentStatusUnknown
	}
}
