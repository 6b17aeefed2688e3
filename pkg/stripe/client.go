package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"

	"github.com/designdrip/storefront-core/pkg/config"
	"github.com/designdrip/storefront-core/pkg/enums"
	pkgerrors "github.com/designdrip/storefront-core/pkg/errors"
	"github.com/designdrip/storefront-core/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	errAPIKeyRequired   = errors.New("stripe api key is required")
	errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)
)

// Client wraps Stripe's API client plus env-specific metadata.
type Client struct {
	api         *stripe.Client
	environment string
}

// NewClient initializes Stripe once with the configured secrets and env.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	if err := validateAPIKey(env, apiKey); err != nil {
		return nil, err
	}

	api := stripe.NewClient(apiKey)
	stripe.Key = apiKey

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("stripe client initialized (%s)", env))
	}

	return &Client{
		api:         api,
		environment: env,
	}, nil
}

// API returns the underlying Stripe API client.
func (c *Client) API() *stripe.Client {
	if c == nil {
		return nil
	}
	return c.api
}

// Environment reports the normalized Stripe environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// ConfirmOutcome is the result of driving a payment intent through its
// confirmation step.
type ConfirmOutcome struct {
	IntentID string
	Status   enums.PaymentIntentStatus
}

// ConfirmPayment completes the additional-authentication step for an intent
// that the backend reported as requiring action. A declined or failed
// confirmation returns a payment-coded error carrying Stripe's own message.
func (c *Client) ConfirmPayment(ctx context.Context, clientSecret string) (*ConfirmOutcome, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stripe client not configured")
	}

	intentID, err := IntentIDFromClientSecret(clientSecret)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentConfirmParams{}
	params.Context = ctx

	intent, err := paymentintent.Confirm(intentID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
			return nil, pkgerrors.Wrap(pkgerrors.CodePayment, err, stripeErr.Msg)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm payment intent")
	}

	return &ConfirmOutcome{
		IntentID: intent.ID,
		Status:   enums.ParsePaymentIntentStatus(string(intent.Status)),
	}, nil
}

// GetIntentStatus fetches the current status of a payment intent. Used when
// reconciling attempts that were interrupted before their outcome was seen.
func (c *Client) GetIntentStatus(ctx context.Context, intentID string) (enums.PaymentIntentStatus, error) {
	if c == nil {
		return enums.PaymentIntentStatusUnknown, pkgerrors.New(pkgerrors.CodeDependency, "stripe client not configured")
	}
	trimmed := strings.TrimSpace(intentID)
	if trimmed == "" {
		return enums.PaymentIntentStatusUnknown, pkgerrors.New(pkgerrors.CodeValidation, "payment intent ID is required")
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := paymentintent.Get(trimmed, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return enums.PaymentIntentStatusUnknown, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "payment intent not found")
		}
		return enums.PaymentIntentStatusUnknown, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch payment intent")
	}
	return enums.ParsePaymentIntentStatus(string(intent.Status)), nil
}

// IntentIDFromClientSecret extracts the intent ID from a client secret of the
// form "pi_xxx_secret_yyy".
func IntentIDFromClientSecret(clientSecret string) (string, error) {
	trimmed := strings.TrimSpace(clientSecret)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "client secret is required")
	}

	idx := strings.Index(trimmed, "_secret")
	if idx <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "client secret is malformed")
	}
	return trimmed[:idx], nil
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	switch env {
	case testEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidStripeEnv
	}
}

func validateAPIKey(env, key string) error {
	switch env {
	case testEnv:
		if strings.HasPrefix(key, "sk_test") || strings.HasPrefix(key, "rk_test") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a test secret key (sk_test/rk_test)", testEnv)
	case liveEnv:
		if strings.HasPrefix(key, "sk_live") || strings.HasPrefix(key, "rk_live") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a live secret key (sk_live/rk_live)", liveEnv)
	default:
		return errInvalidStripeEnv
	}
}
