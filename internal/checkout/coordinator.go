package checkout

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/designdrip/storefront-core/internal/shipping"
	"github.com/designdrip/storefront-core/pkg/backend"
	"github.com/designdrip/storefront-core/pkg/enums"
	pkgerrors "github.com/designdrip/storefront-core/pkg/errors"
	"github.com/designdrip/storefront-core/pkg/logger"
	"github.com/designdrip/storefront-core/pkg/metrics"
	"github.com/designdrip/storefront-core/pkg/stripe"
)

// User-facing outcome messages, matching the storefront's toasts.
const (
	msgPaymentSuccessful   = "Payment successful!"
	msgOrderPending        = "Order created, payment processing"
	msgPaymentFailed       = "Payment failed"
	msgConfirmationFailed  = "Payment confirmation failed"
	msgSelectPaymentMethod = "Please select a payment method"
)

// Navigation names where the shell should land after a terminal outcome.
type Navigation string

const (
	NavigateNone        Navigation = ""
	NavigateOrderDetail Navigation = "order_detail"
	NavigateOrdersList  Navigation = "orders_list"
)

type submitter interface {
	SubmitCheckout(ctx context.Context, req backend.CheckoutRequest) (*backend.CheckoutResponse, error)
}

// Confirmer drives the additional-authentication step for an intent the
// backend reported as requiring action.
type Confirmer interface {
	ConfirmPayment(ctx context.Context, clientSecret string) (*stripe.ConfirmOutcome, error)
}

// PendingIntent is what survives a process death between requires_action and
// the confirmation outcome.
type PendingIntent struct {
	UserID          string
	PaymentIntentID string
	OrderID         string
	Amount          int64
}

type pendingRecorder interface {
	RecordPending(ctx context.Context, intent PendingIntent) error
	ResolvePending(ctx context.Context, paymentIntentID string) error
}

// SubmitInput is everything one checkout attempt needs. The request is built
// once from it and submitted exactly once.
type SubmitInput struct {
	UserID          string
	Info            *backend.CheckoutInfo
	PaymentMethodID string
	ItemIDs         []string
	Shipping        *shipping.Details
	RequireShipping bool
}

// Outcome is the terminal result of one attempt.
type Outcome struct {
	State      State              `json:"state"`
	Message    string             `json:"message"`
	OrderRef   string             `json:"orderRef,omitempty"`
	NavigateTo Navigation         `json:"navigateTo,omitempty"`
	Invalidate []enums.CacheTopic `json:"invalidate,omitempty"`
}

// CoordinatorParams groups the coordinator's dependencies.
type CoordinatorParams struct {
	Submitter submitter
	Confirmer Confirmer
	Pending   pendingRecorder
	Metrics   *metrics.CheckoutMetrics
	Logger    *logger.Logger
	ReturnURL string
}

// Coordinator drives a checkout attempt to a terminal outcome exactly once
// per user-initiated submission. At most one attempt is in flight per user;
// re-entrant submits are rejected without a network call.
type Coordinator struct {
	submitter submitter
	confirmer Confirmer
	pending   pendingRecorder
	metrics   *metrics.CheckoutMetrics
	logg      *logger.Logger
	returnURL string

	mu       sync.Mutex
	inFlight map[string]State
}

// NewCoordinator builds the coordinator. Confirmer is required because the
// requires_action branch cannot be deferred; the pending recorder and metrics
// are optional.
func NewCoordinator(params CoordinatorParams) (*Coordinator, error) {
	if params.Submitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "submitter required")
	}
	if params.Confirmer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "confirmer required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Coordinator{
		submitter: params.Submitter,
		confirmer: params.Confirmer,
		pending:   params.Pending,
		metrics:   params.Metrics,
		logg:      params.Logger,
		returnURL: params.ReturnURL,
		inFlight:  make(map[string]State),
	}, nil
}

// Submit runs one attempt. Validation failures and re-entrant submits return
// an error with no side effects; every accepted submission returns a terminal
// Outcome, including failed ones.
func (c *Coordinator) Submit(ctx context.Context, input SubmitInput) (*Outcome, error) {
	if err := c.validate(input); err != nil {
		return nil, err
	}

	if err := c.begin(input.UserID); err != nil {
		return nil, err
	}
	defer c.finish(input.UserID)

	attemptID := uuid.NewString()
	ctx = c.logg.WithAttemptID(ctx, attemptID)
	ctx = c.logg.WithUserID(ctx, input.UserID)

	started := time.Now()
	outcome := c.run(ctx, input)
	c.metrics.ObserveAttempt(outcome.State.String(), time.Since(started))

	return outcome, nil
}

func (c *Coordinator) validate(input SubmitInput) error {
	if strings.TrimSpace(input.UserID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.Info == nil || len(input.Info.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no items selected")
	}
	if len(input.ItemIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no items selected")
	}
	if strings.TrimSpace(input.PaymentMethodID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, msgSelectPaymentMethod)
	}
	if input.RequireShipping {
		if input.Shipping == nil || !input.Shipping.Address.Complete() {
			return pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete")
		}
	}
	return nil
}

// begin marks the user's attempt Submitting, rejecting when one is already in
// flight.
func (c *Coordinator) begin(userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if state, ok := c.inFlight[userID]; ok && !state.IsTerminal() && state != StateIdle {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "a checkout attempt is already in progress")
	}

	next, err := Transition(StateIdle, StateSubmitting)
	if err != nil {
		return err
	}
	c.inFlight[userID] = next
	return nil
}

func (c *Coordinator) setState(userID string, to State) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := Transition(c.inFlight[userID], to)
	if err != nil {
		return c.inFlight[userID]
	}
	c.inFlight[userID] = next
	return next
}

func (c *Coordinator) finish(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, userID)
}

func (c *Coordinator) run(ctx context.Context, input SubmitInput) *Outcome {
	req := backend.CheckoutRequest{
		PaymentMethodID: input.PaymentMethodID,
		ItemIDs:         input.ItemIDs,
		ReturnURL:       c.returnURL,
		Shipping:        input.Shipping.ToBackend(),
	}

	resp, err := c.submitter.SubmitCheckout(ctx, req)
	if err != nil {
		c.setState(input.UserID, StateFailed)
		c.logg.Warn(ctx, "checkout submission rejected")
		return &Outcome{
			State:   StateFailed,
			Message: submissionErrorMessage(err),
		}
	}

	switch result := Classify(resp).(type) {
	case Succeeded:
		c.setState(input.UserID, StateSucceeded)
		c.logg.Info(ctx, "checkout succeeded")
		return c.succeededOutcome(result.OrderRef())

	case RequiresAction:
		c.setState(input.UserID, StateAuthenticating)
		c.recordPending(ctx, input, result)
		return c.authenticate(ctx, input, result)

	case Pending:
		c.setState(input.UserID, StatePending)
		if resp.PaymentIntentID != "" {
			c.recordPending(ctx, input, RequiresAction{
				OrderID:         resp.OrderID,
				PaymentIntentID: resp.PaymentIntentID,
			})
		}
		c.logg.Info(ctx, "checkout pending settlement")
		return pendingOutcome()

	default:
		c.setState(input.UserID, StatePending)
		return pendingOutcome()
	}
}

// authenticate drives the confirmation step. The checkout request has already
// been accepted server-side, so nothing here may propagate: panics and
// transport failures both resolve to a Failed outcome with a generic message.
func (c *Coordinator) authenticate(ctx context.Context, input SubmitInput, action RequiresAction) (outcome *Outcome) {
	defer func() {
		if r := recover(); r != nil {
			c.logg.Error(ctx, "payment confirmation panicked", nil)
			c.metrics.IncConfirmation("panic")
			c.setState(input.UserID, StateFailed)
			outcome = &Outcome{State: StateFailed, Message: msgConfirmationFailed}
		}
	}()

	confirmed, err := c.confirmer.ConfirmPayment(ctx, action.ClientSecret)
	if err != nil {
		c.setState(input.UserID, StateFailed)
		coded := pkgerrors.As(err)
		if coded != nil && coded.Code() == pkgerrors.CodePayment {
			c.metrics.IncConfirmation("declined")
			c.logg.Warn(ctx, "payment confirmation declined")
			return &Outcome{
				State:   StateFailed,
				Message: msgPaymentFailed + ": " + coded.Message(),
			}
		}
		c.metrics.IncConfirmation("error")
		c.logg.Error(ctx, "payment confirmation failed", err)
		return &Outcome{State: StateFailed, Message: msgConfirmationFailed}
	}

	switch {
	case confirmed.Status == enums.PaymentIntentStatusSucceeded:
		c.metrics.IncConfirmation("succeeded")
		c.setState(input.UserID, StateSucceeded)
		c.resolvePending(ctx, action, confirmed)
		c.logg.Info(ctx, "payment confirmed")
		return c.succeededOutcome(action.OrderRef())

	case !confirmed.Status.IsFinal():
		c.metrics.IncConfirmation("processing")
		c.setState(input.UserID, StatePending)
		c.logg.Info(ctx, "payment confirmation still processing")
		return pendingOutcome()

	default:
		// Final but not succeeded (canceled, failed).
		c.metrics.IncConfirmation("failed")
		c.setState(input.UserID, StateFailed)
		c.logg.Warn(ctx, "payment confirmation ended unsuccessfully")
		return &Outcome{State: StateFailed, Message: msgPaymentFailed}
	}
}

func (c *Coordinator) succeededOutcome(orderRef string) *Outcome {
	return &Outcome{
		State:      StateSucceeded,
		Message:    msgPaymentSuccessful,
		OrderRef:   orderRef,
		NavigateTo: NavigateOrderDetail,
		Invalidate: enums.AllCacheTopics(),
	}
}

func pendingOutcome() *Outcome {
	return &Outcome{
		State:      StatePending,
		Message:    msgOrderPending,
		NavigateTo: NavigateOrdersList,
		Invalidate: enums.AllCacheTopics(),
	}
}

func (c *Coordinator) recordPending(ctx context.Context, input SubmitInput, action RequiresAction) {
	if c.pending == nil {
		return
	}

	intentID := action.PaymentIntentID
	if intentID == "" && action.ClientSecret != "" {
		if parsed, err := stripe.IntentIDFromClientSecret(action.ClientSecret); err == nil {
			intentID = parsed
		}
	}
	if intentID == "" {
		return
	}

	record := PendingIntent{
		UserID:          input.UserID,
		PaymentIntentID: intentID,
		OrderID:         action.OrderID,
		Amount:          input.Info.TotalAmount,
	}
	if err := c.pending.RecordPending(ctx, record); err != nil {
		c.logg.Warn(ctx, "failed to persist pending intent")
	}
}

func (c *Coordinator) resolvePending(ctx context.Context, action RequiresAction, confirmed *stripe.ConfirmOutcome) {
	if c.pending == nil {
		return
	}

	intentID := confirmed.IntentID
	if intentID == "" {
		intentID = action.PaymentIntentID
	}
	if intentID == "" {
		return
	}
	if err := c.pending.ResolvePending(ctx, intentID); err != nil {
		c.logg.Warn(ctx, "failed to resolve pending intent")
	}
}

// submissionErrorMessage surfaces the backend's own message when it sent one;
// transport and unexpected failures fall back to the generic message.
func submissionErrorMessage(err error) string {
	coded := pkgerrors.As(err)
	if coded == nil {
		return msgPaymentFailed
	}
	switch coded.Code() {
	case pkgerrors.CodeValidation, pkgerrors.CodePayment, pkgerrors.CodeConflict, pkgerrors.CodeStateConflict:
		if coded.Message() != "" {
			return coded.Message()
		}
	}
	return msgPaymentFailed
}
