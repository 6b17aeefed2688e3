package resume

import (
	"context"
	"time"

	"go.uber.org/multierr"

	"github.com/designdrip/storefront-core/pkg/config"
	"github.com/designdrip/storefront-core/pkg/db/models"
	"github.com/designdrip/storefront-core/pkg/enums"
	pkgerrors "github.com/designdrip/storefront-core/pkg/errors"
	"github.com/designdrip/storefront-core/pkg/logger"
)

type intentChecker interface {
	GetIntentStatus(ctx context.Context, intentID string) (enums.PaymentIntentStatus, error)
}

type pendingStore interface {
	Unresolved(ctx context.Context) ([]models.PendingIntent, error)
	resolve(ctx context.Context, paymentIntentID string, status enums.PaymentIntentStatus) error
}

// Reconciler settles pending-intent records left behind by interrupted
// checkout attempts. Run once on startup: each unresolved record is checked
// against the payment provider and either resolved with its final status,
// expired when older than the configured window, or left for the next run.
type Reconciler struct {
	store   pendingStore
	checker intentChecker
	logg    *logger.Logger
	maxAge  time.Duration
	now     func() time.Time
}

// ReconcilerParams carries Reconciler dependencies.
type ReconcilerParams struct {
	Store   *Store
	Checker intentChecker
	Logger  *logger.Logger
	Config  config.ResumeConfig
}

// NewReconciler validates dependencies and builds a Reconciler.
func NewReconciler(params ReconcilerParams) (*Reconciler, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "pending store is required")
	}
	if params.Checker == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "intent checker is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}

	maxAge := params.Config.MaxAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &Reconciler{
		store:   params.Store,
		checker: params.Checker,
		logg:    params.Logger,
		maxAge:  maxAge,
		now:     time.Now,
	}, nil
}

// Run reconciles every unresolved record. Failures on individual records do
// not stop the pass; they are aggregated into the returned error.
func (r *Reconciler) Run(ctx context.Context) error {
	records, err := r.store.Unresolved(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	ctx = r.logg.WithField(ctx, "pending_intents", len(records))
	r.logg.Info(ctx, "reconciling pending payment intents")

	var errs error
	for _, record := range records {
		if err := r.reconcileOne(ctx, record); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (r *Reconciler) reconcileOne(ctx context.Context, record models.PendingIntent) error {
	ctx = r.logg.WithField(ctx, "payment_intent_id", record.PaymentIntentID)

	status, err := r.checker.GetIntentStatus(ctx, record.PaymentIntentID)
	if err != nil {
		// An intent the provider no longer knows cannot settle. Expire it
		// once it falls outside the window instead of retrying forever.
		if coded := pkgerrors.As(err); coded != nil && coded.Code() == pkgerrors.CodeNotFound {
			return r.expire(ctx, record)
		}
		if r.expired(record) {
			return r.expire(ctx, record)
		}
		r.logg.Error(ctx, "pending intent status check failed", err)
		return err
	}

	if status.IsFinal() {
		ctx = r.logg.WithField(ctx, "status", status.String())
		r.logg.Info(ctx, "pending intent settled")
		return r.store.resolve(ctx, record.PaymentIntentID, status)
	}

	if r.expired(record) {
		return r.expire(ctx, record)
	}

	// Still processing and inside the window: leave for the next run.
	return nil
}

func (r *Reconciler) expired(record models.PendingIntent) bool {
	return r.now().Sub(record.CreatedAt) > r.maxAge
}

func (r *Reconciler) expire(ctx context.Context, record models.PendingIntent) error {
	r.logg.Warn(ctx, "expiring stale pending intent")
	return r.store.resolve(ctx, record.PaymentIntentID, enums.PaymentIntentStatusCanceled)
}
