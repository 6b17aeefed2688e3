package resume

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/designdrip/storefront-core/internal/checkout"
	"github.com/designdrip/storefront-core/pkg/db/models"
	"github.com/designdrip/storefront-core/pkg/enums"
	pkgerrors "github.com/designdrip/storefront-core/pkg/errors"
)

// Store persists pending payment intents so an interrupted attempt can be
// reconciled after relaunch. Implements the coordinator's pending recorder.
type Store struct {
	db *gorm.DB
}

// NewStore wraps a GORM connection.
func NewStore(conn *gorm.DB) (*Store, error) {
	if conn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "db connection required")
	}
	return &Store{db: conn}, nil
}

// Migrate creates the pending-intent table.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&models.PendingIntent{})
}

// RecordPending upserts a record keyed by payment intent id. Re-recording an
// intent refreshes its row instead of duplicating it.
func (s *Store) RecordPending(ctx context.Context, intent checkout.PendingIntent) error {
	if strings.TrimSpace(intent.PaymentIntentID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent id is required")
	}

	record := models.PendingIntent{
		ID:              uuid.NewString(),
		UserID:          intent.UserID,
		PaymentIntentID: intent.PaymentIntentID,
		OrderID:         intent.OrderID,
		AmountMinor:     intent.Amount,
		Status:          enums.PaymentIntentStatusProcessing,
	}

	// Re-recording reopens the row: an intent that re-enters confirmation
	// after a prior expiry must show up in Unresolved again.
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "payment_intent_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"order_id":     intent.OrderID,
				"amount_minor": intent.Amount,
				"status":       enums.PaymentIntentStatusProcessing,
				"resolved_at":  nil,
				"updated_at":   time.Now().UTC(),
			}),
		}).
		Create(&record).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist pending intent")
	}
	return nil
}

// ResolvePending marks an intent as settled.
func (s *Store) ResolvePending(ctx context.Context, paymentIntentID string) error {
	return s.resolve(ctx, paymentIntentID, enums.PaymentIntentStatusSucceeded)
}

func (s *Store) resolve(ctx context.Context, paymentIntentID string, status enums.PaymentIntentStatus) error {
	if strings.TrimSpace(paymentIntentID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent id is required")
	}

	now := time.Now().UTC()
	result := s.db.WithContext(ctx).
		Model(&models.PendingIntent{}).
		Where("payment_intent_id = ? AND resolved_at IS NULL", paymentIntentID).
		Updates(map[string]any{"status": status, "resolved_at": &now})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "resolve pending intent")
	}
	return nil
}

// Unresolved returns every record still awaiting an outcome.
func (s *Store) Unresolved(ctx context.Context) ([]models.PendingIntent, error) {
	var records []models.PendingIntent
	err := s.db.WithContext(ctx).
		Where("resolved_at IS NULL").
		Order("created_at asc").
		Find(&records).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pending intents")
	}
	return records, nil
}

// Find returns one record by payment intent id.
func (s *Store) Find(ctx context.Context, paymentIntentID string) (*models.PendingIntent, error) {
	var record models.PendingIntent
	err := s.db.WithContext(ctx).
		Where("payment_intent_id = ?", paymentIntentID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pending intent not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find pending intent")
	}
	return &record, nil
}
