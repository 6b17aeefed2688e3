package models

import (
	"time"

	"github.com/designdrip/storefront-core/pkg/enums"
)

// PendingIntent is a locally persisted payment intent whose settlement was
// not observed in-process: the attempt ended in Pending, or the process died
// between requires_action and the confirmation outcome. Reconciled on
// startup.
type PendingIntent struct {
	ID              string                    `gorm:"column:id;primaryKey"`
	UserID          string                    `gorm:"column:user_id;not null;index"`
	PaymentIntentID string                    `gorm:"column:payment_intent_id;not null;uniqueIndex"`
	OrderID         string                    `gorm:"column:order_id"`
	AmountMinor     int64                     `gorm:"column:amount_minor;not null;default:0"`
	Status          enums.PaymentIntentStatus `gorm:"column:status;not null"`
	ResolvedAt      *time.Time                `gorm:"column:resolved_at"`
	CreatedAt       time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name.
func (PendingIntent) TableName() string {
	return "pending_intents"
}
