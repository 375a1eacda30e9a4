package models

import (
	"time"

	"hardhat/internal/shared/constants"
)

// CheckoutSessionModel stores processed checkout session IDs so webhook
// redelivery cannot apply the same checkout twice.
type CheckoutSessionModel struct {
	ID        uint   `gorm:"primarykey"`
	SessionID string `gorm:"uniqueIndex;not null;size:128"`
	AccountID string `gorm:"not null;size:64;index"`
	CreatedAt time.Time
}

// TableName specifies the table name for GORM
func (CheckoutSessionModel) TableName() string {
	return constants.TableCheckoutSessions
}
