package models

import (
	"time"

	"hardhat/internal/shared/constants"
)

// AlertSuppressionModel records that a threshold alert was emitted. The
// composite unique index is the exactly-once guard: only one insert per
// (account, feature, level, period) can succeed.
type AlertSuppressionModel struct {
	ID         uint   `gorm:"primarykey"`
	AccountID  string `gorm:"uniqueIndex:idx_alert_dedupe;not null;size:64"`
	FeatureKey string `gorm:"uniqueIndex:idx_alert_dedupe;not null;size:50"`
	Level      string `gorm:"uniqueIndex:idx_alert_dedupe;not null;size:20"`
	PeriodID   string `gorm:"uniqueIndex:idx_alert_dedupe;not null;size:16"`
	CreatedAt  time.Time
}

// TableName specifies the table name for GORM
func (AlertSuppressionModel) TableName() string {
	return constants.TableAlertSuppressions
}
