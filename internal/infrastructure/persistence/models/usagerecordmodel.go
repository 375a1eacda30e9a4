package models

import (
	"time"

	"hardhat/internal/shared/constants"
)

// UsageRecordModel is one usage counter row. The composite unique index is
// what makes increment-or-insert race-safe under concurrent requests.
type UsageRecordModel struct {
	ID         uint   `gorm:"primarykey"`
	AccountID  string `gorm:"uniqueIndex:idx_usage_account_feature_period;not null;size:64"`
	FeatureKey string `gorm:"uniqueIndex:idx_usage_account_feature_period;not null;size:50"`
	PeriodID   string `gorm:"uniqueIndex:idx_usage_account_feature_period;not null;size:16"`
	Count      int64  `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for GORM
func (UsageRecordModel) TableName() string {
	return constants.TableUsageRecords
}
