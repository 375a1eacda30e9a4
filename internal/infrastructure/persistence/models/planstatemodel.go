package models

import (
	"time"

	"hardhat/internal/shared/constants"
)

// PlanStateModel is the per-account subscription state row. One row per
// account; the unique index on account_id enforces that.
type PlanStateModel struct {
	ID            uint   `gorm:"primarykey"`
	AccountID     string `gorm:"uniqueIndex;not null;size:64"`
	PlanID        uint   `gorm:"not null;index"`
	Status        string `gorm:"not null;size:20;index"`
	TrialUsed     bool   `gorm:"not null;default:false"`
	BillingCycle  string `gorm:"not null;size:20;default:monthly"`
	BillingAnchor time.Time
	PeriodStart   time.Time
	PeriodEnd     time.Time `gorm:"index"`
	DowngradeTo   *uint
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for GORM
func (PlanStateModel) TableName() string {
	return constants.TablePlanStates
}
