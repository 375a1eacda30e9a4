package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hardhat/internal/domain/catalog"
	"hardhat/internal/shared/constants"
)

// PlanModel represents the database persistence model for plans.
// This is the anti-corruption layer between domain and database.
// Plan versions are separate rows sharing a slug; (slug, version) is unique.
type PlanModel struct {
	ID            uint   `gorm:"primarykey"`
	SID           string `gorm:"uniqueIndex;not null;size:32"`
	Slug          string `gorm:"uniqueIndex:idx_plans_slug_version;not null;size:100"`
	Version       int    `gorm:"uniqueIndex:idx_plans_slug_version;not null;default:1"`
	Name          string `gorm:"not null;size:100"`
	Description   string `gorm:"size:2000"`
	TierRank      int    `gorm:"not null;default:0"`
	Quotas        datatypes.JSON
	TrialEligible bool   `gorm:"default:false"`
	PriceMonthly  uint64 `gorm:"not null;default:0"`
	PriceYearly   uint64 `gorm:"not null;default:0"`
	Status        string `gorm:"not null;size:20;default:active;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for GORM
func (PlanModel) TableName() string {
	return constants.TablePlans
}

// BeforeCreate hook for GORM
func (p *PlanModel) BeforeCreate(tx *gorm.DB) error {
	if p.Status == "" {
		p.Status = string(catalog.PlanStatusActive)
	}
	return nil
}
