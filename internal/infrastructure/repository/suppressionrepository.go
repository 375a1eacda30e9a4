package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hardhat/internal/domain/alerting"
	"hardhat/internal/domain/catalog"
	"hardhat/internal/domain/ledger"
	"hardhat/internal/infrastructure/persistence/models"
	"hardhat/internal/shared/logger"
)

type SuppressionRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewSuppressionRepository(db *gorm.DB, logger logger.Interface) alerting.SuppressionRepository {
	return &SuppressionRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *SuppressionRepositoryImpl) WasShown(ctx context.Context, accountID string, feature catalog.FeatureKey, level alerting.Tier, periodID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AlertSuppressionModel{}).
		Where("account_id = ? AND feature_key = ? AND level = ? AND period_id = ?",
			accountID, feature.String(), string(level), periodID).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to check alert suppression", "error", err, "account_id", accountID)
		return false, fmt.Errorf("failed to check alert suppression: %w", err)
	}

	return count > 0, nil
}

// Claim inserts the suppression row with conflicts ignored. RowsAffected
// distinguishes the winner: concurrent claims on the same key race on the
// unique index and exactly one insert succeeds.
func (r *SuppressionRepositoryImpl) Claim(ctx context.Context, accountID string, feature catalog.FeatureKey, level alerting.Tier, periodID string) (bool, error) {
	model := models.AlertSuppressionModel{
		AccountID:  accountID,
		FeatureKey: feature.String(),
		Level:      string(level),
		PeriodID:   periodID,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model)
	if result.Error != nil {
		r.logger.Errorw("failed to claim alert suppression", "error", result.Error, "account_id", accountID)
		return false, fmt.Errorf("failed to claim alert suppression: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (r *SuppressionRepositoryImpl) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffID := ledger.Period{Start: cutoff}.ID()
	result := r.db.WithContext(ctx).
		Where("period_id < ?", cutoffID).
		Delete(&models.AlertSuppressionModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to prune alert suppressions", "error", result.Error)
		return 0, fmt.Errorf("failed to prune alert suppressions: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		r.logger.Infow("pruned alert suppressions", "removed", result.RowsAffected, "cutoff", cutoffID)
	}
	return result.RowsAffected, nil
}
