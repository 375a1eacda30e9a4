package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hardhat/internal/domain/catalog"
	"hardhat/internal/domain/ledger"
	"hardhat/internal/infrastructure/persistence/models"
	"hardhat/internal/shared/logger"
)

type UsageRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewUsageRepository(db *gorm.DB, logger logger.Interface) ledger.UsageRepository {
	return &UsageRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *UsageRepositoryImpl) Get(ctx context.Context, accountID string, feature catalog.FeatureKey, period ledger.Period) (*ledger.UsageRecord, error) {
	var model models.UsageRecordModel
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND feature_key = ? AND period_id = ?", accountID, feature.String(), period.ID()).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return ledger.ZeroRecord(accountID, feature, period), nil
		}
		r.logger.Errorw("failed to get usage record", "error", err, "account_id", accountID, "feature", feature)
		return nil, fmt.Errorf("failed to get usage record: %w", err)
	}

	return r.toEntity(&model, period)
}

// IncrementAndGet upserts the counter row in one statement: the composite
// unique index on (account_id, feature_key, period_id) routes concurrent
// first-use inserts into the conflict branch, so every increment lands.
func (r *UsageRepositoryImpl) IncrementAndGet(ctx context.Context, accountID string, feature catalog.FeatureKey, period ledger.Period, by int64) (*ledger.UsageRecord, error) {
	model := models.UsageRecordModel{
		AccountID:  accountID,
		FeatureKey: feature.String(),
		PeriodID:   period.ID(),
		Count:      by,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "account_id"}, {Name: "feature_key"}, {Name: "period_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"count": gorm.Expr("count + ?", by),
			}),
		}).
		Create(&model).Error
	if err != nil {
		r.logger.Errorw("failed to increment usage",
			"error", err, "account_id", accountID, "feature", feature, "period_id", period.ID())
		return nil, fmt.Errorf("failed to increment usage: %w", err)
	}

	// The upsert does not return the merged count on the conflict branch;
	// re-read the row for the post-increment value.
	var updated models.UsageRecordModel
	err = r.db.WithContext(ctx).
		Where("account_id = ? AND feature_key = ? AND period_id = ?", accountID, feature.String(), period.ID()).
		First(&updated).Error
	if err != nil {
		r.logger.Errorw("failed to read back usage record", "error", err, "account_id", accountID, "feature", feature)
		return nil, fmt.Errorf("failed to read back usage record: %w", err)
	}

	return r.toEntity(&updated, period)
}

func (r *UsageRepositoryImpl) History(ctx context.Context, accountID string, feature catalog.FeatureKey, limit int) ([]*ledger.UsageRecord, error) {
	if limit <= 0 {
		limit = 12
	}

	var recordModels []*models.UsageRecordModel
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND feature_key = ?", accountID, feature.String()).
		Order("period_id DESC").
		Limit(limit).
		Find(&recordModels).Error
	if err != nil {
		r.logger.Errorw("failed to get usage history", "error", err, "account_id", accountID, "feature", feature)
		return nil, fmt.Errorf("failed to get usage history: %w", err)
	}

	records := make([]*ledger.UsageRecord, 0, len(recordModels))
	for _, model := range recordModels {
		record, err := r.historyEntity(model)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *UsageRepositoryImpl) toEntity(model *models.UsageRecordModel, period ledger.Period) (*ledger.UsageRecord, error) {
	fk, ok := catalog.ParseFeatureKey(model.FeatureKey)
	if !ok {
		return nil, fmt.Errorf("unknown feature key in usage record %d: %s", model.ID, model.FeatureKey)
	}
	return ledger.ReconstructUsageRecord(
		model.ID, model.AccountID, fk,
		model.PeriodID, model.Count, period.Start, period.End, model.UpdatedAt,
	)
}

// historyEntity rebuilds a record from a row whose period window is derived
// from the stored period ID rather than passed in by the caller.
func (r *UsageRepositoryImpl) historyEntity(model *models.UsageRecordModel) (*ledger.UsageRecord, error) {
	fk, ok := catalog.ParseFeatureKey(model.FeatureKey)
	if !ok {
		return nil, fmt.Errorf("unknown feature key in usage record %d: %s", model.ID, model.FeatureKey)
	}
	start, err := ledger.ParsePeriodID(model.PeriodID)
	if err != nil {
		return nil, fmt.Errorf("bad period ID in usage record %d: %w", model.ID, err)
	}
	return ledger.ReconstructUsageRecord(
		model.ID, model.AccountID, fk,
		model.PeriodID, model.Count, start, model.UpdatedAt, model.UpdatedAt,
	)
}
