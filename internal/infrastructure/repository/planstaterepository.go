package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"hardhat/internal/domain/account"
	"hardhat/internal/infrastructure/persistence/models"
	"hardhat/internal/shared/db"
	"hardhat/internal/shared/logger"
)

type PlanStateRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewPlanStateRepository(db *gorm.DB, logger logger.Interface) account.PlanStateRepository {
	return &PlanStateRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *PlanStateRepositoryImpl) GetByAccountID(ctx context.Context, accountID string) (*account.PlanState, error) {
	var model models.PlanStateModel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get plan state", "error", err, "account_id", accountID)
		return nil, fmt.Errorf("failed to get plan state: %w", err)
	}

	return r.toEntity(&model)
}

func (r *PlanStateRepositoryImpl) Create(ctx context.Context, state *account.PlanState) error {
	model := r.toModel(state)
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		r.logger.Errorw("failed to create plan state", "error", err, "account_id", state.AccountID())
		return fmt.Errorf("failed to create plan state: %w", err)
	}

	if err := state.SetID(model.ID); err != nil {
		return err
	}

	r.logger.Infow("plan state created", "account_id", state.AccountID(), "plan_id", state.PlanID())
	return nil
}

func (r *PlanStateRepositoryImpl) Update(ctx context.Context, state *account.PlanState) error {
	model := r.toModel(state)
	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.PlanStateModel{}).
		Where("id = ?", state.ID()).
		Updates(map[string]interface{}{
			"plan_id":        model.PlanID,
			"status":         model.Status,
			"trial_used":     model.TrialUsed,
			"billing_cycle":  model.BillingCycle,
			"billing_anchor": model.BillingAnchor,
			"period_start":   model.PeriodStart,
			"period_end":     model.PeriodEnd,
			"downgrade_to":   model.DowngradeTo,
			"updated_at":     model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update plan state", "error", result.Error, "account_id", state.AccountID())
		return fmt.Errorf("failed to update plan state: %w", result.Error)
	}

	// Note: RowsAffected may be 0 when updated values are identical to existing values.
	return nil
}

// ClaimTrial flips trial_used in a single conditional statement. Under
// concurrent activation exactly one request matches the false row; everyone
// else sees zero rows affected and loses the claim.
func (r *PlanStateRepositoryImpl) ClaimTrial(ctx context.Context, accountID string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.PlanStateModel{}).
		Where("account_id = ? AND trial_used = ?", accountID, false).
		Updates(map[string]interface{}{
			"trial_used": true,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to claim trial", "error", result.Error, "account_id", accountID)
		return false, fmt.Errorf("failed to claim trial: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (r *PlanStateRepositoryImpl) FindDueForRollover(ctx context.Context, limit int) ([]*account.PlanState, error) {
	var stateModels []*models.PlanStateModel
	err := r.db.WithContext(ctx).
		Where("period_end <= ? AND status IN ?", time.Now().UTC(),
			[]string{string(account.StatusActive), string(account.StatusTrialing), string(account.StatusExpired)}).
		Order("period_end ASC").
		Limit(limit).
		Find(&stateModels).Error
	if err != nil {
		r.logger.Errorw("failed to find states due for rollover", "error", err)
		return nil, fmt.Errorf("failed to find states due for rollover: %w", err)
	}

	states := make([]*account.PlanState, 0, len(stateModels))
	for _, model := range stateModels {
		state, err := r.toEntity(model)
		if err != nil {
			r.logger.Errorw("skipping unreadable plan state", "error", err, "state_id", model.ID)
			continue
		}
		states = append(states, state)
	}
	return states, nil
}

func (r *PlanStateRepositoryImpl) toEntity(model *models.PlanStateModel) (*account.PlanState, error) {
	return account.ReconstructPlanState(account.PlanStateReconstructParams{
		ID:            model.ID,
		AccountID:     model.AccountID,
		PlanID:        model.PlanID,
		Status:        account.PlanStatus(model.Status),
		TrialUsed:     model.TrialUsed,
		BillingCycle:  account.BillingCycle(model.BillingCycle),
		BillingAnchor: model.BillingAnchor,
		PeriodStart:   model.PeriodStart,
		PeriodEnd:     model.PeriodEnd,
		DowngradeTo:   model.DowngradeTo,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	})
}

func (r *PlanStateRepositoryImpl) toModel(state *account.PlanState) *models.PlanStateModel {
	return &models.PlanStateModel{
		ID:            state.ID(),
		AccountID:     state.AccountID(),
		PlanID:        state.PlanID(),
		Status:        string(state.Status()),
		TrialUsed:     state.TrialUsed(),
		BillingCycle:  string(state.BillingCycle()),
		BillingAnchor: state.BillingAnchor(),
		PeriodStart:   state.PeriodStart(),
		PeriodEnd:     state.PeriodEnd(),
		DowngradeTo:   state.DowngradeTo(),
		CreatedAt:     state.CreatedAt(),
		UpdatedAt:     state.UpdatedAt(),
	}
}
