package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"hardhat/internal/domain/catalog"
	"hardhat/internal/infrastructure/persistence/models"
	"hardhat/internal/shared/db"
	"hardhat/internal/shared/logger"
)

type quotaJSON struct {
	Limit     int64 `json:"limit"`
	Unlimited bool  `json:"unlimited"`
}

type PlanRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewPlanRepository(db *gorm.DB, logger logger.Interface) catalog.PlanRepository {
	return &PlanRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// Create publishes a plan version. When a prior version of the same slug
// exists it is retired in the same transaction, so at most one version per
// slug is active at any time.
func (r *PlanRepositoryImpl) Create(ctx context.Context, plan *catalog.Plan) error {
	model, err := r.toModel(plan)
	if err != nil {
		r.logger.Errorw("failed to convert plan to model", "error", err)
		return fmt.Errorf("failed to convert plan to model: %w", err)
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if plan.Version() > 1 {
			if err := tx.Model(&models.PlanModel{}).
				Where("slug = ? AND version < ?", plan.Slug(), plan.Version()).
				Update("status", string(catalog.PlanStatusRetired)).Error; err != nil {
				return fmt.Errorf("failed to retire prior versions: %w", err)
			}
		}
		return tx.Create(model).Error
	})
	if err != nil {
		r.logger.Errorw("failed to create plan", "error", err, "slug", plan.Slug())
		return fmt.Errorf("failed to create plan: %w", err)
	}

	if err := plan.SetID(model.ID); err != nil {
		return err
	}

	r.logger.Infow("plan created", "plan_id", model.ID, "slug", plan.Slug(), "version", plan.Version())
	return nil
}

func (r *PlanRepositoryImpl) GetByID(ctx context.Context, id uint) (*catalog.Plan, error) {
	var model models.PlanModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get plan by ID", "error", err, "plan_id", id)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	return r.toEntity(&model)
}

// GetBySlug resolves the highest version for a slug regardless of status, so
// accounts subscribed to a retired plan keep resolving it.
func (r *PlanRepositoryImpl) GetBySlug(ctx context.Context, slug string) (*catalog.Plan, error) {
	var model models.PlanModel
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		Order("version DESC").
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get plan by slug", "error", err, "slug", slug)
		return nil, fmt.Errorf("failed to get plan by slug: %w", err)
	}

	return r.toEntity(&model)
}

func (r *PlanRepositoryImpl) ListActive(ctx context.Context) ([]*catalog.Plan, error) {
	var planModels []*models.PlanModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(catalog.PlanStatusActive)).
		Order("tier_rank ASC, price_monthly ASC").
		Find(&planModels).Error
	if err != nil {
		r.logger.Errorw("failed to list active plans", "error", err)
		return nil, fmt.Errorf("failed to list active plans: %w", err)
	}

	return r.toEntities(planModels)
}

func (r *PlanRepositoryImpl) Retire(ctx context.Context, slug string) error {
	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.PlanModel{}).
		Where("slug = ?", slug).
		Update("status", string(catalog.PlanStatusRetired))
	if result.Error != nil {
		r.logger.Errorw("failed to retire plan", "error", result.Error, "slug", slug)
		return fmt.Errorf("failed to retire plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return catalog.ErrPlanNotFound
	}

	r.logger.Infow("plan retired", "slug", slug)
	return nil
}

func (r *PlanRepositoryImpl) toEntity(model *models.PlanModel) (*catalog.Plan, error) {
	if model == nil {
		return nil, nil
	}

	quotas := make(map[catalog.FeatureKey]catalog.Quota)
	if model.Quotas != nil {
		var raw map[string]quotaJSON
		if err := json.Unmarshal(model.Quotas, &raw); err != nil {
			r.logger.Errorw("failed to unmarshal plan quotas", "error", err, "plan_id", model.ID)
			return nil, fmt.Errorf("failed to unmarshal plan quotas: %w", err)
		}
		for key, q := range raw {
			fk, ok := catalog.ParseFeatureKey(key)
			if !ok {
				r.logger.Warnw("skipping unknown feature key in stored quotas", "key", key, "plan_id", model.ID)
				continue
			}
			quotas[fk] = catalog.Quota{Limit: q.Limit, Unlimited: q.Unlimited}
		}
	}

	return catalog.ReconstructPlan(catalog.PlanReconstructParams{
		ID:            model.ID,
		SID:           model.SID,
		Slug:          model.Slug,
		Name:          model.Name,
		Description:   model.Description,
		TierRank:      model.TierRank,
		Quotas:        quotas,
		TrialEligible: model.TrialEligible,
		PriceMonthly:  model.PriceMonthly,
		PriceYearly:   model.PriceYearly,
		Status:        catalog.PlanStatus(model.Status),
		Version:       model.Version,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	})
}

func (r *PlanRepositoryImpl) toModel(plan *catalog.Plan) (*models.PlanModel, error) {
	if plan == nil {
		return nil, nil
	}

	raw := make(map[string]quotaJSON)
	for fk, q := range plan.Quotas() {
		raw[fk.String()] = quotaJSON{Limit: q.Limit, Unlimited: q.Unlimited}
	}
	quotasJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan quotas: %w", err)
	}

	return &models.PlanModel{
		ID:            plan.ID(),
		SID:           plan.SID(),
		Slug:          plan.Slug(),
		Version:       plan.Version(),
		Name:          plan.Name(),
		Description:   plan.Description(),
		TierRank:      plan.TierRank(),
		Quotas:        quotasJSON,
		TrialEligible: plan.TrialEligible(),
		PriceMonthly:  plan.PriceMonthly(),
		PriceYearly:   plan.PriceYearly(),
		Status:        string(plan.Status()),
		CreatedAt:     plan.CreatedAt(),
		UpdatedAt:     plan.UpdatedAt(),
	}, nil
}

func (r *PlanRepositoryImpl) toEntities(planModels []*models.PlanModel) ([]*catalog.Plan, error) {
	plans := make([]*catalog.Plan, 0, len(planModels))
	for _, model := range planModels {
		plan, err := r.toEntity(model)
		if err != nil {
			return nil, fmt.Errorf("failed to convert model ID %d: %w", model.ID, err)
		}
		if plan != nil {
			plans = append(plans, plan)
		}
	}
	return plans, nil
}
