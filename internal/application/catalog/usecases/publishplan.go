package usecases

import (
	"context"
	"fmt"

	"hardhat/internal/domain/catalog"
	"hardhat/internal/shared/id"
	"hardhat/internal/shared/logger"
)

// PublishPlanInput describes a plan version to publish. When a plan with the
// same slug already exists, the new version supersedes it and the old
// version is retired; quotas are never mutated in place.
type PublishPlanInput struct {
	Slug          string
	Name          string
	Description   string
	TierRank      int
	TrialEligible bool
	PriceMonthly  uint64
	PriceYearly   uint64
	Quotas        map[catalog.FeatureKey]catalog.Quota
}

// PublishPlanUseCase creates a new plan or a new version of an existing one.
type PublishPlanUseCase struct {
	planRepo catalog.PlanRepository
	logger   logger.Interface
}

func NewPublishPlanUseCase(planRepo catalog.PlanRepository, logger logger.Interface) *PublishPlanUseCase {
	return &PublishPlanUseCase{planRepo: planRepo, logger: logger}
}

func (uc *PublishPlanUseCase) Execute(ctx context.Context, input PublishPlanInput) (*catalog.Plan, error) {
	sid, err := id.GenerateWithPrefix(id.PrefixPlan, id.DefaultLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan ID: %w", err)
	}

	existing, err := uc.planRepo.GetBySlug(ctx, input.Slug)
	if err != nil {
		return nil, err
	}

	var plan *catalog.Plan
	if existing != nil {
		plan, err = existing.NextVersion(input.Quotas, sid)
		if err != nil {
			return nil, err
		}
	} else {
		plan, err = catalog.NewPlan(sid, input.Slug, input.Name, input.Description, input.TierRank, input.Quotas)
		if err != nil {
			return nil, err
		}
	}
	plan.SetTrialEligible(input.TrialEligible)
	plan.SetPricing(input.PriceMonthly, input.PriceYearly)

	if err := uc.planRepo.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to publish plan: %w", err)
	}

	uc.logger.Infow("plan published",
		"slug", plan.Slug(),
		"version", plan.Version(),
		"tier_rank", plan.TierRank(),
	)
	return plan, nil
}
