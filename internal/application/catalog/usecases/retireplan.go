package usecases

import (
	"context"
	"fmt"

	"hardhat/internal/domain/catalog"
	"hardhat/internal/shared/logger"
)

// RetirePlanUseCase withdraws a plan from offer. Existing subscribers keep
// resolving the retired plan.
type RetirePlanUseCase struct {
	planRepo catalog.PlanRepository
	logger   logger.Interface
}

func NewRetirePlanUseCase(planRepo catalog.PlanRepository, logger logger.Interface) *RetirePlanUseCase {
	return &RetirePlanUseCase{planRepo: planRepo, logger: logger}
}

func (uc *RetirePlanUseCase) Execute(ctx context.Context, slug string) error {
	plan, err := uc.planRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if plan == nil {
		return fmt.Errorf("plan %q: %w", slug, catalog.ErrPlanNotFound)
	}

	if err := uc.planRepo.Retire(ctx, slug); err != nil {
		return fmt.Errorf("failed to retire plan %q: %w", slug, err)
	}

	uc.logger.Infow("plan retired", "slug", slug)
	return nil
}
