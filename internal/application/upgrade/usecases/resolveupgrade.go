// Package usecases implements the upgrade orchestrator: choosing the
// remediation path offered after a gated action is denied.
package usecases

import (
	"context"

	"hardhat/internal/application/entitlement/dto"
	"hardhat/internal/domain/account"
	"hardhat/internal/domain/catalog"
	"hardhat/internal/shared/logger"
)

// ResolveUpgradeUseCase picks the remediation for a denied action: offer the
// one-time trial when it is still available on a free-tier plan, otherwise
// route to paid checkout. The trial branch is gated solely by the immutable
// trial-used flag, never by counting past trial records.
type ResolveUpgradeUseCase struct {
	stateRepo       account.PlanStateRepository
	planRepo        catalog.PlanRepository
	trialPlanSlug   string
	defaultPlanSlug string
	logger          logger.Interface
}

func NewResolveUpgradeUseCase(
	stateRepo account.PlanStateRepository,
	planRepo catalog.PlanRepository,
	trialPlanSlug, defaultPlanSlug string,
	logger logger.Interface,
) *ResolveUpgradeUseCase {
	return &ResolveUpgradeUseCase{
		stateRepo:       stateRepo,
		planRepo:        planRepo,
		trialPlanSlug:   trialPlanSlug,
		defaultPlanSlug: defaultPlanSlug,
		logger:          logger,
	}
}

// Execute resolves the upgrade path for an account whose action was denied.
func (uc *ResolveUpgradeUseCase) Execute(ctx context.Context, accountID string) (*dto.UpgradePath, error) {
	state, err := uc.stateRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	currentSlug := uc.defaultPlanSlug
	currentRank := 0
	trialUsed := false
	if state != nil {
		trialUsed = state.TrialUsed()
		if plan, err := uc.planRepo.GetByID(ctx, state.PlanID()); err == nil && plan != nil {
			currentSlug = plan.Slug()
			currentRank = plan.TierRank()
			if !plan.IsFree() {
				// Paid subscribers who hit a quota go straight to checkout
				// for a higher tier.
				return uc.checkoutPath(ctx, currentRank)
			}
		}
	}

	if !trialUsed && currentSlug != uc.trialPlanSlug {
		return &dto.UpgradePath{
			Action:          dto.ActionOfferTrial,
			RecommendedPlan: uc.trialPlanSlug,
		}, nil
	}

	return uc.checkoutPath(ctx, currentRank)
}

// checkoutPath recommends the cheapest active paid plan above the current
// tier, falling back to the top tier when nothing ranks higher.
func (uc *ResolveUpgradeUseCase) checkoutPath(ctx context.Context, currentRank int) (*dto.UpgradePath, error) {
	plans, err := uc.planRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var recommended *catalog.Plan
	for _, plan := range plans {
		if plan.IsFree() || plan.Slug() == uc.trialPlanSlug {
			continue
		}
		if plan.TierRank() > currentRank {
			recommended = plan
			break
		}
		recommended = plan
	}

	path := &dto.UpgradePath{Action: dto.ActionPaidCheckout}
	if recommended != nil {
		path.RecommendedPlan = recommended.Slug()
	}
	return path, nil
}
