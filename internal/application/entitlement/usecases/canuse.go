package usecases

import (
	"context"
	"time"

	"hardhat/internal/application/entitlement/dto"
	"hardhat/internal/domain/account"
	"hardhat/internal/domain/alerting"
	"hardhat/internal/domain/catalog"
	"hardhat/internal/domain/ledger"
	"hardhat/internal/shared/logger"
)

// CanUseUseCase resolves whether an account may perform a gated action right
// now. The check is a strict pre-check with no side effects: the ledger is
// only incremented by RecordUsage after the gated action itself succeeds, so
// a failed downstream action never consumes quota.
type CanUseUseCase struct {
	resolver  *resolver
	usageRepo ledger.UsageRepository
	logger    logger.Interface
}

func NewCanUseUseCase(
	stateRepo account.PlanStateRepository,
	planRepo catalog.PlanRepository,
	usageRepo ledger.UsageRepository,
	cache PlanStateCache,
	defaultPlanSlug string,
	logger logger.Interface,
) *CanUseUseCase {
	return &CanUseUseCase{
		resolver:  newResolver(stateRepo, planRepo, cache, defaultPlanSlug, logger),
		usageRepo: usageRepo,
		logger:    logger,
	}
}

// Execute returns the entitlement decision for (accountID, feature).
func (uc *CanUseUseCase) Execute(ctx context.Context, accountID string, feature catalog.FeatureKey) (*dto.Decision, error) {
	now := time.Now().UTC()

	pc, err := uc.resolver.resolve(ctx, accountID, now)
	if err != nil {
		return nil, err
	}

	decision := &dto.Decision{
		Feature:  feature,
		Tier:     alerting.TierSafe,
		PlanSlug: pc.plan.Slug(),
		PeriodID: pc.period.ID(),
	}

	quota, inPlan := pc.plan.QuotaFor(feature)
	if !inPlan || quota.Disabled() {
		// Limit 0 denies unconditionally, independent of usage.
		decision.Allowed = false
		decision.Reason = dto.ReasonFeatureNotInPlan
		return decision, nil
	}

	if quota.Unlimited {
		decision.Allowed = true
		decision.Unlimited = true
		// Usage is still read best-effort for display; it never gates.
		if rec, err := uc.usageRepo.Get(ctx, accountID, feature, pc.period); err == nil {
			decision.Used = rec.Count()
		}
		return decision, nil
	}

	rec, err := uc.usageRepo.Get(ctx, accountID, feature, pc.period)
	if err != nil {
		return nil, err
	}

	used := rec.Count()
	if rec.RawCount() < 0 {
		uc.logger.Errorw("negative usage count, treating as zero",
			"account_id", accountID,
			"feature", feature,
			"period_id", pc.period.ID(),
			"raw_count", rec.RawCount(),
		)
	}

	decision.Used = used
	decision.Limit = quota.Limit
	decision.Allowed = quota.Allows(used)
	decision.Tier = alerting.TierForUsage(quota, used)
	if pct, ok := quota.Percentage(used); ok {
		decision.Percentage = &pct
	}
	if !decision.Allowed {
		decision.Reason = dto.ReasonQuotaExceeded
	}
	return decision, nil
}
