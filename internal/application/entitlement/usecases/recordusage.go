package usecases

import (
	"context"
	"time"

	"hardhat/internal/application/entitlement/dto"
	"hardhat/internal/domain/account"
	"hardhat/internal/domain/alerting"
	"hardhat/internal/domain/catalog"
	"hardhat/internal/domain/ledger"
	appErrors "hardhat/internal/shared/errors"
	"hardhat/internal/shared/logger"
)

// incrementRetries bounds automatic retries on transient write conflicts
// before the error is surfaced as retryable to the caller.
const incrementRetries = 3

// ThresholdEvaluator recomputes alert state after a counter moves. Called
// best-effort; alerting failures never fail the usage write.
type ThresholdEvaluator interface {
	Evaluate(ctx context.Context, accountID string, feature catalog.FeatureKey, quota catalog.Quota, used int64, periodID string)
}

// RecordUsageUseCase increments the usage ledger after a gated action has
// succeeded. Unlimited features still record usage for analytics; the ledger
// never enforces limits, keeping accounting and policy decoupled.
type RecordUsageUseCase struct {
	resolver  *resolver
	usageRepo ledger.UsageRepository
	alerts    ThresholdEvaluator
	logger    logger.Interface
}

func NewRecordUsageUseCase(
	stateRepo account.PlanStateRepository,
	planRepo catalog.PlanRepository,
	usageRepo ledger.UsageRepository,
	cache PlanStateCache,
	alerts ThresholdEvaluator,
	defaultPlanSlug string,
	logger logger.Interface,
) *RecordUsageUseCase {
	return &RecordUsageUseCase{
		resolver:  newResolver(stateRepo, planRepo, cache, defaultPlanSlug, logger),
		usageRepo: usageRepo,
		alerts:    alerts,
		logger:    logger,
	}
}

// Execute adds by to the counter for (accountID, feature) in the account's
// current period and returns the updated figures.
func (uc *RecordUsageUseCase) Execute(ctx context.Context, accountID string, feature catalog.FeatureKey, by int64) (*dto.Decision, error) {
	if by <= 0 {
		by = 1
	}
	now := time.Now().UTC()

	pc, err := uc.resolver.resolve(ctx, accountID, now)
	if err != nil {
		return nil, err
	}

	var rec *ledger.UsageRecord
	for attempt := 0; ; attempt++ {
		rec, err = uc.usageRepo.IncrementAndGet(ctx, accountID, feature, pc.period, by)
		if err == nil {
			break
		}
		if attempt >= incrementRetries || !appErrors.IsDuplicateError(err) {
			uc.logger.Errorw("usage increment failed",
				"account_id", accountID,
				"feature", feature,
				"period_id", pc.period.ID(),
				"attempts", attempt+1,
				"error", err,
			)
			return nil, appErrors.NewRetryableError("usage write conflict, retry the request", err.Error())
		}
	}

	decision := &dto.Decision{
		Feature:  feature,
		Allowed:  true,
		Used:     rec.Count(),
		Tier:     alerting.TierSafe,
		PlanSlug: pc.plan.Slug(),
		PeriodID: pc.period.ID(),
	}

	quota, inPlan := pc.plan.QuotaFor(feature)
	if inPlan {
		decision.Unlimited = quota.Unlimited
		decision.Limit = quota.Limit
		decision.Tier = alerting.TierForUsage(quota, rec.Count())
		if pct, ok := quota.Percentage(rec.Count()); ok {
			decision.Percentage = &pct
		}
		if uc.alerts != nil {
			uc.alerts.Evaluate(ctx, accountID, feature, quota, rec.Count(), pc.period.ID())
		}
	}

	return decision, nil
}
