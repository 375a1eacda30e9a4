package usecases

import (
	"context"
	"fmt"
	"time"

	"hardhat/internal/domain/account"
	"hardhat/internal/domain/catalog"
	"hardhat/internal/shared/logger"
)

// rolloverBatchSize bounds how many accounts one scheduler pass touches.
const rolloverBatchSize = 500

// RolloverPeriodsUseCase advances billing windows for accounts whose period
// has elapsed. Elapsed trials without a completed checkout are expired and
// demoted to the default free plan; active accounts move to the next window.
// Usage counters reset implicitly because the new period has a new period
// ID. The whole pass is idempotent: an account already rolled over compares
// equal on period ID and is skipped, so retrying after a crash never
// double-resets counters.
type RolloverPeriodsUseCase struct {
	stateRepo       account.PlanStateRepository
	planRepo        catalog.PlanRepository
	cache           CacheInvalidator
	defaultPlanSlug string
	logger          logger.Interface
}

func NewRolloverPeriodsUseCase(
	stateRepo account.PlanStateRepository,
	planRepo catalog.PlanRepository,
	cache CacheInvalidator,
	defaultPlanSlug string,
	logger logger.Interface,
) *RolloverPeriodsUseCase {
	return &RolloverPeriodsUseCase{
		stateRepo:       stateRepo,
		planRepo:        planRepo,
		cache:           cache,
		defaultPlanSlug: defaultPlanSlug,
		logger:          logger,
	}
}

// Execute processes one batch and returns the number of accounts rolled over.
func (uc *RolloverPeriodsUseCase) Execute(ctx context.Context) (int, error) {
	defaultPlan, err := uc.planRepo.GetBySlug(ctx, uc.defaultPlanSlug)
	if err != nil {
		return 0, err
	}
	if defaultPlan == nil {
		return 0, fmt.Errorf("default plan %q: %w", uc.defaultPlanSlug, catalog.ErrPlanNotFound)
	}

	due, err := uc.stateRepo.FindDueForRollover(ctx, rolloverBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to find due accounts: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rolled := 0

	for _, state := range due {
		changed, err := uc.rolloverOne(state, defaultPlan.ID(), now)
		if err != nil {
			uc.logger.Warnw("skipping rollover",
				"account_id", state.AccountID(),
				"status", state.Status().String(),
				"error", err,
			)
			continue
		}
		if !changed {
			continue
		}

		if err := uc.stateRepo.Update(ctx, state); err != nil {
			uc.logger.Errorw("failed to persist rollover",
				"account_id", state.AccountID(),
				"error", err,
			)
			continue
		}
		if uc.cache != nil {
			if err := uc.cache.Invalidate(ctx, state.AccountID()); err != nil {
				uc.logger.Warnw("failed to invalidate plan state cache",
					"account_id", state.AccountID(),
					"error", err,
				)
			}
		}
		rolled++
	}

	uc.logger.Infow("rollover pass complete", "due", len(due), "rolled", rolled)
	return rolled, nil
}

func (uc *RolloverPeriodsUseCase) rolloverOne(state *account.PlanState, freePlanID uint, now time.Time) (bool, error) {
	switch state.Status() {
	case account.StatusTrialing:
		if now.Before(state.PeriodEnd()) {
			return false, nil
		}
		if err := state.ExpireTrial(freePlanID, now); err != nil {
			return false, err
		}
		return true, nil
	case account.StatusActive, account.StatusExpired:
		return state.AdvancePeriod(now), nil
	default:
		// Canceled accounts keep their window frozen.
		return false, nil
	}
}
