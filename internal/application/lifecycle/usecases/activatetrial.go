// Package usecases implements the plan lifecycle transitions: trial
// activation, checkout completion, and the scheduled period rollover. These
// are the only writers of account plan state.
package usecases

import (
	"context"
	"fmt"
	"time"

	"hardhat/internal/domain/account"
	"hardhat/internal/domain/catalog"
	"hardhat/internal/shared/logger"
)

// CacheInvalidator drops cached plan state after a transition so resolvers
// observe the new plan immediately.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, accountID string) error
}

// ActivateTrialUseCase grants the one-time trial. The conditional flag flip
// in the repository is the linearization point: of N concurrent callers,
// exactly one wins and the rest receive ErrTrialAlreadyUsed.
type ActivateTrialUseCase struct {
	stateRepo       account.PlanStateRepository
	planRepo        catalog.PlanRepository
	cache           CacheInvalidator
	trialPlanSlug   string
	defaultPlanSlug string
	trialDays       int
	logger          logger.Interface
}

func NewActivateTrialUseCase(
	stateRepo account.PlanStateRepository,
	planRepo catalog.PlanRepository,
	cache CacheInvalidator,
	trialPlanSlug, defaultPlanSlug string,
	trialDays int,
	logger logger.Interface,
) *ActivateTrialUseCase {
	return &ActivateTrialUseCase{
		stateRepo:       stateRepo,
		planRepo:        planRepo,
		cache:           cache,
		trialPlanSlug:   trialPlanSlug,
		defaultPlanSlug: defaultPlanSlug,
		trialDays:       trialDays,
		logger:          logger,
	}
}

func (uc *ActivateTrialUseCase) Execute(ctx context.Context, accountID string) (*account.PlanState, error) {
	trialPlan, err := uc.planRepo.GetBySlug(ctx, uc.trialPlanSlug)
	if err != nil {
		return nil, err
	}
	if trialPlan == nil {
		return nil, fmt.Errorf("trial plan %q: %w", uc.trialPlanSlug, catalog.ErrPlanNotFound)
	}

	now := time.Now().UTC()

	state, err := uc.stateRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan state: %w", err)
	}
	if state == nil {
		state, err = uc.createDefaultState(ctx, accountID, now)
		if err != nil {
			return nil, err
		}
	}

	if state.TrialUsed() {
		return nil, account.ErrTrialAlreadyUsed
	}

	// The flag flip decides concurrent races; losers stop here.
	won, err := uc.stateRepo.ClaimTrial(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim trial: %w", err)
	}
	if !won {
		return nil, account.ErrTrialAlreadyUsed
	}

	if err := state.StartTrial(trialPlan.ID(), uc.trialDays, now); err != nil {
		return nil, err
	}
	if err := uc.stateRepo.Update(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to persist trial state: %w", err)
	}

	uc.invalidate(ctx, accountID)
	uc.logger.Infow("trial activated",
		"account_id", accountID,
		"trial_plan", uc.trialPlanSlug,
		"period_end", state.PeriodEnd(),
	)
	return state, nil
}

func (uc *ActivateTrialUseCase) createDefaultState(ctx context.Context, accountID string, now time.Time) (*account.PlanState, error) {
	defaultPlan, err := uc.planRepo.GetBySlug(ctx, uc.defaultPlanSlug)
	if err != nil {
		return nil, err
	}
	if defaultPlan == nil {
		return nil, fmt.Errorf("default plan %q: %w", uc.defaultPlanSlug, catalog.ErrPlanNotFound)
	}

	state, err := account.NewPlanState(accountID, defaultPlan.ID(), now)
	if err != nil {
		return nil, err
	}
	if err := uc.stateRepo.Create(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to create plan state: %w", err)
	}
	return state, nil
}

func (uc *ActivateTrialUseCase) invalidate(ctx context.Context, accountID string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, accountID); err != nil {
		uc.logger.Warnw("failed to invalidate plan state cache", "account_id", accountID, "error", err)
	}
}
