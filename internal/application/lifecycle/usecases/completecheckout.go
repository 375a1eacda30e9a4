package usecases

import (
	"context"
	"fmt"
	"time"

	"hardhat/internal/domain/account"
	"hardhat/internal/domain/catalog"
	"hardhat/internal/shared/logger"
)

// TxRunner executes a function within a database transaction. Repositories
// pick the transaction up from the context.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CompleteCheckoutUseCase records the result of an already-completed
// external payment. The payment processor delivers confirmations
// at-least-once, so the operation is idempotent on the external session ID
// rather than relying on mutual exclusion; no lock is held across any
// network call.
type CompleteCheckoutUseCase struct {
	stateRepo       account.PlanStateRepository
	sessionRepo     account.CheckoutSessionRepository
	planRepo        catalog.PlanRepository
	cache           CacheInvalidator
	txManager       TxRunner
	defaultPlanSlug string
	logger          logger.Interface
}

func NewCompleteCheckoutUseCase(
	stateRepo account.PlanStateRepository,
	sessionRepo account.CheckoutSessionRepository,
	planRepo catalog.PlanRepository,
	cache CacheInvalidator,
	txManager TxRunner,
	defaultPlanSlug string,
	logger logger.Interface,
) *CompleteCheckoutUseCase {
	return &CompleteCheckoutUseCase{
		stateRepo:       stateRepo,
		sessionRepo:     sessionRepo,
		planRepo:        planRepo,
		cache:           cache,
		txManager:       txManager,
		defaultPlanSlug: defaultPlanSlug,
		logger:          logger,
	}
}

// Execute applies the checkout transition. Duplicate deliveries of the same
// session return the current state unchanged.
func (uc *CompleteCheckoutUseCase) Execute(ctx context.Context, accountID, planSlug string, cycle account.BillingCycle, sessionID string) (*account.PlanState, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("checkout session ID is required")
	}

	plan, err := uc.planRepo.GetBySlug(ctx, planSlug)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("checkout plan %q: %w", planSlug, catalog.ErrPlanNotFound)
	}

	now := time.Now().UTC()

	// The session claim and the state write commit together: a failed state
	// write releases the claim so the processor's retry can apply it.
	var state *account.PlanState
	var duplicate bool
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		first, err := uc.sessionRepo.RecordOnce(txCtx, sessionID, accountID)
		if err != nil {
			return fmt.Errorf("failed to record checkout session: %w", err)
		}
		if !first {
			duplicate = true
			return nil
		}

		state, err = uc.stateRepo.GetByAccountID(txCtx, accountID)
		if err != nil {
			return fmt.Errorf("failed to load plan state: %w", err)
		}

		if state == nil {
			state, err = account.NewPlanState(accountID, plan.ID(), now)
			if err != nil {
				return err
			}
			if err := state.CompleteCheckout(plan.ID(), cycle, now); err != nil {
				return err
			}
			if err := uc.stateRepo.Create(txCtx, state); err != nil {
				return fmt.Errorf("failed to create plan state: %w", err)
			}
			return nil
		}

		if err := state.CompleteCheckout(plan.ID(), cycle, now); err != nil {
			return err
		}
		if err := uc.stateRepo.Update(txCtx, state); err != nil {
			return fmt.Errorf("failed to persist checkout state: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if duplicate {
		uc.logger.Infow("duplicate checkout delivery ignored",
			"account_id", accountID,
			"session_id", sessionID,
		)
		return uc.stateRepo.GetByAccountID(ctx, accountID)
	}

	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx, accountID); err != nil {
			uc.logger.Warnw("failed to invalidate plan state cache", "account_id", accountID, "error", err)
		}
	}

	uc.logger.Infow("checkout completed",
		"account_id", accountID,
		"plan", planSlug,
		"billing_cycle", cycle,
		"session_id", sessionID,
	)
	return state, nil
}
