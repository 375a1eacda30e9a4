// Package usecases implements the entitlement application services: the
// resolver combining plan catalog and usage ledger into access decisions,
// and the usage recording path.
package usecases

import (
	"context"
	"fmt"
	"time"

	"hardhat/internal/domain/account"
	"hardhat/internal/domain/catalog"
	"hardhat/internal/domain/ledger"
	"hardhat/internal/shared/logger"
)

// PlanStateSnapshot is the cached subset of plan state the resolver needs.
type PlanStateSnapshot struct {
	PlanID      uint
	Status      account.PlanStatus
	TrialUsed   bool
	PeriodStart time.Time
	PeriodEnd   time.Time
	// Missing marks a confirmed no-state account (null marker), preventing
	// repeated DB lookups for accounts on the default plan.
	Missing bool
}

// PlanStateCache is a read-through cache over plan state resolution.
// Implementations return nil, nil on cache miss.
type PlanStateCache interface {
	Get(ctx context.Context, accountID string) (*PlanStateSnapshot, error)
	Set(ctx context.Context, accountID string, snap *PlanStateSnapshot) error
	Invalidate(ctx context.Context, accountID string) error
}

// planContext is the resolved (state, plan, period) triple every entitlement
// operation starts from.
type planContext struct {
	state  *account.PlanState // nil when the account has no recorded state
	plan   *catalog.Plan
	period ledger.Period
}

// resolver loads plan context for an account, recovering from missing state
// by falling back to the configured default free plan.
type resolver struct {
	stateRepo       account.PlanStateRepository
	planRepo        catalog.PlanRepository
	cache           PlanStateCache
	defaultPlanSlug string
	logger          logger.Interface
}

func newResolver(
	stateRepo account.PlanStateRepository,
	planRepo catalog.PlanRepository,
	cache PlanStateCache,
	defaultPlanSlug string,
	logger logger.Interface,
) *resolver {
	return &resolver{
		stateRepo:       stateRepo,
		planRepo:        planRepo,
		cache:           cache,
		defaultPlanSlug: defaultPlanSlug,
		logger:          logger,
	}
}

func (r *resolver) resolve(ctx context.Context, accountID string, now time.Time) (*planContext, error) {
	if snap := r.cachedSnapshot(ctx, accountID); snap != nil {
		if pc, err := r.contextFromSnapshot(ctx, accountID, snap, now); err == nil {
			return pc, nil
		}
		// Fall through to the DB on any snapshot resolution problem.
	}

	state, err := r.stateRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan state: %w", err)
	}

	pc, err := r.contextFromState(ctx, accountID, state, now)
	if err != nil {
		return nil, err
	}

	r.storeSnapshot(ctx, accountID, state)
	return pc, nil
}

func (r *resolver) contextFromState(ctx context.Context, accountID string, state *account.PlanState, now time.Time) (*planContext, error) {
	if state == nil {
		// Missing state is an integrity condition, not a caller error:
		// recover with the default free plan and a calendar-month window.
		r.logger.Warnw("no plan state for account, falling back to default plan",
			"account_id", accountID,
			"default_plan", r.defaultPlanSlug,
		)
		plan, err := r.planRepo.GetBySlug(ctx, r.defaultPlanSlug)
		if err != nil {
			return nil, err
		}
		if plan == nil {
			return nil, fmt.Errorf("default plan %q: %w", r.defaultPlanSlug, catalog.ErrPlanNotFound)
		}
		return &planContext{plan: plan, period: ledger.CalendarMonthPeriod(now)}, nil
	}

	plan, err := r.planRepo.GetByID(ctx, state.PlanID())
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("plan id %d for account %s: %w", state.PlanID(), accountID, catalog.ErrPlanNotFound)
	}

	return &planContext{state: state, plan: plan, period: state.CurrentPeriod()}, nil
}

func (r *resolver) contextFromSnapshot(ctx context.Context, accountID string, snap *PlanStateSnapshot, now time.Time) (*planContext, error) {
	if snap.Missing {
		plan, err := r.planRepo.GetBySlug(ctx, r.defaultPlanSlug)
		if err != nil || plan == nil {
			return nil, catalog.ErrPlanNotFound
		}
		return &planContext{plan: plan, period: ledger.CalendarMonthPeriod(now)}, nil
	}
	if !now.Before(snap.PeriodEnd) {
		// Stale window: the rollover has not been applied to the cache yet.
		return nil, fmt.Errorf("stale plan state snapshot for account %s", accountID)
	}
	plan, err := r.planRepo.GetByID(ctx, snap.PlanID)
	if err != nil || plan == nil {
		return nil, catalog.ErrPlanNotFound
	}
	return &planContext{plan: plan, period: ledger.Period{Start: snap.PeriodStart, End: snap.PeriodEnd}}, nil
}

func (r *resolver) cachedSnapshot(ctx context.Context, accountID string) *PlanStateSnapshot {
	if r.cache == nil {
		return nil
	}
	snap, err := r.cache.Get(ctx, accountID)
	if err != nil {
		r.logger.Debugw("plan state cache read failed", "account_id", accountID, "error", err)
		return nil
	}
	return snap
}

func (r *resolver) storeSnapshot(ctx context.Context, accountID string, state *account.PlanState) {
	if r.cache == nil {
		return
	}
	snap := &PlanStateSnapshot{Missing: true}
	if state != nil {
		snap = &PlanStateSnapshot{
			PlanID:      state.PlanID(),
			Status:      state.Status(),
			TrialUsed:   state.TrialUsed(),
			PeriodStart: state.PeriodStart(),
			PeriodEnd:   state.PeriodEnd(),
		}
	}
	if err := r.cache.Set(ctx, accountID, snap); err != nil {
		r.logger.Debugw("plan state cache write failed", "account_id", accountID, "error", err)
	}
}
