package usecases

import (
	"context"
	"fmt"

	"hardhat/internal/domain/account"
	"hardhat/internal/domain/catalog"
	"hardhat/internal/shared/logger"
)

type nopLogger struct{}

func newNopLogger() logger.Interface { return &nopLogger{} }

func (l *nopLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Errorw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) Fatalw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) With(args ...any) logger.Interface               { return l }
func (l *nopLogger) Named(name string) logger.Interface              { return l }

func makePlan(id uint, slug string, priceMonthly uint64) *catalog.Plan {
	plan, err := catalog.ReconstructPlan(catalog.PlanReconstructParams{
		ID:           id,
		SID:          fmt.Sprintf("plan_%d", id),
		Slug:         slug,
		Name:         slug,
		PriceMonthly: priceMonthly,
		Status:       catalog.PlanStatusActive,
		Version:      1,
	})
	if err != nil {
		panic(err)
	}
	return plan
}

type fakePlanRepo struct {
	plans []*catalog.Plan
}

func (r *fakePlanRepo) GetByID(ctx context.Context, id uint) (*catalog.Plan, error) {
	for _, p := range r.plans {
		if p.ID() == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePlanRepo) GetBySlug(ctx context.Context, slug string) (*catalog.Plan, error) {
	for _, p := range r.plans {
		if p.Slug() == slug {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePlanRepo) ListActive(ctx context.Context) ([]*catalog.Plan, error) {
	return r.plans, nil
}

func (r *fakePlanRepo) Create(ctx context.Context, plan *catalog.Plan) error { return nil }
func (r *fakePlanRepo) Retire(ctx context.Context, slug string) error        { return nil }

type fakeStateRepo struct {
	states    map[string]*account.PlanState
	updates   int
	claimLost bool
	nextID    uint
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{states: make(map[string]*account.PlanState), nextID: 1}
}

func (r *fakeStateRepo) GetByAccountID(ctx context.Context, accountID string) (*account.PlanState, error) {
	return r.states[accountID], nil
}

func (r *fakeStateRepo) Create(ctx context.Context, state *account.PlanState) error {
	if state.ID() == 0 {
		if err := state.SetID(r.nextID); err != nil {
			return err
		}
		r.nextID++
	}
	r.states[state.AccountID()] = state
	return nil
}

func (r *fakeStateRepo) Update(ctx context.Context, state *account.PlanState) error {
	r.states[state.AccountID()] = state
	r.updates++
	return nil
}

func (r *fakeStateRepo) ClaimTrial(ctx context.Context, accountID string) (bool, error) {
	if r.claimLost {
		return false, nil
	}
	state, ok := r.states[accountID]
	if !ok || state.TrialUsed() {
		return false, nil
	}
	return true, nil
}

func (r *fakeStateRepo) FindDueForRollover(ctx context.Context, limit int) ([]*account.PlanState, error) {
	var out []*account.PlanState
	for _, s := range r.states {
		out = append(out, s)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type fakeSessionRepo struct {
	seen map[string]bool
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{seen: make(map[string]bool)}
}

func (r *fakeSessionRepo) RecordOnce(ctx context.Context, sessionID, accountID string) (bool, error) {
	if r.seen[sessionID] {
		return false, nil
	}
	r.seen[sessionID] = true
	return true, nil
}

// passthroughTx runs the function without any transaction semantics.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeInvalidator struct {
	invalidated []string
}

func (c *fakeInvalidator) Invalidate(ctx context.Context, accountID string) error {
	c.invalidated = append(c.invalidated, accountID)
	return nil
}
