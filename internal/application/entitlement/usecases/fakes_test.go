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

type nopLogger struct{}

func newNopLogger() logger.Interface { return &nopLogger{} }

func (l *nopLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Errorw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) Fatalw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) With(args ...any) logger.Interface               { return l }
func (l *nopLogger) Named(name string) logger.Interface              { return l }

func makePlan(id uint, slug string, rank int, priceMonthly uint64, quotas map[catalog.FeatureKey]catalog.Quota) *catalog.Plan {
	plan, err := catalog.ReconstructPlan(catalog.PlanReconstructParams{
		ID:           id,
		SID:          fmt.Sprintf("plan_%d", id),
		Slug:         slug,
		Name:         slug,
		TierRank:     rank,
		Quotas:       quotas,
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
	err   error
}

func (r *fakePlanRepo) GetByID(ctx context.Context, id uint) (*catalog.Plan, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, p := range r.plans {
		if p.ID() == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePlanRepo) GetBySlug(ctx context.Context, slug string) (*catalog.Plan, error) {
	if r.err != nil {
		return nil, r.err
	}
	var found *catalog.Plan
	for _, p := range r.plans {
		if p.Slug() == slug && (found == nil || p.Version() > found.Version()) {
			found = p
		}
	}
	return found, nil
}

func (r *fakePlanRepo) ListActive(ctx context.Context) ([]*catalog.Plan, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*catalog.Plan
	for _, p := range r.plans {
		if p.IsActive() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) Create(ctx context.Context, plan *catalog.Plan) error {
	if plan.ID() == 0 {
		if err := plan.SetID(uint(len(r.plans) + 1)); err != nil {
			return err
		}
	}
	r.plans = append(r.plans, plan)
	return nil
}

func (r *fakePlanRepo) Retire(ctx context.Context, slug string) error {
	retired := false
	for _, p := range r.plans {
		if p.Slug() == slug {
			p.Retire()
			retired = true
		}
	}
	if !retired {
		return catalog.ErrPlanNotFound
	}
	return nil
}

type fakeStateRepo struct {
	state       *account.PlanState
	getErr      error
	updates     int
	claimDenied bool
}

func (r *fakeStateRepo) GetByAccountID(ctx context.Context, accountID string) (*account.PlanState, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.state, nil
}

func (r *fakeStateRepo) Create(ctx context.Context, state *account.PlanState) error {
	if state.ID() == 0 {
		if err := state.SetID(1); err != nil {
			return err
		}
	}
	r.state = state
	return nil
}

func (r *fakeStateRepo) Update(ctx context.Context, state *account.PlanState) error {
	r.state = state
	r.updates++
	return nil
}

func (r *fakeStateRepo) ClaimTrial(ctx context.Context, accountID string) (bool, error) {
	if r.claimDenied {
		return false, nil
	}
	r.claimDenied = true
	return true, nil
}

func (r *fakeStateRepo) FindDueForRollover(ctx context.Context, limit int) ([]*account.PlanState, error) {
	if r.state == nil {
		return nil, nil
	}
	return []*account.PlanState{r.state}, nil
}

type fakeUsageRepo struct {
	counts map[string]int64
	err    error
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{counts: make(map[string]int64)}
}

func usageKey(accountID string, feature catalog.FeatureKey, periodID string) string {
	return accountID + "/" + string(feature) + "/" + periodID
}

func (r *fakeUsageRepo) seed(accountID string, feature catalog.FeatureKey, period ledger.Period, count int64) {
	r.counts[usageKey(accountID, feature, period.ID())] = count
}

func (r *fakeUsageRepo) Get(ctx context.Context, accountID string, feature catalog.FeatureKey, period ledger.Period) (*ledger.UsageRecord, error) {
	if r.err != nil {
		return nil, r.err
	}
	count, ok := r.counts[usageKey(accountID, feature, period.ID())]
	if !ok {
		return ledger.ZeroRecord(accountID, feature, period), nil
	}
	return ledger.ReconstructUsageRecord(1, accountID, feature, period.ID(), count,
		period.Start, period.End, time.Now().UTC())
}

func (r *fakeUsageRepo) IncrementAndGet(ctx context.Context, accountID string, feature catalog.FeatureKey, period ledger.Period, by int64) (*ledger.UsageRecord, error) {
	if r.err != nil {
		return nil, r.err
	}
	key := usageKey(accountID, feature, period.ID())
	r.counts[key] += by
	return ledger.ReconstructUsageRecord(1, accountID, feature, period.ID(), r.counts[key],
		period.Start, period.End, time.Now().UTC())
}

func (r *fakeUsageRepo) History(ctx context.Context, accountID string, feature catalog.FeatureKey, limit int) ([]*ledger.UsageRecord, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*ledger.UsageRecord
	for key, count := range r.counts {
		periodID := key[len(accountID)+len(feature)+2:]
		start, err := ledger.ParsePeriodID(periodID)
		if err != nil {
			continue
		}
		rec, err := ledger.ReconstructUsageRecord(uint(len(out)+1), accountID, feature, periodID,
			count, start, start.AddDate(0, 1, 0), time.Now().UTC())
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

type fakeCache struct {
	snaps       map[string]*PlanStateSnapshot
	gets        int
	sets        int
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{snaps: make(map[string]*PlanStateSnapshot)}
}

func (c *fakeCache) Get(ctx context.Context, accountID string) (*PlanStateSnapshot, error) {
	c.gets++
	return c.snaps[accountID], nil
}

func (c *fakeCache) Set(ctx context.Context, accountID string, snap *PlanStateSnapshot) error {
	c.sets++
	c.snaps[accountID] = snap
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, accountID string) error {
	delete(c.snaps, accountID)
	c.invalidated = append(c.invalidated, accountID)
	return nil
}

type fakeEvaluator struct {
	calls []struct {
		Feature catalog.FeatureKey
		Used    int64
	}
}

func (e *fakeEvaluator) Evaluate(ctx context.Context, accountID string, feature catalog.FeatureKey, quota catalog.Quota, used int64, periodID string) {
	e.calls = append(e.calls, struct {
		Feature catalog.FeatureKey
		Used    int64
	}{feature, used})
}
