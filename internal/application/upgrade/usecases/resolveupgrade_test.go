package usecases

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hardhat/internal/application/entitlement/dto"
	"hardhat/internal/domain/account"
	"hardhat/internal/domain/catalog"
	"hardhat/internal/domain/ledger"
	"hardhat/internal/shared/logger"
)

type nopLogger struct{}

func (l *nopLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Errorw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) Fatalw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) With(args ...any) logger.Interface               { return l }
func (l *nopLogger) Named(name string) logger.Interface              { return l }

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
	state *account.PlanState
}

func (r *fakeStateRepo) GetByAccountID(ctx context.Context, accountID string) (*account.PlanState, error) {
	return r.state, nil
}
func (r *fakeStateRepo) Create(ctx context.Context, state *account.PlanState) error { return nil }
func (r *fakeStateRepo) Update(ctx context.Context, state *account.PlanState) error { return nil }
func (r *fakeStateRepo) ClaimTrial(ctx context.Context, accountID string) (bool, error) {
	return false, nil
}
func (r *fakeStateRepo) FindDueForRollover(ctx context.Context, limit int) ([]*account.PlanState, error) {
	return nil, nil
}

func makePlan(id uint, slug string, rank int, priceMonthly uint64) *catalog.Plan {
	plan, err := catalog.ReconstructPlan(catalog.PlanReconstructParams{
		ID:           id,
		SID:          fmt.Sprintf("plan_%d", id),
		Slug:         slug,
		Name:         slug,
		TierRank:     rank,
		PriceMonthly: priceMonthly,
		Status:       catalog.PlanStatusActive,
		Version:      1,
	})
	if err != nil {
		panic(err)
	}
	return plan
}

func makeState(t *testing.T, planID uint, trialUsed bool) *account.PlanState {
	t.Helper()
	now := time.Now().UTC()
	period := ledger.MonthlyPeriod(now, now)
	state, err := account.ReconstructPlanState(account.PlanStateReconstructParams{
		ID:            1,
		AccountID:     "acct_1",
		PlanID:        planID,
		Status:        account.StatusActive,
		TrialUsed:     trialUsed,
		BillingCycle:  account.CycleMonthly,
		BillingAnchor: now,
		PeriodStart:   period.Start,
		PeriodEnd:     period.End,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	require.NoError(t, err)
	return state
}

func catalogPlans() []*catalog.Plan {
	return []*catalog.Plan{
		makePlan(1, "free", 0, 0),
		makePlan(2, "trial", 1, 0),
		makePlan(3, "pro", 2, 4900),
		makePlan(4, "business", 3, 12900),
	}
}

func TestResolveUpgrade_OffersTrialWhenUnused(t *testing.T) {
	uc := NewResolveUpgradeUseCase(
		&fakeStateRepo{state: makeState(t, 1, false)},
		&fakePlanRepo{plans: catalogPlans()},
		"trial", "free", &nopLogger{})

	path, err := uc.Execute(context.Background(), "acct_1")
	require.NoError(t, err)

	assert.Equal(t, dto.ActionOfferTrial, path.Action)
	assert.Equal(t, "trial", path.RecommendedPlan)
}

func TestResolveUpgrade_TrialUsedRoutesToCheckout(t *testing.T) {
	uc := NewResolveUpgradeUseCase(
		&fakeStateRepo{state: makeState(t, 1, true)},
		&fakePlanRepo{plans: catalogPlans()},
		"trial", "free", &nopLogger{})

	path, err := uc.Execute(context.Background(), "acct_1")
	require.NoError(t, err)

	assert.Equal(t, dto.ActionPaidCheckout, path.Action)
	assert.Equal(t, "pro", path.RecommendedPlan)
}

func TestResolveUpgrade_OnTrialPlanRoutesToCheckout(t *testing.T) {
	uc := NewResolveUpgradeUseCase(
		&fakeStateRepo{state: makeState(t, 2, true)},
		&fakePlanRepo{plans: catalogPlans()},
		"trial", "free", &nopLogger{})

	path, err := uc.Execute(context.Background(), "acct_1")
	require.NoError(t, err)

	assert.Equal(t, dto.ActionPaidCheckout, path.Action)
	assert.Equal(t, "pro", path.RecommendedPlan)
}

func TestResolveUpgrade_PaidSubscriberGetsHigherTier(t *testing.T) {
	uc := NewResolveUpgradeUseCase(
		&fakeStateRepo{state: makeState(t, 3, true)},
		&fakePlanRepo{plans: catalogPlans()},
		"trial", "free", &nopLogger{})

	path, err := uc.Execute(context.Background(), "acct_1")
	require.NoError(t, err)

	assert.Equal(t, dto.ActionPaidCheckout, path.Action)
	assert.Equal(t, "business", path.RecommendedPlan)
}

func TestResolveUpgrade_NoStateOffersTrial(t *testing.T) {
	uc := NewResolveUpgradeUseCase(
		&fakeStateRepo{},
		&fakePlanRepo{plans: catalogPlans()},
		"trial", "free", &nopLogger{})

	path, err := uc.Execute(context.Background(), "acct_unknown")
	require.NoError(t, err)

	assert.Equal(t, dto.ActionOfferTrial, path.Action)
}

func TestResolveUpgrade_TopTierStaysOnCheckout(t *testing.T) {
	uc := NewResolveUpgradeUseCase(
		&fakeStateRepo{state: makeState(t, 4, true)},
		&fakePlanRepo{plans: catalogPlans()},
		"trial", "free", &nopLogger{})

	path, err := uc.Execute(context.Background(), "acct_1")
	require.NoError(t, err)

	assert.Equal(t, dto.ActionPaidCheckout, path.Action)
	assert.NotEmpty(t, path.RecommendedPlan)
}
