package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hardhat/internal/application/entitlement/dto"
	"hardhat/internal/domain/account"
	"hardhat/internal/domain/alerting"
	"hardhat/internal/domain/catalog"
	"hardhat/internal/domain/ledger"
)

func freePlan() *catalog.Plan {
	return makePlan(1, "free", 0, 0, map[catalog.FeatureKey]catalog.Quota{
		catalog.FeatureEstimateBasic:      catalog.UnlimitedQuota(),
		catalog.FeatureContractGeneration: catalog.LimitedQuota(2),
		catalog.FeaturePropertyLookup:     catalog.LimitedQuota(0),
	})
}

func proPlan() *catalog.Plan {
	return makePlan(3, "pro", 2, 4900, map[catalog.FeatureKey]catalog.Quota{
		catalog.FeatureEstimateBasic:      catalog.UnlimitedQuota(),
		catalog.FeatureContractGeneration: catalog.UnlimitedQuota(),
		catalog.FeaturePropertyLookup:     catalog.LimitedQuota(100),
	})
}

func makeState(t *testing.T, planID uint, status account.PlanStatus) *account.PlanState {
	t.Helper()
	now := time.Now().UTC()
	period := ledger.MonthlyPeriod(now.AddDate(0, -1, 0), now)
	state, err := account.ReconstructPlanState(account.PlanStateReconstructParams{
		ID:            1,
		AccountID:     "acct_1",
		PlanID:        planID,
		Status:        status,
		BillingCycle:  account.CycleMonthly,
		BillingAnchor: period.Start,
		PeriodStart:   period.Start,
		PeriodEnd:     period.End,
		CreatedAt:     period.Start,
		UpdatedAt:     period.Start,
	})
	require.NoError(t, err)
	return state
}

func TestCanUse_UnderLimit(t *testing.T) {
	planRepo := &fakePlanRepo{plans: []*catalog.Plan{freePlan()}}
	stateRepo := &fakeStateRepo{state: makeState(t, 1, account.StatusActive)}
	usageRepo := newFakeUsageRepo()
	usageRepo.seed("acct_1", catalog.FeatureContractGeneration, makeState(t, 1, account.StatusActive).CurrentPeriod(), 1)

	uc := NewCanUseUseCase(stateRepo, planRepo, usageRepo, nil, "free", newNopLogger())

	decision, err := uc.Execute(context.Background(), "acct_1", catalog.FeatureContractGeneration)
	require.NoError(t, err)

	assert.True(t, decision.Allowed)
	assert.Equal(t, int64(1), decision.Used)
	assert.Equal(t, int64(2), decision.Limit)
	assert.Equal(t, "free", decision.PlanSlug)
	require.NotNil(t, decision.Percentage)
	assert.InDelta(t, 50.0, *decision.Percentage, 0.001)
	assert.Equal(t, alerting.TierSafe, decision.Tier)
}

func TestCanUse_AtLimitDenies(t *testing.T) {
	planRepo := &fakePlanRepo{plans: []*catalog.Plan{freePlan()}}
	state := makeState(t, 1, account.StatusActive)
	stateRepo := &fakeStateRepo{state: state}
	usageRepo := newFakeUsageRepo()
	usageRepo.seed("acct_1", catalog.FeatureContractGeneration, state.CurrentPeriod(), 2)

	uc := NewCanUseUseCase(stateRepo, planRepo, usageRepo, nil, "free", newNopLogger())

	decision, err := uc.Execute(context.Background(), "acct_1", catalog.FeatureContractGeneration)
	require.NoError(t, err)

	assert.False(t, decision.Allowed)
	assert.Equal(t, dto.ReasonQuotaExceeded, decision.Reason)
	assert.Equal(t, int64(2), decision.Used)
	assert.Equal(t, alerting.TierCritical, decision.Tier)
}

func TestCanUse_DisabledFeatureDeniesRegardlessOfUsage(t *testing.T) {
	planRepo := &fakePlanRepo{plans: []*catalog.Plan{freePlan()}}
	stateRepo := &fakeStateRepo{state: makeState(t, 1, account.StatusActive)}

	uc := NewCanUseUseCase(stateRepo, planRepo, newFakeUsageRepo(), nil, "free", newNopLogger())

	decision, err := uc.Execute(context.Background(), "acct_1", catalog.FeaturePropertyLookup)
	require.NoError(t, err)

	assert.False(t, decision.Allowed)
	assert.Equal(t, dto.ReasonFeatureNotInPlan, decision.Reason)
}

func TestCanUse_FeatureAbsentFromPlanDenies(t *testing.T) {
	planRepo := &fakePlanRepo{plans: []*catalog.Plan{freePlan()}}
	stateRepo := &fakeStateRepo{state: makeState(t, 1, account.StatusActive)}

	uc := NewCanUseUseCase(stateRepo, planRepo, newFakeUsageRepo(), nil, "free", newNopLogger())

	decision, err := uc.Execute(context.Background(), "acct_1", catalog.FeatureEstimateAI)
	require.NoError(t, err)

	assert.False(t, decision.Allowed)
	assert.Equal(t, dto.ReasonFeatureNotInPlan, decision.Reason)
}

func TestCanUse_UnlimitedHasNoPercentage(t *testing.T) {
	planRepo := &fakePlanRepo{plans: []*catalog.Plan{proPlan()}}
	state := makeState(t, 3, account.StatusActive)
	stateRepo := &fakeStateRepo{state: state}
	usageRepo := newFakeUsageRepo()
	usageRepo.seed("acct_1", catalog.FeatureContractGeneration, state.CurrentPeriod(), 9000)

	uc := NewCanUseUseCase(stateRepo, planRepo, usageRepo, nil, "free", newNopLogger())

	decision, err := uc.Execute(context.Background(), "acct_1", catalog.FeatureContractGeneration)
	require.NoError(t, err)

	assert.True(t, decision.Allowed)
	assert.True(t, decision.Unlimited)
	assert.Nil(t, decision.Percentage)
	assert.Equal(t, alerting.TierSafe, decision.Tier)
	assert.Equal(t, int64(9000), decision.Used)
}

func TestCanUse_TierEntersWarningBand(t *testing.T) {
	planRepo := &fakePlanRepo{plans: []*catalog.Plan{proPlan()}}
	state := makeState(t, 3, account.StatusActive)
	stateRepo := &fakeStateRepo{state: state}
	usageRepo := newFakeUsageRepo()
	usageRepo.seed("acct_1", catalog.FeaturePropertyLookup, state.CurrentPeriod(), 75)

	uc := NewCanUseUseCase(stateRepo, planRepo, usageRepo, nil, "free", newNopLogger())

	decision, err := uc.Execute(context.Background(), "acct_1", catalog.FeaturePropertyLookup)
	require.NoError(t, err)

	assert.True(t, decision.Allowed)
	assert.Equal(t, alerting.TierWarning, decision.Tier)
	require.NotNil(t, decision.Percentage)
	assert.InDelta(t, 75.0, *decision.Percentage, 0.001)
}

func TestCanUse_MissingStateFallsBackToDefaultPlan(t *testing.T) {
	planRepo := &fakePlanRepo{plans: []*catalog.Plan{freePlan()}}
	stateRepo := &fakeStateRepo{state: nil}

	uc := NewCanUseUseCase(stateRepo, planRepo, newFakeUsageRepo(), nil, "free", newNopLogger())

	decision, err := uc.Execute(context.Background(), "acct_unknown", catalog.FeatureEstimateBasic)
	require.NoError(t, err)

	assert.True(t, decision.Allowed)
	assert.Equal(t, "free", decision.PlanSlug)
	assert.Equal(t, ledger.CalendarMonthPeriod(time.Now().UTC()).ID(), decision.PeriodID)
}

func TestCanUse_MissingDefaultPlanFails(t *testing.T) {
	planRepo := &fakePlanRepo{}
	stateRepo := &fakeStateRepo{state: nil}

	uc := NewCanUseUseCase(stateRepo, planRepo, newFakeUsageRepo(), nil, "free", newNopLogger())

	_, err := uc.Execute(context.Background(), "acct_1", catalog.FeatureEstimateBasic)
	assert.ErrorIs(t, err, catalog.ErrPlanNotFound)
}

func TestCanUse_CachesSnapshotAfterResolve(t *testing.T) {
	planRepo := &fakePlanRepo{plans: []*catalog.Plan{freePlan()}}
	stateRepo := &fakeStateRepo{state: makeState(t, 1, account.StatusActive)}
	cache := newFakeCache()

	uc := NewCanUseUseCase(stateRepo, planRepo, newFakeUsageRepo(), cache, "free", newNopLogger())

	_, err := uc.Execute(context.Background(), "acct_1", catalog.FeatureEstimateBasic)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// Second call is served from the snapshot.
	stateRepo.getErr = assert.AnError
	_, err = uc.Execute(context.Background(), "acct_1", catalog.FeatureEstimateBasic)
	require.NoError(t, err)
}
