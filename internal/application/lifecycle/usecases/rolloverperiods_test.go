package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hardhat/internal/domain/account"
	"hardhat/internal/domain/ledger"
)

func pastState(t *testing.T, accountID string, planID uint, status account.PlanStatus, monthsAgo int) *account.PlanState {
	t.Helper()
	// Day-based arithmetic keeps the elapsed window unambiguous regardless of
	// month-length clamping around the current date.
	anchor := time.Now().UTC().AddDate(0, 0, -35*monthsAgo)
	period := ledger.MonthlyPeriod(anchor, anchor)
	state, err := account.ReconstructPlanState(account.PlanStateReconstructParams{
		ID:            1,
		AccountID:     accountID,
		PlanID:        planID,
		Status:        status,
		TrialUsed:     status == account.StatusTrialing,
		BillingCycle:  account.CycleMonthly,
		BillingAnchor: anchor,
		PeriodStart:   period.Start,
		PeriodEnd:     period.End,
		CreatedAt:     anchor,
		UpdatedAt:     anchor,
	})
	require.NoError(t, err)
	return state
}

func TestRollover_AdvancesElapsedActiveAccount(t *testing.T) {
	planRepo, stateRepo := trialTestRepos()
	state := pastState(t, "acct_1", 3, account.StatusActive, 2)
	stateRepo.states["acct_1"] = state
	cache := &fakeInvalidator{}

	uc := NewRolloverPeriodsUseCase(stateRepo, planRepo, cache, "free", newNopLogger())

	rolled, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, rolled)
	assert.True(t, state.CurrentPeriod().Contains(time.Now().UTC()))
	assert.Equal(t, uint(3), state.PlanID(), "plan unchanged by rollover")
	assert.Contains(t, cache.invalidated, "acct_1")
}

func TestRollover_ExpiresElapsedTrial(t *testing.T) {
	planRepo, stateRepo := trialTestRepos()
	state := pastState(t, "acct_1", 2, account.StatusTrialing, 1)
	stateRepo.states["acct_1"] = state

	uc := NewRolloverPeriodsUseCase(stateRepo, planRepo, nil, "free", newNopLogger())

	rolled, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, rolled)
	assert.Equal(t, account.StatusExpired, state.Status())
	assert.Equal(t, uint(1), state.PlanID(), "demoted to the free plan")
	assert.True(t, state.TrialUsed())
}

func TestRollover_SecondPassIsIdempotent(t *testing.T) {
	planRepo, stateRepo := trialTestRepos()
	stateRepo.states["acct_1"] = pastState(t, "acct_1", 3, account.StatusActive, 2)

	uc := NewRolloverPeriodsUseCase(stateRepo, planRepo, nil, "free", newNopLogger())

	rolled, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rolled)

	rolled, err = uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, rolled, "already-rolled account must be skipped")
}

func TestRollover_SkipsCanceledAccounts(t *testing.T) {
	planRepo, stateRepo := trialTestRepos()
	state := pastState(t, "acct_1", 3, account.StatusCanceled, 2)
	stateRepo.states["acct_1"] = state
	before := state.CurrentPeriod().ID()

	uc := NewRolloverPeriodsUseCase(stateRepo, planRepo, nil, "free", newNopLogger())

	rolled, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, rolled)
	assert.Equal(t, before, state.CurrentPeriod().ID())
}

func TestRollover_NoDueAccounts(t *testing.T) {
	planRepo, stateRepo := trialTestRepos()

	uc := NewRolloverPeriodsUseCase(stateRepo, planRepo, nil, "free", newNopLogger())

	rolled, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rolled)
}
