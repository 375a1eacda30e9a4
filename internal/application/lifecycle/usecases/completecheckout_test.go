package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hardhat/internal/domain/account"
	"hardhat/internal/domain/catalog"
)

func TestCompleteCheckout_ActivatesPlan(t *testing.T) {
	planRepo, stateRepo := trialTestRepos()
	cache := &fakeInvalidator{}

	uc := NewCompleteCheckoutUseCase(stateRepo, newFakeSessionRepo(), planRepo, cache, passthroughTx{}, "free", newNopLogger())

	state, err := uc.Execute(context.Background(), "acct_1", "pro", account.CycleMonthly, "cs_123")
	require.NoError(t, err)

	assert.Equal(t, account.StatusActive, state.Status())
	assert.Equal(t, uint(3), state.PlanID())
	assert.Equal(t, account.CycleMonthly, state.BillingCycle())
	assert.Contains(t, cache.invalidated, "acct_1")
}

func TestCompleteCheckout_DuplicateDeliveryIsIdempotent(t *testing.T) {
	planRepo, stateRepo := trialTestRepos()
	sessionRepo := newFakeSessionRepo()

	uc := NewCompleteCheckoutUseCase(stateRepo, sessionRepo, planRepo, nil, passthroughTx{}, "free", newNopLogger())

	first, err := uc.Execute(context.Background(), "acct_1", "pro", account.CycleYearly, "cs_123")
	require.NoError(t, err)
	updatesAfterFirst := stateRepo.updates

	second, err := uc.Execute(context.Background(), "acct_1", "pro", account.CycleYearly, "cs_123")
	require.NoError(t, err)

	assert.Equal(t, first.PlanID(), second.PlanID())
	assert.Equal(t, first.PeriodEnd(), second.PeriodEnd())
	assert.Equal(t, updatesAfterFirst, stateRepo.updates, "duplicate must not write state")
}

func TestCompleteCheckout_UpgradeFromTrial(t *testing.T) {
	planRepo, stateRepo := trialTestRepos()

	trialUC := NewActivateTrialUseCase(stateRepo, planRepo, nil, "trial", "free", 14, newNopLogger())
	_, err := trialUC.Execute(context.Background(), "acct_1")
	require.NoError(t, err)

	uc := NewCompleteCheckoutUseCase(stateRepo, newFakeSessionRepo(), planRepo, nil, passthroughTx{}, "free", newNopLogger())

	state, err := uc.Execute(context.Background(), "acct_1", "pro", account.CycleMonthly, "cs_456")
	require.NoError(t, err)

	assert.Equal(t, account.StatusActive, state.Status())
	assert.Equal(t, uint(3), state.PlanID())
	// Buying a plan never resets the one-shot trial flag.
	assert.True(t, state.TrialUsed())
}

func TestCompleteCheckout_RejectsMissingSessionID(t *testing.T) {
	planRepo, stateRepo := trialTestRepos()

	uc := NewCompleteCheckoutUseCase(stateRepo, newFakeSessionRepo(), planRepo, nil, passthroughTx{}, "free", newNopLogger())

	_, err := uc.Execute(context.Background(), "acct_1", "pro", account.CycleMonthly, "")
	assert.Error(t, err)
}

func TestCompleteCheckout_UnknownPlan(t *testing.T) {
	planRepo, stateRepo := trialTestRepos()

	uc := NewCompleteCheckoutUseCase(stateRepo, newFakeSessionRepo(), planRepo, nil, passthroughTx{}, "free", newNopLogger())

	_, err := uc.Execute(context.Background(), "acct_1", "enterprise", account.CycleMonthly, "cs_789")
	assert.ErrorIs(t, err, catalog.ErrPlanNotFound)
}
