package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlan(t *testing.T) *Plan {
	t.Helper()
	plan, err := NewPlan("plan_abc123", "pro", "Pro", "For pros", 2, map[FeatureKey]Quota{
		FeatureEstimateBasic:      UnlimitedQuota(),
		FeatureContractGeneration: LimitedQuota(10),
		FeaturePropertyLookup:     LimitedQuota(0),
	})
	require.NoError(t, err)
	return plan
}

func TestNewPlan_Validation(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		title   string
		rank    int
		quotas  map[FeatureKey]Quota
		wantErr string
	}{
		{name: "missing slug", slug: "", title: "Pro", wantErr: "plan slug is required"},
		{name: "missing name", slug: "pro", title: "", wantErr: "plan name is required"},
		{name: "negative tier rank", slug: "pro", title: "Pro", rank: -1, wantErr: "tier rank cannot be negative"},
		{
			name: "unknown feature key", slug: "pro", title: "Pro",
			quotas:  map[FeatureKey]Quota{FeatureKey("bogus"): LimitedQuota(1)},
			wantErr: "unknown feature key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlan("plan_x", tt.slug, tt.title, "", tt.rank, tt.quotas)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewPlan_Defaults(t *testing.T) {
	plan := newTestPlan(t)

	assert.Equal(t, 1, plan.Version())
	assert.Equal(t, PlanStatusActive, plan.Status())
	assert.True(t, plan.IsActive())
	assert.True(t, plan.IsFree())
}

func TestPlan_QuotaFor(t *testing.T) {
	plan := newTestPlan(t)

	q, ok := plan.QuotaFor(FeatureContractGeneration)
	assert.True(t, ok)
	assert.Equal(t, int64(10), q.Limit)

	q, ok = plan.QuotaFor(FeaturePropertyLookup)
	assert.True(t, ok)
	assert.True(t, q.Disabled())

	_, ok = plan.QuotaFor(FeatureEstimateAI)
	assert.False(t, ok)
}

func TestPlan_Retire(t *testing.T) {
	plan := newTestPlan(t)

	plan.Retire()
	assert.Equal(t, PlanStatusRetired, plan.Status())
	assert.False(t, plan.IsActive())

	// Retiring twice is a no-op.
	plan.Retire()
	assert.Equal(t, PlanStatusRetired, plan.Status())
}

func TestPlan_NextVersion(t *testing.T) {
	plan := newTestPlan(t)
	plan.SetTrialEligible(true)
	plan.SetPricing(4900, 49900)

	next, err := plan.NextVersion(map[FeatureKey]Quota{
		FeatureContractGeneration: LimitedQuota(20),
	}, "plan_def456")
	require.NoError(t, err)

	assert.Equal(t, plan.Slug(), next.Slug())
	assert.Equal(t, 2, next.Version())
	assert.Equal(t, PlanStatusActive, next.Status())
	assert.True(t, next.TrialEligible())
	assert.Equal(t, uint64(4900), next.PriceMonthly())
	assert.Equal(t, uint64(49900), next.PriceYearly())

	q, ok := next.QuotaFor(FeatureContractGeneration)
	assert.True(t, ok)
	assert.Equal(t, int64(20), q.Limit)

	// The predecessor's quota table is untouched.
	q, _ = plan.QuotaFor(FeatureContractGeneration)
	assert.Equal(t, int64(10), q.Limit)
}

func TestPlan_IsFree(t *testing.T) {
	plan := newTestPlan(t)
	assert.True(t, plan.IsFree())

	plan.SetPricing(100, 0)
	assert.False(t, plan.IsFree())
}

func TestReconstructPlan_RejectsInvalid(t *testing.T) {
	_, err := ReconstructPlan(PlanReconstructParams{ID: 0, Slug: "free", Status: PlanStatusActive})
	assert.Error(t, err)

	_, err = ReconstructPlan(PlanReconstructParams{ID: 1, Slug: "free", Status: PlanStatus("bogus")})
	assert.Error(t, err)
}
