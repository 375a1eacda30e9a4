package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitedQuota_NormalizesNegative(t *testing.T) {
	q := LimitedQuota(-5)

	assert.Equal(t, int64(0), q.Limit)
	assert.False(t, q.Unlimited)
	assert.True(t, q.Disabled())
}

func TestQuota_Disabled(t *testing.T) {
	assert.True(t, LimitedQuota(0).Disabled())
	assert.False(t, LimitedQuota(1).Disabled())
	assert.False(t, UnlimitedQuota().Disabled())
}

func TestQuota_Allows(t *testing.T) {
	tests := []struct {
		name  string
		quota Quota
		used  int64
		want  bool
	}{
		{name: "under limit", quota: LimitedQuota(5), used: 4, want: true},
		{name: "at limit", quota: LimitedQuota(5), used: 5, want: false},
		{name: "over limit", quota: LimitedQuota(5), used: 6, want: false},
		{name: "disabled denies at zero usage", quota: LimitedQuota(0), used: 0, want: false},
		{name: "unlimited always allows", quota: UnlimitedQuota(), used: 1 << 40, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.quota.Allows(tt.used))
		})
	}
}

func TestQuota_Percentage(t *testing.T) {
	pct, ok := LimitedQuota(10).Percentage(7)
	assert.True(t, ok)
	assert.InDelta(t, 70.0, pct, 0.001)

	pct, ok = LimitedQuota(10).Percentage(15)
	assert.True(t, ok)
	assert.InDelta(t, 150.0, pct, 0.001)

	// Negative counts are treated as zero consumption.
	pct, ok = LimitedQuota(10).Percentage(-3)
	assert.True(t, ok)
	assert.Zero(t, pct)

	_, ok = UnlimitedQuota().Percentage(100)
	assert.False(t, ok)

	_, ok = LimitedQuota(0).Percentage(0)
	assert.False(t, ok)
}
