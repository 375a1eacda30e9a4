package catalog

// Quota is the per-period allowance for one feature under one plan.
// Limit 0 with Unlimited false is a valid state meaning the feature is
// disabled for the plan, so 0 cannot be used as an unlimited sentinel.
type Quota struct {
	Limit     int64
	Unlimited bool
}

// UnlimitedQuota returns a quota with no cap.
func UnlimitedQuota() Quota {
	return Quota{Unlimited: true}
}

// LimitedQuota returns a quota capped at limit. Negative limits are
// normalized to 0 (feature disabled).
func LimitedQuota(limit int64) Quota {
	if limit < 0 {
		limit = 0
	}
	return Quota{Limit: limit}
}

// Disabled reports whether the feature is switched off entirely.
func (q Quota) Disabled() bool {
	return !q.Unlimited && q.Limit == 0
}

// Allows reports whether one more use is permitted at the given count.
func (q Quota) Allows(used int64) bool {
	if q.Unlimited {
		return true
	}
	return used < q.Limit
}

// Percentage returns used/limit*100. The second return value is false for
// unlimited or disabled quotas where a percentage is not meaningful.
func (q Quota) Percentage(used int64) (float64, bool) {
	if q.Unlimited || q.Limit == 0 {
		return 0, false
	}
	if used < 0 {
		used = 0
	}
	return float64(used) / float64(q.Limit) * 100, true
}
