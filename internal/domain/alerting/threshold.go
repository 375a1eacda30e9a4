// Package alerting derives usage threshold tiers from resolved entitlement
// figures and guarantees at most one notification per threshold per period.
package alerting

import "hardhat/internal/domain/catalog"

// Tier is the severity band for a usage percentage.
type Tier string

const (
	TierSafe     Tier = "safe"
	TierWarning  Tier = "warning"
	TierCritical Tier = "critical"
)

const (
	warningThreshold  = 70.0
	criticalThreshold = 90.0
)

func (t Tier) String() string {
	return string(t)
}

// Alertable reports whether the tier warrants a notification.
func (t Tier) Alertable() bool {
	return t == TierWarning || t == TierCritical
}

// TierForPercentage maps a usage percentage onto its severity band:
// safe < 70 <= warning < 90 <= critical.
func TierForPercentage(percentage float64) Tier {
	switch {
	case percentage >= criticalThreshold:
		return TierCritical
	case percentage >= warningThreshold:
		return TierWarning
	default:
		return TierSafe
	}
}

// TierForUsage derives the tier for a quota at a given count. Unlimited and
// disabled quotas have no percentage and are always safe.
func TierForUsage(quota catalog.Quota, used int64) Tier {
	pct, ok := quota.Percentage(used)
	if !ok {
		return TierSafe
	}
	return TierForPercentage(pct)
}

// Alert is the payload handed to the notification layer. This service does
// not format or deliver user-facing notifications.
type Alert struct {
	AccountID       string             `json:"account_id"`
	Feature         catalog.FeatureKey `json:"feature"`
	Level           Tier               `json:"level"`
	Percentage      float64            `json:"percentage"`
	Used            int64              `json:"used"`
	Limit           int64              `json:"limit"`
	SuggestedAction string             `json:"suggested_action"`
}
