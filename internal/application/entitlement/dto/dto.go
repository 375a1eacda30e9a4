// Package dto defines the data transfer objects returned by entitlement use
// cases to the interface layer.
package dto

import (
	"hardhat/internal/domain/alerting"
	"hardhat/internal/domain/catalog"
)

// DenyReason explains a negative decision so the caller can offer the
// correct remediation instead of a generic access denied.
type DenyReason string

const (
	ReasonQuotaExceeded    DenyReason = "quota_exceeded"
	ReasonFeatureNotInPlan DenyReason = "feature_not_in_plan"
)

// Decision is the resolved entitlement for one (account, feature) pair.
// Percentage is nil for unlimited quotas (N/A); Tier is the threshold band
// for the same figures, so clients can render warning states without
// reimplementing the cutoffs.
type Decision struct {
	Feature    catalog.FeatureKey `json:"feature"`
	Allowed    bool               `json:"allowed"`
	Used       int64              `json:"used"`
	Limit      int64              `json:"limit"`
	Unlimited  bool               `json:"unlimited"`
	Percentage *float64           `json:"percentage,omitempty"`
	Tier       alerting.Tier      `json:"tier"`
	Reason     DenyReason         `json:"reason,omitempty"`
	PlanSlug   string             `json:"plan_slug"`
	PeriodID   string             `json:"period_id"`
}

// UpgradeAction is the remediation chosen for a denied action.
type UpgradeAction string

const (
	ActionOfferTrial   UpgradeAction = "offer_trial"
	ActionPaidCheckout UpgradeAction = "paid_checkout"
)

// UpgradePath tells the UI what to offer after a denial.
type UpgradePath struct {
	Action          UpgradeAction `json:"action"`
	RecommendedPlan string        `json:"recommended_plan,omitempty"`
}

// PlanStateDTO is the external view of an account's plan state.
type PlanStateDTO struct {
	AccountID    string `json:"account_id"`
	PlanSlug     string `json:"plan_slug"`
	PlanName     string `json:"plan_name"`
	Status       string `json:"status"`
	TrialUsed    bool   `json:"trial_used"`
	BillingCycle string `json:"billing_cycle"`
	PeriodStart  string `json:"period_start"`
	PeriodEnd    string `json:"period_end"`
}
