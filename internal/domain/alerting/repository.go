package alerting

import (
	"context"
	"time"

	"hardhat/internal/domain/catalog"
)

// SuppressionRepository persists which (account, feature, level, period)
// alerts have already been shown, so polling-based evaluation emits a given
// threshold crossing exactly once per period and the result is consistent
// across devices and sessions.
type SuppressionRepository interface {
	// WasShown reports whether the alert was already emitted this period.
	WasShown(ctx context.Context, accountID string, feature catalog.FeatureKey, level Tier, periodID string) (bool, error)

	// Claim atomically records the alert as shown and reports whether this
	// caller was first. Concurrent pollers race on a unique key; exactly one
	// receives true.
	Claim(ctx context.Context, accountID string, feature catalog.FeatureKey, level Tier, periodID string) (bool, error)

	// PruneBefore removes suppression rows for periods that started before
	// the cutoff. Old rows are inert (period ID scopes them); this is
	// housekeeping only.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Notifier receives alert payloads for delivery. Implementations must not be
// called while holding any lock; delivery failures are logged, never
// propagated to the entitlement caller.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}
