package ledger

import (
	"context"

	"hardhat/internal/domain/catalog"
)

// UsageRepository persists consumption counters. IncrementAndGet must be a
// single atomic add-and-return per key; concurrent increments for the same
// (account, feature, period) key are linearizable, increments for different
// keys are fully independent.
type UsageRepository interface {
	// Get returns the record for the key, or a zero record when absent.
	Get(ctx context.Context, accountID string, feature catalog.FeatureKey, period Period) (*UsageRecord, error)

	// IncrementAndGet atomically adds by to the counter, creating the row on
	// first use within the period, and returns the updated record. The
	// ledger never enforces limits here; unlimited features still record
	// usage for analytics.
	IncrementAndGet(ctx context.Context, accountID string, feature catalog.FeatureKey, period Period, by int64) (*UsageRecord, error)

	// History returns all records for an account ordered by period start
	// descending, for display and analytics. Prior periods are never
	// rewritten by rollover.
	History(ctx context.Context, accountID string, feature catalog.FeatureKey, limit int) ([]*UsageRecord, error)
}
