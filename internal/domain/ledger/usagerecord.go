// Package ledger tracks per-account, per-feature consumption counters for
// each billing period. The ledger only accounts; enforcement lives in the
// entitlement resolver.
package ledger

import (
	"errors"
	"time"

	"hardhat/internal/domain/catalog"
)

var (
	ErrEmptyAccountID = errors.New("account ID cannot be empty")
	ErrEmptyPeriodID  = errors.New("period ID cannot be empty")
)

// UsageRecord is the consumption counter for one (account, feature, period)
// key. At most one record exists per key; the count never decreases within a
// period.
type UsageRecord struct {
	id          uint
	accountID   string
	feature     catalog.FeatureKey
	periodID    string
	count       int64
	periodStart time.Time
	periodEnd   time.Time
	updatedAt   time.Time
}

func NewUsageRecord(accountID string, feature catalog.FeatureKey, period Period) (*UsageRecord, error) {
	if accountID == "" {
		return nil, ErrEmptyAccountID
	}
	if _, ok := catalog.ParseFeatureKey(string(feature)); !ok {
		return nil, errors.New("unknown feature key")
	}

	return &UsageRecord{
		accountID:   accountID,
		feature:     feature,
		periodID:    period.ID(),
		periodStart: period.Start,
		periodEnd:   period.End,
		updatedAt:   time.Now().UTC(),
	}, nil
}

// ZeroRecord is the record returned when no row exists yet; absence of usage
// is not an error.
func ZeroRecord(accountID string, feature catalog.FeatureKey, period Period) *UsageRecord {
	return &UsageRecord{
		accountID:   accountID,
		feature:     feature,
		periodID:    period.ID(),
		periodStart: period.Start,
		periodEnd:   period.End,
	}
}

func ReconstructUsageRecord(id uint, accountID string, feature catalog.FeatureKey,
	periodID string, count int64, periodStart, periodEnd, updatedAt time.Time) (*UsageRecord, error) {

	if id == 0 {
		return nil, errors.New("usage record ID cannot be zero")
	}
	if accountID == "" {
		return nil, ErrEmptyAccountID
	}
	if periodID == "" {
		return nil, ErrEmptyPeriodID
	}

	return &UsageRecord{
		id:          id,
		accountID:   accountID,
		feature:     feature,
		periodID:    periodID,
		count:       count,
		periodStart: periodStart,
		periodEnd:   periodEnd,
		updatedAt:   updatedAt,
	}, nil
}

func (r *UsageRecord) ID() uint                    { return r.id }
func (r *UsageRecord) AccountID() string           { return r.accountID }
func (r *UsageRecord) Feature() catalog.FeatureKey { return r.feature }
func (r *UsageRecord) PeriodID() string            { return r.periodID }
func (r *UsageRecord) PeriodStart() time.Time      { return r.periodStart }
func (r *UsageRecord) PeriodEnd() time.Time        { return r.periodEnd }
func (r *UsageRecord) UpdatedAt() time.Time        { return r.updatedAt }

// Count returns the stored count, clamped at zero. A negative stored value
// means corruption; callers treat it as zero and log an integrity error
// rather than surfacing it.
func (r *UsageRecord) Count() int64 {
	if r.count < 0 {
		return 0
	}
	return r.count
}

// RawCount returns the stored value without clamping, for integrity checks.
func (r *UsageRecord) RawCount() int64 {
	return r.count
}
