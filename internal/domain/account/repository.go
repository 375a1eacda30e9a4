package account

import "context"

// PlanStateRepository persists account plan state. ClaimTrial is the one
// write that must be linearizable: the conditional update on the trial flag
// decides concurrent activation races.
type PlanStateRepository interface {
	// GetByAccountID returns nil (not an error) when no state exists; a
	// missing row resolves to the default free plan upstream.
	GetByAccountID(ctx context.Context, accountID string) (*PlanState, error)

	Create(ctx context.Context, state *PlanState) error
	Update(ctx context.Context, state *PlanState) error

	// ClaimTrial performs the conditional flag flip (trial_used false→true)
	// in a single statement and reports whether this caller won the claim.
	// Losers receive false, nil; the caller maps that to ErrTrialAlreadyUsed.
	ClaimTrial(ctx context.Context, accountID string) (bool, error)

	// FindDueForRollover returns states whose period has elapsed, for the
	// scheduled rollover batch.
	FindDueForRollover(ctx context.Context, limit int) ([]*PlanState, error)
}

// CheckoutSessionRepository records processed external checkout session IDs
// so duplicate webhook deliveries are idempotent. RecordOnce returns false
// when the session was already processed.
type CheckoutSessionRepository interface {
	RecordOnce(ctx context.Context, sessionID, accountID string) (bool, error)
}
