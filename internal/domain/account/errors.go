package account

import "errors"

var (
	// ErrTrialAlreadyUsed is an expected business rule violation: a trial is
	// grantable exactly once per account for life. Surfaced to callers as a
	// normal negative result, not a server failure.
	ErrTrialAlreadyUsed = errors.New("trial already used for this account")

	ErrInvalidTransition = errors.New("invalid plan status transition")
)
