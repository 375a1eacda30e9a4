// Package account holds the per-account plan state aggregate and its
// lifecycle state machine. Plan state is mutated only through the
// transitions defined here, never by ad hoc calling code.
package account

import (
	"errors"
	"time"

	"hardhat/internal/domain/ledger"
)

// BillingCycle is the alignment of the account's billing window.
type BillingCycle string

const (
	CycleMonthly BillingCycle = "monthly"
	CycleYearly  BillingCycle = "yearly"
)

// PlanState is the aggregate tying an account to its current plan, status,
// billing window, and the immutable trial-used flag. The flag is set the
// instant a trial activates and is never cleared by any later transition,
// including cancellation and downgrade.
type PlanState struct {
	id            uint
	accountID     string
	planID        uint
	status        PlanStatus
	trialUsed     bool
	billingCycle  BillingCycle
	billingAnchor time.Time
	periodStart   time.Time
	periodEnd     time.Time
	downgradeTo   *uint
	createdAt     time.Time
	updatedAt     time.Time
}

// NewPlanState creates the state recorded at account creation: the default
// free plan, active, trial never used, monthly window anchored at now.
func NewPlanState(accountID string, defaultPlanID uint, now time.Time) (*PlanState, error) {
	if accountID == "" {
		return nil, errors.New("account ID cannot be empty")
	}
	if defaultPlanID == 0 {
		return nil, errors.New("default plan ID cannot be zero")
	}

	now = now.UTC()
	period := ledger.MonthlyPeriod(now, now)
	return &PlanState{
		accountID:     accountID,
		planID:        defaultPlanID,
		status:        StatusActive,
		billingCycle:  CycleMonthly,
		billingAnchor: now,
		periodStart:   period.Start,
		periodEnd:     period.End,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

type PlanStateReconstructParams struct {
	ID            uint
	AccountID     string
	PlanID        uint
	Status        PlanStatus
	TrialUsed     bool
	BillingCycle  BillingCycle
	BillingAnchor time.Time
	PeriodStart   time.Time
	PeriodEnd     time.Time
	DowngradeTo   *uint
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func ReconstructPlanState(p PlanStateReconstructParams) (*PlanState, error) {
	if p.ID == 0 {
		return nil, errors.New("plan state ID cannot be zero")
	}
	if p.AccountID == "" {
		return nil, errors.New("account ID cannot be empty")
	}
	if !ValidStatuses[p.Status] {
		return nil, errors.New("invalid plan status: " + string(p.Status))
	}

	return &PlanState{
		id:            p.ID,
		accountID:     p.AccountID,
		planID:        p.PlanID,
		status:        p.Status,
		trialUsed:     p.TrialUsed,
		billingCycle:  p.BillingCycle,
		billingAnchor: p.BillingAnchor,
		periodStart:   p.PeriodStart,
		periodEnd:     p.PeriodEnd,
		downgradeTo:   p.DowngradeTo,
		createdAt:     p.CreatedAt,
		updatedAt:     p.UpdatedAt,
	}, nil
}

func (s *PlanState) ID() uint                   { return s.id }
func (s *PlanState) AccountID() string          { return s.accountID }
func (s *PlanState) PlanID() uint               { return s.planID }
func (s *PlanState) Status() PlanStatus         { return s.status }
func (s *PlanState) TrialUsed() bool            { return s.trialUsed }
func (s *PlanState) BillingCycle() BillingCycle { return s.billingCycle }
func (s *PlanState) BillingAnchor() time.Time   { return s.billingAnchor }
func (s *PlanState) PeriodStart() time.Time     { return s.periodStart }
func (s *PlanState) PeriodEnd() time.Time       { return s.periodEnd }
func (s *PlanState) DowngradeTo() *uint         { return s.downgradeTo }
func (s *PlanState) CreatedAt() time.Time       { return s.createdAt }
func (s *PlanState) UpdatedAt() time.Time       { return s.updatedAt }

func (s *PlanState) SetID(id uint) error {
	if s.id != 0 {
		return errors.New("plan state ID is already set")
	}
	if id == 0 {
		return errors.New("plan state ID cannot be zero")
	}
	s.id = id
	return nil
}

// CurrentPeriod returns the billing window the account is in right now.
func (s *PlanState) CurrentPeriod() ledger.Period {
	return ledger.Period{Start: s.periodStart, End: s.periodEnd}
}

// StartTrial transitions to the trial plan. Fails with ErrTrialAlreadyUsed
// when the one-shot flag is set; sets the flag unconditionally on success,
// even if the trial is later canceled early.
func (s *PlanState) StartTrial(trialPlanID uint, trialDays int, now time.Time) error {
	if s.trialUsed {
		return ErrTrialAlreadyUsed
	}
	if !s.status.CanTransitionTo(StatusTrialing) {
		return ErrInvalidTransition
	}

	now = now.UTC()
	s.planID = trialPlanID
	s.status = StatusTrialing
	s.trialUsed = true
	s.periodStart = now
	s.periodEnd = now.AddDate(0, 0, trialDays)
	s.downgradeTo = nil
	s.updatedAt = now
	return nil
}

// CompleteCheckout records a finished external payment: any state may reach
// active this way. The window realigns to the purchased billing cycle with
// its anchor at checkout time.
func (s *PlanState) CompleteCheckout(planID uint, cycle BillingCycle, now time.Time) error {
	if cycle != CycleMonthly && cycle != CycleYearly {
		return errors.New("invalid billing cycle: " + string(cycle))
	}

	now = now.UTC()
	var period ledger.Period
	if cycle == CycleYearly {
		period = ledger.YearlyPeriod(now, now)
	} else {
		period = ledger.MonthlyPeriod(now, now)
	}

	s.planID = planID
	s.status = StatusActive
	s.billingCycle = cycle
	s.billingAnchor = now
	s.periodStart = period.Start
	s.periodEnd = period.End
	s.downgradeTo = nil
	s.updatedAt = now
	return nil
}

// ExpireTrial demotes an elapsed trial to the default free plan.
func (s *PlanState) ExpireTrial(freePlanID uint, now time.Time) error {
	if s.status != StatusTrialing {
		return ErrInvalidTransition
	}

	now = now.UTC()
	period := ledger.MonthlyPeriod(s.billingAnchor, now)
	s.planID = freePlanID
	s.status = StatusExpired
	s.billingCycle = CycleMonthly
	s.periodStart = period.Start
	s.periodEnd = period.End
	s.updatedAt = now
	return nil
}

// AdvancePeriod moves an active account into the billing window containing
// now, applying any scheduled downgrade at the boundary. Calling it when the
// current window has not elapsed is a no-op, which makes the scheduled
// rollover safe to retry after a crash.
func (s *PlanState) AdvancePeriod(now time.Time) bool {
	now = now.UTC()
	if now.Before(s.periodEnd) {
		return false
	}

	var period ledger.Period
	if s.billingCycle == CycleYearly {
		period = ledger.YearlyPeriod(s.billingAnchor, now)
	} else {
		period = ledger.MonthlyPeriod(s.billingAnchor, now)
	}
	if period.ID() == (ledger.Period{Start: s.periodStart, End: s.periodEnd}).ID() {
		return false
	}

	if s.downgradeTo != nil {
		s.planID = *s.downgradeTo
		s.downgradeTo = nil
	}
	s.periodStart = period.Start
	s.periodEnd = period.End
	s.updatedAt = now
	return true
}

// Cancel marks the plan canceled. The trial flag is untouched.
func (s *PlanState) Cancel(now time.Time) error {
	if !s.status.CanTransitionTo(StatusCanceled) {
		return ErrInvalidTransition
	}
	s.status = StatusCanceled
	s.updatedAt = now.UTC()
	return nil
}

// ScheduleDowngrade records a plan to drop to at the next period boundary.
func (s *PlanState) ScheduleDowngrade(planID uint) {
	s.downgradeTo = &planID
	s.updatedAt = time.Now().UTC()
}
