package ledger

import "time"

// PeriodIDLayout formats a period start into its identifier. Period identity
// is the UTC start date, which makes rollover idempotency a simple string
// comparison.
const PeriodIDLayout = "20060102"

// Period is one billing window over which usage resets to zero.
type Period struct {
	Start time.Time
	End   time.Time
}

// ID returns the period identifier derived from the window start.
func (p Period) ID() string {
	return p.Start.UTC().Format(PeriodIDLayout)
}

// Contains reports whether t falls inside the window.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Elapsed reports whether the window has ended at time now.
func (p Period) Elapsed(now time.Time) bool {
	return !now.Before(p.End)
}

// MonthlyPeriod computes the billing window containing now for an account
// anchored at anchor (the day-of-month of the first subscription). Anchor
// days beyond the target month's length clamp to the month's last day.
func MonthlyPeriod(anchor, now time.Time) Period {
	anchor = anchor.UTC()
	now = now.UTC()

	// Month arithmetic goes through time.Date normalization (month 0 and 13
	// wrap across year boundaries) instead of AddDate, which would overflow
	// clamped day-of-month values into the next month.
	start := anchoredDay(anchor, now.Year(), now.Month())
	if start.After(now) {
		start = anchoredDay(anchor, start.Year(), start.Month()-1)
	}
	end := anchoredDay(anchor, start.Year(), start.Month()+1)

	return Period{Start: start, End: end}
}

// YearlyPeriod computes the yearly billing window containing now for an
// account anchored at anchor.
func YearlyPeriod(anchor, now time.Time) Period {
	anchor = anchor.UTC()
	now = now.UTC()

	start := time.Date(now.Year(), anchor.Month(), clampDay(anchor.Day(), now.Year(), anchor.Month()),
		anchor.Hour(), anchor.Minute(), anchor.Second(), 0, time.UTC)
	if start.After(now) {
		start = time.Date(now.Year()-1, anchor.Month(), clampDay(anchor.Day(), now.Year()-1, anchor.Month()),
			anchor.Hour(), anchor.Minute(), anchor.Second(), 0, time.UTC)
	}
	return Period{Start: start, End: start.AddDate(1, 0, 0)}
}

// CalendarMonthPeriod returns the calendar-month window containing now, used
// when no billing anchor exists yet (accounts without recorded plan state).
func CalendarMonthPeriod(now time.Time) Period {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(0, 1, 0)}
}

// ParsePeriodID recovers the UTC window start encoded in a period ID.
func ParsePeriodID(id string) (time.Time, error) {
	return time.ParseInLocation(PeriodIDLayout, id, time.UTC)
}

// anchoredDay places the anchor's day-of-month (clamped) and time-of-day in
// the given month.
func anchoredDay(anchor time.Time, year int, month time.Month) time.Time {
	return time.Date(year, month, clampDay(anchor.Day(), year, month),
		anchor.Hour(), anchor.Minute(), anchor.Second(), 0, time.UTC)
}

func clampDay(day, year int, month time.Month) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}
