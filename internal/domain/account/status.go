package account

// PlanStatus is the lifecycle state of an account's plan.
type PlanStatus string

const (
	StatusActive   PlanStatus = "active"
	StatusTrialing PlanStatus = "trialing"
	StatusExpired  PlanStatus = "expired"
	StatusCanceled PlanStatus = "canceled"
)

func (s PlanStatus) String() string {
	return string(s)
}

// CanTransitionTo encodes the allowed lifecycle edges. Any state may reach
// active via a successful checkout; trialing is additionally guarded by the
// one-shot trial flag on the aggregate.
func (s PlanStatus) CanTransitionTo(target PlanStatus) bool {
	transitions := map[PlanStatus][]PlanStatus{
		StatusActive:   {StatusActive, StatusTrialing, StatusExpired, StatusCanceled},
		StatusTrialing: {StatusActive, StatusExpired, StatusCanceled},
		StatusExpired:  {StatusActive, StatusTrialing},
		StatusCanceled: {StatusActive, StatusTrialing},
	}

	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

var ValidStatuses = map[PlanStatus]bool{
	StatusActive:   true,
	StatusTrialing: true,
	StatusExpired:  true,
	StatusCanceled: true,
}
