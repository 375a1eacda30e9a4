package catalog

import (
	"fmt"
	"time"
)

type PlanStatus string

const (
	PlanStatusActive  PlanStatus = "active"
	PlanStatusRetired PlanStatus = "retired"
)

// Plan is a published subscription plan. Plans are immutable once published;
// changing a quota creates a new plan version (new row, bumped version) so
// existing subscribers keep resolving the version they bought.
type Plan struct {
	id            uint
	sid           string
	slug          string
	name          string
	description   string
	tierRank      int
	quotas        map[FeatureKey]Quota
	trialEligible bool
	priceMonthly  uint64
	priceYearly   uint64
	status        PlanStatus
	version       int
	createdAt     time.Time
	updatedAt     time.Time
}

func NewPlan(sid, slug, name, description string, tierRank int, quotas map[FeatureKey]Quota) (*Plan, error) {
	if slug == "" {
		return nil, fmt.Errorf("plan slug is required")
	}
	if name == "" {
		return nil, fmt.Errorf("plan name is required")
	}
	if len(slug) > 100 {
		return nil, fmt.Errorf("plan slug too long (max 100 characters)")
	}
	if tierRank < 0 {
		return nil, fmt.Errorf("tier rank cannot be negative")
	}
	if quotas == nil {
		quotas = make(map[FeatureKey]Quota)
	}
	for fk := range quotas {
		if _, ok := ParseFeatureKey(string(fk)); !ok {
			return nil, fmt.Errorf("unknown feature key in quota table: %s", fk)
		}
	}

	now := time.Now().UTC()
	return &Plan{
		sid:         sid,
		slug:        slug,
		name:        name,
		description: description,
		tierRank:    tierRank,
		quotas:      quotas,
		status:      PlanStatusActive,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

type PlanReconstructParams struct {
	ID            uint
	SID           string
	Slug          string
	Name          string
	Description   string
	TierRank      int
	Quotas        map[FeatureKey]Quota
	TrialEligible bool
	PriceMonthly  uint64
	PriceYearly   uint64
	Status        PlanStatus
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func ReconstructPlan(p PlanReconstructParams) (*Plan, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("plan ID cannot be zero")
	}
	if p.Status != PlanStatusActive && p.Status != PlanStatusRetired {
		return nil, fmt.Errorf("invalid plan status: %s", p.Status)
	}
	if p.Quotas == nil {
		p.Quotas = make(map[FeatureKey]Quota)
	}
	return &Plan{
		id:            p.ID,
		sid:           p.SID,
		slug:          p.Slug,
		name:          p.Name,
		description:   p.Description,
		tierRank:      p.TierRank,
		quotas:        p.Quotas,
		trialEligible: p.TrialEligible,
		priceMonthly:  p.PriceMonthly,
		priceYearly:   p.PriceYearly,
		status:        p.Status,
		version:       p.Version,
		createdAt:     p.CreatedAt,
		updatedAt:     p.UpdatedAt,
	}, nil
}

func (p *Plan) ID() uint            { return p.id }
func (p *Plan) SID() string         { return p.sid }
func (p *Plan) Slug() string        { return p.slug }
func (p *Plan) Name() string        { return p.name }
func (p *Plan) Description() string { return p.description }
func (p *Plan) TierRank() int       { return p.tierRank }
func (p *Plan) TrialEligible() bool { return p.trialEligible }
func (p *Plan) PriceMonthly() uint64 {
	return p.priceMonthly
}
func (p *Plan) PriceYearly() uint64  { return p.priceYearly }
func (p *Plan) Status() PlanStatus   { return p.status }
func (p *Plan) Version() int         { return p.version }
func (p *Plan) CreatedAt() time.Time { return p.createdAt }
func (p *Plan) UpdatedAt() time.Time { return p.updatedAt }

func (p *Plan) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("plan ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("plan ID cannot be zero")
	}
	p.id = id
	return nil
}

func (p *Plan) SetTrialEligible(eligible bool) {
	p.trialEligible = eligible
	p.updatedAt = time.Now().UTC()
}

func (p *Plan) SetPricing(monthlyCents, yearlyCents uint64) {
	p.priceMonthly = monthlyCents
	p.priceYearly = yearlyCents
	p.updatedAt = time.Now().UTC()
}

func (p *Plan) IsActive() bool {
	return p.status == PlanStatusActive
}

// IsFree reports whether the plan has no price attached. Free plans are the
// ones from which a trial offer makes sense.
func (p *Plan) IsFree() bool {
	return p.priceMonthly == 0 && p.priceYearly == 0
}

// Retire marks the plan as no longer offered. Retired plans remain
// resolvable for existing subscribers.
func (p *Plan) Retire() {
	if p.status == PlanStatusRetired {
		return
	}
	p.status = PlanStatusRetired
	p.updatedAt = time.Now().UTC()
}

// QuotaFor returns the plan's quota for the feature. Features absent from
// the quota table are not part of the plan and resolve to a disabled quota.
func (p *Plan) QuotaFor(feature FeatureKey) (Quota, bool) {
	q, ok := p.quotas[feature]
	if !ok {
		return Quota{}, false
	}
	return q, true
}

// Quotas returns a copy of the full quota table.
func (p *Plan) Quotas() map[FeatureKey]Quota {
	out := make(map[FeatureKey]Quota, len(p.quotas))
	for k, v := range p.quotas {
		out[k] = v
	}
	return out
}

// NextVersion derives a successor plan carrying the new quota table. The
// successor starts at version+1 with the same slug; the repository retires
// the predecessor in the same transaction when publishing.
func (p *Plan) NextVersion(quotas map[FeatureKey]Quota, newSID string) (*Plan, error) {
	next, err := NewPlan(newSID, p.slug, p.name, p.description, p.tierRank, quotas)
	if err != nil {
		return nil, err
	}
	next.trialEligible = p.trialEligible
	next.priceMonthly = p.priceMonthly
	next.priceYearly = p.priceYearly
	next.version = p.version + 1
	return next, nil
}
