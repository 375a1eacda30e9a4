// Package usecases implements the plan catalog application services.
package usecases

import (
	"context"

	"hardhat/internal/domain/catalog"
	"hardhat/internal/shared/logger"
)

// PlanDTO is the external view of a published plan.
type PlanDTO struct {
	SID             string           `json:"id"`
	Slug            string           `json:"slug"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	DescriptionHTML string           `json:"description_html,omitempty"`
	TierRank        int              `json:"tier_rank"`
	TrialEligible   bool             `json:"trial_eligible"`
	PriceMonthly    uint64           `json:"price_monthly_cents"`
	PriceYearly     uint64           `json:"price_yearly_cents"`
	Quotas          map[string]Quota `json:"quotas"`
}

// Quota mirrors catalog.Quota for transport.
type Quota struct {
	Limit     int64 `json:"limit"`
	Unlimited bool  `json:"unlimited"`
}

// DescriptionRenderer turns a plan's markdown description into sanitized
// HTML for the pricing page.
type DescriptionRenderer interface {
	ToHTMLSanitized(markdown string) (string, error)
}

// ListPlansUseCase returns active plans ordered by tier rank for the public
// pricing surface.
type ListPlansUseCase struct {
	planRepo catalog.PlanRepository
	renderer DescriptionRenderer
	logger   logger.Interface
}

func NewListPlansUseCase(planRepo catalog.PlanRepository, renderer DescriptionRenderer, logger logger.Interface) *ListPlansUseCase {
	return &ListPlansUseCase{
		planRepo: planRepo,
		renderer: renderer,
		logger:   logger,
	}
}

func (uc *ListPlansUseCase) Execute(ctx context.Context) ([]*PlanDTO, error) {
	plans, err := uc.planRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*PlanDTO, 0, len(plans))
	for _, plan := range plans {
		out = append(out, uc.toDTO(plan))
	}
	return out, nil
}

func (uc *ListPlansUseCase) toDTO(plan *catalog.Plan) *PlanDTO {
	quotas := make(map[string]Quota)
	for fk, q := range plan.Quotas() {
		quotas[fk.String()] = Quota{Limit: q.Limit, Unlimited: q.Unlimited}
	}

	dto := &PlanDTO{
		SID:           plan.SID(),
		Slug:          plan.Slug(),
		Name:          plan.Name(),
		Description:   plan.Description(),
		TierRank:      plan.TierRank(),
		TrialEligible: plan.TrialEligible(),
		PriceMonthly:  plan.PriceMonthly(),
		PriceYearly:   plan.PriceYearly(),
		Quotas:        quotas,
	}

	if uc.renderer != nil && plan.Description() != "" {
		html, err := uc.renderer.ToHTMLSanitized(plan.Description())
		if err != nil {
			uc.logger.Warnw("failed to render plan description", "plan", plan.Slug(), "error", err)
		} else {
			dto.DescriptionHTML = html
		}
	}
	return dto
}
