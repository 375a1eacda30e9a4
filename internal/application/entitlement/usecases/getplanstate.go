package usecases

import (
	"context"
	"time"

	"hardhat/internal/application/entitlement/dto"
	"hardhat/internal/domain/account"
	"hardhat/internal/domain/catalog"
	"hardhat/internal/shared/logger"
)

// GetPlanStateUseCase returns the external view of an account's plan state,
// falling back to the default free plan when none is recorded.
type GetPlanStateUseCase struct {
	resolver *resolver
}

func NewGetPlanStateUseCase(
	stateRepo account.PlanStateRepository,
	planRepo catalog.PlanRepository,
	defaultPlanSlug string,
	logger logger.Interface,
) *GetPlanStateUseCase {
	return &GetPlanStateUseCase{
		resolver: newResolver(stateRepo, planRepo, nil, defaultPlanSlug, logger),
	}
}

func (uc *GetPlanStateUseCase) Execute(ctx context.Context, accountID string) (*dto.PlanStateDTO, error) {
	now := time.Now().UTC()

	pc, err := uc.resolver.resolve(ctx, accountID, now)
	if err != nil {
		return nil, err
	}

	out := &dto.PlanStateDTO{
		AccountID:    accountID,
		PlanSlug:     pc.plan.Slug(),
		PlanName:     pc.plan.Name(),
		Status:       account.StatusActive.String(),
		BillingCycle: string(account.CycleMonthly),
		PeriodStart:  pc.period.Start.Format(time.RFC3339),
		PeriodEnd:    pc.period.End.Format(time.RFC3339),
	}
	if pc.state != nil {
		out.Status = pc.state.Status().String()
		out.TrialUsed = pc.state.TrialUsed()
		out.BillingCycle = string(pc.state.BillingCycle())
	}
	return out, nil
}
