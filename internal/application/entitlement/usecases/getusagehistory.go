package usecases

import (
	"context"

	"hardhat/internal/domain/catalog"
	"hardhat/internal/domain/ledger"
	"hardhat/internal/shared/logger"
)

// UsagePeriodDTO is one past period's consumption for display.
type UsagePeriodDTO struct {
	PeriodID string `json:"period_id"`
	Used     int64  `json:"used"`
}

// GetUsageHistoryUseCase returns past-period counters for an account and
// feature, newest first. Prior periods are immutable once rolled over.
type GetUsageHistoryUseCase struct {
	usageRepo ledger.UsageRepository
	logger    logger.Interface
}

func NewGetUsageHistoryUseCase(usageRepo ledger.UsageRepository, logger logger.Interface) *GetUsageHistoryUseCase {
	return &GetUsageHistoryUseCase{usageRepo: usageRepo, logger: logger}
}

func (uc *GetUsageHistoryUseCase) Execute(ctx context.Context, accountID string, feature catalog.FeatureKey, limit int) ([]UsagePeriodDTO, error) {
	records, err := uc.usageRepo.History(ctx, accountID, feature, limit)
	if err != nil {
		return nil, err
	}

	out := make([]UsagePeriodDTO, 0, len(records))
	for _, rec := range records {
		out = append(out, UsagePeriodDTO{
			PeriodID: rec.PeriodID(),
			Used:     rec.Count(),
		})
	}
	return out, nil
}
