// Package usecases implements threshold alert evaluation: deriving the
// severity tier from resolved usage and emitting each threshold crossing at
// most once per period.
package usecases

import (
	"context"

	"hardhat/internal/domain/alerting"
	"hardhat/internal/domain/catalog"
	"hardhat/internal/shared/logger"
)

// EvaluateThresholdUseCase recomputes alert state after a usage change. The
// persisted suppression claim makes the emission exactly-once per
// (account, feature, level, period) even when entitlement checks are polled
// many times per second from multiple sessions.
type EvaluateThresholdUseCase struct {
	suppressionRepo alerting.SuppressionRepository
	notifier        alerting.Notifier
	logger          logger.Interface
}

func NewEvaluateThresholdUseCase(
	suppressionRepo alerting.SuppressionRepository,
	notifier alerting.Notifier,
	logger logger.Interface,
) *EvaluateThresholdUseCase {
	return &EvaluateThresholdUseCase{
		suppressionRepo: suppressionRepo,
		notifier:        notifier,
		logger:          logger,
	}
}

// Evaluate derives the tier and emits an alert when this is the first
// crossing of that tier in the period. Failures are logged, never
// propagated: alerting must not break the usage path.
func (uc *EvaluateThresholdUseCase) Evaluate(ctx context.Context, accountID string, feature catalog.FeatureKey, quota catalog.Quota, used int64, periodID string) {
	tier := alerting.TierForUsage(quota, used)
	if !tier.Alertable() {
		return
	}

	won, err := uc.suppressionRepo.Claim(ctx, accountID, feature, tier, periodID)
	if err != nil {
		uc.logger.Errorw("alert suppression claim failed",
			"account_id", accountID,
			"feature", feature,
			"level", tier,
			"period_id", periodID,
			"error", err,
		)
		return
	}
	if !won {
		return
	}

	pct, _ := quota.Percentage(used)
	alert := alerting.Alert{
		AccountID:       accountID,
		Feature:         feature,
		Level:           tier,
		Percentage:      pct,
		Used:            used,
		Limit:           quota.Limit,
		SuggestedAction: suggestedAction(tier),
	}

	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.Notify(ctx, alert); err != nil {
		uc.logger.Errorw("alert delivery failed",
			"account_id", accountID,
			"feature", feature,
			"level", tier,
			"error", err,
		)
	}
}

// ShouldAlert reports whether an alert at the given level is still pending
// for this period. Callers that emit on true must mark suppression via
// MarkShown before returning control.
func (uc *EvaluateThresholdUseCase) ShouldAlert(ctx context.Context, accountID string, feature catalog.FeatureKey, level alerting.Tier, periodID string) (bool, error) {
	shown, err := uc.suppressionRepo.WasShown(ctx, accountID, feature, level, periodID)
	if err != nil {
		return false, err
	}
	return !shown, nil
}

// MarkShown records the alert as emitted for this period.
func (uc *EvaluateThresholdUseCase) MarkShown(ctx context.Context, accountID string, feature catalog.FeatureKey, level alerting.Tier, periodID string) error {
	_, err := uc.suppressionRepo.Claim(ctx, accountID, feature, level, periodID)
	return err
}

func suggestedAction(tier alerting.Tier) string {
	switch tier {
	case alerting.TierCritical:
		return "upgrade_plan"
	case alerting.TierWarning:
		return "review_usage"
	default:
		return ""
	}
}
