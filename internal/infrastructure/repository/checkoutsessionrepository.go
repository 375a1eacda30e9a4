package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"hardhat/internal/domain/account"
	"hardhat/internal/infrastructure/persistence/models"
	"hardhat/internal/shared/db"
	"hardhat/internal/shared/errors"
	"hardhat/internal/shared/logger"
)

type CheckoutSessionRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewCheckoutSessionRepository(db *gorm.DB, logger logger.Interface) account.CheckoutSessionRepository {
	return &CheckoutSessionRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// RecordOnce inserts the session ID and reports whether this delivery was the
// first. The unique index on session_id turns webhook redelivery into a
// duplicate-key error, which is the signal, not a failure.
func (r *CheckoutSessionRepositoryImpl) RecordOnce(ctx context.Context, sessionID, accountID string) (bool, error) {
	model := models.CheckoutSessionModel{
		SessionID: sessionID,
		AccountID: accountID,
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(&model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return false, nil
		}
		r.logger.Errorw("failed to record checkout session", "error", err, "session_id", sessionID)
		return false, fmt.Errorf("failed to record checkout session: %w", err)
	}

	return true, nil
}
