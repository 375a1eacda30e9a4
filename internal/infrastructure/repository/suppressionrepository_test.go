package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hardhat/internal/domain/alerting"
	"hardhat/internal/domain/catalog"
)

func TestSuppressionRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSuppressionRepository(db, newNopLogger())
	ctx := context.Background()

	t.Run("Claim wins once per key", func(t *testing.T) {
		won, err := repo.Claim(ctx, "acct_1", catalog.FeatureContractGeneration, alerting.TierWarning, "20260201")
		require.NoError(t, err)
		assert.True(t, won)

		won, err = repo.Claim(ctx, "acct_1", catalog.FeatureContractGeneration, alerting.TierWarning, "20260201")
		require.NoError(t, err)
		assert.False(t, won, "redelivery must lose the claim")
	})

	t.Run("distinct levels and periods are independent claims", func(t *testing.T) {
		won, err := repo.Claim(ctx, "acct_1", catalog.FeatureContractGeneration, alerting.TierCritical, "20260201")
		require.NoError(t, err)
		assert.True(t, won)

		won, err = repo.Claim(ctx, "acct_1", catalog.FeatureContractGeneration, alerting.TierWarning, "20260301")
		require.NoError(t, err)
		assert.True(t, won)
	})

	t.Run("WasShown reflects claimed keys", func(t *testing.T) {
		shown, err := repo.WasShown(ctx, "acct_1", catalog.FeatureContractGeneration, alerting.TierWarning, "20260201")
		require.NoError(t, err)
		assert.True(t, shown)

		shown, err = repo.WasShown(ctx, "acct_2", catalog.FeatureContractGeneration, alerting.TierWarning, "20260201")
		require.NoError(t, err)
		assert.False(t, shown)
	})

	t.Run("PruneBefore removes only rows from old periods", func(t *testing.T) {
		removed, err := repo.PruneBefore(ctx, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, int64(2), removed)

		shown, err := repo.WasShown(ctx, "acct_1", catalog.FeatureContractGeneration, alerting.TierWarning, "20260301")
		require.NoError(t, err)
		assert.True(t, shown, "rows at the cutoff survive")

		// Pruned keys are claimable again.
		won, err := repo.Claim(ctx, "acct_1", catalog.FeatureContractGeneration, alerting.TierWarning, "20260201")
		require.NoError(t, err)
		assert.True(t, won)
	})
}

func TestCheckoutSessionRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCheckoutSessionRepository(db, newNopLogger())
	ctx := context.Background()

	t.Run("first delivery wins", func(t *testing.T) {
		first, err := repo.RecordOnce(ctx, "cs_123", "acct_1")
		require.NoError(t, err)
		assert.True(t, first)
	})

	t.Run("redelivery of the same session is flagged", func(t *testing.T) {
		first, err := repo.RecordOnce(ctx, "cs_123", "acct_1")
		require.NoError(t, err)
		assert.False(t, first)
	})

	t.Run("other sessions are unaffected", func(t *testing.T) {
		first, err := repo.RecordOnce(ctx, "cs_456", "acct_1")
		require.NoError(t, err)
		assert.True(t, first)
	})
}
