// Package cache holds Redis-backed read-through caches.
package cache

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"hardhat/internal/application/entitlement/usecases"
	"hardhat/internal/domain/account"
	"hardhat/internal/shared/logger"
)

const (
	planStateKeyPrefix = "entitlement:planstate:"
	basePlanStateTTL   = 30 * time.Minute
	planStateTTLJitter = 10 * time.Minute // TTL range: 30-40 min (anti-stampede)
	missingMarkerTTL   = 2 * time.Minute  // Short TTL for no-state markers (anti-penetration)

	fieldPlanID      = "plan_id"
	fieldStatus      = "status"
	fieldTrialUsed   = "trial_used"
	fieldPeriodStart = "period_start"
	fieldPeriodEnd   = "period_end"
	fieldMissing     = "_missing"
)

// RedisPlanStateCache implements the entitlement resolver's plan state cache
// using a Redis hash per account.
type RedisPlanStateCache struct {
	client *redis.Client
	logger logger.Interface
}

func NewRedisPlanStateCache(client *redis.Client, logger logger.Interface) *RedisPlanStateCache {
	return &RedisPlanStateCache{
		client: client,
		logger: logger,
	}
}

func (c *RedisPlanStateCache) key(accountID string) string {
	return planStateKeyPrefix + accountID
}

// Get retrieves the cached snapshot; nil, nil is a cache miss.
func (c *RedisPlanStateCache) Get(ctx context.Context, accountID string) (*usecases.PlanStateSnapshot, error) {
	result, err := c.client.HGetAll(ctx, c.key(accountID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get plan state from cache: %w", err)
	}

	if len(result) == 0 {
		return nil, nil
	}

	if result[fieldMissing] == "1" {
		return &usecases.PlanStateSnapshot{Missing: true}, nil
	}

	snap := &usecases.PlanStateSnapshot{}

	if planIDStr, ok := result[fieldPlanID]; ok {
		planID, _ := strconv.ParseUint(planIDStr, 10, 64)
		snap.PlanID = uint(planID)
	}
	if status, ok := result[fieldStatus]; ok {
		snap.Status = account.PlanStatus(status)
	}
	if trialUsedStr, ok := result[fieldTrialUsed]; ok {
		snap.TrialUsed = trialUsedStr == "1"
	}
	if startStr, ok := result[fieldPeriodStart]; ok {
		startUnix, _ := strconv.ParseInt(startStr, 10, 64)
		snap.PeriodStart = time.Unix(startUnix, 0).UTC()
	}
	if endStr, ok := result[fieldPeriodEnd]; ok {
		endUnix, _ := strconv.ParseInt(endStr, 10, 64)
		snap.PeriodEnd = time.Unix(endUnix, 0).UTC()
	}

	return snap, nil
}

// Set stores the snapshot. Missing snapshots get a short TTL so an account
// whose state appears later is picked up quickly.
func (c *RedisPlanStateCache) Set(ctx context.Context, accountID string, snap *usecases.PlanStateSnapshot) error {
	key := c.key(accountID)

	if snap.Missing {
		pipe := c.client.Pipeline()
		pipe.HSet(ctx, key, fieldMissing, "1")
		pipe.Expire(ctx, key, missingMarkerTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to set missing marker in cache: %w", err)
		}
		return nil
	}

	fields := map[string]interface{}{
		fieldPlanID:      snap.PlanID,
		fieldStatus:      string(snap.Status),
		fieldTrialUsed:   boolToInt(snap.TrialUsed),
		fieldPeriodStart: snap.PeriodStart.Unix(),
		fieldPeriodEnd:   snap.PeriodEnd.Unix(),
	}

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, planStateTTLWithJitter())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set plan state in cache: %w", err)
	}

	c.logger.Debugw("plan state cached",
		"account_id", accountID,
		"plan_id", snap.PlanID,
		"status", snap.Status,
	)
	return nil
}

// Invalidate removes the cached snapshot after any plan state mutation.
func (c *RedisPlanStateCache) Invalidate(ctx context.Context, accountID string) error {
	if err := c.client.Del(ctx, c.key(accountID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate plan state cache: %w", err)
	}

	c.logger.Debugw("plan state cache invalidated", "account_id", accountID)
	return nil
}

// planStateTTLWithJitter returns a randomized TTL to prevent cache stampede.
func planStateTTLWithJitter() time.Duration {
	jitter := time.Duration(rand.Int64N(int64(planStateTTLJitter)))
	return basePlanStateTTL + jitter
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
