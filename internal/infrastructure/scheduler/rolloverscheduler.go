// Package scheduler holds background maintenance loops.
package scheduler

import (
	"context"
	"sync"
	"time"

	lifecycleUsecases "hardhat/internal/application/lifecycle/usecases"
	"hardhat/internal/domain/alerting"
	"hardhat/internal/shared/logger"
)

// RolloverScheduler handles periodic entitlement maintenance tasks:
// - advances billing windows for accounts whose period has elapsed
// - expires elapsed trials back to the free plan
// - prunes alert suppression rows from long-gone periods
type RolloverScheduler struct {
	rolloverUC      *lifecycleUsecases.RolloverPeriodsUseCase
	suppressionRepo alerting.SuppressionRepository
	retention       time.Duration
	logger          logger.Interface
	stopChan        chan struct{}
	stopOnce        sync.Once
	wg              sync.WaitGroup
	interval        time.Duration
}

// NewRolloverScheduler creates a new RolloverScheduler.
func NewRolloverScheduler(
	rolloverUC *lifecycleUsecases.RolloverPeriodsUseCase,
	suppressionRepo alerting.SuppressionRepository,
	interval time.Duration,
	retention time.Duration,
	logger logger.Interface,
) *RolloverScheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &RolloverScheduler{
		rolloverUC:      rolloverUC,
		suppressionRepo: suppressionRepo,
		retention:       retention,
		logger:          logger,
		stopChan:        make(chan struct{}),
		interval:        interval,
	}
}

// Start starts the scheduler
func (s *RolloverScheduler) Start(ctx context.Context) {
	s.logger.Infow("starting rollover scheduler", "interval", s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runLoop(ctx)
	}()
}

// Stop stops the scheduler gracefully
func (s *RolloverScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Infow("stopping rollover scheduler")
		close(s.stopChan)
		s.wg.Wait()
		s.logger.Infow("rollover scheduler stopped")
	})
}

func (s *RolloverScheduler) runLoop(ctx context.Context) {
	// Run immediately on startup to clear any backlog from downtime
	s.processRollovers(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	pruneTicker := time.NewTicker(24 * time.Hour)
	defer pruneTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("rollover scheduler stopped due to context cancellation")
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.processRollovers(ctx)
		case <-pruneTicker.C:
			s.pruneSuppressions(ctx)
		}
	}
}

func (s *RolloverScheduler) processRollovers(ctx context.Context) {
	s.logger.Debugw("rollover pass started")

	startTime := time.Now()

	rolled, err := s.rolloverUC.Execute(ctx)
	if err != nil {
		s.logger.Errorw("rollover pass failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if rolled > 0 {
		s.logger.Infow("billing periods rolled over",
			"count", rolled,
			"duration", time.Since(startTime),
		)
	} else {
		s.logger.Debugw("no periods due for rollover",
			"duration", time.Since(startTime),
		)
	}
}

func (s *RolloverScheduler) pruneSuppressions(ctx context.Context) {
	if s.suppressionRepo == nil || s.retention <= 0 {
		return
	}

	cutoff := time.Now().UTC().Add(-s.retention)
	if _, err := s.suppressionRepo.PruneBefore(ctx, cutoff); err != nil {
		s.logger.Errorw("failed to prune alert suppressions", "error", err)
	}
}
