package core

// scheduler.go runs periodic maintenance of the import history.
//
// Runs older than the retention window are deleted once at start and then
// every CheckInterval until the context ends. Failures are logged and retried
// on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// PruneConfig controls history pruning. Zero values use the defaults.
type PruneConfig struct {
	Retention     time.Duration // default 90 days
	CheckInterval time.Duration // default 24h
}

func (c PruneConfig) withDefaults() PruneConfig {
	if c.Retention <= 0 {
		c.Retention = 90 * 24 * time.Hour
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 24 * time.Hour
	}
	return c
}

// StartPruneScheduler blocks, pruning old runs until ctx is cancelled.
// It returns immediately when the service has no repository.
func (s *Service) StartPruneScheduler(ctx context.Context, cfg PruneConfig) {
	if s.repo == nil {
		return
	}
	cfg = cfg.withDefaults()

	slog.Info("prune scheduler started",
		"retention", cfg.Retention.String(),
		"interval", cfg.CheckInterval.String(),
	)

	s.PruneHistory(ctx, cfg.Retention)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("prune scheduler stopped")
			return
		case <-ticker.C:
			s.PruneHistory(ctx, cfg.Retention)
		}
	}
}

// PruneHistory deletes runs older than retention and returns how many went.
func (s *Service) PruneHistory(ctx context.Context, retention time.Duration) int64 {
	if s.repo == nil {
		return 0
	}
	start := time.Now()

	pruned, err := s.repo.PruneImports(ctx, s.now().Add(-retention))
	if err != nil {
		slog.Error("prune import history failed", "error", err)
		return 0
	}

	slog.Info("pruned import history",
		"runs_pruned", pruned,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return pruned
}
