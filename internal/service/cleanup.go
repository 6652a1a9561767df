package service

import (
	"context"
	"time"

	"github.com/AndVl1/chatkeep-sub003/internal/metrics"
)

// StartMetricsUpdater refreshes the active-warnings gauge once a minute.
func (s *ModerationService) StartMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)

	update := func() {
		count, err := s.repos.Warnings.CountAllActive(ctx)
		if err != nil {
			s.logger.Error("Failed to count active warnings", "error", err)
			return
		}
		metrics.ActiveWarnings.Set(float64(count))
	}

	go update()

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				update()
			}
		}
	}()
}

// StartRetentionTasks runs the periodic sweeps: expired warnings, expired
// admin cache entries, and media rows that never got a file reference. The
// sweeps only delete rows still matching their predicate at commit time, so
// they are safe to run alongside live traffic.
func (s *ModerationService) StartRetentionTasks(ctx context.Context) {
	ticker := time.NewTicker(s.opts.SweepInterval)

	sweep := func() {
		if n, err := s.repos.Warnings.DeleteExpired(ctx); err != nil {
			s.logger.Error("Failed to sweep expired warnings", "error", err)
		} else if n > 0 {
			s.logger.Debug("Swept expired warnings", "count", n)
		}

		if n, err := s.repos.AdminCache.DeleteExpired(ctx); err != nil {
			s.logger.Error("Failed to sweep admin cache", "error", err)
		} else if n > 0 {
			s.logger.Debug("Swept expired admin cache entries", "count", n)
		}

		cutoff := time.Now().Add(-s.opts.MediaRetentionAge)
		if n, err := s.repos.Media.DeleteUnreferencedOlderThan(ctx, cutoff); err != nil {
			s.logger.Error("Failed to sweep unreferenced media", "error", err)
		} else if n > 0 {
			s.logger.Debug("Swept unreferenced media", "count", n)
		}
	}

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweep()
			}
		}
	}()
}
