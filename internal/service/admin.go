package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AndVl1/chatkeep-sub003/internal/metrics"
	"github.com/AndVl1/chatkeep-sub003/internal/repository"
)

// IsChatAdmin answers from the cache when a non-expired entry exists. On a
// miss it asks the lookup port and caches the answer. A failed lookup is
// returned as an error and nothing is cached; the engine never guesses.
func (s *ModerationService) IsChatAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "IsChatAdmin")
	defer span.End()

	entry, err := s.repos.AdminCache.GetValid(ctx, userID, chatID)
	if err != nil {
		return false, err
	}
	if entry != nil {
		metrics.IncAdminCacheLookup("hit")
		return entry.IsAdmin, nil
	}
	metrics.IncAdminCacheLookup("miss")

	if s.ports.AdminLookup == nil {
		return false, fmt.Errorf("admin lookup port not configured")
	}
	isAdmin, err := s.ports.AdminLookup.IsAdmin(ctx, userID, chatID)
	if err != nil {
		return false, fmt.Errorf("admin lookup failed: %w", err)
	}

	now := time.Now()
	cacheErr := s.repos.AdminCache.Upsert(ctx, &repository.AdminCacheEntry{
		UserID:    userID,
		ChatID:    chatID,
		IsAdmin:   isAdmin,
		CachedAt:  now,
		ExpiresAt: now.Add(s.opts.AdminCacheTTL),
	})
	if cacheErr != nil {
		// The lookup answer is still good; only caching failed.
		s.logger.Warn("Failed to cache admin lookup", "chat_id", chatID, "user_id", userID, "error", cacheErr)
	}
	return isAdmin, nil
}

func (s *ModerationService) InvalidateAdmin(ctx context.Context, chatID, userID int64) error {
	ctx, span := s.tracer.Start(ctx, "InvalidateAdmin")
	defer span.End()
	return s.repos.AdminCache.Invalidate(ctx, userID, chatID)
}
