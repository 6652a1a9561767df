package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AndVl1/chatkeep-sub003/internal/repository"
)

// KnownFeatures is the closed set of gated feature keys. A chat with no row
// for a key has the feature disabled.
var KnownFeatures = []string{
	"night_mode",
	"raid_mode",
	"silent_actions",
	"federation_bans",
	"sticker_cleanup",
}

type FeatureStatus struct {
	FeatureKey string
	Enabled    bool
	EnabledAt  *time.Time
	EnabledBy  *int64
}

// ListFeatures returns one status per known feature key, whether or not a
// row exists for it.
func (s *ModerationService) ListFeatures(ctx context.Context, chatID int64) ([]FeatureStatus, error) {
	ctx, span := s.tracer.Start(ctx, "ListFeatures")
	defer span.End()

	rows, err := s.repos.Features.List(ctx, chatID)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]repository.ChatFeature, len(rows))
	for _, row := range rows {
		byKey[row.FeatureKey] = row
	}

	statuses := make([]FeatureStatus, 0, len(KnownFeatures))
	for _, key := range KnownFeatures {
		status := FeatureStatus{FeatureKey: key}
		if row, ok := byKey[key]; ok {
			status.Enabled = row.Enabled
			status.EnabledAt = row.EnabledAt
			status.EnabledBy = row.EnabledBy
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// SetFeature upserts the flag. The audit fields record who last enabled the
// feature: they are set on the transition to enabled and kept on disable.
func (s *ModerationService) SetFeature(ctx context.Context, chatID int64, key string, enabled bool, actorID int64) (*FeatureStatus, error) {
	ctx, span := s.tracer.Start(ctx, "SetFeature")
	defer span.End()

	if !knownFeature(key) {
		return nil, fmt.Errorf("%w: unknown feature %q", ErrValidation, key)
	}

	existing, err := s.repos.Features.Get(ctx, chatID, key)
	if err != nil {
		return nil, err
	}

	feature := repository.ChatFeature{
		ChatID:     chatID,
		FeatureKey: key,
		Enabled:    enabled,
	}
	if existing != nil {
		feature.EnabledAt = existing.EnabledAt
		feature.EnabledBy = existing.EnabledBy
	}
	if enabled && (existing == nil || !existing.Enabled) {
		now := time.Now()
		feature.EnabledAt = &now
		feature.EnabledBy = &actorID
	}

	if err := s.repos.Features.Upsert(ctx, &feature); err != nil {
		return nil, err
	}
	return &FeatureStatus{
		FeatureKey: key,
		Enabled:    feature.Enabled,
		EnabledAt:  feature.EnabledAt,
		EnabledBy:  feature.EnabledBy,
	}, nil
}

func knownFeature(key string) bool {
	for _, k := range KnownFeatures {
		if k == key {
			return true
		}
	}
	return false
}
