package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdminCacheRepository interface {
	// GetValid returns nil when no entry exists or the entry has expired;
	// a stale row is a miss, never an answer.
	GetValid(ctx context.Context, userID, chatID int64) (*AdminCacheEntry, error)
	Upsert(ctx context.Context, entry *AdminCacheEntry) error
	Invalidate(ctx context.Context, userID, chatID int64) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type PostgresAdminCacheRepository struct {
	db *gorm.DB
}

func NewAdminCacheRepository(db *gorm.DB) AdminCacheRepository {
	return &PostgresAdminCacheRepository{db: db}
}

func (r *PostgresAdminCacheRepository) GetValid(ctx context.Context, userID, chatID int64) (*AdminCacheEntry, error) {
	var entry AdminCacheEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND chat_id = ? AND expires_at > ?", userID, chatID, time.Now()).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read admin cache: %w", err)
	}
	return &entry, nil
}

func (r *PostgresAdminCacheRepository) Upsert(ctx context.Context, entry *AdminCacheEntry) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_admin", "cached_at", "expires_at"}),
	}).Create(entry).Error
	if err != nil {
		return fmt.Errorf("failed to upsert admin cache entry: %w", err)
	}
	return nil
}

func (r *PostgresAdminCacheRepository) Invalidate(ctx context.Context, userID, chatID int64) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND chat_id = ?", userID, chatID).
		Delete(&AdminCacheEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to invalidate admin cache entry: %w", err)
	}
	return nil
}

func (r *PostgresAdminCacheRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", time.Now()).Delete(&AdminCacheEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete expired admin cache entries: %w", res.Error)
	}
	return res.RowsAffected, nil
}
