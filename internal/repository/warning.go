package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type WarningRepository interface {
	// AddAndCount inserts a warning and returns the active count afterwards.
	// When the count reaches maxWarnings it clears all active warnings for
	// the (chat, user) pair in the same transaction and reports escalated.
	AddAndCount(ctx context.Context, w *Warning, maxWarnings int) (count int, escalated bool, err error)
	CountActive(ctx context.Context, chatID, userID int64) (int, error)
	CountAllActive(ctx context.Context) (int64, error)
	ListActive(ctx context.Context, chatID, userID int64, offset, limit int) ([]Warning, int64, error)
	RemoveMostRecent(ctx context.Context, chatID, userID int64) (bool, error)
	ClearActive(ctx context.Context, chatID, userID int64) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type PostgresWarningRepository struct {
	db *gorm.DB
}

func NewWarningRepository(db *gorm.DB) WarningRepository {
	return &PostgresWarningRepository{db: db}
}

func (r *PostgresWarningRepository) AddAndCount(ctx context.Context, w *Warning, maxWarnings int) (int, bool, error) {
	var count int64
	escalated := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(w).Error; err != nil {
			return fmt.Errorf("failed to create warning: %w", err)
		}
		if err := tx.Model(&Warning{}).
			Where("chat_id = ? AND user_id = ? AND expires_at > ?", w.ChatID, w.UserID, time.Now()).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count warnings: %w", err)
		}
		if maxWarnings > 0 && count >= int64(maxWarnings) {
			if err := tx.
				Where("chat_id = ? AND user_id = ? AND expires_at > ?", w.ChatID, w.UserID, time.Now()).
				Delete(&Warning{}).Error; err != nil {
				return fmt.Errorf("failed to clear warnings after threshold: %w", err)
			}
			escalated = true
		}
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return int(count), escalated, nil
}

func (r *PostgresWarningRepository) CountActive(ctx context.Context, chatID, userID int64) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Warning{}).
		Where("chat_id = ? AND user_id = ? AND expires_at > ?", chatID, userID, time.Now()).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count warnings: %w", err)
	}
	return int(count), nil
}

func (r *PostgresWarningRepository) CountAllActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Warning{}).
		Where("expires_at > ?", time.Now()).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count warnings: %w", err)
	}
	return count, nil
}

func (r *PostgresWarningRepository) ListActive(ctx context.Context, chatID, userID int64, offset, limit int) ([]Warning, int64, error) {
	var warnings []Warning
	var total int64
	query := r.db.WithContext(ctx).Model(&Warning{}).
		Where("chat_id = ? AND user_id = ? AND expires_at > ?", chatID, userID, time.Now())
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count warnings: %w", err)
	}
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&warnings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list warnings: %w", err)
	}
	return warnings, total, nil
}

func (r *PostgresWarningRepository) RemoveMostRecent(ctx context.Context, chatID, userID int64) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var w Warning
		err := tx.
			Where("chat_id = ? AND user_id = ? AND expires_at > ?", chatID, userID, time.Now()).
			Order("created_at DESC").
			First(&w).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return fmt.Errorf("failed to find warning: %w", err)
		}
		if err := tx.Delete(&w).Error; err != nil {
			return fmt.Errorf("failed to remove warning: %w", err)
		}
		removed = true
		return nil
	})
	return removed, err
}

func (r *PostgresWarningRepository) ClearActive(ctx context.Context, chatID, userID int64) error {
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ? AND expires_at > ?", chatID, userID, time.Now()).
		Delete(&Warning{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear warnings: %w", err)
	}
	return nil
}

func (r *PostgresWarningRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", time.Now()).Delete(&Warning{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete expired warnings: %w", res.Error)
	}
	return res.RowsAffected, nil
}
