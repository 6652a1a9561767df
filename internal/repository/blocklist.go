package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type BlocklistRepository interface {
	Add(ctx context.Context, entry *BlocklistEntry) error
	Remove(ctx context.Context, id int64) (bool, error)
	// FindCandidates returns the chat's own patterns plus the global ones
	// (chat_id IS NULL), ordered by creation time so that ties on severity
	// resolve to the oldest pattern.
	FindCandidates(ctx context.Context, chatID int64) ([]BlocklistEntry, error)
	ListByChat(ctx context.Context, chatID int64) ([]BlocklistEntry, error)
	ListGlobal(ctx context.Context) ([]BlocklistEntry, error)
}

type PostgresBlocklistRepository struct {
	db *gorm.DB
}

func NewBlocklistRepository(db *gorm.DB) BlocklistRepository {
	return &PostgresBlocklistRepository{db: db}
}

func (r *PostgresBlocklistRepository) Add(ctx context.Context, entry *BlocklistEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to add blocklist pattern: %w", err)
	}
	return nil
}

func (r *PostgresBlocklistRepository) Remove(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&BlocklistEntry{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to remove blocklist pattern: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresBlocklistRepository) FindCandidates(ctx context.Context, chatID int64) ([]BlocklistEntry, error) {
	var entries []BlocklistEntry
	err := r.db.WithContext(ctx).
		Where("chat_id = ? OR chat_id IS NULL", chatID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load blocklist patterns: %w", err)
	}
	return entries, nil
}

func (r *PostgresBlocklistRepository) ListByChat(ctx context.Context, chatID int64) ([]BlocklistEntry, error) {
	var entries []BlocklistEntry
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list blocklist patterns: %w", err)
	}
	return entries, nil
}

func (r *PostgresBlocklistRepository) ListGlobal(ctx context.Context) ([]BlocklistEntry, error) {
	var entries []BlocklistEntry
	err := r.db.WithContext(ctx).
		Where("chat_id IS NULL").
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list global blocklist patterns: %w", err)
	}
	return entries, nil
}
