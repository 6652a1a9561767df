package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LockRepository interface {
	GetLocks(ctx context.Context, chatID int64) (map[string]ChatLock, error)
	SetLock(ctx context.Context, chatID int64, lockType string, locked bool, reason string) error

	AddExemption(ctx context.Context, e *LockExemption) error
	RemoveExemption(ctx context.Context, id int64) (bool, error)
	FindExemptions(ctx context.Context, chatID int64) ([]LockExemption, error)

	AddAllowlistEntry(ctx context.Context, e *LockAllowlistEntry) error
	RemoveAllowlistEntry(ctx context.Context, id int64) (bool, error)
	FindAllowlist(ctx context.Context, chatID int64) ([]LockAllowlistEntry, error)
}

type PostgresLockRepository struct {
	db *gorm.DB
}

func NewLockRepository(db *gorm.DB) LockRepository {
	return &PostgresLockRepository{db: db}
}

func (r *PostgresLockRepository) GetLocks(ctx context.Context, chatID int64) (map[string]ChatLock, error) {
	var rows []ChatLock
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load chat locks: %w", err)
	}
	locks := make(map[string]ChatLock, len(rows))
	for _, row := range rows {
		locks[row.LockType] = row
	}
	return locks, nil
}

func (r *PostgresLockRepository) SetLock(ctx context.Context, chatID int64, lockType string, locked bool, reason string) error {
	lock := ChatLock{
		ChatID:   chatID,
		LockType: lockType,
		Locked:   locked,
		Reason:   reason,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}, {Name: "lock_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"locked", "reason", "updated_at"}),
	}).Create(&lock).Error
	if err != nil {
		return fmt.Errorf("failed to set lock: %w", err)
	}
	return nil
}

func (r *PostgresLockRepository) AddExemption(ctx context.Context, e *LockExemption) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("failed to add exemption: %w", err)
	}
	return nil
}

func (r *PostgresLockRepository) RemoveExemption(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&LockExemption{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to remove exemption: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresLockRepository) FindExemptions(ctx context.Context, chatID int64) ([]LockExemption, error) {
	var exemptions []LockExemption
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Find(&exemptions).Error; err != nil {
		return nil, fmt.Errorf("failed to load exemptions: %w", err)
	}
	return exemptions, nil
}

func (r *PostgresLockRepository) AddAllowlistEntry(ctx context.Context, e *LockAllowlistEntry) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("failed to add allowlist entry: %w", err)
	}
	return nil
}

func (r *PostgresLockRepository) RemoveAllowlistEntry(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&LockAllowlistEntry{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to remove allowlist entry: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresLockRepository) FindAllowlist(ctx context.Context, chatID int64) ([]LockAllowlistEntry, error) {
	var entries []LockAllowlistEntry
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load allowlist: %w", err)
	}
	return entries, nil
}
