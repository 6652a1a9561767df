package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type PunishmentRepository interface {
	Add(ctx context.Context, p *Punishment) error
	ListByChat(ctx context.Context, chatID int64, offset, limit int) ([]Punishment, int64, error)
	ListByUser(ctx context.Context, chatID, userID int64, offset, limit int) ([]Punishment, int64, error)
}

type PostgresPunishmentRepository struct {
	db *gorm.DB
}

func NewPunishmentRepository(db *gorm.DB) PunishmentRepository {
	return &PostgresPunishmentRepository{db: db}
}

func (r *PostgresPunishmentRepository) Add(ctx context.Context, p *Punishment) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to record punishment: %w", err)
	}
	return nil
}

func (r *PostgresPunishmentRepository) ListByChat(ctx context.Context, chatID int64, offset, limit int) ([]Punishment, int64, error) {
	var punishments []Punishment
	var total int64
	query := r.db.WithContext(ctx).Model(&Punishment{}).Where("chat_id = ?", chatID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count punishments: %w", err)
	}
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&punishments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list punishments: %w", err)
	}
	return punishments, total, nil
}

func (r *PostgresPunishmentRepository) ListByUser(ctx context.Context, chatID, userID int64, offset, limit int) ([]Punishment, int64, error) {
	var punishments []Punishment
	var total int64
	query := r.db.WithContext(ctx).Model(&Punishment{}).Where("chat_id = ? AND user_id = ?", chatID, userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count punishments: %w", err)
	}
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&punishments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list punishments: %w", err)
	}
	return punishments, total, nil
}
