package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AntifloodRepository interface {
	GetSettings(ctx context.Context, chatID int64) (*AntifloodSettings, error)
	UpsertSettings(ctx context.Context, settings *AntifloodSettings) error
}

type PostgresAntifloodRepository struct {
	db *gorm.DB
}

func NewAntifloodRepository(db *gorm.DB) AntifloodRepository {
	return &PostgresAntifloodRepository{db: db}
}

func (r *PostgresAntifloodRepository) GetSettings(ctx context.Context, chatID int64) (*AntifloodSettings, error) {
	var settings AntifloodSettings
	err := r.db.WithContext(ctx).First(&settings, "chat_id = ?", chatID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &AntifloodSettings{
				ChatID:            chatID,
				Enabled:           false,
				MaxMessages:       10,
				TimeWindowSeconds: 10,
				Action:            "mute",
			}, nil
		}
		return nil, fmt.Errorf("failed to get antiflood settings: %w", err)
	}
	return &settings, nil
}

func (r *PostgresAntifloodRepository) UpsertSettings(ctx context.Context, settings *AntifloodSettings) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"enabled", "max_messages", "time_window_seconds",
			"action", "action_duration_minutes", "updated_at",
		}),
	}).Create(settings).Error
	if err != nil {
		return fmt.Errorf("failed to upsert antiflood settings: %w", err)
	}
	return nil
}
