package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FeatureRepository interface {
	List(ctx context.Context, chatID int64) ([]ChatFeature, error)
	Get(ctx context.Context, chatID int64, key string) (*ChatFeature, error)
	Upsert(ctx context.Context, feature *ChatFeature) error
}

type PostgresFeatureRepository struct {
	db *gorm.DB
}

func NewFeatureRepository(db *gorm.DB) FeatureRepository {
	return &PostgresFeatureRepository{db: db}
}

func (r *PostgresFeatureRepository) List(ctx context.Context, chatID int64) ([]ChatFeature, error) {
	var features []ChatFeature
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Find(&features).Error; err != nil {
		return nil, fmt.Errorf("failed to list chat features: %w", err)
	}
	return features, nil
}

func (r *PostgresFeatureRepository) Get(ctx context.Context, chatID int64, key string) (*ChatFeature, error) {
	var feature ChatFeature
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND feature_key = ?", chatID, key).
		First(&feature).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chat feature: %w", err)
	}
	return &feature, nil
}

func (r *PostgresFeatureRepository) Upsert(ctx context.Context, feature *ChatFeature) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}, {Name: "feature_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "enabled_at", "enabled_by"}),
	}).Create(feature).Error
	if err != nil {
		return fmt.Errorf("failed to upsert chat feature: %w", err)
	}
	return nil
}
