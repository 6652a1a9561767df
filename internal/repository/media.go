package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MediaRepository interface {
	GetByHash(ctx context.Context, hash string) (*MediaFile, error)
	// InsertIfAbsent is a no-op when a row with the same hash already
	// exists, making concurrent identical uploads converge on one row.
	InsertIfAbsent(ctx context.Context, file *MediaFile) error
	// SetFileID attaches the platform file id only when none is recorded
	// yet; the first writer wins.
	SetFileID(ctx context.Context, hash, fileID string) (bool, error)
	DeleteUnreferencedOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type PostgresMediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &PostgresMediaRepository{db: db}
}

func (r *PostgresMediaRepository) GetByHash(ctx context.Context, hash string) (*MediaFile, error) {
	var file MediaFile
	err := r.db.WithContext(ctx).First(&file, "hash = ?", hash).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get media file: %w", err)
	}
	return &file, nil
}

func (r *PostgresMediaRepository) InsertIfAbsent(ctx context.Context, file *MediaFile) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hash"}},
		DoNothing: true,
	}).Create(file).Error
	if err != nil {
		return fmt.Errorf("failed to store media file: %w", err)
	}
	return nil
}

func (r *PostgresMediaRepository) SetFileID(ctx context.Context, hash, fileID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&MediaFile{}).
		Where("hash = ? AND telegram_file_id IS NULL", hash).
		Update("telegram_file_id", fileID)
	if res.Error != nil {
		return false, fmt.Errorf("failed to record file reference: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresMediaRepository) DeleteUnreferencedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("telegram_file_id IS NULL AND created_at < ?", cutoff).
		Delete(&MediaFile{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete stale media files: %w", res.Error)
	}
	return res.RowsAffected, nil
}
