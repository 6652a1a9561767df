package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/AndVl1/chatkeep-sub003/internal/metrics"
	"github.com/AndVl1/chatkeep-sub003/internal/repository"
)

// StoreOrGetMedia stores the content under its digest and returns the hash.
// Storing the same bytes twice converges on a single row; the insert is a
// no-op when the hash already exists.
func (s *ModerationService) StoreOrGetMedia(ctx context.Context, content []byte, mimeType string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "StoreOrGetMedia")
	defer span.End()

	if len(content) == 0 {
		return "", fmt.Errorf("%w: empty media content", ErrValidation)
	}
	hash := ContentHash(content)

	existing, err := s.repos.Media.GetByHash(ctx, hash)
	if err != nil {
		return "", err
	}
	if existing != nil {
		metrics.MediaDedupHits.Inc()
		return hash, nil
	}

	err = s.repos.Media.InsertIfAbsent(ctx, &repository.MediaFile{
		Hash:      hash,
		Content:   content,
		MimeType:  mimeType,
		FileSize:  int64(len(content)),
		CreatedAt: time.Now(),
	})
	if err != nil {
		return "", err
	}
	return hash, nil
}

func (s *ModerationService) GetFileReference(ctx context.Context, hash string) (string, bool, error) {
	ctx, span := s.tracer.Start(ctx, "GetFileReference")
	defer span.End()

	file, err := s.repos.Media.GetByHash(ctx, hash)
	if err != nil {
		return "", false, err
	}
	if file == nil {
		return "", false, fmt.Errorf("%w: media %s", ErrNotFound, hash)
	}
	if file.TelegramFileID == nil {
		return "", false, nil
	}
	return *file.TelegramFileID, true, nil
}

// RecordFileReference attaches the platform file id to the hash row. It is
// idempotent and never overwrites a reference recorded earlier.
func (s *ModerationService) RecordFileReference(ctx context.Context, hash, fileID string) error {
	ctx, span := s.tracer.Start(ctx, "RecordFileReference")
	defer span.End()

	if fileID == "" {
		return fmt.Errorf("%w: empty file id", ErrValidation)
	}
	file, err := s.repos.Media.GetByHash(ctx, hash)
	if err != nil {
		return err
	}
	if file == nil {
		return fmt.Errorf("%w: media %s", ErrNotFound, hash)
	}
	if _, err := s.repos.Media.SetFileID(ctx, hash, fileID); err != nil {
		return err
	}
	return nil
}

// ResolveFileID returns a reusable platform file id for the stored content,
// uploading it through the port only when no reference exists yet. The
// reference is recorded strictly after the upload port confirms success.
func (s *ModerationService) ResolveFileID(ctx context.Context, hash, mediaType string, chatID int64) (string, error) {
	ctx, span := s.tracer.Start(ctx, "ResolveFileID")
	defer span.End()

	file, err := s.repos.Media.GetByHash(ctx, hash)
	if err != nil {
		return "", err
	}
	if file == nil {
		return "", fmt.Errorf("%w: media %s", ErrNotFound, hash)
	}
	if file.TelegramFileID != nil {
		metrics.MediaDedupHits.Inc()
		return *file.TelegramFileID, nil
	}

	if s.ports.MediaUpload == nil {
		return "", fmt.Errorf("media upload port not configured")
	}
	fileID, err := s.ports.MediaUpload.Upload(ctx, file.Content, mediaType, chatID)
	if err != nil {
		return "", fmt.Errorf("media upload failed: %w", err)
	}

	recorded, err := s.repos.Media.SetFileID(ctx, hash, fileID)
	if err != nil {
		return "", err
	}
	if !recorded {
		// A concurrent upload won the race; reuse its reference.
		if current, getErr := s.repos.Media.GetByHash(ctx, hash); getErr == nil &&
			current != nil && current.TelegramFileID != nil {
			return *current.TelegramFileID, nil
		}
	}
	return fileID, nil
}

// ContentHash computes the content-addressing digest used as the media
// storage key.
func ContentHash(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}
