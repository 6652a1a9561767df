package repository

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
)

type ChatConfigRepository interface {
	GetConfig(chatID int64) (*ChatConfig, error)
	InitConfig(chatID int64) error
	UpdateConfig(cfg *ChatConfig) error
}

type CachedChatConfigRepository struct {
	db          *gorm.DB
	cache       sync.Map
	enableCache bool
}

type cachedConfig struct {
	cfg       *ChatConfig
	expiresAt time.Time
}

const configCacheTTL = 5 * time.Minute

func NewChatConfigRepository(db *gorm.DB, enableCache bool) ChatConfigRepository {
	return &CachedChatConfigRepository{
		db:          db,
		enableCache: enableCache,
	}
}

func defaultConfig(chatID int64) *ChatConfig {
	return &ChatConfig{
		ChatID:                   chatID,
		MaxWarnings:              3,
		WarningTTLHours:          24,
		ThresholdAction:          "mute",
		ThresholdDurationMinutes: 60,
		DefaultBlocklistAction:   "delete",
	}
}

func (r *CachedChatConfigRepository) GetConfig(chatID int64) (*ChatConfig, error) {
	if r.enableCache {
		if val, ok := r.cache.Load(chatID); ok {
			entry := val.(*cachedConfig)
			if time.Now().Before(entry.expiresAt) {
				return entry.cfg, nil
			}
			r.cache.Delete(chatID)
		}
	}
	var cfg ChatConfig
	err := r.db.First(&cfg, "chat_id = ?", chatID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if initErr := r.InitConfig(chatID); initErr != nil {
				return nil, fmt.Errorf("failed to init config on miss: %w", initErr)
			}
			return defaultConfig(chatID), nil
		}
		return nil, fmt.Errorf("failed to get chat config: %w", err)
	}
	if r.enableCache {
		r.cache.Store(chatID, &cachedConfig{
			cfg:       &cfg,
			expiresAt: time.Now().Add(configCacheTTL),
		})
	}
	return &cfg, nil
}

func (r *CachedChatConfigRepository) InitConfig(chatID int64) error {
	cfg := defaultConfig(chatID)
	if err := r.db.FirstOrCreate(cfg, ChatConfig{ChatID: chatID}).Error; err != nil {
		return fmt.Errorf("failed to init chat config: %w", err)
	}
	return nil
}

func (r *CachedChatConfigRepository) UpdateConfig(cfg *ChatConfig) error {
	if err := r.db.Save(cfg).Error; err != nil {
		return fmt.Errorf("failed to update chat config: %w", err)
	}
	if r.enableCache {
		r.cache.Store(cfg.ChatID, &cachedConfig{
			cfg:       cfg,
			expiresAt: time.Now().Add(configCacheTTL),
		})
	}
	return nil
}
