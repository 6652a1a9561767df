package repository

import (
	"time"

	"github.com/lib/pq"
)

// ChatConfig holds the per-chat moderation knobs read on every decision.
type ChatConfig struct {
	ChatID                   int64          `gorm:"primaryKey;autoIncrement:false"`
	MaxWarnings              int            `gorm:"default:3"`
	WarningTTLHours          int            `gorm:"default:24"`
	ThresholdAction          string         `gorm:"size:20;default:mute"`
	ThresholdDurationMinutes int            `gorm:"default:60"`
	DefaultBlocklistAction   string         `gorm:"size:20;default:delete"`
	LogChannelID             int64          `gorm:"default:0"`
	CleanServiceEnabled      bool           `gorm:"default:false"`
	CleanServiceTypes        pq.StringArray `gorm:"type:text[]"`
	LockWarnsEnabled         bool           `gorm:"default:false"`
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// Warning is active while ExpiresAt is in the future.
type Warning struct {
	ID         int64     `gorm:"primaryKey"`
	ChatID     int64     `gorm:"not null;index:idx_warnings_chat_user_expires,priority:1"`
	UserID     int64     `gorm:"not null;index:idx_warnings_chat_user_expires,priority:2"`
	IssuedByID int64     `gorm:"not null"`
	Reason     string    `gorm:"size:255"`
	CreatedAt  time.Time `gorm:"not null"`
	ExpiresAt  time.Time `gorm:"not null;index:idx_warnings_chat_user_expires,priority:3"`
}

// Punishment is an append-only audit record; rows are never updated.
type Punishment struct {
	ID              string `gorm:"primaryKey;size:36"`
	ChatID          int64  `gorm:"not null;index:idx_punishments_chat_created,priority:1"`
	UserID          int64  `gorm:"not null;index"`
	IssuedByID      int64  `gorm:"not null"`
	Type            string `gorm:"size:20;not null"`
	DurationSeconds *int64
	Reason          string    `gorm:"size:255"`
	Source          string    `gorm:"size:30"`
	CreatedAt       time.Time `gorm:"not null;index:idx_punishments_chat_created,priority:2"`
}

// BlocklistEntry with a nil ChatID applies to every chat.
type BlocklistEntry struct {
	ID                    int64  `gorm:"primaryKey"`
	ChatID                *int64 `gorm:"index"`
	Pattern               string `gorm:"size:255;not null"`
	MatchType             string `gorm:"size:10;not null"`
	Action                string `gorm:"size:20;not null"`
	ActionDurationMinutes *int
	Severity              int       `gorm:"not null;default:1"`
	CreatedAt             time.Time `gorm:"not null"`
}

// ChatLock is one row per (chat, lock type); absence means unlocked.
type ChatLock struct {
	ID        int64  `gorm:"primaryKey"`
	ChatID    int64  `gorm:"not null;index:idx_chat_locks,unique,priority:1"`
	LockType  string `gorm:"size:30;not null;index:idx_chat_locks,unique,priority:2"`
	Locked    bool   `gorm:"not null;default:false"`
	Reason    string `gorm:"size:255"`
	UpdatedAt time.Time
}

// LockExemption with a nil LockType exempts the subject from all locks.
type LockExemption struct {
	ID             int64   `gorm:"primaryKey"`
	ChatID         int64   `gorm:"not null;index"`
	LockType       *string `gorm:"size:30"`
	ExemptionType  string  `gorm:"size:20;not null"`
	ExemptionValue string  `gorm:"size:255;not null"`
	CreatedAt      time.Time
}

type LockAllowlistEntry struct {
	ID            int64  `gorm:"primaryKey"`
	ChatID        int64  `gorm:"not null;index"`
	AllowlistType string `gorm:"size:20;not null"`
	Pattern       string `gorm:"size:255;not null"`
	CreatedAt     time.Time
}

type AntifloodSettings struct {
	ChatID                int64  `gorm:"primaryKey;autoIncrement:false"`
	Enabled               bool   `gorm:"default:false"`
	MaxMessages           int    `gorm:"default:10"`
	TimeWindowSeconds     int    `gorm:"default:10"`
	Action                string `gorm:"size:20;default:mute"`
	ActionDurationMinutes *int
	UpdatedAt             time.Time
}

// AdminCacheEntry past ExpiresAt counts as a miss, never as "not admin".
type AdminCacheEntry struct {
	ID        int64 `gorm:"primaryKey"`
	UserID    int64 `gorm:"not null;index:idx_admin_cache,unique,priority:1"`
	ChatID    int64 `gorm:"not null;index:idx_admin_cache,unique,priority:2"`
	IsAdmin   bool  `gorm:"not null"`
	CachedAt  time.Time
	ExpiresAt time.Time `gorm:"index"`
}

// MediaFile is keyed by the content digest; Content is immutable once
// stored and TelegramFileID is filled in after the first successful upload.
type MediaFile struct {
	Hash           string  `gorm:"primaryKey;size:32"`
	Content        []byte  `gorm:"not null"`
	MimeType       string  `gorm:"size:100"`
	FileSize       int64   `gorm:"not null"`
	TelegramFileID *string `gorm:"size:255"`
	CreatedAt      time.Time
}

// ChatFeature rows are absent for features that were never enabled.
type ChatFeature struct {
	ID         int64  `gorm:"primaryKey"`
	ChatID     int64  `gorm:"not null;index:idx_chat_features,unique,priority:1"`
	FeatureKey string `gorm:"size:50;not null;index:idx_chat_features,unique,priority:2"`
	Enabled    bool   `gorm:"not null;default:false"`
	EnabledAt  *time.Time
	EnabledBy  *int64
}

// ChatStats accumulates daily moderation counters per chat.
type ChatStats struct {
	ChatID         int64     `gorm:"primaryKey;autoIncrement:false"`
	Date           time.Time `gorm:"primaryKey;type:date"`
	LockBlocks     int64     `gorm:"default:0"`
	BlocklistHits  int64     `gorm:"default:0"`
	FloodTriggers  int64     `gorm:"default:0"`
	WarningsIssued int64     `gorm:"default:0"`
	Escalations    int64     `gorm:"default:0"`
}
