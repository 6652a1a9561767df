package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatsRepository interface {
	Increment(ctx context.Context, chatID int64, field string) error
	GetTotals(ctx context.Context, chatID int64) (*ChatStats, error)
}

type PostgresStatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &PostgresStatsRepository{db: db}
}

var statFields = map[string]struct{}{
	"lock_blocks":     {},
	"blocklist_hits":  {},
	"flood_triggers":  {},
	"warnings_issued": {},
	"escalations":     {},
}

func (r *PostgresStatsRepository) Increment(ctx context.Context, chatID int64, field string) error {
	if _, ok := statFields[field]; !ok {
		return fmt.Errorf("unknown stat field: %s", field)
	}
	day := time.Now().Truncate(24 * time.Hour)
	row := ChatStats{ChatID: chatID, Date: day}
	switch field {
	case "lock_blocks":
		row.LockBlocks = 1
	case "blocklist_hits":
		row.BlocklistHits = 1
	case "flood_triggers":
		row.FloodTriggers = 1
	case "warnings_issued":
		row.WarningsIssued = 1
	case "escalations":
		row.Escalations = 1
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chat_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			field: clause.Expr{SQL: "chat_stats." + field + " + 1"},
		}),
	}).Create(&row).Error
}

func (r *PostgresStatsRepository) GetTotals(ctx context.Context, chatID int64) (*ChatStats, error) {
	var stats ChatStats
	err := r.db.WithContext(ctx).Model(&ChatStats{}).
		Select("chat_id, SUM(lock_blocks) as lock_blocks, SUM(blocklist_hits) as blocklist_hits, SUM(flood_triggers) as flood_triggers, SUM(warnings_issued) as warnings_issued, SUM(escalations) as escalations").
		Where("chat_id = ?", chatID).
		Group("chat_id").
		First(&stats).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &ChatStats{ChatID: chatID}, nil
		}
		return nil, err
	}
	return &stats, nil
}
