package repository

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	err = db.AutoMigrate(
		&ChatConfig{},
		&Warning{},
		&Punishment{},
		&BlocklistEntry{},
		&ChatLock{},
		&LockExemption{},
		&LockAllowlistEntry{},
		&AntifloodSettings{},
		&AdminCacheEntry{},
		&MediaFile{},
		&ChatFeature{},
		&ChatStats{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}
