// Package sqlite opens the embedded SQLite catalog store used for local
// development and single-node deployments.
package sqlite

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/alchemorsel/nutriplan/internal/infrastructure/config"
	gormModels "github.com/alchemorsel/nutriplan/internal/infrastructure/persistence/gorm"
)

// SetupDatabase opens the SQLite database at cfg.Path and migrates the
// schema when cfg.AutoMigrate is set. An empty path opens an in-memory
// database.
func SetupDatabase(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dbPath := cfg.Path
	if dbPath == "" {
		dbPath = "file::memory:?cache=shared"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormModels.NewLogger(log, cfg.LogLevel, cfg.SlowQueryThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(gormModels.Models()...); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return db, nil
}
