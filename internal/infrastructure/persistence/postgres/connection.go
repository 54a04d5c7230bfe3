// Package postgres provides the PostgreSQL catalog store with optional read
// replicas.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"github.com/alchemorsel/nutriplan/internal/infrastructure/config"
	gormModels "github.com/alchemorsel/nutriplan/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/persistence/migrations"
)

const pingTimeout = 10 * time.Second

// ConnectionManager owns the primary connection and its replicas
type ConnectionManager struct {
	cfg    config.DatabaseConfig
	logger *zap.Logger
	db     *gorm.DB
	sqlDB  *sql.DB
}

// NewConnectionManager connects to the primary, applies pool settings and
// registers read replicas.
func NewConnectionManager(cfg config.DatabaseConfig, log *zap.Logger) (*ConnectionManager, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cm := &ConnectionManager{cfg: cfg, logger: log.Named("postgres")}

	if err := cm.openPrimary(); err != nil {
		return nil, fmt.Errorf("failed to initialize primary connection: %w", err)
	}
	if err := cm.registerReplicas(); err != nil {
		cm.logger.Warn("Failed to initialize read replicas", zap.Error(err))
	}

	cm.logger.Info("Database connection manager initialized",
		zap.String("host", cfg.Host),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("replicas", len(cfg.Replicas)),
	)
	return cm, nil
}

func (cm *ConnectionManager) openPrimary() error {
	db, err := gorm.Open(postgres.Open(cm.cfg.DSN(cm.cfg.Host)), &gorm.Config{
		Logger:                 gormModels.NewLogger(cm.logger, cm.cfg.LogLevel, cm.cfg.SlowQueryThreshold),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cm.cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cm.cfg.MaxOpenConns)
	}
	if cm.cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cm.cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cm.cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cm.cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	cm.db = db
	cm.sqlDB = sqlDB
	return nil
}

// registerReplicas routes reads to the configured replica hosts
func (cm *ConnectionManager) registerReplicas() error {
	if len(cm.cfg.Replicas) == 0 {
		return nil
	}

	replicas := make([]gorm.Dialector, len(cm.cfg.Replicas))
	for i, host := range cm.cfg.Replicas {
		replicas[i] = postgres.Open(cm.cfg.DSN(host))
	}

	resolver := dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   dbresolver.RoundRobinPolicy(),
	})
	if cm.cfg.MaxOpenConns > 0 {
		resolver = resolver.SetMaxOpenConns(cm.cfg.MaxOpenConns)
	}
	if err := cm.db.Use(resolver); err != nil {
		return fmt.Errorf("failed to register read replicas: %w", err)
	}
	return nil
}

// Migrate applies pending schema migrations
func (cm *ConnectionManager) Migrate() error {
	m, err := migrations.New(cm.sqlDB, cm.cfg.Database, cm.logger)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil {
		return err
	}
	// Closing the migrator would close the shared *sql.DB.
	return nil
}

// DB returns the GORM handle
func (cm *ConnectionManager) DB() *gorm.DB {
	return cm.db
}

// HealthCheck pings the primary
func (cm *ConnectionManager) HealthCheck(ctx context.Context) error {
	if err := cm.sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("primary database ping failed: %w", err)
	}
	return nil
}

// Close closes the primary pool
func (cm *ConnectionManager) Close() error {
	return cm.sqlDB.Close()
}
