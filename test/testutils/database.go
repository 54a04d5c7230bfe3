//go:build integration

// Package testutils provides common testing utilities and infrastructure setup
package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alchemorsel/nutriplan/internal/infrastructure/persistence/migrations"
)

// TestDatabase provides a migrated PostgreSQL instance with cleanup
type TestDatabase struct {
	Container testcontainers.Container
	DB        *sql.DB
	GormDB    *gorm.DB
	DSN       string
	Host      string
	Port      int
	t         *testing.T
}

// DatabaseConfig holds test database configuration
type DatabaseConfig struct {
	Image    string
	Database string
	Username string
	Password string
	Port     string
}

// DefaultDatabaseConfig returns the default test database configuration
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Image:    "postgres:15-alpine",
		Database: "nutriplan_test",
		Username: "test_user",
		Password: "test_password",
		Port:     "5432",
	}
}

// SetupTestDatabase starts PostgreSQL and applies the catalog migrations
func SetupTestDatabase(t *testing.T) *TestDatabase {
	return SetupTestDatabaseWithConfig(t, DefaultDatabaseConfig())
}

// SetupTestDatabaseWithConfig creates a test database with custom configuration
func SetupTestDatabaseWithConfig(t *testing.T, cfg DatabaseConfig) *TestDatabase {
	ctx := context.Background()
	port := nat.Port(cfg.Port + "/tcp")

	dsnFor := func(host string, p nat.Port) string {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.Username, cfg.Password, host, p.Port(), cfg.Database)
	}

	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        cfg.Image,
				ExposedPorts: []string{string(port)},
				Env: map[string]string{
					"POSTGRES_DB":       cfg.Database,
					"POSTGRES_USER":     cfg.Username,
					"POSTGRES_PASSWORD": cfg.Password,
				},
				WaitingFor: wait.ForAll(
					wait.ForLog("database system is ready to accept connections").
						WithOccurrence(2).
						WithStartupTimeout(60*time.Second),
					wait.ForSQL(port, "pgx", func(host string, p nat.Port) string {
						return dsnFor(host, p)
					}),
				),
				Tmpfs: map[string]string{
					"/var/lib/postgresql/data": "rw,noexec,nosuid,size=256m",
				},
			},
			Started: true,
		})
	require.NoError(t, err, "Failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mapped, err := container.MappedPort(ctx, port)
	require.NoError(t, err)

	dsn := dsnFor(host, mapped)

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to create GORM connection")

	db, err := gormDB.DB()
	require.NoError(t, err)
	require.NoError(t, db.PingContext(ctx), "Failed to ping test database")

	testDB := &TestDatabase{
		Container: container,
		DB:        db,
		GormDB:    gormDB,
		DSN:       dsn,
		Host:      host,
		Port:      mapped.Int(),
		t:         t,
	}
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, testDB.RunMigrations(), "Failed to migrate test database")
	return testDB
}

// RunMigrations applies the embedded schema
func (td *TestDatabase) RunMigrations() error {
	m, err := migrations.New(td.DB, DefaultDatabaseConfig().Database, zaptest.NewLogger(td.t))
	if err != nil {
		return err
	}
	return m.Up()
}

// TruncateAllTables removes all catalog rows while preserving structure
func (td *TestDatabase) TruncateAllTables() error {
	_, err := td.DB.Exec("TRUNCATE TABLE foods, catalog_versions")
	return err
}

// TestRedis provides a Redis instance with cleanup
type TestRedis struct {
	Container testcontainers.Container
	Client    redis.UniversalClient
	Host      string
	Port      int
}

// SetupTestRedis starts Redis and returns a connected client
func SetupTestRedis(t *testing.T) *TestRedis {
	ctx := context.Background()
	port := nat.Port("6379/tcp")

	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{string(port)},
				WaitingFor: wait.ForLog("Ready to accept connections").
					WithStartupTimeout(30 * time.Second),
			},
			Started: true,
		})
	require.NoError(t, err, "Failed to start redis container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mapped, err := container.MappedPort(ctx, port)
	require.NoError(t, err)

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{fmt.Sprintf("%s:%s", host, mapped.Port())},
	})
	require.NoError(t, client.Ping(ctx).Err(), "Failed to ping redis")
	t.Cleanup(func() { _ = client.Close() })

	return &TestRedis{Container: container, Client: client, Host: host, Port: mapped.Int()}
}
