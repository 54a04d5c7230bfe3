//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/catalog"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/config"
	gormrepo "github.com/alchemorsel/nutriplan/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/persistence/postgres"
	"github.com/alchemorsel/nutriplan/test/testutils"
)

type PostgresCatalogTestSuite struct {
	suite.Suite
	ctx context.Context
	db  *testutils.TestDatabase
	cm  *postgres.ConnectionManager
}

func (s *PostgresCatalogTestSuite) SetupSuite() {
	s.ctx = context.Background()
	s.db = testutils.SetupTestDatabase(s.T())

	defaults := testutils.DefaultDatabaseConfig()
	cm, err := postgres.NewConnectionManager(config.DatabaseConfig{
		Driver:          "postgres",
		Host:            s.db.Host,
		Port:            s.db.Port,
		Database:        defaults.Database,
		Username:        defaults.Username,
		Password:        defaults.Password,
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
		LogLevel:        "warn",
	}, zaptest.NewLogger(s.T()))
	s.Require().NoError(err)
	s.cm = cm
}

func (s *PostgresCatalogTestSuite) TearDownSuite() {
	if s.cm != nil {
		_ = s.cm.Close()
	}
}

func (s *PostgresCatalogTestSuite) SetupTest() {
	s.Require().NoError(s.db.TruncateAllTables())
}

func (s *PostgresCatalogTestSuite) TestMigrateIsIdempotent() {
	s.Require().NoError(s.cm.Migrate())
	s.Require().NoError(s.cm.HealthCheck(s.ctx))
}

func (s *PostgresCatalogTestSuite) TestDatabaseSourceSeedsEmptyStore() {
	seed := testutils.DefaultCatalog()
	repo := gormrepo.NewFoodRepository(s.cm.DB())

	loaded, err := catalog.Load(s.ctx, catalog.NewDatabaseSource(repo, seed), zaptest.NewLogger(s.T()))
	s.Require().NoError(err)
	s.Equal(seed.Len(), loaded.Len())
	s.Equal(seed.Version(), loaded.Version())

	version, err := repo.Version(s.ctx)
	s.Require().NoError(err)
	s.Equal(seed.Version(), version)
}

func (s *PostgresCatalogTestSuite) TestReplaceAllRoundTrip() {
	seed := testutils.DefaultCatalog()
	repo := gormrepo.NewFoodRepository(s.cm.DB())
	s.Require().NoError(repo.ReplaceAll(s.ctx, "pg-v1", seed.All()))

	want, err := seed.Get("tofu_firm")
	s.Require().NoError(err)
	got, err := repo.FindByID(s.ctx, "tofu_firm")
	s.Require().NoError(err)
	s.Equal(want, got)

	_, err = repo.FindByID(s.ctx, "dragonfruit_jerky")
	s.ErrorIs(err, food.ErrFoodNotFound)
}

func TestPostgresCatalogTestSuite(t *testing.T) {
	suite.Run(t, new(PostgresCatalogTestSuite))
}
