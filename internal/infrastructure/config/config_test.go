package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "nutriplan", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, CatalogEmbedded, cfg.Catalog.Source)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 3, cfg.Planner.MaxAttempts)
	assert.Equal(t, "drop", cfg.Planner.PortionPolicy)
	assert.Equal(t, 0.09, cfg.Planner.MaxTolerance)
	assert.Equal(t, StoreMemory, cfg.Onboarding.Store)
	assert.Equal(t, 30*time.Minute, cfg.Onboarding.SessionTTL)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nutriplan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  environment: production
planner:
  portion_policy: raise
  seed: 42
catalog:
  source: file
  path: /srv/catalog.json
`), 0o600))

	t.Setenv("NUTRIPLAN_SERVER_PORT", "9191")
	t.Setenv("NUTRIPLAN_PLANNER_MAX_ATTEMPTS", "5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "raise", cfg.Planner.PortionPolicy)
	assert.Equal(t, uint64(42), cfg.Planner.Seed)
	assert.Equal(t, CatalogFile, cfg.Catalog.Source)
	assert.Equal(t, "/srv/catalog.json", cfg.Catalog.Path)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Planner.MaxAttempts)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("planner: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func validConfig(t *testing.T) Config {
	t.Helper()
	cfg, err := Load("")
	require.NoError(t, err)
	return *cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"catalog source", func(c *Config) { c.Catalog.Source = "ftp" }, "catalog.source"},
		{"file path", func(c *Config) { c.Catalog.Source = CatalogFile }, "catalog.path"},
		{"s3 bucket", func(c *Config) { c.Catalog.Source = CatalogS3 }, "catalog.s3.bucket"},
		{"driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"attempts", func(c *Config) { c.Planner.MaxAttempts = 0 }, "planner.max_attempts"},
		{"policy", func(c *Config) { c.Planner.PortionPolicy = "round" }, "planner.portion_policy"},
		{"portions", func(c *Config) { c.Planner.MaxPortion = 10 }, "planner.min_portion"},
		{"portion floor", func(c *Config) { c.Planner.MinPortion = 10 }, "planner.min_portion must be at least 15g"},
		{"portion ceiling", func(c *Config) { c.Planner.MaxPortion = 700 }, "planner.max_portion must not exceed 600g"},
		{"tolerance", func(c *Config) { c.Planner.MaxTolerance = 0.01 }, "planner.max_tolerance"},
		{"store", func(c *Config) { c.Onboarding.Store = "disk" }, "onboarding.store"},
		{"sampling", func(c *Config) { c.Monitoring.SamplingRate = 2 }, "monitoring.sampling_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidate_PortionBoundsInclusive(t *testing.T) {
	cfg := validConfig(t)
	cfg.Planner.MinPortion = 15
	cfg.Planner.MaxPortion = 600

	assert.NoError(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	cfg := Config{Database: DatabaseConfig{
		Host: "primary", Port: 5432, Username: "u", Password: "p", Database: "nutriplan", SSLMode: "disable",
	}, Redis: RedisConfig{Host: "cache", Port: 6379}}

	assert.Equal(t, "host=primary port=5432 user=u password=p dbname=nutriplan sslmode=disable", cfg.GetDSN())
	assert.Equal(t, "host=replica port=5432 user=u password=p dbname=nutriplan sslmode=disable", cfg.Database.DSN("replica"))
	assert.Equal(t, "cache:6379", cfg.RedisAddr())
}
