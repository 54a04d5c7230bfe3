package container

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/nutriplan/internal/domain/mealplan"
	"github.com/alchemorsel/nutriplan/internal/domain/shared"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/config"
)

type testEvent struct{ name string }

func (e testEvent) EventName() string     { return e.name }
func (e testEvent) OccurredAt() time.Time { return time.Time{} }

func TestModule_Validates(t *testing.T) {
	require.NoError(t, fx.ValidateApp(Module("")))
}

func TestEventDispatcher(t *testing.T) {
	d := NewEventDispatcher(zaptest.NewLogger(t))

	var seen []string
	d.Register("a", func(ctx context.Context, e shared.DomainEvent) error {
		seen = append(seen, "a1")
		return errors.New("boom")
	})
	d.Register("a", func(ctx context.Context, e shared.DomainEvent) error {
		seen = append(seen, "a2")
		return nil
	})

	err := d.Dispatch(context.Background(), testEvent{"a"}, testEvent{"unhandled"})

	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, seen)
}

func TestRegisterPlanEventHandlers(t *testing.T) {
	d := NewEventDispatcher(zaptest.NewLogger(t))
	RegisterPlanEventHandlers(d, zaptest.NewLogger(t))

	assert.Len(t, d.handlers, 3)
	assert.NoError(t, d.Dispatch(context.Background(),
		mealplan.NewPlanRejectedEvent(1, mealplan.ReasonMacroMismatch, mealplan.Breakfast, "too much fat"),
		mealplan.NewPlanGenerationFailedEvent(3, mealplan.ReasonMacroMismatch),
		mealplan.PlanAcceptedEvent{Seed: 7, Attempt: 2},
	))
}

func TestPlannerConfig(t *testing.T) {
	cfg := PlannerConfig(config.PlannerConfig{
		MaxAttempts:   5,
		Seed:          42,
		PortionPolicy: "raise",
		MinPortion:    20,
		MaxPortion:    400,
		BaseTolerance: 0.04,
		ToleranceStep: 0.01,
		MaxTolerance:  0.06,
		PlanTolerance: 0.08,
	})

	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, mealplan.RaiseToFloor, cfg.Allocator.Policy)
	assert.Equal(t, 400, cfg.Allocator.MaxPortion)
	assert.Equal(t, 0.08, cfg.Validator.Tolerance)
	assert.Equal(t, 20, cfg.Validator.MinPortion)
}

func TestNewStorage(t *testing.T) {
	log := zaptest.NewLogger(t)

	t.Run("embedded catalog needs no database", func(t *testing.T) {
		s, err := NewStorage(&config.Config{Catalog: config.CatalogConfig{Source: config.CatalogEmbedded}}, log)

		require.NoError(t, err)
		assert.Nil(t, s.DB)
		assert.Nil(t, s.Foods)
		assert.Nil(t, s.SQL())
		assert.NoError(t, s.Close())
	})

	t.Run("sqlite database", func(t *testing.T) {
		s, err := NewStorage(&config.Config{
			Catalog: config.CatalogConfig{Source: config.CatalogDatabase},
			Database: config.DatabaseConfig{
				Driver:      "sqlite",
				Path:        filepath.Join(t.TempDir(), "catalog.db"),
				LogLevel:    "warn",
				AutoMigrate: true,
			},
		}, log)
		require.NoError(t, err)
		defer s.Close()

		require.NotNil(t, s.Foods)
		version, err := s.Foods.Version(context.Background())
		require.NoError(t, err)
		assert.Empty(t, version)
		assert.NoError(t, s.SQL().PingContext(context.Background()))
	})
}

func TestNewSessionStore_Memory(t *testing.T) {
	s, err := NewSessionStore(&config.Config{Onboarding: config.OnboardingConfig{Store: config.StoreMemory}}, zaptest.NewLogger(t))

	require.NoError(t, err)
	assert.NotNil(t, s.Repo)
	assert.NotNil(t, s.memory)
	assert.Nil(t, s.Redis)
}
