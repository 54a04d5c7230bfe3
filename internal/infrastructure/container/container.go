// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alchemorsel/nutriplan/internal/application/onboarding"
	"github.com/alchemorsel/nutriplan/internal/application/planner"
	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/mealplan"
	"github.com/alchemorsel/nutriplan/internal/domain/shared"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/catalog"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/config"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/http/server"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/monitoring"
	gormRepo "github.com/alchemorsel/nutriplan/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/persistence/postgres"
	redisRepo "github.com/alchemorsel/nutriplan/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/nutriplan/internal/ports/inbound"
	"github.com/alchemorsel/nutriplan/internal/ports/outbound"
	"github.com/alchemorsel/nutriplan/pkg/healthcheck"
	"github.com/alchemorsel/nutriplan/pkg/logger"
)

const catalogLoadTimeout = 30 * time.Second

// Module assembles the whole service. configPath may be empty.
func Module(configPath string) fx.Option {
	return fx.Options(
		ConfigModule(configPath),
		LoggerModule,
		TelemetryModule,
		DatabaseModule,
		CatalogModule,
		SessionModule,
		EventModule,
		ServiceModule,
		HTTPModule,
		LifecycleModule,
	)
}

// ConfigModule provides configuration
func ConfigModule(path string) fx.Option {
	return fx.Provide(func() (*config.Config, error) {
		return config.Load(path)
	})
}

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return NewLogger(cfg)
	},
)

// NewLogger builds the service logger from configuration
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Development: cfg.App.Debug,
		Service:     cfg.App.Name,
		Version:     cfg.App.Version,
	})
}

// TelemetryModule provides tracing, planner metrics and the HTTP collector
var TelemetryModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*monitoring.TelemetryProvider, error) {
		return monitoring.NewTelemetryProvider(monitoring.TelemetryConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			TracingEnabled: cfg.Monitoring.EnableTracing,
			TraceExporter:  cfg.Monitoring.TraceExporter,
			JaegerEndpoint: cfg.Monitoring.JaegerEndpoint,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			MetricsEnabled: cfg.Monitoring.EnableMetrics,
			Registerer:     prometheus.DefaultRegisterer,
		}, log)
	},
	func(tp *monitoring.TelemetryProvider) trace.Tracer {
		return tp.Tracer()
	},
	func() *monitoring.MetricsCollector {
		return monitoring.NewMetricsCollector(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	},
	fx.Annotate(
		func(tp *monitoring.TelemetryProvider) (*monitoring.PlanningMetrics, error) {
			return monitoring.NewPlanningMetrics(tp.Meter())
		},
		fx.As(new(planner.Metrics)),
	),
)

// Storage is the catalog database. DB and Foods are nil unless the catalog
// is read from a database.
type Storage struct {
	DB    *gorm.DB
	Foods outbound.FoodRepository
	close func() error
}

// SQL returns the underlying pool, or nil when there is no database
func (s *Storage) SQL() *sql.DB {
	if s.DB == nil {
		return nil
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return nil
	}
	return sqlDB
}

// Close releases the connection pool
func (s *Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// DatabaseModule provides the catalog database
var DatabaseModule = fx.Provide(NewStorage)

// NewStorage opens the configured database when the catalog lives there
func NewStorage(cfg *config.Config, log *zap.Logger) (*Storage, error) {
	if cfg.Catalog.Source != config.CatalogDatabase {
		return &Storage{}, nil
	}

	switch cfg.Database.Driver {
	case "postgres":
		cm, err := postgres.NewConnectionManager(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := cm.Migrate(); err != nil {
				_ = cm.Close()
				return nil, err
			}
		}
		return &Storage{DB: cm.DB(), Foods: gormRepo.NewFoodRepository(cm.DB()), close: cm.Close}, nil

	default:
		db, err := sqlite.SetupDatabase(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		s := &Storage{DB: db, Foods: gormRepo.NewFoodRepository(db)}
		s.close = func() error {
			if sqlDB := s.SQL(); sqlDB != nil {
				return sqlDB.Close()
			}
			return nil
		}
		return s, nil
	}
}

// CatalogModule loads the food catalog once at startup
var CatalogModule = fx.Provide(
	func(cfg *config.Config, storage *Storage, metrics *monitoring.MetricsCollector, log *zap.Logger) (*food.Catalog, error) {
		src, err := catalog.NewSource(cfg.Catalog, storage.Foods)
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), catalogLoadTimeout)
		defer cancel()

		c, err := catalog.Load(ctx, src, log)
		if err != nil {
			return nil, err
		}
		metrics.SetCatalogSize(c.Len())
		return c, nil
	},
)

// SessionStore holds the onboarding session repository. Redis is nil for
// the memory store.
type SessionStore struct {
	Repo   outbound.SessionRepository
	Redis  redis.UniversalClient
	memory *memory.SessionRepository
}

// SessionModule provides onboarding session storage
var SessionModule = fx.Provide(
	NewSessionStore,
	func(s *SessionStore) outbound.SessionRepository { return s.Repo },
)

// NewSessionStore connects the configured session store
func NewSessionStore(cfg *config.Config, log *zap.Logger) (*SessionStore, error) {
	ttl := cfg.Onboarding.SessionTTL
	if ttl <= 0 {
		ttl = onboarding.DefaultSessionTTL
	}

	if cfg.Onboarding.Store == config.StoreRedis {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := redisRepo.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &SessionStore{
			Repo:  redisRepo.NewSessionRepository(client, cfg.Redis.KeyPrefix, ttl, log),
			Redis: client,
		}, nil
	}

	repo := memory.NewSessionRepository(ttl)
	return &SessionStore{Repo: repo, memory: repo}, nil
}

// EventModule provides domain event handling
var EventModule = fx.Provide(
	fx.Annotate(
		func(log *zap.Logger) *EventDispatcher {
			d := NewEventDispatcher(log)
			RegisterPlanEventHandlers(d, log)
			return d
		},
		fx.As(new(shared.EventDispatcher)),
	),
)

// PlannerConfig maps configuration onto the planner's options
func PlannerConfig(cfg config.PlannerConfig) planner.Config {
	return planner.Config{
		MaxAttempts: cfg.MaxAttempts,
		Seed:        cfg.Seed,
		Allocator: mealplan.Options{
			Policy:        mealplan.PortionPolicy(cfg.PortionPolicy),
			MinPortion:    cfg.MinPortion,
			MaxPortion:    cfg.MaxPortion,
			BaseTolerance: cfg.BaseTolerance,
			ToleranceStep: cfg.ToleranceStep,
			MaxTolerance:  cfg.MaxTolerance,
		},
		Validator: mealplan.ValidatorOptions{
			Tolerance:  cfg.PlanTolerance,
			MinPortion: cfg.MinPortion,
		},
	}
}

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	fx.Annotate(
		func(
			cfg *config.Config,
			dispatcher shared.EventDispatcher,
			metrics planner.Metrics,
			tracer trace.Tracer,
			log *zap.Logger,
		) *planner.Service {
			return planner.NewService(PlannerConfig(cfg.Planner), dispatcher, metrics, tracer, log)
		},
		fx.As(new(inbound.PlanningService)),
	),
	fx.Annotate(
		func(
			cfg *config.Config,
			sessions outbound.SessionRepository,
			plans inbound.PlanningService,
			c *food.Catalog,
			log *zap.Logger,
		) *onboarding.Service {
			return onboarding.NewService(onboarding.Config{SessionTTL: cfg.Onboarding.SessionTTL}, sessions, plans, c, log)
		},
		fx.As(new(inbound.OnboardingService)),
	),
)

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger, tracer trace.Tracer) *middleware.Middleware {
		return middleware.New(cfg, log, tracer)
	},
	NewHealthCheck,
	func(
		cfg *config.Config,
		log *zap.Logger,
		plans inbound.PlanningService,
		chat inbound.OnboardingService,
		c *food.Catalog,
		metrics *monitoring.MetricsCollector,
	) server.Handlers {
		return server.Handlers{
			Planning:   handlers.NewPlanningHandler(plans, c, log),
			Foods:      handlers.NewFoodHandler(c),
			Onboarding: handlers.NewOnboardingHandler(chat, metrics, cfg.Server.AllowedOrigins, log),
			Tools:      handlers.NewToolHandler(plans, c),
		}
	},
	server.NewServer,
)

// NewHealthCheck registers a checker per dependency in use
func NewHealthCheck(cfg *config.Config, log *zap.Logger, c *food.Catalog, storage *Storage, sessions *SessionStore) *healthcheck.HealthCheck {
	health := healthcheck.New(cfg.App.Version, log)
	health.Register("catalog", healthcheck.NewCatalogChecker(c))
	if sqlDB := storage.SQL(); sqlDB != nil {
		health.Register("database", healthcheck.NewDatabaseChecker(sqlDB))
	}
	if sessions.Redis != nil {
		health.Register("redis", healthcheck.NewRedisChecker(sessions.Redis))
	}
	return health
}

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(RegisterLifecycleHooks)

// RegisterLifecycleHooks starts the listener and the session sweeper and
// releases every resource on stop.
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	srv *server.Server,
	telemetry *monitoring.TelemetryProvider,
	storage *Storage,
	sessions *SessionStore,
) {
	sweepCtx, stopSweep := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting nutriplan",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("catalog_source", cfg.Catalog.Source),
				zap.String("session_store", cfg.Onboarding.Store),
			)

			if sessions.memory != nil {
				go sessions.memory.Run(sweepCtx, time.Minute)
			}

			go func() {
				if err := srv.Start(); err != nil {
					log.Error("HTTP server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down nutriplan")
			stopSweep()

			var errs []error
			if err := srv.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("http server: %w", err))
			}
			if err := telemetry.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("telemetry: %w", err))
			}
			if err := storage.Close(); err != nil {
				errs = append(errs, fmt.Errorf("database: %w", err))
			}
			if sessions.Redis != nil {
				if err := sessions.Redis.Close(); err != nil {
					errs = append(errs, fmt.Errorf("redis: %w", err))
				}
			}

			_ = log.Sync()
			return errors.Join(errs...)
		},
	})
}
