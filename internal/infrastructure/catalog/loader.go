package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/config"
	"github.com/alchemorsel/nutriplan/internal/ports/outbound"
	apperrors "github.com/alchemorsel/nutriplan/pkg/errors"
)

// NewSource picks the source named by cfg.Source. repo is only used by the
// database source and may be nil otherwise.
func NewSource(cfg config.CatalogConfig, repo outbound.FoodRepository) (outbound.CatalogSource, error) {
	switch cfg.Source {
	case "", config.CatalogEmbedded:
		return EmbeddedSource{}, nil
	case config.CatalogFile:
		return &FileSource{Path: cfg.Path}, nil
	case config.CatalogS3:
		return NewS3Source(cfg.S3)
	case config.CatalogDatabase:
		if repo == nil {
			return nil, fmt.Errorf("catalog source %q needs a database", cfg.Source)
		}
		var seed *food.Catalog
		if cfg.SeedDatabase {
			c, err := food.DefaultCatalog()
			if err != nil {
				return nil, err
			}
			seed = c
		}
		return NewDatabaseSource(repo, seed), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}

// Load reads the catalog once. Failures surface as CATALOG_UNAVAILABLE.
func Load(ctx context.Context, src outbound.CatalogSource, logger *zap.Logger) (*food.Catalog, error) {
	start := time.Now()

	c, err := src.Load(ctx)
	if err != nil {
		logger.Error("Failed to load food catalog", zap.String("source", src.Name()), zap.Error(err))
		return nil, apperrors.NewAppError(
			apperrors.CodeCatalogUnavailable,
			"Food catalog unavailable",
			fmt.Sprintf("Failed to load catalog from %s source", src.Name()),
		).WithCause(err)
	}

	logger.Info("Food catalog loaded",
		zap.String("source", src.Name()),
		zap.String("version", c.Version()),
		zap.Int("foods", c.Len()),
		zap.Duration("duration", time.Since(start)),
	)
	return c, nil
}
