package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/ports/outbound"
)

const insertBatchSize = 100

// FoodRepository implements the food repository interface using GORM
type FoodRepository struct {
	db *gorm.DB
}

var _ outbound.FoodRepository = (*FoodRepository)(nil)

// NewFoodRepository creates a new food repository
func NewFoodRepository(db *gorm.DB) *FoodRepository {
	return &FoodRepository{db: db}
}

// Version returns the version of the latest import, or "" when the catalog
// was never imported.
func (r *FoodRepository) Version(ctx context.Context) (string, error) {
	var model CatalogVersionModel

	result := r.db.WithContext(ctx).Order("id DESC").Limit(1).Find(&model)
	if result.Error != nil {
		return "", result.Error
	}
	if result.RowsAffected == 0 {
		return "", nil
	}
	return model.Version, nil
}

// FindAll returns every record ordered by ID
func (r *FoodRepository) FindAll(ctx context.Context) ([]food.Record, error) {
	var models []FoodModel

	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]food.Record, 0, len(models))
	for _, m := range models {
		rec, err := ModelToRecord(m)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// FindByID finds a record by ID
func (r *FoodRepository) FindByID(ctx context.Context, id string) (food.Record, error) {
	var model FoodModel

	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return food.Record{}, fmt.Errorf("%w: %s", food.ErrFoodNotFound, id)
	}
	if err != nil {
		return food.Record{}, err
	}
	return ModelToRecord(model)
}

// ReplaceAll swaps the stored catalog for records in one transaction and
// records the import.
func (r *FoodRepository) ReplaceAll(ctx context.Context, version string, records []food.Record) error {
	models := make([]FoodModel, len(records))
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return err
		}
		models[i] = RecordToModel(rec)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&FoodModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear foods: %w", err)
		}
		if len(models) > 0 {
			if err := tx.CreateInBatches(models, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to insert foods: %w", err)
			}
		}
		return tx.Create(&CatalogVersionModel{
			Version:    version,
			FoodCount:  len(models),
			ImportedAt: time.Now().UTC(),
		}).Error
	})
}

// Catalog loads the stored records as a catalog
func (r *FoodRepository) Catalog(ctx context.Context) (*food.Catalog, error) {
	version, err := r.Version(ctx)
	if err != nil {
		return nil, err
	}
	records, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return food.NewCatalog(version, records)
}
