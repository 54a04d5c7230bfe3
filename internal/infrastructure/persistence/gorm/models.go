// Package gorm provides GORM model definitions and repositories for the food
// catalog.
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// FoodModel represents the GORM model for catalog records. Nutrients are per
// 100 g.
type FoodModel struct {
	ID         string      `gorm:"type:varchar(64);primaryKey"`
	Name       string      `gorm:"type:varchar(255);not null"`
	Category   string      `gorm:"type:varchar(32);not null;index"`
	Calories   float64     `gorm:"not null"`
	Protein    float64     `gorm:"not null"`
	Carbs      float64     `gorm:"not null"`
	Fat        float64     `gorm:"not null"`
	Fiber      float64     `gorm:"not null;default:0"`
	Tags       StringSlice `gorm:"type:json"`
	Allergens  StringSlice `gorm:"type:json"`
	MaxPortion int         `gorm:"default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name
func (FoodModel) TableName() string { return "foods" }

// CatalogVersionModel records each catalog import
type CatalogVersionModel struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	Version    string    `gorm:"type:varchar(64);not null"`
	FoodCount  int       `gorm:"not null"`
	ImportedAt time.Time `gorm:"not null;index"`
}

// TableName specifies the table name
func (CatalogVersionModel) TableName() string { return "catalog_versions" }

// StringSlice custom type for handling string arrays
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
