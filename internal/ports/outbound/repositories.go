// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/onboarding"
)

// CatalogSource loads the food catalog once at startup
type CatalogSource interface {
	Name() string
	Load(ctx context.Context) (*food.Catalog, error)
}

// FoodRepository persists catalog records
type FoodRepository interface {
	Version(ctx context.Context) (string, error)
	FindAll(ctx context.Context) ([]food.Record, error)
	FindByID(ctx context.Context, id string) (food.Record, error)
	ReplaceAll(ctx context.Context, version string, records []food.Record) error
}

// SessionRepository stores onboarding sessions. Find returns
// onboarding.ErrSessionNotFound for unknown or expired sessions.
type SessionRepository interface {
	Save(ctx context.Context, session *onboarding.Session) error
	Find(ctx context.Context, id string) (*onboarding.Session, error)
	Delete(ctx context.Context, id string) error
}
