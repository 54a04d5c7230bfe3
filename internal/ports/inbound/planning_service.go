// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/mealplan"
	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
	"github.com/alchemorsel/nutriplan/internal/domain/onboarding"
)

// PlanningService is the engine's surface: budget computation and the full
// profile to plan pipeline.
type PlanningService interface {
	ComputeBudget(ctx context.Context, profile nutrition.Profile) (nutrition.Budget, error)
	ComputePlan(ctx context.Context, cmd ComputePlanCommand) (*PlanResult, error)
}

// ComputePlanCommand contains the input of one plan computation
type ComputePlanCommand struct {
	Profile nutrition.Profile
	Catalog *food.Catalog
	// Seed fixes the tie-break seed. Nil lets the service choose one.
	Seed *uint64
}

// PlanResult is an accepted plan and the budget it was validated against
type PlanResult struct {
	Plan     *mealplan.Plan
	Budget   nutrition.Budget
	Seed     uint64
	Attempts int
}

// OnboardingService drives onboarding conversations
type OnboardingService interface {
	StartSession(ctx context.Context) (*OnboardingReply, error)
	SendMessage(ctx context.Context, sessionID, text string) (*OnboardingReply, error)
}

// OnboardingReply is the response to one onboarding message
type OnboardingReply struct {
	SessionID string
	State     onboarding.State
	Text      string
	Profile   *nutrition.Profile
	Plan      *PlanResult
}
