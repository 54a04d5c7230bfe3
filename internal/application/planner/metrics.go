package planner

import (
	"context"
	"time"

	"github.com/alchemorsel/nutriplan/internal/domain/mealplan"
)

// Metrics receives planner outcomes.
type Metrics interface {
	BudgetComputed(ctx context.Context, floorApplied bool)
	AttemptRejected(ctx context.Context, reason mealplan.Reason)
	PlanAccepted(ctx context.Context, attempts int, elapsed time.Duration)
	PlanFailed(ctx context.Context, reason mealplan.Reason)
}

type nopMetrics struct{}

func (nopMetrics) BudgetComputed(context.Context, bool)             {}
func (nopMetrics) AttemptRejected(context.Context, mealplan.Reason) {}
func (nopMetrics) PlanAccepted(context.Context, int, time.Duration) {}
func (nopMetrics) PlanFailed(context.Context, mealplan.Reason)      {}
