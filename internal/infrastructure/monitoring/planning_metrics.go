package monitoring

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/alchemorsel/nutriplan/internal/application/planner"
	"github.com/alchemorsel/nutriplan/internal/domain/mealplan"
)

// PlanningMetrics records planner outcomes as OpenTelemetry instruments.
type PlanningMetrics struct {
	budgets          metric.Int64Counter
	rejections       metric.Int64Counter
	plansAccepted    metric.Int64Counter
	plansFailed      metric.Int64Counter
	attemptsPerPlan  metric.Int64Histogram
	planningDuration metric.Float64Histogram
}

var _ planner.Metrics = (*PlanningMetrics)(nil)

// NewPlanningMetrics creates the planner instruments on meter.
func NewPlanningMetrics(meter metric.Meter) (*PlanningMetrics, error) {
	m := &PlanningMetrics{}

	var err error
	if m.budgets, err = meter.Int64Counter(
		"nutriplan.budgets.computed",
		metric.WithDescription("Budgets computed, by whether the calorie floor was applied"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, err
	}

	if m.rejections, err = meter.Int64Counter(
		"nutriplan.plan.attempts.rejected",
		metric.WithDescription("Allocation attempts rejected, by reason"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, err
	}

	if m.plansAccepted, err = meter.Int64Counter(
		"nutriplan.plans.accepted",
		metric.WithDescription("Plans that passed validation"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, err
	}

	if m.plansFailed, err = meter.Int64Counter(
		"nutriplan.plans.failed",
		metric.WithDescription("Plan computations that exhausted every attempt, by last reason"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, err
	}

	if m.attemptsPerPlan, err = meter.Int64Histogram(
		"nutriplan.plan.attempts",
		metric.WithDescription("Attempts needed for an accepted plan"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 5),
	); err != nil {
		return nil, err
	}

	if m.planningDuration, err = meter.Float64Histogram(
		"nutriplan.plan.duration",
		metric.WithDescription("Time to compute an accepted plan"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *PlanningMetrics) BudgetComputed(ctx context.Context, floorApplied bool) {
	m.budgets.Add(ctx, 1, metric.WithAttributes(attribute.Bool("floor_applied", floorApplied)))
}

func (m *PlanningMetrics) AttemptRejected(ctx context.Context, reason mealplan.Reason) {
	m.rejections.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", string(reason))))
}

func (m *PlanningMetrics) PlanAccepted(ctx context.Context, attempts int, elapsed time.Duration) {
	m.plansAccepted.Add(ctx, 1)
	m.attemptsPerPlan.Record(ctx, int64(attempts))
	m.planningDuration.Record(ctx, float64(elapsed.Microseconds())/1000)
}

func (m *PlanningMetrics) PlanFailed(ctx context.Context, reason mealplan.Reason) {
	m.plansFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", string(reason))))
}
