// Package planner provides the application layer for budget and meal plan
// computation. It runs the bounded retry loop around the allocator and the
// validator and converts domain failures into application errors.
package planner

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/mealplan"
	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
	"github.com/alchemorsel/nutriplan/internal/domain/shared"
	"github.com/alchemorsel/nutriplan/internal/ports/inbound"
	apperrors "github.com/alchemorsel/nutriplan/pkg/errors"
)

// DefaultMaxAttempts bounds the retry loop.
const DefaultMaxAttempts = 3

// Config tunes the planner.
type Config struct {
	MaxAttempts int
	// Seed is used when a request does not carry one. Zero picks a random seed
	// per request.
	Seed      uint64
	Allocator mealplan.Options
	Validator mealplan.ValidatorOptions
}

// Service implements inbound.PlanningService.
type Service struct {
	cfg        Config
	allocator  *mealplan.Allocator
	validator  *mealplan.Validator
	dispatcher shared.EventDispatcher
	metrics    Metrics
	tracer     trace.Tracer
	logger     *zap.Logger
}

var _ inbound.PlanningService = (*Service)(nil)

// NewService creates a planner. Dispatcher, metrics and tracer are optional.
func NewService(
	cfg Config,
	dispatcher shared.EventDispatcher,
	metrics Metrics,
	tracer trace.Tracer,
	logger *zap.Logger,
) *Service {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if tracer == nil {
		tracer = otel.Tracer("github.com/alchemorsel/nutriplan/planner")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	allocator := mealplan.NewAllocator(cfg.Allocator)
	validator := mealplan.NewValidator(cfg.Validator)
	cfg.Allocator = allocator.Options()
	cfg.Validator = validator.Options()

	return &Service{
		cfg:        cfg,
		allocator:  allocator,
		validator:  validator,
		dispatcher: dispatcher,
		metrics:    metrics,
		tracer:     tracer,
		logger:     logger.Named("planner"),
	}
}

// Config returns the effective configuration.
func (s *Service) Config() Config { return s.cfg }

// ComputeBudget runs the goal calculator and the floor enforcer.
func (s *Service) ComputeBudget(ctx context.Context, profile nutrition.Profile) (nutrition.Budget, error) {
	ctx, span := s.tracer.Start(ctx, "planner.ComputeBudget")
	defer span.End()

	budget, err := s.budget(ctx, profile)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid profile")
		return nutrition.Budget{}, err
	}
	span.SetAttributes(
		attribute.Float64("budget.calories", budget.Calories),
		attribute.Bool("budget.floor_applied", budget.FloorApplied),
	)
	return budget, nil
}

func (s *Service) budget(ctx context.Context, profile nutrition.Profile) (nutrition.Budget, error) {
	budget, err := nutrition.ComputeBudget(profile)
	if err != nil {
		return nutrition.Budget{}, apperrors.NewInvalidProfileError(err)
	}
	if budget.FloorApplied {
		s.logger.Info("Calorie floor applied",
			zap.String("goal", string(profile.Goal)),
			zap.String("sex", string(profile.Sex)),
			zap.Float64("target", budget.Target),
			zap.Float64("floor", budget.Floor),
		)
	}
	s.metrics.BudgetComputed(ctx, budget.FloorApplied)
	return budget, nil
}

// run tracks one computation through the planner states.
type run struct {
	state    State
	attempt  int
	reason   mealplan.Reason
	slot     mealplan.Slot
	lastErr  error
	seed     uint64
	started  time.Time
	planSpan trace.Span
}

func (s *Service) transition(r *run, next State, fields ...zap.Field) {
	if !CanTransition(r.state, next) {
		s.logger.Error("Illegal planner transition",
			zap.String("from", string(r.state)),
			zap.String("to", string(next)),
		)
	}
	s.logger.Debug("Planner transition",
		append([]zap.Field{
			zap.String("from", string(r.state)),
			zap.String("to", string(next)),
			zap.Int("attempt", r.attempt),
		}, fields...)...,
	)
	r.planSpan.AddEvent(string(next), trace.WithAttributes(attribute.Int("attempt", r.attempt)))
	r.state = next
}

// ComputePlan runs budget computation, then up to MaxAttempts allocation and
// validation rounds. Attempt i uses seed base+i and the allocator's widened
// parameters for i. Only a validated plan is ever returned.
func (s *Service) ComputePlan(ctx context.Context, cmd inbound.ComputePlanCommand) (*inbound.PlanResult, error) {
	seed := s.seedFor(cmd.Seed)

	ctx, span := s.tracer.Start(ctx, "planner.ComputePlan",
		trace.WithAttributes(
			attribute.String("profile.goal", string(cmd.Profile.Goal)),
			attribute.String("profile.diet", string(cmd.Profile.Diet)),
			attribute.Int64("plan.seed", int64(seed)),
		),
	)
	defer span.End()

	r := &run{state: StateComputingBudget, seed: seed, started: time.Now(), planSpan: span}

	budget, err := s.budget(ctx, cmd.Profile)
	if err != nil {
		s.transition(r, StateFailed, zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid profile")
		return nil, err
	}
	s.transition(r, StateFloorChecked,
		zap.Float64("calories", budget.Calories),
		zap.Bool("floor_applied", budget.FloorApplied),
	)

	if cmd.Catalog == nil || cmd.Catalog.Len() == 0 {
		s.transition(r, StateFailed)
		err := apperrors.NewAppError(apperrors.CodeCatalogUnavailable, "Food catalog unavailable", "no catalog is loaded")
		span.SetStatus(codes.Error, "catalog unavailable")
		return nil, err
	}

	exclusions := food.ExclusionsFor(cmd.Profile)

	for r.attempt = 0; r.attempt < s.cfg.MaxAttempts; r.attempt++ {
		if err := ctx.Err(); err != nil {
			s.logger.Info("Plan computation cancelled", zap.Int("attempt", r.attempt), zap.Error(err))
			span.SetStatus(codes.Error, "cancelled")
			return nil, apperrors.NewAppError(apperrors.CodeRequestTimeout, "Plan computation cancelled", err.Error()).WithCause(err)
		}

		s.transition(r, StateAllocating)
		plan, err := s.allocator.Allocate(mealplan.Request{
			Budget:     budget.MacroBudget,
			Exclusions: exclusions,
			Catalog:    cmd.Catalog,
			Seed:       seed + uint64(r.attempt),
			Attempt:    r.attempt,
		})
		if err != nil {
			var slotErr *mealplan.SlotError
			var slot mealplan.Slot
			if errors.As(err, &slotErr) {
				slot = slotErr.Slot
			}
			s.reject(ctx, r, err, slot)
			continue
		}

		s.transition(r, StateValidating)
		verdict := s.validator.Validate(plan, budget.MacroBudget, cmd.Profile)
		if !verdict.Accepted {
			var slot mealplan.Slot
			if verdict.Slot != nil {
				slot = *verdict.Slot
			}
			s.reject(ctx, r, verdict.Err(), slot)
			continue
		}

		plan.Accept(budget.MacroBudget)
		s.transition(r, StateAccepted)
		s.dispatch(ctx, plan.Events()...)

		attempts := r.attempt + 1
		s.metrics.PlanAccepted(ctx, attempts, time.Since(r.started))
		span.SetAttributes(
			attribute.Int("plan.attempts", attempts),
			attribute.Float64("plan.calories", plan.DailyTotals().Calories),
		)
		s.logger.Info("Meal plan accepted",
			zap.String("plan_id", plan.ID().String()),
			zap.Uint64("seed", seed),
			zap.Int("attempts", attempts),
			zap.Float64("calories", plan.DailyTotals().Calories),
			zap.Float64("target", budget.Calories),
		)

		return &inbound.PlanResult{Plan: plan, Budget: budget, Seed: seed, Attempts: attempts}, nil
	}

	return nil, s.fail(ctx, r, span)
}

func (s *Service) reject(ctx context.Context, r *run, err error, slot mealplan.Slot) {
	r.lastErr = err
	r.reason = mealplan.ReasonOf(err)
	r.slot = slot

	s.transition(r, StateRejected,
		zap.String("reason", string(r.reason)),
		zap.String("slot", string(r.slot)),
		zap.Error(err),
	)
	s.metrics.AttemptRejected(ctx, r.reason)
	s.dispatch(ctx, mealplan.NewPlanRejectedEvent(r.attempt, r.reason, r.slot, err.Error()))
}

func (s *Service) fail(ctx context.Context, r *run, span trace.Span) error {
	s.transition(r, StateFailed)
	attempts := s.cfg.MaxAttempts

	s.metrics.PlanFailed(ctx, r.reason)
	s.dispatch(ctx, mealplan.NewPlanGenerationFailedEvent(attempts, r.reason))

	cause := fmt.Errorf("%w after %d attempts: %w", mealplan.ErrPlanGenerationFailed, attempts, r.lastErr)
	span.RecordError(cause)
	span.SetStatus(codes.Error, string(r.reason))

	s.logger.Warn("Meal plan generation failed",
		zap.String("reason", string(r.reason)),
		zap.String("slot", string(r.slot)),
		zap.Uint64("seed", r.seed),
		zap.Int("attempts", attempts),
		zap.Error(r.lastErr),
	)

	appErr := apperrors.NewPlanGenerationFailedError(string(r.reason), mealplan.FailureGuidance(r.reason), attempts, cause)
	if r.slot != "" {
		appErr.WithMetadata("slot", string(r.slot))
	}
	return appErr
}

func (s *Service) dispatch(ctx context.Context, events ...shared.DomainEvent) {
	if s.dispatcher == nil || len(events) == 0 {
		return
	}
	if err := s.dispatcher.Dispatch(ctx, events...); err != nil {
		s.logger.Error("Failed to dispatch planner events", zap.Error(err))
	}
}

func (s *Service) seedFor(requested *uint64) uint64 {
	switch {
	case requested != nil:
		return *requested
	case s.cfg.Seed != 0:
		return s.cfg.Seed
	default:
		return rand.Uint64()
	}
}
