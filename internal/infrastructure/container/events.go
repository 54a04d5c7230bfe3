package container

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/alchemorsel/nutriplan/internal/domain/mealplan"
	"github.com/alchemorsel/nutriplan/internal/domain/shared"
)

// EventDispatcher delivers domain events to in-process handlers
type EventDispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	log      *zap.Logger
}

var _ shared.EventDispatcher = (*EventDispatcher)(nil)

// NewEventDispatcher creates a new event dispatcher
func NewEventDispatcher(log *zap.Logger) *EventDispatcher {
	return &EventDispatcher{
		handlers: make(map[string][]shared.EventHandler),
		log:      log.Named("events"),
	}
}

// Dispatch runs every handler registered for each event. A failing handler
// is logged and does not stop the others.
func (d *EventDispatcher) Dispatch(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		d.mu.RLock()
		handlers := d.handlers[event.EventName()]
		d.mu.RUnlock()

		if len(handlers) == 0 {
			d.log.Debug("No handlers registered for event", zap.String("event", event.EventName()))
			continue
		}

		for _, handler := range handlers {
			if err := handler(ctx, event); err != nil {
				d.log.Error("Failed to handle event",
					zap.String("event", event.EventName()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Register registers an event handler
func (d *EventDispatcher) Register(eventName string, handler shared.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventName] = append(d.handlers[eventName], handler)
}

// RegisterPlanEventHandlers logs the planner's outcomes
func RegisterPlanEventHandlers(d *EventDispatcher, log *zap.Logger) {
	log = log.Named("mealplan")

	d.Register(mealplan.PlanAcceptedEvent{}.EventName(), func(ctx context.Context, e shared.DomainEvent) error {
		if ev, ok := e.(mealplan.PlanAcceptedEvent); ok {
			log.Info("Plan accepted",
				zap.Stringer("plan_id", ev.PlanID),
				zap.Uint64("seed", ev.Seed),
				zap.Int("attempt", ev.Attempt),
				zap.Float64("calories", ev.Calories),
				zap.Float64("target", ev.Target),
			)
		}
		return nil
	})

	d.Register(mealplan.PlanRejectedEvent{}.EventName(), func(ctx context.Context, e shared.DomainEvent) error {
		if ev, ok := e.(mealplan.PlanRejectedEvent); ok {
			log.Debug("Plan attempt rejected",
				zap.Int("attempt", ev.Attempt),
				zap.String("reason", string(ev.Reason)),
				zap.String("slot", string(ev.Slot)),
				zap.String("detail", ev.Detail),
			)
		}
		return nil
	})

	d.Register(mealplan.PlanGenerationFailedEvent{}.EventName(), func(ctx context.Context, e shared.DomainEvent) error {
		if ev, ok := e.(mealplan.PlanGenerationFailedEvent); ok {
			log.Warn("Plan generation failed",
				zap.Int("attempts", ev.Attempts),
				zap.String("reason", string(ev.Reason)),
			)
		}
		return nil
	})
}
