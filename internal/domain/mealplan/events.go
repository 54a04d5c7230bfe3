package mealplan

import (
	"time"

	"github.com/google/uuid"
)

// PlanAcceptedEvent is raised when a plan passes validation.
type PlanAcceptedEvent struct {
	PlanID   uuid.UUID
	Seed     uint64
	Attempt  int
	Calories float64
	Target   float64
	occurred time.Time
}

func (e PlanAcceptedEvent) EventName() string     { return "mealplan.accepted" }
func (e PlanAcceptedEvent) OccurredAt() time.Time { return e.occurred }

// PlanRejectedEvent is raised for every discarded attempt.
type PlanRejectedEvent struct {
	Attempt  int
	Reason   Reason
	Slot     Slot
	Detail   string
	occurred time.Time
}

// NewPlanRejectedEvent records a rejected attempt.
func NewPlanRejectedEvent(attempt int, reason Reason, slot Slot, detail string) PlanRejectedEvent {
	return PlanRejectedEvent{Attempt: attempt, Reason: reason, Slot: slot, Detail: detail, occurred: time.Now().UTC()}
}

func (e PlanRejectedEvent) EventName() string     { return "mealplan.rejected" }
func (e PlanRejectedEvent) OccurredAt() time.Time { return e.occurred }

// PlanGenerationFailedEvent is raised when every attempt was rejected.
type PlanGenerationFailedEvent struct {
	Attempts int
	Reason   Reason
	occurred time.Time
}

// NewPlanGenerationFailedEvent records a terminal failure.
func NewPlanGenerationFailedEvent(attempts int, reason Reason) PlanGenerationFailedEvent {
	return PlanGenerationFailedEvent{Attempts: attempts, Reason: reason, occurred: time.Now().UTC()}
}

func (e PlanGenerationFailedEvent) EventName() string     { return "mealplan.generation_failed" }
func (e PlanGenerationFailedEvent) OccurredAt() time.Time { return e.occurred }
