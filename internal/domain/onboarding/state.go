// Package onboarding implements the conversational profile collection as an
// explicit finite-state machine.
package onboarding

import "slices"

// State is a step of the onboarding conversation.
type State string

const (
	StateGreeting    State = "greeting"
	StateGoal        State = "goal"
	StateWeight      State = "weight"
	StateHeight      State = "height"
	StateAge         State = "age"
	StateDiet        State = "diet"
	StateActivity    State = "activity"
	StateReady       State = "ready"
	StateShowingPlan State = "showing_plan"
)

// States lists the states in conversation order.
var States = []State{
	StateGreeting,
	StateGoal,
	StateWeight,
	StateHeight,
	StateAge,
	StateDiet,
	StateActivity,
	StateReady,
	StateShowingPlan,
}

// IsValid reports whether s is a known state.
func (s State) IsValid() bool {
	return slices.Contains(States, s)
}

// Intent is a class of user input. An input may carry several intents.
type Intent uint8

const (
	IntentReset Intent = 1 << iota
	IntentNumber
	IntentGoal
	IntentActivity
	IntentDiet
	IntentConfirm

	// IntentAny matches every input, including one with no intent.
	IntentAny Intent = 0
)

func (i Intent) String() string {
	switch i {
	case IntentReset:
		return "reset"
	case IntentNumber:
		return "number"
	case IntentGoal:
		return "goal"
	case IntentActivity:
		return "activity"
	case IntentDiet:
		return "diet"
	case IntentConfirm:
		return "confirm"
	case IntentAny:
		return "any"
	default:
		return "mixed"
	}
}

// Numeric bounds accepted during onboarding.
const (
	MinWeightKG = 40.0
	MaxWeightKG = 200.0
	MinHeightCM = 100.0
	MaxHeightCM = 250.0
	MinAge      = 13
	MaxAge      = 100
)
