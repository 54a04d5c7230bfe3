package planner

import "slices"

// State is a step of one plan computation. Accepted and Failed are terminal.
type State string

const (
	StateComputingBudget State = "computing_budget"
	StateFloorChecked    State = "floor_checked"
	StateAllocating      State = "allocating"
	StateValidating      State = "validating"
	StateRejected        State = "rejected"
	StateAccepted        State = "accepted"
	StateFailed          State = "failed"
)

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateAccepted || s == StateFailed
}

var allowed = map[State][]State{
	StateComputingBudget: {StateFloorChecked, StateFailed},
	StateFloorChecked:    {StateAllocating, StateFailed},
	StateAllocating:      {StateValidating, StateRejected},
	StateValidating:      {StateAccepted, StateRejected},
	StateRejected:        {StateAllocating, StateFailed},
}

// CanTransition reports whether from → to is a legal step.
func CanTransition(from, to State) bool {
	return slices.Contains(allowed[from], to)
}
