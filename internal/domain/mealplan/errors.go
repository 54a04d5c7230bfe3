package mealplan

import (
	"errors"
	"fmt"
)

var (
	// Allocator failures. Both are recoverable by retrying with a new seed.
	ErrNoEligibleFoods   = errors.New("not enough eligible foods")
	ErrUnreachableTarget = errors.New("slot target unreachable within tolerance")

	// Validator rejections.
	ErrMacroMismatch       = errors.New("plan totals outside macro tolerance")
	ErrPortionTooSmall     = errors.New("portion below minimum")
	ErrPortionTooLarge     = errors.New("portion above maximum")
	ErrAllergenViolation   = errors.New("plan contains an excluded food")
	ErrInsufficientProtein = errors.New("main meal protein below minimum")

	// Wire decoding.
	ErrUnknownSlot    = errors.New("unknown meal slot")
	ErrTotalsMismatch = errors.New("encoded totals do not match portions")
	ErrInvalidGrams   = errors.New("portion grams must be positive")
)

// SlotError reports an allocator failure for one slot.
type SlotError struct {
	Slot      Slot
	Deviation float64
	Err       error
}

func (e *SlotError) Error() string {
	if e.Slot == "" {
		return e.Err.Error()
	}
	if e.Deviation > 0 {
		return fmt.Sprintf("%s: %v (best deviation %.1f%%)", e.Slot, e.Err, e.Deviation*100)
	}
	return fmt.Sprintf("%s: %v", e.Slot, e.Err)
}

func (e *SlotError) Unwrap() error { return e.Err }

// ErrPlanGenerationFailed wraps the last rejection once every attempt failed.
var ErrPlanGenerationFailed = errors.New("meal plan generation failed")
