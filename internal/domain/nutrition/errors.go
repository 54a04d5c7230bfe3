package nutrition

import "errors"

// Domain errors for budget computation

var (
	// ErrInvalidProfile is returned for malformed or out-of-range profiles.
	// It is always wrapped with the offending field.
	ErrInvalidProfile = errors.New("invalid profile")

	ErrUnknownSex         = errors.New("unknown sex category")
	ErrUnknownActivity    = errors.New("unknown activity level")
	ErrUnknownGoal        = errors.New("unknown goal")
	ErrUnknownDiet        = errors.New("unknown dietary preference")
	ErrUnknownAllergen    = errors.New("unknown allergen")
	ErrUnknownRestriction = errors.New("unknown dietary restriction")
)
