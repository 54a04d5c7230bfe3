package onboarding

import "errors"

var (
	ErrIncompleteProfile = errors.New("onboarding profile is incomplete")
	ErrUnknownState      = errors.New("unknown onboarding state")
)

// ErrSessionNotFound is returned by session stores for unknown or expired IDs.
var ErrSessionNotFound = errors.New("onboarding session not found")
