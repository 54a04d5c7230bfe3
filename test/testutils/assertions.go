// Package testutils provides custom assertions and testing utilities
package testutils

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/mealplan"
	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
	apperrors "github.com/alchemorsel/nutriplan/pkg/errors"
)

// PlanAssertions provides plan-specific assertion methods
type PlanAssertions struct {
	t *testing.T
}

// NewPlanAssertions creates a new plan assertions helper
func NewPlanAssertions(t *testing.T) *PlanAssertions {
	return &PlanAssertions{t: t}
}

// Accepted asserts the plan passed validation and its daily totals are
// within tolerance of the budget.
func (pa *PlanAssertions) Accepted(plan *mealplan.Plan, budget nutrition.MacroBudget, tolerance float64, msgAndArgs ...interface{}) {
	pa.t.Helper()
	require.NotNil(pa.t, plan, "Plan should not be nil")

	assert.True(pa.t, plan.Accepted(), msgAndArgs...)
	dev := mealplan.Deviation(plan.DailyTotals(), budget.Vector())
	assert.LessOrEqual(pa.t, dev, tolerance, "daily totals deviate %.3f from budget", dev)
}

// HasAllSlots asserts the plan has breakfast, lunch, dinner and snack in order
func (pa *PlanAssertions) HasAllSlots(plan *mealplan.Plan) {
	pa.t.Helper()
	require.NotNil(pa.t, plan, "Plan should not be nil")

	var slots []mealplan.Slot
	for _, m := range plan.Meals() {
		slots = append(slots, m.Slot)
	}
	assert.Equal(pa.t, []mealplan.Slot{mealplan.Breakfast, mealplan.Lunch, mealplan.Dinner, mealplan.Snack}, slots)
}

// PortionsWithin asserts every portion is between min and the record's own
// cap or max, whichever is smaller.
func (pa *PlanAssertions) PortionsWithin(plan *mealplan.Plan, min, max int) {
	pa.t.Helper()
	for _, m := range plan.Meals() {
		for _, p := range m.Portions {
			limit := max
			if p.Food.MaxPortion > 0 && p.Food.MaxPortion < limit {
				limit = p.Food.MaxPortion
			}
			assert.GreaterOrEqual(pa.t, p.Grams, min, "%s in %s", p.Food.ID, m.Slot)
			assert.LessOrEqual(pa.t, p.Grams, limit, "%s in %s", p.Food.ID, m.Slot)
		}
	}
}

// RespectsProfile asserts no portion conflicts with the profile's diet,
// allergens or restrictions.
func (pa *PlanAssertions) RespectsProfile(plan *mealplan.Plan, profile nutrition.Profile) {
	pa.t.Helper()
	ex := food.ExclusionsFor(profile)
	for _, m := range plan.Meals() {
		for _, p := range m.Portions {
			assert.True(pa.t, ex.Permits(p.Food), "%s is not allowed for this profile", p.Food.ID)
		}
	}
}

// HTTPAssertions provides HTTP-specific assertion methods
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// JSONResponse asserts the status and JSON content type, then decodes the body
func (ha *HTTPAssertions) JSONResponse(w *httptest.ResponseRecorder, expectedCode int, target interface{}) {
	ha.t.Helper()
	require.Equal(ha.t, expectedCode, w.Code, w.Body.String())

	contentType := w.Header().Get("Content-Type")
	assert.True(ha.t, strings.Contains(contentType, "application/json"),
		"Response should have JSON content type, got: %s", contentType)
	require.NoError(ha.t, json.Unmarshal(w.Body.Bytes(), target), "Response should be valid JSON")
}

// ErrorResponse asserts an error envelope with the given status and code
func (ha *HTTPAssertions) ErrorResponse(w *httptest.ResponseRecorder, expectedCode int, code apperrors.ErrorCode) apperrors.ErrorDetails {
	ha.t.Helper()
	var resp apperrors.ErrorResponse
	ha.JSONResponse(w, expectedCode, &resp)
	assert.Equal(ha.t, code, resp.Error.Code)
	assert.NotEmpty(ha.t, resp.Error.Message)
	return resp.Error
}

// SecurityHeaders asserts that security headers are present
func (ha *HTTPAssertions) SecurityHeaders(w *httptest.ResponseRecorder) {
	ha.t.Helper()
	assert.Equal(ha.t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(ha.t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(ha.t, w.Header().Get("Referrer-Policy"))
}

// EventAssertions checks events captured by MockEventDispatcher
type EventAssertions struct {
	t *testing.T
}

// NewEventAssertions creates a new event assertions helper
func NewEventAssertions(t *testing.T) *EventAssertions {
	return &EventAssertions{t: t}
}

// Sequence asserts the dispatched event names in order
func (ea *EventAssertions) Sequence(d *MockEventDispatcher, names ...string) {
	ea.t.Helper()
	assert.Equal(ea.t, names, d.EventNames())
}

// NoEventsDispatched asserts nothing was dispatched
func (ea *EventAssertions) NoEventsDispatched(d *MockEventDispatcher) {
	ea.t.Helper()
	assert.Empty(ea.t, d.GetDispatchedEvents())
}
