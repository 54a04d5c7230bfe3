// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/mealplan"
	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
	"github.com/alchemorsel/nutriplan/internal/domain/onboarding"
	"github.com/alchemorsel/nutriplan/internal/domain/shared"
	"github.com/alchemorsel/nutriplan/internal/ports/inbound"
)

// MockSessionRepository keeps sessions in memory and records calls.
type MockSessionRepository struct {
	mock.Mock
	sessions map[string]onboarding.Session
	mu       sync.RWMutex
}

// NewMockSessionRepository creates a new mock session repository
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[string]onboarding.Session),
	}
}

// Save stores a copy of the session
func (m *MockSessionRepository) Save(ctx context.Context, s *onboarding.Session) error {
	args := m.Called(ctx, s)

	if args.Error(0) == nil {
		m.mu.Lock()
		m.sessions[s.ID] = *s
		m.mu.Unlock()
	}

	return args.Error(0)
}

// Find returns a copy of a stored session
func (m *MockSessionRepository) Find(ctx context.Context, id string) (*onboarding.Session, error) {
	args := m.Called(ctx, id)

	if args.Error(1) != nil {
		return nil, args.Error(1)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, exists := m.sessions[id]; exists {
		return &s, nil
	}

	return nil, onboarding.ErrSessionNotFound
}

// Delete removes a session
func (m *MockSessionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	if args.Error(0) == nil {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
	}

	return args.Error(0)
}

// Put stores a session directly, bypassing expectations.
func (m *MockSessionRepository) Put(s onboarding.Session) {
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
}

// SetupStandardMockBehavior sets up standard mock behavior
func (m *MockSessionRepository) SetupStandardMockBehavior() {
	m.On("Save", mock.Anything, mock.AnythingOfType("*onboarding.Session")).Return(nil)
	m.On("Find", mock.Anything, mock.AnythingOfType("string")).Return(nil, nil)
	m.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)
}

// MockFoodRepository provides a mock implementation of FoodRepository
type MockFoodRepository struct {
	mock.Mock
}

// NewMockFoodRepository creates a new mock food repository
func NewMockFoodRepository() *MockFoodRepository {
	return &MockFoodRepository{}
}

// Version returns the stored catalog version
func (m *MockFoodRepository) Version(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// FindAll returns every stored record
func (m *MockFoodRepository) FindAll(ctx context.Context) ([]food.Record, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]food.Record)
	return records, args.Error(1)
}

// FindByID returns one record
func (m *MockFoodRepository) FindByID(ctx context.Context, id string) (food.Record, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(food.Record)
	return record, args.Error(1)
}

// ReplaceAll replaces the stored catalog
func (m *MockFoodRepository) ReplaceAll(ctx context.Context, version string, records []food.Record) error {
	args := m.Called(ctx, version, records)
	return args.Error(0)
}

// MockCatalogSource provides a mock implementation of CatalogSource
type MockCatalogSource struct {
	mock.Mock
}

// Name returns the source name
func (m *MockCatalogSource) Name() string { return "mock" }

// Load returns the configured catalog
func (m *MockCatalogSource) Load(ctx context.Context) (*food.Catalog, error) {
	args := m.Called(ctx)
	catalog, _ := args.Get(0).(*food.Catalog)
	return catalog, args.Error(1)
}

// MockPlanningService provides a mock implementation of PlanningService
type MockPlanningService struct {
	mock.Mock
}

var _ inbound.PlanningService = (*MockPlanningService)(nil)

// ComputeBudget returns the configured budget
func (m *MockPlanningService) ComputeBudget(ctx context.Context, profile nutrition.Profile) (nutrition.Budget, error) {
	args := m.Called(ctx, profile)
	budget, _ := args.Get(0).(nutrition.Budget)
	return budget, args.Error(1)
}

// ComputePlan returns the configured plan result
func (m *MockPlanningService) ComputePlan(ctx context.Context, cmd inbound.ComputePlanCommand) (*inbound.PlanResult, error) {
	args := m.Called(ctx, cmd)
	result, _ := args.Get(0).(*inbound.PlanResult)
	return result, args.Error(1)
}

// MockMetrics records planner outcomes
type MockMetrics struct {
	mock.Mock
}

// NewMockMetrics creates a metrics mock that accepts every call.
func NewMockMetrics() *MockMetrics {
	m := &MockMetrics{}
	m.SetupStandardMockBehavior()
	return m
}

func (m *MockMetrics) BudgetComputed(ctx context.Context, floorApplied bool) {
	m.Called(ctx, floorApplied)
}

func (m *MockMetrics) AttemptRejected(ctx context.Context, reason mealplan.Reason) {
	m.Called(ctx, reason)
}

func (m *MockMetrics) PlanAccepted(ctx context.Context, attempts int, elapsed time.Duration) {
	m.Called(ctx, attempts, elapsed)
}

func (m *MockMetrics) PlanFailed(ctx context.Context, reason mealplan.Reason) {
	m.Called(ctx, reason)
}

// SetupStandardMockBehavior sets up standard mock behavior
func (m *MockMetrics) SetupStandardMockBehavior() {
	m.On("BudgetComputed", mock.Anything, mock.Anything).Return()
	m.On("AttemptRejected", mock.Anything, mock.Anything).Return()
	m.On("PlanAccepted", mock.Anything, mock.Anything, mock.Anything).Return()
	m.On("PlanFailed", mock.Anything, mock.Anything).Return()
}

// MockEventDispatcher records dispatched domain events
type MockEventDispatcher struct {
	mock.Mock
	events []shared.DomainEvent
	mu     sync.RWMutex
}

// NewMockEventDispatcher creates a dispatcher that accepts every event.
func NewMockEventDispatcher() *MockEventDispatcher {
	m := &MockEventDispatcher{}
	m.SetupStandardMockBehavior()
	return m
}

// Dispatch records the events
func (m *MockEventDispatcher) Dispatch(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)

	if args.Error(0) == nil {
		m.mu.Lock()
		m.events = append(m.events, events...)
		m.mu.Unlock()
	}

	return args.Error(0)
}

// Register is a no-op
func (m *MockEventDispatcher) Register(eventName string, handler shared.EventHandler) {}

// GetDispatchedEvents returns all recorded events
func (m *MockEventDispatcher) GetDispatchedEvents() []shared.DomainEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]shared.DomainEvent, len(m.events))
	copy(events, m.events)
	return events
}

// EventNames returns the names of the recorded events in order
func (m *MockEventDispatcher) EventNames() []string {
	var names []string
	for _, e := range m.GetDispatchedEvents() {
		names = append(names, e.EventName())
	}
	return names
}

// ClearDispatchedEvents clears the recorded events
func (m *MockEventDispatcher) ClearDispatchedEvents() {
	m.mu.Lock()
	m.events = nil
	m.mu.Unlock()
}

// SetupStandardMockBehavior sets up standard mock behavior
func (m *MockEventDispatcher) SetupStandardMockBehavior() {
	m.On("Dispatch", mock.Anything, mock.Anything).Return(nil)
}
