package onboarding_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	app "github.com/alchemorsel/nutriplan/internal/application/onboarding"
	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/mealplan"
	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
	"github.com/alchemorsel/nutriplan/internal/domain/onboarding"
	"github.com/alchemorsel/nutriplan/internal/ports/inbound"
	apperrors "github.com/alchemorsel/nutriplan/pkg/errors"
	"github.com/alchemorsel/nutriplan/test/testutils"
)

var conversation = []string{
	"hi there",
	"I want to build muscle",
	"67 kg",
	"180cm",
	"19 years old",
	"vegetarian, but no dairy please",
}

type ServiceTestSuite struct {
	suite.Suite
	catalog  *food.Catalog
	sessions *testutils.MockSessionRepository
	planner  *testutils.MockPlanningService
	service  *app.Service
	ctx      context.Context
}

func (suite *ServiceTestSuite) SetupTest() {
	suite.catalog = testutils.DefaultCatalog()
	suite.sessions = testutils.NewMockSessionRepository()
	suite.sessions.SetupStandardMockBehavior()
	suite.planner = &testutils.MockPlanningService{}
	suite.service = app.NewService(app.Config{}, suite.sessions, suite.planner, suite.catalog, zaptest.NewLogger(suite.T()))
	suite.ctx = context.Background()
}

func (suite *ServiceTestSuite) expectedProfile() nutrition.Profile {
	return testutils.NewProfileBuilder().
		WithSex(nutrition.SexOther).
		WithWeight(67).WithHeight(180).WithAge(19).
		WithGoal(nutrition.GoalMuscleGain).
		WithDiet(nutrition.DietVegetarian).
		WithRestrictions(nutrition.RestrictionNoDairy).
		WithActivity(nutrition.ActivityModerate).
		Build()
}

// planResult builds a small fixed plan for the planner mock.
func (suite *ServiceTestSuite) planResult(p nutrition.Profile) *inbound.PlanResult {
	budget, err := nutrition.ComputeBudget(p)
	require.NoError(suite.T(), err)

	oats, err := suite.catalog.Get("rolled_oats")
	require.NoError(suite.T(), err)
	tofu, err := suite.catalog.Get("tofu_firm")
	require.NoError(suite.T(), err)

	plan := mealplan.NewPlan([]mealplan.Meal{
		{Slot: mealplan.Breakfast, Portions: []mealplan.Portion{{Food: oats, Grams: 80}}},
		{Slot: mealplan.Lunch, Portions: []mealplan.Portion{{Food: tofu, Grams: 200}}},
	}, 9, 0)
	plan.Accept(budget.MacroBudget)
	return &inbound.PlanResult{Plan: plan, Budget: budget, Seed: 9, Attempts: 1}
}

func (suite *ServiceTestSuite) walk(sessionID string) {
	for _, text := range conversation {
		_, err := suite.service.SendMessage(suite.ctx, sessionID, text)
		require.NoError(suite.T(), err, text)
	}
}

func (suite *ServiceTestSuite) TestStartSession() {
	reply, err := suite.service.StartSession(suite.ctx)

	require.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), reply.SessionID)
	assert.Equal(suite.T(), onboarding.StateGreeting, reply.State)
	assert.Equal(suite.T(), onboarding.Greeting, reply.Text)
	suite.sessions.AssertCalled(suite.T(), "Save", mock.Anything, mock.AnythingOfType("*onboarding.Session"))
}

func (suite *ServiceTestSuite) TestConversation_DeliversPlan() {
	start, err := suite.service.StartSession(suite.ctx)
	require.NoError(suite.T(), err)

	profile := suite.expectedProfile()
	result := suite.planResult(profile)
	suite.planner.On("ComputePlan", mock.Anything, inbound.ComputePlanCommand{
		Profile: profile,
		Catalog: suite.catalog,
	}).Return(result, nil).Once()

	suite.walk(start.SessionID)
	reply, err := suite.service.SendMessage(suite.ctx, start.SessionID, "moderately active")

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), onboarding.StateShowingPlan, reply.State)
	require.NotNil(suite.T(), reply.Profile)
	assert.Equal(suite.T(), profile, *reply.Profile)
	assert.Same(suite.T(), result, reply.Plan)
	assert.Contains(suite.T(), reply.Text, "-calorie muscle building goal")
	assert.Contains(suite.T(), reply.Text, "Breakfast: Have 80g rolled oats.")
	suite.planner.AssertExpectations(suite.T())

	stored, err := suite.sessions.Find(suite.ctx, start.SessionID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), onboarding.StateShowingPlan, stored.State)
	assert.Equal(suite.T(), 1, stored.Plans)
}

func (suite *ServiceTestSuite) TestConversation_NewPlan() {
	start, err := suite.service.StartSession(suite.ctx)
	require.NoError(suite.T(), err)
	suite.planner.On("ComputePlan", mock.Anything, mock.Anything).
		Return(suite.planResult(suite.expectedProfile()), nil)

	suite.walk(start.SessionID)
	_, err = suite.service.SendMessage(suite.ctx, start.SessionID, "moderately active")
	require.NoError(suite.T(), err)

	reply, err := suite.service.SendMessage(suite.ctx, start.SessionID, "thanks")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), onboarding.StateShowingPlan, reply.State)
	assert.Nil(suite.T(), reply.Plan)

	reply, err = suite.service.SendMessage(suite.ctx, start.SessionID, "give me a new plan")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), onboarding.StateShowingPlan, reply.State)
	assert.NotNil(suite.T(), reply.Plan)

	suite.planner.AssertNumberOfCalls(suite.T(), "ComputePlan", 2)
	stored, err := suite.sessions.Find(suite.ctx, start.SessionID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, stored.Plans)
}

func (suite *ServiceTestSuite) TestConversation_PlanFailureStaysReady() {
	start, err := suite.service.StartSession(suite.ctx)
	require.NoError(suite.T(), err)

	guidance := mealplan.FailureGuidance(mealplan.ReasonNoEligibleFoods)
	suite.planner.On("ComputePlan", mock.Anything, mock.Anything).Return(nil,
		apperrors.NewPlanGenerationFailedError(string(mealplan.ReasonNoEligibleFoods), guidance, 3, mealplan.ErrPlanGenerationFailed))

	suite.walk(start.SessionID)
	reply, err := suite.service.SendMessage(suite.ctx, start.SessionID, "moderately active")

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), onboarding.StateReady, reply.State)
	assert.Equal(suite.T(), guidance, reply.Text)
	assert.Nil(suite.T(), reply.Plan)
	assert.NotNil(suite.T(), reply.Profile)
}

func (suite *ServiceTestSuite) TestConversation_PlannerErrorPropagates() {
	start, err := suite.service.StartSession(suite.ctx)
	require.NoError(suite.T(), err)
	suite.planner.On("ComputePlan", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewAppError(apperrors.CodeCatalogUnavailable, "Food catalog unavailable", ""))

	suite.walk(start.SessionID)
	_, err = suite.service.SendMessage(suite.ctx, start.SessionID, "moderately active")

	assert.True(suite.T(), apperrors.Is(err, apperrors.CodeCatalogUnavailable))
}

func (suite *ServiceTestSuite) TestSendMessage_UnknownSession() {
	_, err := suite.service.SendMessage(suite.ctx, "missing", "hello")

	assert.True(suite.T(), apperrors.Is(err, apperrors.CodeSessionNotFound))
}

func (suite *ServiceTestSuite) TestSendMessage_ExpiredSession() {
	session := onboarding.NewSession()
	session.UpdatedAt = time.Now().UTC().Add(-2 * app.DefaultSessionTTL)
	suite.sessions.Put(*session)

	_, err := suite.service.SendMessage(suite.ctx, session.ID, "hello")

	assert.True(suite.T(), apperrors.Is(err, apperrors.CodeSessionNotFound))
	suite.sessions.AssertCalled(suite.T(), "Delete", mock.Anything, session.ID)
}

func (suite *ServiceTestSuite) TestSendMessage_StorageFailure() {
	sessions := testutils.NewMockSessionRepository()
	sessions.On("Find", mock.Anything, "s1").Return(nil, assert.AnError)
	svc := app.NewService(app.Config{}, sessions, suite.planner, suite.catalog, nil)

	_, err := svc.SendMessage(suite.ctx, "s1", "hello")

	assert.True(suite.T(), apperrors.Is(err, apperrors.CodeDatabaseError))
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
