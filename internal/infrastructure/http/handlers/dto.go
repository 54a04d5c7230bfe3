package handlers

import (
	"github.com/google/uuid"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/mealplan"
	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
	"github.com/alchemorsel/nutriplan/internal/ports/inbound"
)

// ProfileRequest is the JSON profile accepted by the planning endpoints.
// Enum fields are parsed leniently by the domain ("lightly active",
// "weight-loss").
type ProfileRequest struct {
	Age          *int     `json:"age" binding:"required,min=0,max=130"`
	Sex          string   `json:"sex" binding:"omitempty,max=32"`
	HeightCM     float64  `json:"heightCm" binding:"required,gt=0"`
	WeightKG     float64  `json:"weightKg" binding:"required,gt=0"`
	Activity     string   `json:"activity" binding:"required,max=32"`
	Goal         string   `json:"goal" binding:"required,max=32"`
	Diet         string   `json:"diet" binding:"omitempty,max=32"`
	Allergens    []string `json:"allergens" binding:"omitempty,max=16,dive,required"`
	Restrictions []string `json:"restrictions" binding:"omitempty,max=16,dive,required"`
}

// Input converts the request into the domain's textual profile
func (r ProfileRequest) Input() nutrition.ProfileInput {
	in := nutrition.ProfileInput{
		Sex:          r.Sex,
		HeightCM:     r.HeightCM,
		WeightKG:     r.WeightKG,
		Activity:     r.Activity,
		Goal:         r.Goal,
		Diet:         r.Diet,
		Allergens:    r.Allergens,
		Restrictions: r.Restrictions,
	}
	if r.Age != nil {
		in.Age = *r.Age
	}
	return in
}

// PlanRequest asks for a plan. A fixed seed makes the answer reproducible.
type PlanRequest struct {
	ProfileRequest
	Seed *uint64 `json:"seed"`
}

// BudgetResponse is the computed daily target
type BudgetResponse struct {
	Budget       nutrition.MacroBudget `json:"budget"`
	FloorApplied bool                  `json:"floorApplied"`
	BMR          float64               `json:"bmr"`
	TDEE         float64               `json:"tdee"`
	Target       float64               `json:"target"`
	Floor        float64               `json:"floor"`
}

func newBudgetResponse(b nutrition.Budget) BudgetResponse {
	return BudgetResponse{
		Budget:       b.MacroBudget,
		FloorApplied: b.FloorApplied,
		BMR:          b.BMR,
		TDEE:         b.TDEE,
		Target:       b.Target,
		Floor:        b.Floor,
	}
}

// PlanResponse is an accepted plan in the interchange shape plus its
// human readable summary.
type PlanResponse struct {
	ID       uuid.UUID             `json:"id"`
	Seed     uint64                `json:"seed"`
	Attempts int                   `json:"attempts"`
	Budget   nutrition.MacroBudget `json:"budget"`
	Plan     mealplan.WirePlan     `json:"plan"`
	Summary  string                `json:"summary"`
}

func newPlanResponse(res *inbound.PlanResult, goal nutrition.Goal) *PlanResponse {
	return &PlanResponse{
		ID:       res.Plan.ID(),
		Seed:     res.Seed,
		Attempts: res.Attempts,
		Budget:   res.Budget.MacroBudget,
		Plan:     mealplan.ToWire(res.Plan),
		Summary:  mealplan.Summary(res.Plan, res.Budget.MacroBudget, goal),
	}
}

// FoodQuery filters the catalog listing
type FoodQuery struct {
	Category string `form:"category" validate:"omitempty,oneof=protein legume grain fruit vegetable fat"`
	Diet     string `form:"diet" validate:"omitempty,max=32"`
	Exclude  string `form:"exclude" validate:"omitempty,max=256"`
}

// FoodsResponse is a catalog listing
type FoodsResponse struct {
	Version string        `json:"version"`
	Count   int           `json:"count"`
	Foods   []food.Record `json:"foods"`
}

// MessageRequest is one onboarding chat message
type MessageRequest struct {
	Text string `json:"text" binding:"required,max=500"`
}

// ProfileView is a collected profile as shown to clients
type ProfileView struct {
	Age          int                     `json:"age"`
	Sex          nutrition.Sex           `json:"sex"`
	HeightCM     float64                 `json:"heightCm"`
	WeightKG     float64                 `json:"weightKg"`
	Activity     nutrition.ActivityLevel `json:"activity"`
	Goal         nutrition.Goal          `json:"goal"`
	Diet         nutrition.Diet          `json:"diet"`
	Restrictions []nutrition.Restriction `json:"restrictions,omitempty"`
}

// OnboardingResponse is the reply to one onboarding message
type OnboardingResponse struct {
	SessionID string        `json:"sessionId"`
	State     string        `json:"state"`
	Reply     string        `json:"reply"`
	Profile   *ProfileView  `json:"profile,omitempty"`
	Plan      *PlanResponse `json:"plan,omitempty"`
}

func newOnboardingResponse(r *inbound.OnboardingReply) OnboardingResponse {
	resp := OnboardingResponse{
		SessionID: r.SessionID,
		State:     string(r.State),
		Reply:     r.Text,
	}
	if r.Profile != nil {
		p := r.Profile
		resp.Profile = &ProfileView{
			Age:          p.Age,
			Sex:          p.Sex,
			HeightCM:     p.HeightCM,
			WeightKG:     p.WeightKG,
			Activity:     p.Activity,
			Goal:         p.Goal,
			Diet:         p.Diet,
			Restrictions: p.Restrictions,
		}
		if r.Plan != nil {
			resp.Plan = newPlanResponse(r.Plan, p.Goal)
		}
	}
	return resp
}
