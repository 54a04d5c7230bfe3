package onboarding

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
)

// Draft holds the profile fields collected so far. Zero values mean the field
// has not been answered yet.
type Draft struct {
	Goal         nutrition.Goal          `json:"goal,omitempty"`
	WeightKG     float64                 `json:"weightKg,omitempty"`
	HeightCM     float64                 `json:"heightCm,omitempty"`
	Age          int                     `json:"age,omitempty"`
	Sex          nutrition.Sex           `json:"sex,omitempty"`
	Diet         nutrition.Diet          `json:"diet,omitempty"`
	Activity     nutrition.ActivityLevel `json:"activity,omitempty"`
	Restrictions []nutrition.Restriction `json:"restrictions,omitempty"`
}

// Missing lists the required fields that are still unanswered.
func (d Draft) Missing() []string {
	var out []string
	if d.Goal == "" {
		out = append(out, "goal")
	}
	if d.WeightKG == 0 {
		out = append(out, "weight")
	}
	if d.HeightCM == 0 {
		out = append(out, "height")
	}
	if d.Age == 0 {
		out = append(out, "age")
	}
	if d.Diet == "" {
		out = append(out, "diet")
	}
	if d.Activity == "" {
		out = append(out, "activity")
	}
	return out
}

// Session is one user's onboarding conversation.
type Session struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	Draft     Draft     `json:"draft"`
	Messages  int       `json:"messages"`
	Plans     int       `json:"plans"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewSession starts a conversation in the greeting state.
func NewSession() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		State:     StateGreeting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Profile converts the draft into a profile. Sex defaults to other when the
// user never stated it.
func (s *Session) Profile() (nutrition.Profile, error) {
	if missing := s.Draft.Missing(); len(missing) > 0 {
		return nutrition.Profile{}, fmt.Errorf("%w: missing %v", ErrIncompleteProfile, missing)
	}

	sex := s.Draft.Sex
	if sex == "" {
		sex = nutrition.SexOther
	}

	p := nutrition.Profile{
		Age:          s.Draft.Age,
		Sex:          sex,
		HeightCM:     s.Draft.HeightCM,
		WeightKG:     s.Draft.WeightKG,
		Activity:     s.Draft.Activity,
		Goal:         s.Draft.Goal,
		Diet:         s.Draft.Diet,
		Restrictions: append([]nutrition.Restriction(nil), s.Draft.Restrictions...),
	}
	return p, p.Validate()
}

// PlanDelivered moves a ready session to showing_plan.
func (s *Session) PlanDelivered() {
	if s.State == StateReady {
		s.State = StateShowingPlan
		s.Plans++
		s.touch()
	}
}

// Reset clears the draft and returns to the greeting.
func (s *Session) Reset() {
	s.State = StateGreeting
	s.Draft = Draft{}
	s.Messages = 0
	s.touch()
}

// Expired reports whether the session has been idle longer than ttl.
func (s *Session) Expired(ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(s.UpdatedAt) > ttl
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
