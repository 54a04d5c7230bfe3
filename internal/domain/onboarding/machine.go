package onboarding

import "fmt"

// Reply is the outcome of one message.
type Reply struct {
	State State
	Text  string
	// PlanRequested is set when the session is complete and the caller should
	// compute a plan, then call Session.PlanDelivered on success.
	PlanRequested bool
}

// action applies an accepted input. It returns the reply text and false when a
// guard rejects the input, in which case the state does not change.
type action func(s *Session, in Input) (string, bool)

type transition struct {
	on   Intent
	next State
	do   action
}

// Greeting opens every conversation.
const Greeting = "Hi! I'm your nutrition coach. What's your goal today? (lose weight / gain muscle / maintain)"

// transitions is checked in order per state. The first transition whose intent
// the input carries fires.
var transitions = map[State][]transition{
	StateGreeting: {
		{IntentGoal, StateWeight, setGoal},
		{IntentAny, StateGoal, say(Greeting)},
	},
	StateGoal: {
		{IntentGoal, StateWeight, setGoal},
	},
	StateWeight: {
		{IntentNumber, StateHeight, setWeight},
	},
	StateHeight: {
		{IntentNumber, StateAge, setHeight},
	},
	StateAge: {
		{IntentNumber, StateDiet, setAge},
	},
	StateDiet: {
		{IntentDiet, StateActivity, setDiet},
	},
	StateActivity: {
		{IntentActivity, StateReady, setActivity},
	},
	StateReady: {
		{IntentAny, StateReady, say("Putting your plan together.")},
	},
	StateShowingPlan: {
		{IntentConfirm, StateReady, say("Here's another plan.")},
	},
}

var reprompts = map[State]string{
	StateGoal:        "I didn't catch that. Please choose: lose weight, gain muscle, or maintain.",
	StateWeight:      "I need a number like '70'. What's your weight in kg?",
	StateHeight:      "I need a number like '170'. What's your height in cm?",
	StateAge:         "I need a number like '25'. How old are you?",
	StateDiet:        "Please tell me your diet: vegan, vegetarian, eggetarian, pescatarian or non-veg.",
	StateActivity:    "Please choose: sedentary, light, moderate, active, or very active.",
	StateShowingPlan: "That's your plan for today. Say 'new plan' for another one or 'reset' to start over.",
}

// Step feeds one message to the session and returns the reply.
func Step(s *Session, text string) (Reply, error) {
	if !s.State.IsValid() {
		return Reply{}, fmt.Errorf("%w: %q", ErrUnknownState, s.State)
	}

	in := Classify(text)
	s.Messages++
	s.touch()

	if in.Has(IntentReset) {
		s.Reset()
		return Reply{State: s.State, Text: "Starting fresh! What's your new goal? (lose weight / gain muscle / maintain)"}, nil
	}
	if in.Sex != "" {
		s.Draft.Sex = in.Sex
	}

	for _, t := range transitions[s.State] {
		if !in.Has(t.on) {
			continue
		}
		reply, ok := t.do(s, in)
		if !ok {
			return Reply{State: s.State, Text: reply}, nil
		}
		s.State = t.next
		return Reply{State: s.State, Text: reply, PlanRequested: s.State == StateReady}, nil
	}

	return Reply{State: s.State, Text: reprompts[s.State]}, nil
}

func say(text string) action {
	return func(*Session, Input) (string, bool) { return text, true }
}

func setGoal(s *Session, in Input) (string, bool) {
	s.Draft.Goal = in.Goal
	return "Great goal! What's your current weight in kg?", true
}

func setWeight(s *Session, in Input) (string, bool) {
	if in.Number < MinWeightKG || in.Number > MaxWeightKG {
		return fmt.Sprintf("That weight seems unusual (%g kg). Please enter a realistic weight (%g-%g kg).", in.Number, MinWeightKG, MaxWeightKG), false
	}
	s.Draft.WeightKG = in.Number
	return fmt.Sprintf("%g kg logged. Height in cm?", in.Number), true
}

func setHeight(s *Session, in Input) (string, bool) {
	if in.Number < MinHeightCM || in.Number > MaxHeightCM {
		return fmt.Sprintf("That height seems unusual (%g cm). Please enter a realistic height (%g-%g cm).", in.Number, MinHeightCM, MaxHeightCM), false
	}
	s.Draft.HeightCM = in.Number
	return fmt.Sprintf("%g cm, perfect. How old are you?", in.Number), true
}

func setAge(s *Session, in Input) (string, bool) {
	age := int(in.Number)
	if float64(age) != in.Number || age < MinAge || age > MaxAge {
		return fmt.Sprintf("Please enter a realistic age (%d-%d years).", MinAge, MaxAge), false
	}
	s.Draft.Age = age
	return fmt.Sprintf("%d years young! What do you eat: vegan, vegetarian, eggetarian, pescatarian or non-veg? Mention any allergies too.", age), true
}

func setDiet(s *Session, in Input) (string, bool) {
	s.Draft.Diet = in.Diet
	s.Draft.Restrictions = in.Restrictions
	return "Noted! Finally, what is your activity level? (sedentary / light / moderate / active / very active)", true
}

func setActivity(s *Session, in Input) (string, bool) {
	s.Draft.Activity = in.Activity
	return "Thanks! Putting your plan together.", true
}
