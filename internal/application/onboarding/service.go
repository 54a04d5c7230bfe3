// Package onboarding provides the application layer for onboarding
// conversations. It loads and stores sessions, feeds messages through the
// domain state machine and asks the planner for a plan once a profile is
// complete.
package onboarding

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/domain/mealplan"
	"github.com/alchemorsel/nutriplan/internal/domain/onboarding"
	"github.com/alchemorsel/nutriplan/internal/ports/inbound"
	"github.com/alchemorsel/nutriplan/internal/ports/outbound"
	apperrors "github.com/alchemorsel/nutriplan/pkg/errors"
)

// DefaultSessionTTL is how long an idle session is kept.
const DefaultSessionTTL = 30 * time.Minute

// Config tunes onboarding sessions.
type Config struct {
	SessionTTL time.Duration
}

// Service implements inbound.OnboardingService
type Service struct {
	cfg      Config
	sessions outbound.SessionRepository
	planner  inbound.PlanningService
	catalog  *food.Catalog
	logger   *zap.Logger
	now      func() time.Time
}

var _ inbound.OnboardingService = (*Service)(nil)

// NewService creates a new onboarding service
func NewService(
	cfg Config,
	sessions outbound.SessionRepository,
	planner inbound.PlanningService,
	catalog *food.Catalog,
	logger *zap.Logger,
) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:      cfg,
		sessions: sessions,
		planner:  planner,
		catalog:  catalog,
		logger:   logger.Named("onboarding"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// StartSession creates a session in the greeting state.
func (s *Service) StartSession(ctx context.Context) (*inbound.OnboardingReply, error) {
	session := onboarding.NewSession()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, apperrors.NewDatabaseError("save onboarding session", err)
	}

	s.logger.Info("Onboarding session started", zap.String("session_id", session.ID))

	return &inbound.OnboardingReply{
		SessionID: session.ID,
		State:     session.State,
		Text:      onboarding.Greeting,
	}, nil
}

// SendMessage applies one user message. When the message completes the
// profile, the reply carries the computed plan and its summary.
func (s *Service) SendMessage(ctx context.Context, sessionID, text string) (*inbound.OnboardingReply, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	from := session.State
	step, err := onboarding.Step(session, text)
	if err != nil {
		return nil, apperrors.Wrap(err, "onboarding session is corrupted")
	}

	s.logger.Debug("Onboarding step",
		zap.String("session_id", session.ID),
		zap.String("from", string(from)),
		zap.String("to", string(step.State)),
		zap.Bool("plan_requested", step.PlanRequested),
	)

	reply := &inbound.OnboardingReply{
		SessionID: session.ID,
		State:     step.State,
		Text:      step.Text,
	}

	if step.PlanRequested {
		if err := s.deliverPlan(ctx, session, reply); err != nil {
			return nil, err
		}
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, apperrors.NewDatabaseError("save onboarding session", err)
	}
	return reply, nil
}

func (s *Service) load(ctx context.Context, sessionID string) (*onboarding.Session, error) {
	session, err := s.sessions.Find(ctx, sessionID)
	switch {
	case errors.Is(err, onboarding.ErrSessionNotFound):
		return nil, apperrors.NewSessionNotFoundError(sessionID)
	case err != nil:
		return nil, apperrors.NewDatabaseError("find onboarding session", err)
	}

	if session.Expired(s.cfg.SessionTTL, s.now()) {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			s.logger.Warn("Failed to delete expired session", zap.String("session_id", sessionID), zap.Error(err))
		}
		return nil, apperrors.NewSessionNotFoundError(sessionID)
	}
	return session, nil
}

// deliverPlan computes a plan for a ready session. A plan generation failure
// is answered in the conversation and leaves the session in ready so the user
// can retry.
func (s *Service) deliverPlan(ctx context.Context, session *onboarding.Session, reply *inbound.OnboardingReply) error {
	profile, err := session.Profile()
	if err != nil {
		s.logger.Error("Ready session without a usable profile", zap.String("session_id", session.ID), zap.Error(err))
		return apperrors.NewInvalidProfileError(err)
	}
	reply.Profile = &profile

	result, err := s.planner.ComputePlan(ctx, inbound.ComputePlanCommand{
		Profile: profile,
		Catalog: s.catalog,
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.CodePlanGenerationFailed {
			s.logger.Info("Plan generation failed for onboarding session",
				zap.String("session_id", session.ID),
				zap.Any("reason", appErr.Metadata["reason"]),
			)
			reply.Text = appErr.Details
			return nil
		}
		return err
	}

	session.PlanDelivered()
	reply.State = session.State
	reply.Plan = result
	reply.Text = mealplan.Summary(result.Plan, result.Budget.MacroBudget, profile.Goal)
	return nil
}
