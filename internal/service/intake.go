// Package service holds the application services tying the scoring core,
// the store and the dispatch queue together.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/family-support/backend/internal/dispatch"
	"github.com/family-support/backend/internal/models"
	"github.com/family-support/backend/internal/scoring"
	"github.com/family-support/backend/internal/store"
)

// UrgentScoreThreshold marks the urgency score at or above which an intake or
// signal triggers the urgent-alert pipeline.
const UrgentScoreThreshold = 70

const urgentFollowUpDelay = time.Hour

type IntakeService struct {
	Store      store.Store
	Queue      *dispatch.Queue
	AlertEmail string
	AlertPhone string
	Logger     zerolog.Logger
	Now        func() time.Time
}

func NewIntakeService(st store.Store, q *dispatch.Queue, alertEmail, alertPhone string, logger zerolog.Logger) *IntakeService {
	return &IntakeService{
		Store:      st,
		Queue:      q,
		AlertEmail: alertEmail,
		AlertPhone: alertPhone,
		Logger:     logger.With().Str("component", "intake").Logger(),
		Now:        time.Now,
	}
}

type IntakeResult struct {
	Intake  models.Intake         `json:"intake"`
	Urgency scoring.UrgencyResult `json:"urgency"`
}

// Create scores the submission, persists the intake and kicks off the
// automation pipeline. Scoring happens exactly once, at creation time.
func (s *IntakeService) Create(ctx context.Context, sub scoring.IntakeSubmission) (IntakeResult, error) {
	now := s.Now()
	urgency := scoring.CalculateUrgency(sub, now)
	archetype := scoring.DetermineArchetype(sub, now)

	intake := models.Intake{
		ID:             uuid.NewString(),
		UserID:         sub.UserID,
		ServiceType:    sub.ServiceType,
		UrgencyScore:   urgency.Score,
		UrgencyFactors: urgency.Factors,
		HearingDate:    sub.HearingDate,
		CourtName:      sub.CourtName,
		ContactMethod:  sub.ContactMethod,
		Archetype:      archetype,
		Status:         models.IntakePending,
		CreatedAt:      now,
	}
	if err := s.Store.CreateIntake(ctx, intake); err != nil {
		return IntakeResult{}, err
	}

	if err := s.Store.AppendEvent(ctx, models.EventLog{
		EventType: "intake_submitted",
		IntakeID:  intake.ID,
		Payload: map[string]any{
			"urgencyScore": urgency.Score,
			"factors":      urgency.Factors,
			"serviceType":  string(sub.ServiceType),
		},
	}); err != nil {
		return IntakeResult{}, err
	}

	if err := s.triggerAutomation(ctx, intake, urgency); err != nil {
		s.Logger.Error().Err(err).Str("intake_id", intake.ID).Msg("intake automation enqueue failed")
	}
	if urgency.Score >= UrgentScoreThreshold {
		if err := s.sendUrgentAlert(ctx, intake, urgency); err != nil {
			s.Logger.Error().Err(err).Str("intake_id", intake.ID).Msg("urgent alert enqueue failed")
		}
	}

	s.Logger.Info().Str("intake_id", intake.ID).Int("urgency_score", urgency.Score).
		Str("archetype", string(archetype)).Msg("intake created")
	return IntakeResult{Intake: intake, Urgency: urgency}, nil
}

func (s *IntakeService) triggerAutomation(ctx context.Context, intake models.Intake, urgency scoring.UrgencyResult) error {
	serviceType := string(intake.ServiceType)
	if serviceType == "" {
		serviceType = "general"
	}
	err := s.Queue.EnqueueEmail(ctx, dispatch.EmailPayload{
		Template: "welcome-after-intake",
		To:       intake.UserID,
		Data: map[string]any{
			"intakeId":     intake.ID,
			"serviceType":  serviceType,
			"urgencyScore": urgency.Score,
		},
	}, dispatch.Options{})
	if err != nil {
		return err
	}

	if urgency.Score >= UrgentScoreThreshold {
		err := s.Queue.EnqueueEmail(ctx, dispatch.EmailPayload{
			Template: "urgent-intake-followup",
			To:       intake.UserID,
			Data: map[string]any{
				"intakeId":    intake.ID,
				"hearingDate": intake.HearingDate,
			},
		}, dispatch.Options{Delay: urgentFollowUpDelay})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *IntakeService) sendUrgentAlert(ctx context.Context, intake models.Intake, urgency scoring.UrgencyResult) error {
	user, err := s.Store.GetUser(ctx, intake.UserID)
	if err != nil {
		return err
	}

	serviceType := string(intake.ServiceType)
	if serviceType == "" {
		serviceType = "general"
	}
	err = s.Queue.EnqueueAlert(ctx, dispatch.AlertPayload{
		Type: dispatch.AlertUrgentIntake,
		To:   s.AlertEmail,
		Data: map[string]any{
			"intakeId":       intake.ID,
			"clientName":     user.FirstName + " " + user.LastName,
			"clientEmail":    user.Email,
			"clientPhone":    user.Phone,
			"serviceType":    serviceType,
			"urgencyScore":   urgency.Score,
			"urgencyFactors": urgency.Factors,
			"hearingDate":    intake.HearingDate,
			"courtName":      intake.CourtName,
		},
	}, dispatch.Options{Priority: 1})
	if err != nil {
		return err
	}

	if s.AlertPhone != "" && user.Phone != "" {
		hearing := "N/A"
		if intake.HearingDate != nil {
			hearing = intake.HearingDate.Format("02/01/2006")
		}
		message := fmt.Sprintf("URGENT: New intake from %s %s. Urgency: %d/100. Hearing: %s. Check admin dashboard.",
			user.FirstName, user.LastName, urgency.Score, hearing)
		err := s.Queue.EnqueueSMS(ctx, dispatch.SMSPayload{
			To:      s.AlertPhone,
			Message: message,
		}, dispatch.Options{Priority: 1})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *IntakeService) Get(ctx context.Context, id string) (models.Intake, error) {
	return s.Store.GetIntake(ctx, id)
}

func (s *IntakeService) List(ctx context.Context, f store.IntakeFilter) ([]models.Intake, int, error) {
	return s.Store.ListIntakes(ctx, f)
}

func (s *IntakeService) UpdateStatus(ctx context.Context, id string, status models.IntakeStatus) error {
	return s.Store.UpdateIntakeStatus(ctx, id, status)
}

func (s *IntakeService) Urgent(ctx context.Context) ([]models.Intake, error) {
	return s.Store.UrgentIntakes(ctx, UrgentScoreThreshold, 20)
}

func (s *IntakeService) Stats(ctx context.Context) (store.IntakeStats, error) {
	return s.Store.IntakeStats(ctx, UrgentScoreThreshold)
}

// ScheduleFollowUp enqueues a deferred follow-up touchpoint.
func (s *IntakeService) ScheduleFollowUp(ctx context.Context, followUpType, userID string, data map[string]any, delay time.Duration) error {
	return s.Queue.EnqueueFollowUp(ctx, dispatch.FollowUpPayload{
		Type:   followUpType,
		UserID: userID,
		Data:   data,
	}, dispatch.Options{Delay: delay})
}
