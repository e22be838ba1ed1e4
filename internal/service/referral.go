package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/family-support/backend/internal/dispatch"
	"github.com/family-support/backend/internal/models"
	"github.com/family-support/backend/internal/store"
)

type ReferralService struct {
	Store  store.Store
	Queue  *dispatch.Queue
	Logger zerolog.Logger
	Now    func() time.Time
}

func NewReferralService(st store.Store, q *dispatch.Queue, logger zerolog.Logger) *ReferralService {
	return &ReferralService{
		Store:  st,
		Queue:  q,
		Logger: logger.With().Str("component", "referrals").Logger(),
		Now:    time.Now,
	}
}

type ReferralSubmission struct {
	UserID           string
	ClientName       string
	ClientEmail      string
	ClientPhone      string
	ServiceRequested string
	Notes            string
}

// Create records a referral, thanks the referrer and invites the referred
// person when an email address was provided.
func (s *ReferralService) Create(ctx context.Context, sub ReferralSubmission) (models.Referral, error) {
	referral := models.Referral{
		ID:               uuid.NewString(),
		UserID:           sub.UserID,
		ClientName:       sub.ClientName,
		ClientEmail:      sub.ClientEmail,
		ClientPhone:      sub.ClientPhone,
		ServiceRequested: sub.ServiceRequested,
		Notes:            sub.Notes,
		Status:           models.ReferralSent,
		CreatedAt:        s.Now(),
	}
	if err := s.Store.CreateReferral(ctx, referral); err != nil {
		return models.Referral{}, err
	}
	if err := s.Store.AppendEvent(ctx, models.EventLog{
		EventType:  "referral_created",
		ReferralID: referral.ID,
		Payload: map[string]any{
			"serviceRequested": sub.ServiceRequested,
		},
	}); err != nil {
		return models.Referral{}, err
	}

	if err := s.triggerAutomation(ctx, referral); err != nil {
		s.Logger.Error().Err(err).Str("referral_id", referral.ID).Msg("referral automation enqueue failed")
	}

	s.Logger.Info().Str("referral_id", referral.ID).Msg("referral created")
	return referral, nil
}

func (s *ReferralService) triggerAutomation(ctx context.Context, referral models.Referral) error {
	err := s.Queue.EnqueueEmail(ctx, dispatch.EmailPayload{
		Template: "referral-thank-you",
		To:       referral.UserID,
		Data: map[string]any{
			"referralId": referral.ID,
			"clientName": referral.ClientName,
		},
	}, dispatch.Options{})
	if err != nil {
		return err
	}

	if referral.ClientEmail != "" {
		err := s.Queue.EnqueueEmail(ctx, dispatch.EmailPayload{
			Template: "referral-invitation",
			To:       referral.ClientEmail,
			Data: map[string]any{
				"referralId":       referral.ID,
				"referrerUserId":   referral.UserID,
				"serviceRequested": referral.ServiceRequested,
			},
		}, dispatch.Options{})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *ReferralService) List(ctx context.Context, f store.ReferralFilter) ([]models.Referral, int, error) {
	return s.Store.ListReferrals(ctx, f)
}
