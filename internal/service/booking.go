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

const bookingReminderLead = 24 * time.Hour

type BookingService struct {
	Store  store.Store
	Queue  *dispatch.Queue
	Logger zerolog.Logger
	Now    func() time.Time
}

func NewBookingService(st store.Store, q *dispatch.Queue, logger zerolog.Logger) *BookingService {
	return &BookingService{
		Store:  st,
		Queue:  q,
		Logger: logger.With().Str("component", "bookings").Logger(),
		Now:    time.Now,
	}
}

type BookingSubmission struct {
	UserID          string
	IntakeID        string
	ServiceType     models.ServiceType
	ScheduledAt     time.Time
	DurationMinutes int
	Notes           string
}

// Create confirms a booking against an intake, flips the intake to BOOKED
// and schedules the confirmation and reminder emails. The reminder fires
// 24 hours before the session and is skipped when that moment has passed.
func (s *BookingService) Create(ctx context.Context, sub BookingSubmission) (models.Booking, error) {
	if _, err := s.Store.GetIntake(ctx, sub.IntakeID); err != nil {
		return models.Booking{}, err
	}

	booking := models.Booking{
		ID:              uuid.NewString(),
		UserID:          sub.UserID,
		IntakeID:        sub.IntakeID,
		ServiceType:     sub.ServiceType,
		ScheduledAt:     sub.ScheduledAt,
		DurationMinutes: sub.DurationMinutes,
		Notes:           sub.Notes,
		Status:          models.BookingConfirmed,
		CreatedAt:       s.Now(),
	}
	if err := s.Store.CreateBooking(ctx, booking); err != nil {
		return models.Booking{}, err
	}
	if err := s.Store.UpdateIntakeStatus(ctx, sub.IntakeID, models.IntakeBooked); err != nil {
		return models.Booking{}, err
	}
	if err := s.Store.AppendEvent(ctx, models.EventLog{
		EventType: "booking_created",
		BookingID: booking.ID,
		Payload: map[string]any{
			"serviceType": string(sub.ServiceType),
			"scheduledAt": sub.ScheduledAt,
		},
	}); err != nil {
		return models.Booking{}, err
	}

	if err := s.triggerAutomation(ctx, booking); err != nil {
		s.Logger.Error().Err(err).Str("booking_id", booking.ID).Msg("booking automation enqueue failed")
	}

	s.Logger.Info().Str("booking_id", booking.ID).Str("intake_id", booking.IntakeID).
		Time("scheduled_at", booking.ScheduledAt).Msg("booking created")
	return booking, nil
}

func (s *BookingService) triggerAutomation(ctx context.Context, booking models.Booking) error {
	err := s.Queue.EnqueueEmail(ctx, dispatch.EmailPayload{
		Template: "booking-confirmation",
		To:       booking.UserID,
		Data: map[string]any{
			"bookingId":   booking.ID,
			"serviceType": string(booking.ServiceType),
			"scheduledAt": booking.ScheduledAt,
			"duration":    booking.DurationMinutes,
		},
	}, dispatch.Options{})
	if err != nil {
		return err
	}

	reminderAt := booking.ScheduledAt.Add(-bookingReminderLead)
	if delay := reminderAt.Sub(s.Now()); delay > 0 {
		err := s.Queue.EnqueueEmail(ctx, dispatch.EmailPayload{
			Template: "booking-reminder",
			To:       booking.UserID,
			Data: map[string]any{
				"bookingId":   booking.ID,
				"scheduledAt": booking.ScheduledAt,
			},
		}, dispatch.Options{Delay: delay})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *BookingService) List(ctx context.Context, f store.BookingFilter) ([]models.Booking, int, error) {
	return s.Store.ListBookings(ctx, f)
}
