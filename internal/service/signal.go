package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/family-support/backend/internal/dispatch"
	"github.com/family-support/backend/internal/models"
	"github.com/family-support/backend/internal/scoring"
	"github.com/family-support/backend/internal/store"
	"github.com/family-support/backend/internal/utils"
)

const lowDistressFilterReason = "Low distress level - filtered out"

type SignalService struct {
	Store      store.Store
	Queue      *dispatch.Queue
	AlertEmail string
	Logger     zerolog.Logger
	Now        func() time.Time
}

func NewSignalService(st store.Store, q *dispatch.Queue, alertEmail string, logger zerolog.Logger) *SignalService {
	return &SignalService{
		Store:      st,
		Queue:      q,
		AlertEmail: alertEmail,
		Logger:     logger.With().Str("component", "signals").Logger(),
		Now:        time.Now,
	}
}

// SignalSubmission is the raw observed content handed to Ingest.
type SignalSubmission struct {
	PlatformSource string
	PlatformPostID string
	PlatformURL    string
	AuthorUsername string
	Content        string
	PostedAt       time.Time
}

// IngestResult distinguishes the three ingestion outcomes: persisted,
// duplicate of an existing signal, or filtered below the distress floor.
type IngestResult struct {
	Signal      *models.ExternalSignal `json:"signal"`
	IsDuplicate bool                   `json:"isDuplicate"`
	Reason      string                 `json:"reason,omitempty"`
}

// Ingest classifies the content and persists a signal unless it is a
// duplicate or below MEDIUM distress. The content-hash unique constraint
// backs the dedup check, so a lookup/create race still yields exactly one
// record.
func (s *SignalService) Ingest(ctx context.Context, sub SignalSubmission) (IngestResult, error) {
	contentHash := utils.ContentHash(sub.Content)
	existing, found, err := s.Store.GetSignalByHash(ctx, contentHash)
	if err != nil {
		return IngestResult{}, err
	}
	if found {
		return IngestResult{Signal: &existing, IsDuplicate: true}, nil
	}

	c := scoring.ClassifyContent(sub.Content)
	if c.DistressLevel == models.DistressLow {
		s.Logger.Debug().Str("platform", sub.PlatformSource).Str("post_id", sub.PlatformPostID).
			Msg("signal below distress floor, dropped")
		return IngestResult{Reason: lowDistressFilterReason}, nil
	}

	signal := models.ExternalSignal{
		ID:                   uuid.NewString(),
		PlatformSource:       sub.PlatformSource,
		PlatformPostID:       sub.PlatformPostID,
		PlatformURL:          sub.PlatformURL,
		AuthorUsername:       sub.AuthorUsername,
		Content:              sub.Content,
		ContentHash:          contentHash,
		PostedAt:             sub.PostedAt,
		DistressLevel:        c.DistressLevel,
		UrgencyScore:         c.UrgencyScore,
		HearingMentioned:     c.HearingMentioned,
		TimeframeDetected:    c.TimeframeDetected,
		SelfRepSignal:        c.SelfRepSignal,
		SafeguardingKeywords: c.SafeguardingKeywords,
		Summary:              c.Summary,
		Status:               models.SignalDetected,
		CreatedAt:            s.Now(),
	}
	if err := s.Store.CreateSignal(ctx, signal); err != nil {
		if errors.Is(err, store.ErrDuplicateContent) {
			existing, found, lookupErr := s.Store.GetSignalByHash(ctx, contentHash)
			if lookupErr != nil {
				return IngestResult{}, lookupErr
			}
			if found {
				return IngestResult{Signal: &existing, IsDuplicate: true}, nil
			}
		}
		return IngestResult{}, err
	}

	if err := s.Store.AppendEvent(ctx, models.EventLog{
		EventType: "external_signal_detected",
		SignalID:  signal.ID,
		Payload: map[string]any{
			"platform":      sub.PlatformSource,
			"distressLevel": string(c.DistressLevel),
			"urgencyScore":  c.UrgencyScore,
		},
	}); err != nil {
		return IngestResult{}, err
	}

	if c.DistressLevel == models.DistressUrgent || c.UrgencyScore >= UrgentScoreThreshold {
		if err := s.triggerAlert(ctx, signal); err != nil {
			s.Logger.Error().Err(err).Str("signal_id", signal.ID).Msg("signal alert enqueue failed")
		}
	}

	s.Logger.Info().Str("signal_id", signal.ID).Str("distress_level", string(c.DistressLevel)).
		Int("urgency_score", c.UrgencyScore).Msg("external signal detected")
	return IngestResult{Signal: &signal}, nil
}

func (s *SignalService) triggerAlert(ctx context.Context, signal models.ExternalSignal) error {
	return s.Queue.EnqueueAlert(ctx, dispatch.AlertPayload{
		Type: dispatch.AlertSignalDetected,
		To:   s.AlertEmail,
		Data: map[string]any{
			"signalId":      signal.ID,
			"platform":      signal.PlatformSource,
			"distressLevel": string(signal.DistressLevel),
			"urgencyScore":  signal.UrgencyScore,
			"summary":       signal.Summary,
			"platformUrl":   signal.PlatformURL,
		},
	}, dispatch.Options{Priority: 2})
}

func (s *SignalService) Get(ctx context.Context, id string) (models.ExternalSignal, error) {
	return s.Store.GetSignal(ctx, id)
}

func (s *SignalService) List(ctx context.Context, f store.SignalFilter) ([]models.ExternalSignal, int, error) {
	return s.Store.ListSignals(ctx, f)
}

func (s *SignalService) UpdateStatus(ctx context.Context, id string, status models.SignalStatus, reviewedBy string) error {
	return s.Store.UpdateSignalStatus(ctx, id, status, reviewedBy)
}

func (s *SignalService) Stats(ctx context.Context) (store.SignalStats, error) {
	return s.Store.SignalStats(ctx)
}

// Classify exposes the pure classifier for dry-run inspection.
func (s *SignalService) Classify(content string) scoring.Classification {
	return scoring.ClassifyContent(content)
}
