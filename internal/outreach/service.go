// Package outreach manages the human-review lifecycle of outreach drafts
// generated for detected external signals. Every draft passes through a
// reviewer before anything is sent.
package outreach

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rs/zerolog"

	"github.com/family-support/backend/internal/errs"
	"github.com/family-support/backend/internal/models"
	"github.com/family-support/backend/internal/notify"
	"github.com/family-support/backend/internal/store"
	"github.com/family-support/backend/internal/templates"
)

// Review actions accepted by ReviewDraft.
const (
	ActionApprove = "approve"
	ActionEdit    = "edit"
	ActionReject  = "reject"
)

type Service struct {
	Store       store.Store
	Sender      notify.Sender
	SupportLink string
	Logger      zerolog.Logger
	Now         func() time.Time
}

func NewService(st store.Store, sender notify.Sender, supportLink string, logger zerolog.Logger) *Service {
	return &Service{
		Store:       st,
		Sender:      sender,
		SupportLink: supportLink,
		Logger:      logger.With().Str("component", "outreach").Logger(),
		Now:         time.Now,
	}
}

// GenerateDraft creates a supportive-message draft for a signal and moves the
// signal under review. Only DETECTED and UNDER_REVIEW signals accept a draft.
func (s *Service) GenerateDraft(ctx context.Context, signalID string) (models.OutreachDraft, error) {
	sig, err := s.Store.GetSignal(ctx, signalID)
	if err != nil {
		return models.OutreachDraft{}, err
	}
	if !canGenerate(sig.Status) {
		return models.OutreachDraft{}, errs.InvalidState("signal does not accept a new draft",
			goerr.V("signal_id", signalID), goerr.V("status", string(sig.Status)))
	}

	content := templates.Render(templates.SupportiveFor(sig.DistressLevel), map[string]any{
		"supportLink": s.SupportLink,
	})
	draft := models.OutreachDraft{
		ID:           uuid.NewString(),
		SignalID:     sig.ID,
		DraftContent: content,
		Platform:     sig.PlatformSource,
		Status:       models.DraftPendingReview,
		CreatedAt:    s.Now(),
	}
	if err := s.Store.CreateDraft(ctx, draft); err != nil {
		return models.OutreachDraft{}, err
	}
	if sig.Status == models.SignalDetected {
		if err := s.Store.UpdateSignalStatus(ctx, sig.ID, models.SignalUnderReview, ""); err != nil {
			return models.OutreachDraft{}, err
		}
	}

	s.Logger.Info().Str("draft_id", draft.ID).Str("signal_id", sig.ID).
		Str("distress_level", string(sig.DistressLevel)).Msg("outreach draft generated")
	return draft, nil
}

// ReviewDraft applies a reviewer decision to a pending draft. Each decision
// writes one compliance entry regardless of outcome.
func (s *Service) ReviewDraft(ctx context.Context, draftID, action, editedContent, reason, reviewedBy string) (models.OutreachDraft, error) {
	draft, err := s.Store.GetDraft(ctx, draftID)
	if err != nil {
		return models.OutreachDraft{}, err
	}
	if draft.Status != models.DraftPendingReview {
		return models.OutreachDraft{}, errs.InvalidState("draft already reviewed",
			goerr.V("draft_id", draftID), goerr.V("status", string(draft.Status)))
	}

	now := s.Now()
	draft.ReviewedBy = reviewedBy
	draft.ReviewedAt = &now

	switch action {
	case ActionApprove:
		draft.Status = models.DraftApproved
	case ActionEdit:
		draft.Status = models.DraftEdited
		if editedContent == "" {
			editedContent = draft.DraftContent
		}
		draft.EditedContent = editedContent
	case ActionReject:
		draft.Status = models.DraftRejected
		draft.EditedContent = ""
		draft.RejectionReason = reason
	default:
		return models.OutreachDraft{}, errs.InvalidAction("unknown review action", goerr.V("action", action))
	}

	if err := s.Store.UpdateDraft(ctx, draft); err != nil {
		return models.OutreachDraft{}, err
	}
	if err := s.Store.AppendCompliance(ctx, models.ComplianceLog{
		Action:      "outreach_" + action,
		ActionType:  "outreach_" + action,
		EntityType:  "outreach_draft",
		EntityID:    draft.ID,
		PerformedBy: reviewedBy,
	}); err != nil {
		return models.OutreachDraft{}, err
	}

	s.Logger.Info().Str("draft_id", draft.ID).Str("action", action).
		Str("reviewed_by", reviewedBy).Msg("outreach draft reviewed")
	return draft, nil
}

// SendOutreach delivers an approved or edited draft and closes the loop on
// the signal. Edited content wins over the original draft text.
func (s *Service) SendOutreach(ctx context.Context, draftID, performedBy string) (models.OutreachAction, error) {
	draft, err := s.Store.GetDraft(ctx, draftID)
	if err != nil {
		return models.OutreachAction{}, err
	}
	if !canSend(draft.Status) {
		return models.OutreachAction{}, errs.InvalidState("draft is not approved for sending",
			goerr.V("draft_id", draftID), goerr.V("status", string(draft.Status)))
	}

	content := draft.DraftContent
	if draft.EditedContent != "" {
		content = draft.EditedContent
	}

	sig, err := s.Store.GetSignal(ctx, draft.SignalID)
	if err != nil {
		return models.OutreachAction{}, err
	}
	if err := s.Sender.SendSMS(ctx, sig.AuthorUsername, content); err != nil {
		return models.OutreachAction{}, errs.Transport(err, "outreach delivery failed",
			goerr.V("draft_id", draftID), goerr.V("platform", draft.Platform))
	}

	action := models.OutreachAction{
		ID:          uuid.NewString(),
		SignalID:    draft.SignalID,
		DraftID:     draft.ID,
		Action:      "send",
		ActionType:  "post_reply",
		Outcome:     "sent",
		Notes:       content,
		PerformedBy: performedBy,
		CreatedAt:   s.Now(),
	}
	if err := s.Store.CreateOutreachAction(ctx, action); err != nil {
		return models.OutreachAction{}, err
	}

	draft.Status = models.DraftSent
	if err := s.Store.UpdateDraft(ctx, draft); err != nil {
		return models.OutreachAction{}, err
	}
	if err := s.Store.UpdateSignalStatus(ctx, draft.SignalID, models.SignalOutreachSent, performedBy); err != nil {
		return models.OutreachAction{}, err
	}
	if err := s.Store.AppendEvent(ctx, models.EventLog{
		EventType: "outreach_sent",
		SignalID:  draft.SignalID,
		Payload:   map[string]any{"draftId": draft.ID, "actionId": action.ID, "platform": draft.Platform},
	}); err != nil {
		return models.OutreachAction{}, err
	}

	s.Logger.Info().Str("draft_id", draft.ID).Str("signal_id", draft.SignalID).Msg("outreach sent")
	return action, nil
}

func (s *Service) ListDrafts(ctx context.Context, f store.DraftFilter) ([]models.OutreachDraft, int, error) {
	return s.Store.ListDrafts(ctx, f)
}

func (s *Service) Stats(ctx context.Context) (store.OutreachStats, error) {
	return s.Store.OutreachStats(ctx)
}

func canGenerate(status models.SignalStatus) bool {
	return status == models.SignalDetected || status == models.SignalUnderReview
}

func canSend(status models.DraftStatus) bool {
	return status == models.DraftApproved || status == models.DraftEdited
}
