package outreach

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/family-support/backend/internal/errs"
	"github.com/family-support/backend/internal/models"
	"github.com/family-support/backend/internal/store"
)

type recordingSender struct {
	sent []string
	fail bool
}

func (s *recordingSender) SendEmail(ctx context.Context, from, to, subject, body string) error {
	s.sent = append(s.sent, body)
	return nil
}

func (s *recordingSender) SendSMS(ctx context.Context, to, message string) error {
	if s.fail {
		return context.DeadlineExceeded
	}
	s.sent = append(s.sent, message)
	return nil
}

func newTestService(t *testing.T) (*Service, *store.Memory, *recordingSender) {
	t.Helper()
	mem := store.NewMemory()
	sender := &recordingSender{}
	svc := NewService(mem, sender, "https://example.org/support-resources", zerolog.Nop())
	return svc, mem, sender
}

func seedSignal(t *testing.T, mem *store.Memory, status models.SignalStatus, level models.DistressLevel) models.ExternalSignal {
	t.Helper()
	sig := models.ExternalSignal{
		ID:             "sig-1",
		PlatformSource: "forum",
		PlatformPostID: "post-1",
		AuthorUsername: "worried_parent",
		Content:        "hearing tomorrow and I am on my own",
		ContentHash:    "h_1_34",
		DistressLevel:  level,
		Status:         status,
		CreatedAt:      time.Now(),
	}
	if err := mem.CreateSignal(context.Background(), sig); err != nil {
		t.Fatalf("seed signal: %v", err)
	}
	return sig
}

func TestGenerateDraftSelectsTemplateAndMovesSignal(t *testing.T) {
	svc, mem, _ := newTestService(t)
	sig := seedSignal(t, mem, models.SignalDetected, models.DistressUrgent)

	draft, err := svc.GenerateDraft(context.Background(), sig.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if draft.Status != models.DraftPendingReview {
		t.Fatalf("expected PENDING_REVIEW, got %s", draft.Status)
	}
	if draft.Platform != "forum" {
		t.Fatalf("expected platform carried over, got %s", draft.Platform)
	}
	if strings.Contains(draft.DraftContent, "{{supportLink}}") {
		t.Fatalf("support link placeholder not rendered")
	}
	if !strings.Contains(draft.DraftContent, "https://example.org/support-resources") {
		t.Fatalf("support link missing from draft")
	}

	got, err := mem.GetSignal(context.Background(), sig.ID)
	if err != nil {
		t.Fatalf("get signal: %v", err)
	}
	if got.Status != models.SignalUnderReview {
		t.Fatalf("expected signal UNDER_REVIEW, got %s", got.Status)
	}
}

func TestGenerateDraftRejectsSentSignal(t *testing.T) {
	svc, mem, _ := newTestService(t)
	sig := seedSignal(t, mem, models.SignalOutreachSent, models.DistressMedium)

	_, err := svc.GenerateDraft(context.Background(), sig.ID)
	if err == nil || !errs.Is(err, errs.TagInvalidState) {
		t.Fatalf("expected InvalidState, got %v", err)
	}
}

func TestGenerateDraftUnknownSignal(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.GenerateDraft(context.Background(), "missing")
	if err == nil || !errs.Is(err, errs.TagNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestReviewDraftApprove(t *testing.T) {
	svc, mem, _ := newTestService(t)
	sig := seedSignal(t, mem, models.SignalDetected, models.DistressMedium)
	draft, _ := svc.GenerateDraft(context.Background(), sig.ID)

	reviewed, err := svc.ReviewDraft(context.Background(), draft.ID, ActionApprove, "", "", "reviewer-1")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if reviewed.Status != models.DraftApproved {
		t.Fatalf("expected APPROVED, got %s", reviewed.Status)
	}
	if reviewed.ReviewedBy != "reviewer-1" || reviewed.ReviewedAt == nil {
		t.Fatalf("reviewer metadata missing: %+v", reviewed)
	}

	entries := mem.ComplianceEntries()
	if len(entries) != 1 || entries[0].Action != "outreach_approve" {
		t.Fatalf("expected one outreach_approve compliance entry, got %+v", entries)
	}
}

func TestReviewDraftEditFallsBackToOriginal(t *testing.T) {
	svc, mem, _ := newTestService(t)
	sig := seedSignal(t, mem, models.SignalDetected, models.DistressMedium)
	draft, _ := svc.GenerateDraft(context.Background(), sig.ID)

	reviewed, err := svc.ReviewDraft(context.Background(), draft.ID, ActionEdit, "", "", "reviewer-1")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if reviewed.Status != models.DraftEdited {
		t.Fatalf("expected EDITED, got %s", reviewed.Status)
	}
	if reviewed.EditedContent != draft.DraftContent {
		t.Fatalf("empty edit must fall back to original content")
	}
}

func TestReviewDraftReject(t *testing.T) {
	svc, mem, _ := newTestService(t)
	sig := seedSignal(t, mem, models.SignalDetected, models.DistressMedium)
	draft, _ := svc.GenerateDraft(context.Background(), sig.ID)

	reviewed, err := svc.ReviewDraft(context.Background(), draft.ID, ActionReject, "", "tone too familiar", "reviewer-1")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if reviewed.Status != models.DraftRejected {
		t.Fatalf("expected REJECTED, got %s", reviewed.Status)
	}
	if reviewed.EditedContent != "" || reviewed.RejectionReason != "tone too familiar" {
		t.Fatalf("rejection fields wrong: %+v", reviewed)
	}

	// REJECTED is terminal: no send allowed.
	_, err = svc.SendOutreach(context.Background(), draft.ID, "sender-1")
	if err == nil || !errs.Is(err, errs.TagInvalidState) {
		t.Fatalf("expected InvalidState on sending rejected draft, got %v", err)
	}
}

func TestReviewDraftUnknownAction(t *testing.T) {
	svc, mem, _ := newTestService(t)
	sig := seedSignal(t, mem, models.SignalDetected, models.DistressMedium)
	draft, _ := svc.GenerateDraft(context.Background(), sig.ID)

	_, err := svc.ReviewDraft(context.Background(), draft.ID, "escalate", "", "", "reviewer-1")
	if err == nil || !errs.Is(err, errs.TagInvalidAction) {
		t.Fatalf("expected InvalidAction, got %v", err)
	}
}

func TestSendOutreachRequiresReview(t *testing.T) {
	svc, mem, _ := newTestService(t)
	sig := seedSignal(t, mem, models.SignalDetected, models.DistressMedium)
	draft, _ := svc.GenerateDraft(context.Background(), sig.ID)

	_, err := svc.SendOutreach(context.Background(), draft.ID, "sender-1")
	if err == nil || !errs.Is(err, errs.TagInvalidState) {
		t.Fatalf("expected InvalidState for unreviewed draft, got %v", err)
	}
}

func TestSendOutreachLifecycle(t *testing.T) {
	svc, mem, sender := newTestService(t)
	sig := seedSignal(t, mem, models.SignalDetected, models.DistressMedium)
	draft, _ := svc.GenerateDraft(context.Background(), sig.ID)
	if _, err := svc.ReviewDraft(context.Background(), draft.ID, ActionEdit, "Shortened supportive message", "", "reviewer-1"); err != nil {
		t.Fatalf("review: %v", err)
	}

	action, err := svc.SendOutreach(context.Background(), draft.ID, "sender-1")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if action.Action != "send" || action.ActionType != "post_reply" || action.Outcome != "sent" {
		t.Fatalf("unexpected action record: %+v", action)
	}
	if action.Notes != "Shortened supportive message" {
		t.Fatalf("edited content must win, got %q", action.Notes)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "Shortened supportive message" {
		t.Fatalf("expected edited content delivered, got %v", sender.sent)
	}

	gotDraft, _ := mem.GetDraft(context.Background(), draft.ID)
	if gotDraft.Status != models.DraftSent {
		t.Fatalf("expected SENT draft, got %s", gotDraft.Status)
	}
	gotSignal, _ := mem.GetSignal(context.Background(), sig.ID)
	if gotSignal.Status != models.SignalOutreachSent {
		t.Fatalf("expected OUTREACH_SENT signal, got %s", gotSignal.Status)
	}

	var sentEvents int
	for _, e := range mem.Events() {
		if e.EventType == "outreach_sent" {
			sentEvents++
		}
	}
	if sentEvents != 1 {
		t.Fatalf("expected exactly one outreach_sent event, got %d", sentEvents)
	}
}

func TestSendOutreachTransportFailure(t *testing.T) {
	svc, mem, sender := newTestService(t)
	sender.fail = true
	sig := seedSignal(t, mem, models.SignalDetected, models.DistressMedium)
	draft, _ := svc.GenerateDraft(context.Background(), sig.ID)
	if _, err := svc.ReviewDraft(context.Background(), draft.ID, ActionApprove, "", "", "reviewer-1"); err != nil {
		t.Fatalf("review: %v", err)
	}

	_, err := svc.SendOutreach(context.Background(), draft.ID, "sender-1")
	if err == nil || !errs.Is(err, errs.TagTransport) {
		t.Fatalf("expected TransportFailure, got %v", err)
	}

	gotDraft, _ := mem.GetDraft(context.Background(), draft.ID)
	if gotDraft.Status != models.DraftApproved {
		t.Fatalf("failed send must not advance draft, got %s", gotDraft.Status)
	}
}
