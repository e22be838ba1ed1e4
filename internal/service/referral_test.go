package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/family-support/backend/internal/dispatch"
	"github.com/family-support/backend/internal/models"
	"github.com/family-support/backend/internal/store"
)

func newReferralFixture(t *testing.T) (*ReferralService, *store.Memory, *dispatch.MemoryStore) {
	t.Helper()
	mem := store.NewMemory()
	ms := dispatch.NewMemoryStore()
	q := dispatch.NewQueue(ms, zerolog.Nop())
	return NewReferralService(mem, q, zerolog.Nop()), mem, ms
}

func TestReferralCreateThanksReferrer(t *testing.T) {
	svc, mem, ms := newReferralFixture(t)

	referral, err := svc.Create(context.Background(), ReferralSubmission{
		UserID:           "u1",
		ClientName:       "Alex Doe",
		ServiceRequested: "mediation",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if referral.Status != models.ReferralSent {
		t.Fatalf("expected SENT, got %s", referral.Status)
	}

	jobs := drainJobs(t, ms)
	if len(jobs) != 1 {
		t.Fatalf("no client email means thank-you only, got %d jobs", len(jobs))
	}
	if jobs[0].Email.Template != "referral-thank-you" || jobs[0].Email.To != "u1" {
		t.Fatalf("unexpected job: %+v", jobs[0].Email)
	}

	var created int
	for _, e := range mem.Events() {
		if e.EventType == "referral_created" {
			created++
		}
	}
	if created != 1 {
		t.Fatalf("expected one referral_created event, got %d", created)
	}
}

func TestReferralCreateInvitesClient(t *testing.T) {
	svc, _, ms := newReferralFixture(t)

	referral, err := svc.Create(context.Background(), ReferralSubmission{
		UserID:           "u1",
		ClientName:       "Alex Doe",
		ClientEmail:      "alex@example.com",
		ServiceRequested: "self_rep_support",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	jobs := drainJobs(t, ms)
	if len(jobs) != 2 {
		t.Fatalf("expected thank-you + invitation, got %d jobs", len(jobs))
	}
	var invite *dispatch.Job
	for _, j := range jobs {
		if j.Email.Template == "referral-invitation" {
			invite = j
		}
	}
	if invite == nil {
		t.Fatalf("invitation job missing: %+v", jobs)
	}
	if invite.Email.To != "alex@example.com" {
		t.Fatalf("invitation addressed to %q", invite.Email.To)
	}
	if invite.Email.Data["referralId"] != referral.ID || invite.Email.Data["referrerUserId"] != "u1" {
		t.Fatalf("unexpected invitation data: %+v", invite.Email.Data)
	}
}
