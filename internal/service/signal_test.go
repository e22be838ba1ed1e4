package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/family-support/backend/internal/dispatch"
	"github.com/family-support/backend/internal/models"
	"github.com/family-support/backend/internal/store"
)

func newSignalFixture(t *testing.T) (*SignalService, *store.Memory, *dispatch.MemoryStore) {
	t.Helper()
	mem := store.NewMemory()
	ms := dispatch.NewMemoryStore()
	q := dispatch.NewQueue(ms, zerolog.Nop())
	return NewSignalService(mem, q, "alerts@example.org", zerolog.Nop()), mem, ms
}

func submission(content string) SignalSubmission {
	return SignalSubmission{
		PlatformSource: "forum",
		PlatformPostID: "post-1",
		AuthorUsername: "worried_parent",
		Content:        content,
		PostedAt:       time.Now(),
	}
}

func TestIngestPersistsMediumSignal(t *testing.T) {
	svc, mem, ms := newSignalFixture(t)

	res, err := svc.Ingest(context.Background(), submission("There was abuse and I feel desperate"))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if res.IsDuplicate || res.Signal == nil {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Signal.DistressLevel != models.DistressMedium {
		t.Fatalf("expected MEDIUM, got %s", res.Signal.DistressLevel)
	}
	if res.Signal.Status != models.SignalDetected {
		t.Fatalf("expected DETECTED, got %s", res.Signal.Status)
	}

	events := mem.Events()
	if len(events) != 1 || events[0].EventType != "external_signal_detected" {
		t.Fatalf("expected detection event, got %+v", events)
	}
	// MEDIUM with urgency 25 stays below the alert bar.
	if jobs := drainJobs(t, ms); len(jobs) != 0 {
		t.Fatalf("medium signal must not alert, got %d jobs", len(jobs))
	}
}

func TestIngestFiltersLowDistress(t *testing.T) {
	svc, mem, _ := newSignalFixture(t)

	res, err := svc.Ingest(context.Background(), submission("Can someone recommend a good parenting book"))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if res.Signal != nil || res.IsDuplicate {
		t.Fatalf("low distress content must not persist: %+v", res)
	}
	if res.Reason != "Low distress level - filtered out" {
		t.Fatalf("unexpected filter reason: %q", res.Reason)
	}

	signals, total, err := mem.ListSignals(context.Background(), store.SignalFilter{})
	if err != nil || total != 0 || len(signals) != 0 {
		t.Fatalf("no signal should be stored, total=%d err=%v", total, err)
	}
	if events := mem.Events(); len(events) != 0 {
		t.Fatalf("no event for filtered content, got %+v", events)
	}
}

func TestIngestDeduplicatesByContent(t *testing.T) {
	svc, _, _ := newSignalFixture(t)
	ctx := context.Background()
	content := "There was abuse and I feel desperate"

	first, err := svc.Ingest(ctx, submission(content))
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	second, err := svc.Ingest(ctx, submission(content))
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if !second.IsDuplicate {
		t.Fatalf("second ingest must be flagged duplicate")
	}
	if second.Signal == nil || second.Signal.ID != first.Signal.ID {
		t.Fatalf("duplicate must return the original signal")
	}
}

func TestIngestUrgentSignalAlerts(t *testing.T) {
	svc, _, ms := newSignalFixture(t)

	res, err := svc.Ingest(context.Background(),
		submission("Urgent! My final hearing is tomorrow and I am representing myself. I am afraid."))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if res.Signal.DistressLevel != models.DistressUrgent {
		t.Fatalf("expected URGENT, got %s", res.Signal.DistressLevel)
	}

	jobs := drainJobs(t, ms)
	if len(jobs) != 1 || jobs[0].Kind != dispatch.KindSendUrgentAlert {
		t.Fatalf("expected one urgent alert job, got %+v", jobs)
	}
	if jobs[0].Priority != 2 {
		t.Fatalf("signal alerts carry priority 2, got %d", jobs[0].Priority)
	}
	if jobs[0].Alert.Type != dispatch.AlertSignalDetected {
		t.Fatalf("unexpected alert type %s", jobs[0].Alert.Type)
	}
}
