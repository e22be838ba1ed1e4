package scoring

import (
	"testing"
	"time"

	"github.com/family-support/backend/internal/models"
)

func boolPtr(b bool) *bool { return &b }

func TestCalculateUrgencyMaxCase(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	hearing := now.Add(24 * time.Hour)

	res := CalculateUrgency(IntakeSubmission{
		ServiceType:          models.ServiceEmergencySupport,
		HearingDate:          &hearing,
		SafeguardingConcerns: true,
		ChildrenInvolved:     true,
		ChildrenCount:        3,
		PreviousMediation:    boolPtr(false),
	}, now)

	if res.Score != 100 {
		t.Fatalf("expected score 100, got %d", res.Score)
	}
	if len(res.Factors) != 5 {
		t.Fatalf("expected 5 factors, got %v", res.Factors)
	}
	if res.Factors[0] != "Hearing within 48 hours" {
		t.Fatalf("expected hearing factor first, got %s", res.Factors[0])
	}
}

func TestCalculateUrgencyEmptySubmission(t *testing.T) {
	res := CalculateUrgency(IntakeSubmission{}, time.Now())
	if res.Score != 0 {
		t.Fatalf("expected score 0, got %d", res.Score)
	}
	if len(res.Factors) != 0 {
		t.Fatalf("expected no factors, got %v", res.Factors)
	}
}

func TestCalculateUrgencyHearingBandsExclusive(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		days   int
		score  int
		factor string
	}{
		{1, 40, "Hearing within 48 hours"},
		{2, 40, "Hearing within 48 hours"},
		{5, 30, "Hearing within 7 days"},
		{7, 30, "Hearing within 7 days"},
		{10, 15, "Hearing within 14 days"},
		{14, 15, "Hearing within 14 days"},
		{20, 0, ""},
	}
	for _, tc := range cases {
		hearing := now.Add(time.Duration(tc.days) * 24 * time.Hour)
		res := CalculateUrgency(IntakeSubmission{HearingDate: &hearing}, now)
		if res.Score != tc.score {
			t.Fatalf("days=%d: expected score %d, got %d", tc.days, tc.score, res.Score)
		}
		if tc.factor != "" && (len(res.Factors) != 1 || res.Factors[0] != tc.factor) {
			t.Fatalf("days=%d: expected single factor %q, got %v", tc.days, tc.factor, res.Factors)
		}
	}
}

func TestCalculateUrgencyFractionalDaysRoundUp(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	// 2.5 days out rounds up to 3, so the 48h band must not fire.
	hearing := now.Add(60 * time.Hour)
	res := CalculateUrgency(IntakeSubmission{HearingDate: &hearing}, now)
	if res.Score != 30 {
		t.Fatalf("expected 7-day band (30), got %d", res.Score)
	}
}

func TestCalculateUrgencyMediationTriState(t *testing.T) {
	now := time.Now()
	if res := CalculateUrgency(IntakeSubmission{PreviousMediation: nil}, now); res.Score != 0 {
		t.Fatalf("unset mediation must not score, got %d", res.Score)
	}
	if res := CalculateUrgency(IntakeSubmission{PreviousMediation: boolPtr(true)}, now); res.Score != 0 {
		t.Fatalf("true mediation must not score, got %d", res.Score)
	}
	if res := CalculateUrgency(IntakeSubmission{PreviousMediation: boolPtr(false)}, now); res.Score != 5 {
		t.Fatalf("explicit false mediation must score 5, got %d", res.Score)
	}
}

func TestCalculateUrgencyChildrenCutoff(t *testing.T) {
	now := time.Now()
	res := CalculateUrgency(IntakeSubmission{ChildrenInvolved: true, ChildrenCount: 2}, now)
	if res.Score != 0 {
		t.Fatalf("two children must not score, got %d", res.Score)
	}
	res = CalculateUrgency(IntakeSubmission{ChildrenInvolved: true, ChildrenCount: 3}, now)
	if res.Score != 10 {
		t.Fatalf("three children must score 10, got %d", res.Score)
	}
	res = CalculateUrgency(IntakeSubmission{ChildrenInvolved: false, ChildrenCount: 5}, now)
	if res.Score != 0 {
		t.Fatalf("children count without involvement flag must not score, got %d", res.Score)
	}
}

func TestDetermineArchetypeImminentHearingWins(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	hearing := now.Add(30 * time.Hour)

	got := DetermineArchetype(IntakeSubmission{
		HearingDate:          &hearing,
		SafeguardingConcerns: true,
		PreviousMediation:    boolPtr(false),
	}, now)
	if got != models.ArchetypeCourtImminent {
		t.Fatalf("expected COURT_IMMINENT, got %s", got)
	}
}

func TestDetermineArchetypeSafeguardingBeatsSelfRep(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	hearing := now.Add(10 * 24 * time.Hour)

	got := DetermineArchetype(IntakeSubmission{
		HearingDate:          &hearing,
		SafeguardingConcerns: true,
		PreviousMediation:    boolPtr(false),
	}, now)
	if got != models.ArchetypeComplexCase {
		t.Fatalf("expected COMPLEX_CASE, got %s", got)
	}
}

func TestDetermineArchetypeSelfRepRequiresExplicitFalse(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	hearing := now.Add(10 * 24 * time.Hour)

	got := DetermineArchetype(IntakeSubmission{
		HearingDate:       &hearing,
		PreviousMediation: boolPtr(false),
	}, now)
	if got != models.ArchetypeSelfRepLitigant {
		t.Fatalf("expected SELF_REP_LITIGANT, got %s", got)
	}

	got = DetermineArchetype(IntakeSubmission{
		HearingDate: &hearing,
	}, now)
	if got != "" {
		t.Fatalf("unset mediation must not classify self-rep, got %s", got)
	}
}

func TestDetermineArchetypeHintAndMediation(t *testing.T) {
	now := time.Now()

	got := DetermineArchetype(IntakeSubmission{ArchetypeHint: models.ArchetypeSelfRepLitigant}, now)
	if got != models.ArchetypeSelfRepLitigant {
		t.Fatalf("expected hint honored, got %s", got)
	}

	got = DetermineArchetype(IntakeSubmission{PreviousMediation: boolPtr(true)}, now)
	if got != models.ArchetypeComplexCase {
		t.Fatalf("expected prior mediation to classify COMPLEX_CASE, got %s", got)
	}

	got = DetermineArchetype(IntakeSubmission{ArchetypeHint: models.ArchetypeComplexCase}, now)
	if got != models.ArchetypeComplexCase {
		t.Fatalf("expected fallback to hint, got %s", got)
	}
}
