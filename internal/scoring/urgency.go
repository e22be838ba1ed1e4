// Package scoring implements the deterministic urgency and classification
// rules for intakes and external signals.
package scoring

import (
	"math"
	"time"

	"github.com/family-support/backend/internal/models"
)

// Urgency rule points. Rules are evaluated in a fixed order so the factor
// list is reproducible for the same input.
const (
	pointsHearing48h     = 40
	pointsHearing7d      = 30
	pointsHearing14d     = 15
	pointsSafeguarding   = 25
	pointsEmergency      = 20
	pointsManyChildren   = 10
	pointsNoMediation    = 5
	maxUrgencyScore      = 100
	manyChildrenCutoff   = 2
	imminentHearingHours = 48
)

// IntakeSubmission carries the scoring inputs of a new intake.
// PreviousMediation is tri-state: only an explicit false fires the
// no-mediation rule and the self-rep archetype rule.
type IntakeSubmission struct {
	UserID               string
	ServiceType          models.ServiceType
	HearingDate          *time.Time
	CourtName            string
	ContactMethod        string
	SafeguardingConcerns bool
	ChildrenInvolved     bool
	ChildrenCount        int
	PreviousMediation    *bool
	ArchetypeHint        models.Archetype
}

type UrgencyResult struct {
	Score   int      `json:"score"`
	Factors []string `json:"factors"`
}

// CalculateUrgency applies the additive point rules in order and caps the
// total at 100. An empty factor list with score 0 is a valid outcome.
func CalculateUrgency(sub IntakeSubmission, now time.Time) UrgencyResult {
	score := 0
	factors := []string{}

	if sub.HearingDate != nil {
		days := int(math.Ceil(sub.HearingDate.Sub(now).Hours() / 24))
		switch {
		case days <= 2:
			score += pointsHearing48h
			factors = append(factors, "Hearing within 48 hours")
		case days <= 7:
			score += pointsHearing7d
			factors = append(factors, "Hearing within 7 days")
		case days <= 14:
			score += pointsHearing14d
			factors = append(factors, "Hearing within 14 days")
		}
	}

	if sub.SafeguardingConcerns {
		score += pointsSafeguarding
		factors = append(factors, "Safeguarding concerns reported")
	}

	if sub.ServiceType == models.ServiceEmergencySupport {
		score += pointsEmergency
		factors = append(factors, "Emergency support requested")
	}

	if sub.ChildrenInvolved && sub.ChildrenCount > manyChildrenCutoff {
		score += pointsManyChildren
		factors = append(factors, "Multiple children involved")
	}

	if sub.PreviousMediation != nil && !*sub.PreviousMediation {
		score += pointsNoMediation
		factors = append(factors, "No previous mediation experience")
	}

	if score > maxUrgencyScore {
		score = maxUrgencyScore
	}

	return UrgencyResult{Score: score, Factors: factors}
}

// DetermineArchetype classifies the client situation. First matching rule
// wins; the ordering encodes triage priority (imminent safety, then legal
// complexity, then procedural unfamiliarity).
func DetermineArchetype(sub IntakeSubmission, now time.Time) models.Archetype {
	if sub.HearingDate != nil && sub.HearingDate.Sub(now).Hours() <= imminentHearingHours {
		return models.ArchetypeCourtImminent
	}

	if sub.SafeguardingConcerns {
		return models.ArchetypeComplexCase
	}

	// Explicit false required: an unset flag does not mark a self-rep litigant.
	if sub.PreviousMediation != nil && !*sub.PreviousMediation && sub.HearingDate != nil {
		return models.ArchetypeSelfRepLitigant
	}

	if sub.ArchetypeHint == models.ArchetypeSelfRepLitigant {
		return models.ArchetypeSelfRepLitigant
	}

	if sub.PreviousMediation != nil && *sub.PreviousMediation {
		return models.ArchetypeComplexCase
	}

	return sub.ArchetypeHint
}
