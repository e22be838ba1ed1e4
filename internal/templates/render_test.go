package templates

import (
	"strings"
	"testing"

	"github.com/family-support/backend/internal/models"
)

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	out := Render("Hello {{name}}, ref {{id}}", map[string]any{"name": "Sam", "id": 42})
	if out != "Hello Sam, ref 42" {
		t.Fatalf("unexpected render: %q", out)
	}
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	out := Render("Link: {{supportLink}}", map[string]any{})
	if out != "Link: {{supportLink}}" {
		t.Fatalf("unknown placeholder must stay verbatim, got %q", out)
	}
}

func TestRenderRepeatedPlaceholder(t *testing.T) {
	out := Render("{{x}} and {{x}}", map[string]any{"x": "y"})
	if out != "y and y" {
		t.Fatalf("unexpected render: %q", out)
	}
}

func TestSupportiveForLevels(t *testing.T) {
	if SupportiveFor(models.DistressLow) != Supportive[0] {
		t.Fatalf("LOW must select template 0")
	}
	if SupportiveFor(models.DistressMedium) != Supportive[1] {
		t.Fatalf("MEDIUM must select template 1")
	}
	if SupportiveFor(models.DistressUrgent) != Supportive[2] {
		t.Fatalf("URGENT must select template 2")
	}
	if SupportiveFor("") != Supportive[0] {
		t.Fatalf("unknown level must fall back to template 0")
	}
}

func TestSupportiveTemplatesCarrySupportLink(t *testing.T) {
	for i, tpl := range Supportive {
		if !strings.Contains(tpl, "{{supportLink}}") {
			t.Fatalf("template %d lacks supportLink placeholder", i)
		}
	}
}

func TestSeedTemplatesActive(t *testing.T) {
	seen := map[string]bool{}
	for _, tpl := range Seed() {
		if !tpl.Active {
			t.Fatalf("seed template %s must be active", tpl.Name)
		}
		if seen[tpl.Name] {
			t.Fatalf("duplicate seed template %s", tpl.Name)
		}
		seen[tpl.Name] = true
	}
	for _, name := range []string{"welcome-after-intake", "urgent-intake-followup", "booking-confirmation", "booking-reminder", "referral-thank-you", "referral-invitation"} {
		if !seen[name] {
			t.Fatalf("missing seed template %s", name)
		}
	}
}
