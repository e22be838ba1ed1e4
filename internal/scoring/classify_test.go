package scoring

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/family-support/backend/internal/models"
)

func TestClassifyContentMediumDistress(t *testing.T) {
	c := ClassifyContent("There was abuse and I feel desperate")

	if c.DistressLevel != models.DistressMedium {
		t.Fatalf("expected MEDIUM, got %s", c.DistressLevel)
	}
	if c.DistressScore != 5 {
		t.Fatalf("expected distress score 5, got %d", c.DistressScore)
	}
	if c.UrgencyScore != 25 {
		t.Fatalf("expected urgency 25, got %d", c.UrgencyScore)
	}
	if len(c.SafeguardingKeywords) != 1 || c.SafeguardingKeywords[0] != "abuse" {
		t.Fatalf("expected safeguarding [abuse], got %v", c.SafeguardingKeywords)
	}
	if c.HearingMentioned || c.SelfRepSignal || c.TimeframeDetected != "" {
		t.Fatalf("unexpected flags: %+v", c)
	}
}

func TestClassifyContentUrgentWithBonuses(t *testing.T) {
	c := ClassifyContent("Urgent! My final hearing is tomorrow and I am representing myself. I am afraid.")

	if c.DistressLevel != models.DistressUrgent {
		t.Fatalf("expected URGENT, got %s", c.DistressLevel)
	}
	// urgent + tomorrow (2 each), afraid (3): distress 7, urgency 35+20+15+10.
	if c.DistressScore != 7 {
		t.Fatalf("expected distress score 7, got %d", c.DistressScore)
	}
	if c.UrgencyScore != 80 {
		t.Fatalf("expected urgency 80, got %d", c.UrgencyScore)
	}
	if !c.HearingMentioned {
		t.Fatalf("expected hearing mentioned")
	}
	if !c.SelfRepSignal {
		t.Fatalf("expected self-rep signal")
	}
	if c.TimeframeDetected != "tomorrow" {
		t.Fatalf("expected timeframe tomorrow, got %q", c.TimeframeDetected)
	}
}

func TestClassifyContentLowDistress(t *testing.T) {
	c := ClassifyContent("Can someone recommend a good parenting book")

	if c.DistressLevel != models.DistressLow {
		t.Fatalf("expected LOW, got %s", c.DistressLevel)
	}
	if c.UrgencyScore != 0 {
		t.Fatalf("expected urgency 0, got %d", c.UrgencyScore)
	}
}

func TestClassifyContentUrgencyCap(t *testing.T) {
	c := ClassifyContent("urgent emergency today tomorrow desperate suicidal no hope, abuse assault unsafe afraid threatened")
	if c.UrgencyScore != 100 {
		t.Fatalf("expected urgency capped at 100, got %d", c.UrgencyScore)
	}
}

func TestClassifyContentSummary(t *testing.T) {
	c := ClassifyContent("Urgent! My final hearing is tomorrow and I am representing myself. I am afraid.")

	want := `High distress detected. Court hearing mentioned. Self-representing litigant. Safeguarding concerns: afraid. Context: "Urgent..."`
	if c.Summary != want {
		t.Fatalf("summary mismatch:\nwant %q\ngot  %q", want, c.Summary)
	}
}

func TestClassifyContentSummaryQuoteTruncated(t *testing.T) {
	content := strings.Repeat("a", 150)
	c := ClassifyContent(content)
	want := `Context: "` + strings.Repeat("a", 100) + `..."`
	if c.Summary != want {
		t.Fatalf("expected truncated quote, got %q", c.Summary)
	}
}

func TestClassifyContentCaseInsensitive(t *testing.T) {
	lower := ClassifyContent("there was abuse and i feel desperate")
	upper := ClassifyContent("THERE WAS ABUSE AND I FEEL DESPERATE")
	if lower.DistressScore != upper.DistressScore {
		t.Fatalf("case must not change scoring: %d vs %d", lower.DistressScore, upper.DistressScore)
	}
}

func TestClassifyContentCommonWordsStayLow(t *testing.T) {
	c := ClassifyContent("Any advice on my custody case would help")

	if c.DistressLevel != models.DistressLow {
		t.Fatalf("expected LOW, got %s (keywords %v)", c.DistressLevel, c.SafeguardingKeywords)
	}
	if c.DistressScore != 0 {
		t.Fatalf("expected distress 0, got %d", c.DistressScore)
	}
	if len(c.SafeguardingKeywords) != 0 {
		t.Fatalf("no safeguarding terms expected, got %v", c.SafeguardingKeywords)
	}
}

func TestClassifyContentSummaryQuoteMultibyte(t *testing.T) {
	content := strings.Repeat("a", 99) + "éxtra words beyond the limit"
	c := ClassifyContent(content)

	if !utf8.ValidString(c.Summary) {
		t.Fatalf("summary contains invalid UTF-8: %q", c.Summary)
	}
	want := `Context: "` + strings.Repeat("a", 99) + `é..."`
	if c.Summary != want {
		t.Fatalf("expected rune-bounded quote:\nwant %q\ngot  %q", want, c.Summary)
	}
}
