package scoring

import (
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/family-support/backend/internal/models"
	"github.com/family-support/backend/internal/templates"
)

// Classification thresholds and weights. Empirically chosen in the original
// triage calibration; kept as named constants rather than literals.
const (
	urgentTermWeight       = 2
	safeguardingTermWeight = 3
	urgentLevelThreshold   = 6
	mediumLevelThreshold   = 3
	urgencyScoreMultiplier = 5
	hearingBonus           = 20
	selfRepBonus           = 15
	timeframeBonus         = 10
	summaryQuoteLimit      = 100
)

// Keyword sets, all lowercase; content is lowercased once before matching.
// Short abbreviations ("dv", "fhdra") are excluded: as substrings they fire
// inside everyday words like "advice".
var (
	urgentKeywords = []string{
		"urgent", "emergency", "tomorrow", "today", "desperate", "suicidal",
		"no hope", "can't cope",
	}
	hearingKeywords = []string{
		"hearing", "court date", "trial", "final hearing", "directions hearing",
	}
	timeframeKeywords = []string{
		"tomorrow", "today", "next week", "in 2 days", "in 3 days",
	}
	selfRepKeywords = []string{
		"self representing", "litigant in person", "no solicitor",
		"can't afford lawyer", "representing myself", "on my own",
	}
	safeguardingKeywords = []string{
		"abuse", "domestic violence", "assault", "unsafe", "afraid",
		"threatened", "social services", "section 47",
	}
)

// keywordSet wraps an Aho-Corasick automaton and reports matched terms in
// the declared keyword order, each at most once.
type keywordSet struct {
	keywords []string
	matcher  *ahocorasick.Matcher
}

func newKeywordSet(keywords []string) *keywordSet {
	return &keywordSet{
		keywords: keywords,
		matcher:  ahocorasick.NewStringMatcher(keywords),
	}
}

func (s *keywordSet) matches(lowered string) []string {
	hits := s.matcher.Match([]byte(lowered))
	if len(hits) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(hits))
	for _, idx := range hits {
		seen[idx] = true
	}
	out := make([]string, 0, len(seen))
	for i, kw := range s.keywords {
		if seen[i] {
			out = append(out, kw)
		}
	}
	return out
}

var (
	urgentSet       = newKeywordSet(urgentKeywords)
	hearingSet      = newKeywordSet(hearingKeywords)
	timeframeSet    = newKeywordSet(timeframeKeywords)
	selfRepSet      = newKeywordSet(selfRepKeywords)
	safeguardingSet = newKeywordSet(safeguardingKeywords)
)

// Classification is the full bundle produced for a piece of signal content.
type Classification struct {
	DistressLevel        models.DistressLevel `json:"distress_level"`
	DistressScore        int                  `json:"distress_score"`
	HearingMentioned     bool                 `json:"hearing_mentioned"`
	TimeframeDetected    string               `json:"timeframe_detected,omitempty"`
	SelfRepSignal        bool                 `json:"self_rep_signal"`
	SafeguardingKeywords []string             `json:"safeguarding_keywords"`
	UrgencyScore         int                  `json:"urgency_score"`
	Summary              string               `json:"summary"`
}

// ClassifyContent is a pure function of the content string.
func ClassifyContent(content string) Classification {
	lowered := strings.ToLower(content)

	foundUrgent := urgentSet.matches(lowered)
	foundSafeguarding := safeguardingSet.matches(lowered)

	distressScore := len(foundUrgent)*urgentTermWeight +
		len(foundSafeguarding)*safeguardingTermWeight

	level := models.DistressLow
	switch {
	case distressScore >= urgentLevelThreshold:
		level = models.DistressUrgent
	case distressScore >= mediumLevelThreshold:
		level = models.DistressMedium
	}

	hearingMentioned := len(hearingSet.matches(lowered)) > 0
	selfRepSignal := len(selfRepSet.matches(lowered)) > 0

	timeframe := ""
	if tf := timeframeSet.matches(lowered); len(tf) > 0 {
		timeframe = tf[0]
	}

	urgencyScore := distressScore * urgencyScoreMultiplier
	if hearingMentioned {
		urgencyScore += hearingBonus
	}
	if selfRepSignal {
		urgencyScore += selfRepBonus
	}
	if timeframe != "" {
		urgencyScore += timeframeBonus
	}
	if urgencyScore > maxUrgencyScore {
		urgencyScore = maxUrgencyScore
	}

	c := Classification{
		DistressLevel:        level,
		DistressScore:        distressScore,
		HearingMentioned:     hearingMentioned,
		TimeframeDetected:    timeframe,
		SelfRepSignal:        selfRepSignal,
		SafeguardingKeywords: foundSafeguarding,
		UrgencyScore:         urgencyScore,
	}
	c.Summary = summarize(content, c)
	return c
}

func summarize(content string, c Classification) string {
	var clauses []string

	switch c.DistressLevel {
	case models.DistressUrgent:
		clauses = append(clauses, "High distress detected")
	case models.DistressMedium:
		clauses = append(clauses, "Moderate distress detected")
	}

	if c.HearingMentioned {
		clauses = append(clauses, "Court hearing mentioned")
	}
	if c.SelfRepSignal {
		clauses = append(clauses, "Self-representing litigant")
	}
	if len(c.SafeguardingKeywords) > 0 {
		clauses = append(clauses, templates.Render("Safeguarding concerns: {{keywords}}", map[string]any{
			"keywords": strings.Join(c.SafeguardingKeywords, ", "),
		}))
	}

	first := strings.FieldsFunc(content, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	quote := content
	if len(first) > 0 {
		quote = first[0]
	}
	if runes := []rune(quote); len(runes) > summaryQuoteLimit {
		quote = string(runes[:summaryQuoteLimit])
	}
	clauses = append(clauses, templates.Render(`Context: "{{quote}}..."`, map[string]any{
		"quote": quote,
	}))

	return strings.Join(clauses, ". ")
}
