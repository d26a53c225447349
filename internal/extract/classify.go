package extract

import (
	"regexp"
	"strings"
)

// Labels are the non-exclusive roles a snippet of ad text can play.
// Several labels commonly apply to the same line.
type Labels struct {
	IsHook        bool
	IsOffer       bool
	IsCTA         bool
	IsHashtag     bool
	IsHeadline    bool
	IsDescription bool
	HasUrgency    bool
	HasNumber     bool
}

var (
	hookPattern    = regexp.MustCompile(`(?i)[🔥💥⚡✨🎯]|sale|limited|ending|now|alert|urgent|breaking`)
	offerPattern   = regexp.MustCompile(`(?i)\d+%\s*off|save|discount|free|deal|special|promo`)
	urgencyPattern = regexp.MustCompile(`(?i)limited|ending|hurry|last chance|while supplies last|act now`)
	digitPattern   = regexp.MustCompile(`\d`)
)

// ctaVerbs are the action verbs that mark a short line as a call to action.
var ctaVerbs = []string{
	"shop", "buy", "get", "learn", "discover",
	"try", "start", "join", "book", "call",
}

// headlineExcludeVerbs disqualify a line from being a headline: a line
// built around a purchase verb is CTA copy, not a headline.
var headlineExcludeVerbs = []string{"shop", "buy", "get"}

// Classify labels a snippet of extracted text by its likely role. Used by
// the field extractors to pick the best candidate line when structural DOM
// cues are unavailable.
func Classify(text string) Labels {
	lower := strings.ToLower(text)

	return Labels{
		IsHook:        hookPattern.MatchString(text),
		IsOffer:       offerPattern.MatchString(text),
		IsCTA:         len(text) < 20 && containsAny(lower, ctaVerbs),
		IsHashtag:     strings.Contains(text, "#"),
		IsHeadline:    len(text) > 20 && len(text) < 150 && !containsAny(lower, headlineExcludeVerbs),
		IsDescription: len(text) > 150,
		HasUrgency:    urgencyPattern.MatchString(text),
		HasNumber:     digitPattern.MatchString(text),
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// BestCandidate returns the longest line in lines for which keep returns
// true, an empty string if none qualify. Length is the proxy for "most
// substantive" when several lines carry the same label.
func BestCandidate(lines []string, keep func(Labels, string) bool) string {
	best := ""
	for _, line := range lines {
		if keep(Classify(line), line) && len(line) > len(best) {
			best = line
		}
	}
	return best
}
