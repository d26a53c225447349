package extract

import "strings"

// Validator decides whether a candidate text block is a genuine ad card
// or page-interface chrome. It is a pure function of text content so the
// same instance serves DOM-scraped, markdown-scraped, and network-captured
// inputs.
type Validator struct {
	rules Rules
}

// NewValidator creates a validator with the given rule set.
func NewValidator(rules Rules) *Validator {
	return &Validator{rules: rules}
}

// IsValidAd applies the acceptance rules in order. All must hold.
func (v *Validator) IsValidAd(text string) bool {
	r := v.rules

	if len(strings.TrimSpace(text)) < r.MinTextLen {
		return false
	}

	// Structural markers anchor on the ad-library UI: "Sponsored" is the
	// paid-content signal, the library ID marker confirms a catalogued ad
	// rather than incidental text that happens to say "Sponsored".
	if !strings.Contains(text, r.SponsoredMarker) {
		return false
	}
	if !strings.Contains(text, r.LibraryIDMarker) {
		return false
	}

	// Plausible card window: too short is a fragment, too long is a
	// whole-page capture.
	if len(text) < r.MinCardLen || len(text) > r.MaxCardLen {
		return false
	}

	interfaceCount := 0
	for _, phrase := range r.InterfacePhrases {
		if strings.Contains(text, phrase) {
			interfaceCount++
		}
	}
	if interfaceCount > r.MaxInterface {
		return false
	}

	indicatorCount := 0
	for _, phrase := range r.IndicatorPhrases {
		if strings.Contains(text, phrase) {
			indicatorCount++
		}
	}
	if indicatorCount < r.MinIndicators {
		return false
	}

	// The line after the standalone "Sponsored" label must look like a
	// brand name.
	lines := SplitLines(text)
	for i, line := range lines {
		if line == r.SponsoredMarker && i+1 < len(lines) {
			next := lines[i+1]
			return len(next) > r.MinBrandLen && len(next) < r.MaxBrandLen
		}
	}

	return false
}

// SplitLines splits text into trimmed, non-empty lines.
func SplitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
