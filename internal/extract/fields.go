package extract

import (
	"strings"
	"unicode/utf8"
)

// Line-based field extractors. Each operates over the trimmed, non-empty
// lines of a candidate card and returns "" when its target is absent;
// scraped markup is unstable enough that a partial record beats a dropped
// one, so nothing here fails. Minimal-content validation is the
// assembler's job.

// LibraryID returns the first whitespace-delimited token following the
// library ID marker.
func (r Rules) LibraryID(lines []string) string {
	for _, line := range lines {
		if idx := strings.Index(line, r.LibraryIDMarker); idx >= 0 {
			rest := strings.TrimSpace(line[idx+len(r.LibraryIDMarker):])
			if fields := strings.Fields(rest); len(fields) > 0 {
				return fields[0]
			}
		}
	}
	return ""
}

// Advertiser returns the line following the standalone sponsored label,
// filtered against known interface fragments.
func (r Rules) Advertiser(lines []string) string {
	for i, line := range lines {
		if line != r.SponsoredMarker || i+1 >= len(lines) {
			continue
		}
		next := lines[i+1]
		if len(next) >= r.MaxAdvertiser {
			return ""
		}
		for _, skip := range r.AdvertiserSkips {
			if strings.Contains(next, skip) {
				return ""
			}
		}
		return next
	}
	return ""
}

// PrimaryText returns the longest line that is neither short, interface
// chrome, nor all-caps (all-caps lines are interface labels), truncated
// to the configured cap.
func (r Rules) PrimaryText(lines []string) string {
	best := ""
	for _, line := range lines {
		if len(line) <= 20 {
			continue
		}
		if containsAny(line, r.PrimaryTextSkips) {
			continue
		}
		if isUpper(line) {
			continue
		}
		if len(line) > len(best) {
			best = line
		}
	}
	return truncate(best, r.PrimaryTextCap)
}

// Headline returns the first line inside the headline length window that
// carries no structural markers and is not a truncated fragment.
func (r Rules) Headline(lines []string) string {
	for _, line := range lines {
		if len(line) <= r.MinHeadlineLen || len(line) >= r.MaxHeadlineLen {
			continue
		}
		if strings.Contains(line, r.SponsoredMarker) {
			continue
		}
		if strings.Contains(line, "Library ID") {
			continue
		}
		if strings.HasSuffix(line, "...") || strings.HasSuffix(line, "…") {
			continue
		}
		return line
	}
	return ""
}

// CTA returns the first line matching or containing a known CTA phrase.
func (r Rules) CTA(lines []string) string {
	for _, line := range lines {
		for _, phrase := range r.CTAPhrases {
			if line == phrase || strings.Contains(line, phrase) {
				return line
			}
		}
	}
	return ""
}

// StartDate returns the value of the first start-date line with the
// marker stripped, truncated at the separator dot the library appends
// after the date.
func (r Rules) StartDate(lines []string) string {
	for _, line := range lines {
		if !strings.Contains(line, r.DateMarker) {
			continue
		}
		date := strings.TrimSpace(strings.Replace(line, r.DateMarker, "", 1))
		if idx := strings.Index(date, "·"); idx >= 0 {
			date = strings.TrimSpace(date[:idx])
		}
		return date
	}
	return ""
}

// Subheadline returns a secondary headline-like line: the first headline
// candidate after the primary one.
func (r Rules) Subheadline(lines []string, headline string) string {
	seen := false
	for _, line := range lines {
		if len(line) <= r.MinHeadlineLen || len(line) >= r.MaxHeadlineLen {
			continue
		}
		if strings.Contains(line, r.SponsoredMarker) || strings.Contains(line, "Library ID") {
			continue
		}
		if line == headline && !seen {
			seen = true
			continue
		}
		if seen && !strings.HasSuffix(line, "...") {
			return line
		}
	}
	return ""
}

// isUpper reports whether every letter in s is upper-case and s has at
// least one letter.
func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

// truncate cuts s to at most n bytes without splitting a rune, so the
// result stays valid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
