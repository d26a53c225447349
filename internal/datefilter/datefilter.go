// Package datefilter restricts captured ads to a start-date window.
package datefilter

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Preset names a relative date window anchored at construction time.
type Preset string

const (
	Last7Days   Preset = "last_7_days"
	Last30Days  Preset = "last_30_days"
	Last90Days  Preset = "last_90_days"
	Last6Months Preset = "last_6_months"
	LastYear    Preset = "last_year"
)

var presetDays = map[Preset]int{
	Last7Days:   7,
	Last30Days:  30,
	Last90Days:  90,
	Last6Months: 180,
	LastYear:    365,
}

var (
	slashPattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	isoPattern   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	wordPattern  = regexp.MustCompile(`\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2}),\s+(\d{4})\b`)
)

// Filter holds an inclusive date range. The bounds are fixed when the
// filter is built, so a long scraping session does not shift its own
// window.
type Filter struct {
	Start time.Time
	End   time.Time
}

// FromPreset builds a filter for a named window ending now.
func FromPreset(preset Preset, now time.Time) (*Filter, error) {
	days, ok := presetDays[preset]
	if !ok {
		return nil, fmt.Errorf("unknown date range preset %q", preset)
	}
	return CustomRange(days, now), nil
}

// CustomRange builds a filter covering the past daysBack days ending now.
func CustomRange(daysBack int, now time.Time) *Filter {
	return &Filter{
		Start: now.AddDate(0, 0, -daysBack),
		End:   now,
	}
}

// InRange reports whether t falls within the window, inclusive at both
// ends.
func (f *Filter) InRange(t time.Time) bool {
	return !t.Before(f.Start) && !t.After(f.End)
}

// Keep decides whether an ad with the given start-date text survives the
// filter. Text with no recognizable date is kept; a missing date is not
// evidence the ad is old.
func (f *Filter) Keep(text string) bool {
	t, ok := ExtractDate(text)
	if !ok {
		return true
	}
	return f.InRange(t)
}

// ExtractDate finds the first recognizable date in text. It tries
// MM/DD/YYYY, then YYYY-MM-DD, then "Month DD, YYYY".
func ExtractDate(text string) (time.Time, bool) {
	if m := slashPattern.FindStringSubmatch(text); m != nil {
		t, err := time.Parse("1/2/2006", fmt.Sprintf("%s/%s/%s", m[1], m[2], m[3]))
		if err == nil {
			return t, true
		}
	}
	if m := isoPattern.FindStringSubmatch(text); m != nil {
		t, err := time.Parse("2006-01-02", m[0])
		if err == nil {
			return t, true
		}
	}
	if m := wordPattern.FindStringSubmatch(text); m != nil {
		t, err := time.Parse("January 2, 2006", fmt.Sprintf("%s %s, %s", m[1], m[2], m[3]))
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParsePreset validates a configuration string against the known preset
// names.
func ParsePreset(s string) (Preset, error) {
	p := Preset(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := presetDays[p]; !ok {
		return "", fmt.Errorf("unknown date range preset %q", s)
	}
	return p, nil
}
