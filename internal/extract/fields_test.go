package extract

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"
)

func cardLines() []string {
	return SplitLines(validCard)
}

func TestLibraryID(t *testing.T) {
	r := DefaultRules()

	if got := r.LibraryID(cardLines()); got != "123456789012345" {
		t.Errorf("LibraryID = %q", got)
	}
	if got := r.LibraryID([]string{"no markers here"}); got != "" {
		t.Errorf("LibraryID on plain text = %q", got)
	}
	if got := r.LibraryID([]string{"Library ID: 42 · Total ads"}); got != "42" {
		t.Errorf("LibraryID with trailing text = %q", got)
	}
	if got := r.LibraryID([]string{"Library ID:"}); got != "" {
		t.Errorf("LibraryID with empty value = %q", got)
	}
}

func TestAdvertiser(t *testing.T) {
	r := DefaultRules()

	if got := r.Advertiser(cardLines()); got != "Acme Outdoor Gear" {
		t.Errorf("Advertiser = %q", got)
	}

	interfaceNext := []string{"Sponsored", "See ad details"}
	if got := r.Advertiser(interfaceNext); got != "" {
		t.Errorf("Advertiser over interface text = %q", got)
	}

	long := []string{"Sponsored", strings.Repeat("n", 60)}
	if got := r.Advertiser(long); got != "" {
		t.Errorf("Advertiser over an overlong line = %q", got)
	}

	if got := r.Advertiser([]string{"Sponsored"}); got != "" {
		t.Errorf("Advertiser with nothing after the label = %q", got)
	}
}

func TestPrimaryText(t *testing.T) {
	r := DefaultRules()

	got := r.PrimaryText(cardLines())
	if !strings.HasPrefix(got, "Discover waterproof jackets") {
		t.Errorf("PrimaryText = %q", got)
	}

	allCaps := []string{"THIS ENTIRE LINE IS INTERFACE SHOUTING"}
	if got := r.PrimaryText(allCaps); got != "" {
		t.Errorf("PrimaryText over all-caps = %q", got)
	}

	long := []string{"a" + strings.Repeat(" word", 150)}
	if got := r.PrimaryText(long); len(got) != r.PrimaryTextCap {
		t.Errorf("PrimaryText not capped: len=%d", len(got))
	}
}

func TestPrimaryTextCapKeepsValidUTF8(t *testing.T) {
	r := DefaultRules()

	// The cap lands in the middle of the four-byte emoji; the cut must
	// back up to the rune boundary instead of leaving a broken tail that
	// a JSON round trip would rewrite as U+FFFD.
	line := strings.Repeat("a", r.PrimaryTextCap-2) + "🔥🔥"
	got := r.PrimaryText([]string{line})

	if len(got) > r.PrimaryTextCap {
		t.Errorf("PrimaryText over cap: len=%d", len(got))
	}
	if !utf8.ValidString(got) {
		t.Errorf("PrimaryText produced invalid UTF-8: %q", got[len(got)-4:])
	}

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	var back string
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != got {
		t.Errorf("JSON round trip changed the field: %d bytes became %d", len(got), len(back))
	}
}

func TestHeadline(t *testing.T) {
	r := DefaultRules()

	if got := r.Headline(cardLines()); got != "Rugged Jackets For Every Season Ahead" {
		t.Errorf("Headline = %q", got)
	}

	truncated := []string{"This headline was cut off mid-sentence by the..."}
	if got := r.Headline(truncated); got != "" {
		t.Errorf("Headline over a truncated fragment = %q", got)
	}
}

func TestCTA(t *testing.T) {
	r := DefaultRules()

	if got := r.CTA(cardLines()); got != "Shop now" {
		t.Errorf("CTA = %q", got)
	}
	if got := r.CTA([]string{"nothing actionable"}); got != "" {
		t.Errorf("CTA = %q", got)
	}
}

func TestStartDate(t *testing.T) {
	r := DefaultRules()

	if got := r.StartDate(cardLines()); got != "Mar 7, 2025" {
		t.Errorf("StartDate = %q", got)
	}

	withPlatforms := []string{"Started running on Mar 7, 2025 · Platforms Facebook"}
	if got := r.StartDate(withPlatforms); got != "Mar 7, 2025" {
		t.Errorf("StartDate with platform suffix = %q", got)
	}

	if got := r.StartDate([]string{"no date line"}); got != "" {
		t.Errorf("StartDate = %q", got)
	}
}

func TestSubheadline(t *testing.T) {
	r := DefaultRules()

	lines := append(cardLines(), "Free Shipping On Orders Over Fifty Dollars")
	headline := r.Headline(lines)
	if got := r.Subheadline(lines, headline); got != "Free Shipping On Orders Over Fifty Dollars" {
		t.Errorf("Subheadline = %q", got)
	}

	if got := r.Subheadline(cardLines(), r.Headline(cardLines())); got != "" {
		t.Errorf("Subheadline with no secondary line = %q", got)
	}
}
