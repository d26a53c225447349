package extract

import (
	"strings"
	"testing"
)

// validCard is a text capture shaped like one real ad-library card.
const validCard = `Active
Library ID: 123456789012345
Started running on Mar 7, 2025
Sponsored
Acme Outdoor Gear
Discover waterproof jackets built for real weather, tested on three continents by people who live outside, and backed by a lifetime repair guarantee you will actually use.
Rugged Jackets For Every Season Ahead
Shop now`

func TestIsValidAdAccepts(t *testing.T) {
	v := NewValidator(DefaultRules())
	if !v.IsValidAd(validCard) {
		t.Fatal("well-formed card rejected")
	}
}

func TestIsValidAdRejections(t *testing.T) {
	r := DefaultRules()
	v := NewValidator(r)

	filler := strings.Repeat("x", 120)

	cases := []struct {
		name string
		text string
	}{
		{"too short", "Sponsored ad"},
		{"no sponsored marker", "Library ID: 42\nStarted running on Mar 7, 2025\n" + filler},
		{"no library id", "Sponsored\nAcme Brand\nStarted running on Mar 7, 2025\n" + filler},
		{"fragment below card window", "Sponsored\nAcme\nLibrary ID: 42 Shop now"},
		{"whole-page capture above card window", validCard + "\n" + strings.Repeat("y", r.MaxCardLen)},
		{
			"interface chrome",
			"Meta Ad Library\nSelect country\nFilter results\n" + validCard,
		},
		{
			"no ad indicators",
			"Sponsored\nAcme Outdoor Gear\nLibrary ID: 123456789012345\n" + filler,
		},
		{
			"label not followed by a brand name",
			"Library ID: 123456789012345\nStarted running on Mar 7, 2025\nSponsored\nX\n" + filler,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if v.IsValidAd(tc.text) {
				t.Errorf("accepted: %q", tc.text)
			}
		})
	}
}

func TestIsValidAdToleratesSomeChrome(t *testing.T) {
	// Up to two interface phrases can leak into a card without
	// disqualifying it.
	v := NewValidator(DefaultRules())
	text := "Filter results\n" + validCard
	if !v.IsValidAd(text) {
		t.Fatal("card with a single leaked interface phrase rejected")
	}
}

func TestSplitLines(t *testing.T) {
	lines := SplitLines("  a  \n\n\t\nb\n  ")
	if len(lines) != 2 || lines[0] != "a" || lines[1] != "b" {
		t.Fatalf("SplitLines = %q", lines)
	}
}
