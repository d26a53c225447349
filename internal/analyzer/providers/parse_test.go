package providers

import (
	"strings"
	"testing"

	"github.com/adscope/adscope/internal/ads"
)

const sampleJSON = `[
  {
    "ad_id": "123456789012345",
    "hook_analysis": "opens with a durability claim",
    "angle": "product quality",
    "pain_points": ["gear wears out fast"],
    "benefits": ["lifetime repairs", "waterproof"],
    "emotion": "trust",
    "target_audience": "outdoor enthusiasts",
    "effectiveness_score": 8.5,
    "improvements": ["add social proof"]
  }
]`

func TestParseAnalysisResponse(t *testing.T) {
	analyses, err := ParseAnalysisResponse([]byte(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}
	if len(analyses) != 1 {
		t.Fatalf("got %d analyses", len(analyses))
	}

	a := analyses[0]
	if a.AdID != "123456789012345" || a.Angle != "product quality" {
		t.Errorf("analysis = %+v", a)
	}
	if a.EffectivenessScore != 8.5 || len(a.Benefits) != 2 {
		t.Errorf("analysis = %+v", a)
	}
	if a.AnalyzedAt.IsZero() {
		t.Error("analyzed-at not stamped")
	}
}

func TestParseAnalysisResponseBadJSON(t *testing.T) {
	_, err := ParseAnalysisResponse([]byte("the model apologized instead"))
	if err == nil {
		t.Fatal("expected error for non-JSON response")
	}
	if !strings.Contains(err.Error(), "failed to parse") {
		t.Fatalf("err = %v", err)
	}
}

func TestExtractJSON(t *testing.T) {
	fenced := "Here you go:\n```json\n" + sampleJSON + "\n```\nHope that helps!"
	if got := ExtractJSON(fenced); !strings.HasPrefix(got, "[") || !strings.HasSuffix(got, "]") {
		t.Fatalf("ExtractJSON fenced = %q", got)
	}

	bare := "preamble " + sampleJSON + " postamble"
	if got := ExtractJSON(bare); !strings.HasPrefix(got, "[") {
		t.Fatalf("ExtractJSON bare = %q", got)
	}

	if got := ExtractJSON("no json at all"); got != "no json at all" {
		t.Fatalf("ExtractJSON fallback = %q", got)
	}
}

func TestBuildAnalysisPrompt(t *testing.T) {
	records := []ads.Record{
		{
			AdID:        "111",
			PageName:    "Acme Outdoor Gear",
			Headline:    "Rugged Jackets For Every Season",
			PrimaryText: "Discover waterproof jackets.",
			CTALabel:    "Shop now",
			MediaURLs:   []string{"https://cdn.example/a.jpg"},
		},
	}
	prompt := buildAnalysisPrompt(records)

	for _, want := range []string{
		"ID: 111",
		"Acme Outdoor Gear",
		"Rugged Jackets For Every Season",
		"effectiveness_score",
		"hook_analysis",
		"ONLY a valid JSON array",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
