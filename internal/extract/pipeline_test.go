package extract

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/adscope/adscope/internal/datefilter"
)

const secondCard = `Active
Library ID: 998877665544332
Started running on Apr 2, 2025
Sponsored
Borealis Coffee Roasters
Small-batch beans roasted the same morning they ship, with tasting notes written by actual humans who drank an unreasonable amount of coffee so that you do not have to guess.
Morning Coffee Without The Guesswork
Learn more`

func TestExtractTextAcceptsDistinctCards(t *testing.T) {
	p := NewPipeline(DefaultRules(), nil, zerolog.Nop())

	res := p.ExtractText(validCard+"\n"+secondCard, "Acme")
	if res.Candidates != 2 {
		t.Fatalf("candidates = %d, want 2", res.Candidates)
	}
	if len(res.Records) != 2 {
		t.Fatalf("records = %d, want 2 (invalid=%d dup=%d)", len(res.Records), res.Invalid, res.Duplicates)
	}

	first, second := res.Records[0], res.Records[1]
	if first.AdID != "123456789012345" || second.AdID != "998877665544332" {
		t.Errorf("ad ids = %q, %q", first.AdID, second.AdID)
	}
	if first.PageName != "Acme Outdoor Gear" || second.PageName != "Borealis Coffee Roasters" {
		t.Errorf("page names = %q, %q", first.PageName, second.PageName)
	}
	if second.CTALabel != "Learn more" {
		t.Errorf("cta = %q", second.CTALabel)
	}
	if first.Source.Method != "text" {
		t.Errorf("source method = %q", first.Source.Method)
	}
}

func TestExtractTextAcceptsCardWithoutCTA(t *testing.T) {
	p := NewPipeline(DefaultRules(), nil, zerolog.Nop())

	// A real card with no call-to-action button still carries enough
	// content to keep; the missing field stays empty instead of
	// invalidating the record.
	card := `Active
Library ID: 314159265358979
Started running on Apr 9, 2025
Sponsored
Harbor & Pine Furniture
Each table is joined by hand from storm felled oak, sealed with hardwax oil, and backed by a repair promise that covers dents, rings, and scratches for twenty years of family dinners.
Solid Oak Tables Built To Outlast The House`

	res := p.ExtractText(card, "Harbor & Pine Furniture")
	if len(res.Records) != 1 {
		t.Fatalf("records = %d (candidates=%d invalid=%d noContent=%d)",
			len(res.Records), res.Candidates, res.Invalid, res.NoContent)
	}

	rec := res.Records[0]
	if rec.CTALabel != "" {
		t.Errorf("cta = %q, want empty", rec.CTALabel)
	}
	if rec.Headline != "Solid Oak Tables Built To Outlast The House" {
		t.Errorf("headline = %q", rec.Headline)
	}
	if rec.AdID != "314159265358979" {
		t.Errorf("ad id = %q", rec.AdID)
	}
	if rec.DateStarted != "Apr 9, 2025" {
		t.Errorf("date = %q", rec.DateStarted)
	}
}

func TestExtractTextSkipsDuplicates(t *testing.T) {
	p := NewPipeline(DefaultRules(), nil, zerolog.Nop())

	res := p.ExtractText(validCard+"\n"+validCard, "Acme")
	if res.Candidates != 2 || len(res.Records) != 1 || res.Duplicates != 1 {
		t.Fatalf("candidates=%d records=%d duplicates=%d", res.Candidates, len(res.Records), res.Duplicates)
	}

	stats := p.DedupStats()
	if stats.TotalCombinations != 1 {
		t.Fatalf("dedup stats = %+v", stats)
	}
}

func TestExtractTextSkipsInvalidCandidates(t *testing.T) {
	p := NewPipeline(DefaultRules(), nil, zerolog.Nop())

	capture := "Sponsored content policy\nreminder text\n" + validCard
	res := p.ExtractText(capture, "Acme")
	if len(res.Records) != 1 {
		t.Fatalf("records = %d (invalid=%d)", len(res.Records), res.Invalid)
	}
	if res.Invalid != 1 {
		t.Fatalf("invalid = %d, want 1", res.Invalid)
	}
}

func TestExtractTextDateFilter(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	filter := datefilter.CustomRange(30, now)
	p := NewPipeline(DefaultRules(), filter, zerolog.Nop())

	// "Mar 7, 2025" uses an abbreviated month no date pattern
	// recognizes, so swap in parseable dates: one outside the window,
	// one inside.
	old := strings.Replace(validCard, "Mar 7, 2025", "3/7/2025", 1)
	recent := strings.Replace(secondCard, "Apr 2, 2025", "2025-06-10", 1)

	res := p.ExtractText(old+"\n"+recent, "Acme")
	if len(res.Records) != 1 || res.OutOfRange != 1 {
		t.Fatalf("records=%d outOfRange=%d", len(res.Records), res.OutOfRange)
	}
	if res.Records[0].LibraryID != "998877665544332" {
		t.Fatalf("wrong record survived: %q", res.Records[0].LibraryID)
	}
}

func TestExtractTextKeepsUnknownDates(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	p := NewPipeline(DefaultRules(), datefilter.CustomRange(7, now), zerolog.Nop())

	// "Mar 7, 2025" uses an abbreviated month no pattern recognizes, so
	// the start date is unreadable and the record must survive a window
	// it would otherwise fall outside of.
	res := p.ExtractText(validCard, "Acme")
	if len(res.Records) != 1 {
		t.Fatalf("records = %d (outOfRange=%d)", len(res.Records), res.OutOfRange)
	}
	if res.UnknownDates != 1 {
		t.Errorf("unknownDates = %d, want 1", res.UnknownDates)
	}
}

func TestExtractHTML(t *testing.T) {
	p := NewPipeline(DefaultRules(), nil, zerolog.Nop())

	html := `<html><body><div id="results"><div class="card">
<span>Active</span>
<span>Library ID: 555666777888999</span>
<span>Started running on Mar 7, 2025</span>
<span>Sponsored</span>
<span>Acme Outdoor Gear</span>
<p>Discover waterproof jackets built for real weather, tested on three continents by people who live outside, and backed by a lifetime repair guarantee you will actually use.</p>
<span>Rugged Jackets For Every Season Ahead</span>
<a href="https://acme.example.com/jackets?utm_source=ads">Shop now</a>
<img src="https://scontent.fbcdn.example/creative.jpg" width="540" height="540"/>
<img src="https://scontent.fbcdn.example/profile.jpg" width="40" height="40"/>
</div></div></body></html>`

	res, err := p.ExtractHTML(html, "Acme")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("records = %d (candidates=%d invalid=%d)", len(res.Records), res.Candidates, res.Invalid)
	}

	rec := res.Records[0]
	if rec.LibraryID != "555666777888999" {
		t.Errorf("library id = %q", rec.LibraryID)
	}
	if rec.DestinationURL != "https://acme.example.com/jackets" {
		t.Errorf("destination = %q", rec.DestinationURL)
	}
	if len(rec.Media) != 1 || rec.Media[0].URL != "https://scontent.fbcdn.example/creative.jpg" {
		t.Errorf("media = %+v", rec.Media)
	}
	if len(res.MediaURLs) != 1 {
		t.Errorf("media urls = %v", res.MediaURLs)
	}
	if rec.Source.Method != "html" {
		t.Errorf("source method = %q", rec.Source.Method)
	}
}

func TestExtractContainer(t *testing.T) {
	p := NewPipeline(DefaultRules(), nil, zerolog.Nop())

	rec, ok := p.ExtractContainer(validCard, "Acme")
	if !ok {
		t.Fatal("valid container rejected")
	}
	if rec.Headline != "Rugged Jackets For Every Season Ahead" {
		t.Errorf("headline = %q", rec.Headline)
	}
	if rec.DateStarted != "Mar 7, 2025" {
		t.Errorf("date = %q", rec.DateStarted)
	}
	if rec.CapturedAt.IsZero() {
		t.Error("captured-at not stamped")
	}

	if _, ok := p.ExtractContainer("too small", "Acme"); ok {
		t.Fatal("invalid container accepted")
	}
}
