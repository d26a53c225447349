package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/adscope/adscope/internal/ads"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "adscope.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleAd(id, brand string) *ads.Record {
	return &ads.Record{
		AdID:        id,
		LibraryID:   id,
		PageName:    brand,
		Headline:    "Rugged Jackets For Every Season",
		PrimaryText: "Discover waterproof jackets built for real weather.",
		CTALabel:    "Shop now",
		MediaURLs:   []string{"https://cdn.example/" + id + ".jpg"},
		Placement:   ads.PlacementFeed,
		Source:      ads.Source{Method: "html"},
		CapturedAt:  time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveAdRoundTrip(t *testing.T) {
	s := newTestStore(t)

	want := sampleAd("111", "Acme")
	if err := s.SaveAd(want); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetAds("Acme", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d ads", len(got))
	}
	r := got[0]
	if r.AdID != "111" || r.Headline != want.Headline || r.CTALabel != want.CTALabel {
		t.Errorf("record mismatch: %+v", r)
	}
	if len(r.MediaURLs) != 1 || r.MediaURLs[0] != want.MediaURLs[0] {
		t.Errorf("media urls mismatch: %v", r.MediaURLs)
	}
	if r.Source.Method != "html" {
		t.Errorf("source method = %q", r.Source.Method)
	}
}

func TestSaveAdUpsert(t *testing.T) {
	s := newTestStore(t)

	first := sampleAd("111", "Acme")
	if err := s.SaveAd(first); err != nil {
		t.Fatal(err)
	}

	updated := sampleAd("111", "Acme")
	updated.Headline = "New Seasonal Headline"
	if err := s.SaveAd(updated); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetAds("Acme", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("upsert duplicated the row: %d ads", len(got))
	}
	if got[0].Headline != "New Seasonal Headline" {
		t.Errorf("headline not refreshed: %q", got[0].Headline)
	}
}

func TestAdExists(t *testing.T) {
	s := newTestStore(t)

	exists, err := s.AdExists("missing")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("missing ad reported as existing")
	}

	if err := s.SaveAd(sampleAd("222", "Acme")); err != nil {
		t.Fatal(err)
	}
	exists, err = s.AdExists("222")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("saved ad reported as missing")
	}
}

func TestUnanalyzedAndAnalysis(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveAd(sampleAd("111", "Acme")); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveAd(sampleAd("222", "Borealis")); err != nil {
		t.Fatal(err)
	}

	un, err := s.GetUnanalyzedAds(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(un) != 2 {
		t.Fatalf("unanalyzed = %d, want 2", len(un))
	}

	a := &ads.Analysis{
		AdID:               "111",
		HookAnalysis:       "leads with durability claim",
		Angle:              "product quality",
		PainPoints:         []string{"gear wears out"},
		Benefits:           []string{"lifetime repairs"},
		Emotion:            "trust",
		TargetAudience:     "outdoor enthusiasts",
		EffectivenessScore: 8.5,
		Improvements:       []string{"add social proof"},
		AnalyzedAt:         time.Now().UTC(),
	}
	if err := s.SaveAnalysis(a); err != nil {
		t.Fatal(err)
	}

	un, err = s.GetUnanalyzedAds(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(un) != 1 || un[0].AdID != "222" {
		t.Fatalf("unanalyzed after analysis = %+v", un)
	}

	top, err := s.GetAdsWithAnalysis(5.0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 || top[0].Analysis == nil {
		t.Fatalf("analyzed ads = %+v", top)
	}
	if top[0].Analysis.EffectivenessScore != 8.5 {
		t.Errorf("score = %v", top[0].Analysis.EffectivenessScore)
	}
	if len(top[0].Analysis.PainPoints) != 1 {
		t.Errorf("pain points = %v", top[0].Analysis.PainPoints)
	}

	all, err := s.GetAnalyses(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].AdID != "111" {
		t.Fatalf("analyses = %+v", all)
	}
	if all[0].Improvements[0] != "add social proof" {
		t.Errorf("improvements = %v", all[0].Improvements)
	}
}

func TestSessionsAndStats(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveAd(sampleAd("111", "Acme")); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveAd(sampleAd("222", "Borealis")); err != nil {
		t.Fatal(err)
	}

	sess := &ads.Session{
		Brand:      "Acme",
		URL:        "https://library.example/?q=acme",
		StartedAt:  time.Now().Add(-time.Minute),
		FinishedAt: time.Now(),
		AdsFound:   1,
		Scrolls:    12,
		Success:    true,
	}
	if err := s.SaveSession(sess); err != nil {
		t.Fatal(err)
	}

	st, err := s.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if st.TotalAds != 2 || st.UniqueBrands != 2 || st.AnalyzedAds != 0 {
		t.Fatalf("stats = %+v", st)
	}
	if st.LastCapture.IsZero() {
		t.Error("last capture not recorded")
	}
}
