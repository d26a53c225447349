package dedup

import "testing"

func TestIsDuplicateIdempotent(t *testing.T) {
	d := New()

	content := "Summer Sale Is Finally Here\nhttps://cdn.example.com/banner.jpg"

	if d.IsDuplicate(content) {
		t.Fatal("first sighting reported as duplicate")
	}
	if !d.IsDuplicate(content) {
		t.Fatal("second sighting not reported as duplicate")
	}
	if !d.IsDuplicate(content) {
		t.Fatal("third sighting not reported as duplicate")
	}

	stats := d.Stats()
	if stats.UniqueHeadlines != 1 || stats.UniqueImages != 1 || stats.TotalCombinations != 1 {
		t.Fatalf("seen-sets grew on rejected candidates: %+v", stats)
	}
}

func TestSharedImageRejects(t *testing.T) {
	d := New()

	first := "Completely original headline text\nhttps://cdn.example.com/shared.png"
	second := "A different headline altogether!\nhttps://cdn.example.com/shared.png"

	if d.IsDuplicate(first) {
		t.Fatal("first candidate rejected")
	}
	if !d.IsDuplicate(second) {
		t.Fatal("candidate sharing an image URL was not rejected")
	}
}

func TestHeadlineMatchRejects(t *testing.T) {
	d := New()

	if d.IsDuplicate("Limited Time Offer On Shoes\nhttps://a.example.com/1.jpg") {
		t.Fatal("first candidate rejected")
	}
	if !d.IsDuplicate("limited time offer on shoes\nhttps://b.example.com/2.jpg") {
		t.Fatal("case-insensitive headline match was not rejected")
	}
}

func TestVideoIdentifiers(t *testing.T) {
	d := New()

	first := "short\nhttps://youtube.com/watch?v=abc123XYZ"
	if d.IsDuplicate(first) {
		t.Fatal("first candidate rejected")
	}
	second := "tiny\nsee https://youtube.com/watch?v=abc123XYZ&t=10"
	if !d.IsDuplicate(second) {
		t.Fatal("candidate sharing a video id was not rejected")
	}
	if d.Stats().UniqueVideos != 1 {
		t.Fatalf("expected one unique video, got %d", d.Stats().UniqueVideos)
	}
}

func TestEmptyContentCollapses(t *testing.T) {
	d := New()

	if d.IsDuplicate("") {
		t.Fatal("first empty candidate rejected")
	}
	if !d.IsDuplicate("   ") {
		t.Fatal("second content-free candidate should collapse onto the empty signature")
	}
}

func TestDistinctAdsAccepted(t *testing.T) {
	d := New()

	ads := []string{
		"Fresh spring styles have arrived\nhttps://cdn.example.com/spring.jpg",
		"Winter clearance ends this Sunday\nhttps://cdn.example.com/winter.jpg",
		"Join our rewards program today\nhttps://cdn.example.com/rewards.webp",
	}
	for i, content := range ads {
		if d.IsDuplicate(content) {
			t.Fatalf("distinct ad %d rejected", i)
		}
	}
	stats := d.Stats()
	if stats.UniqueHeadlines != 3 || stats.UniqueImages != 3 || stats.TotalCombinations != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
