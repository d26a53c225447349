package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/adscope/adscope/internal/ads"
)

func sampleRecords() []ads.Record {
	return []ads.Record{
		{
			AdID:           "123456789012345",
			LibraryID:      "123456789012345",
			PageName:       "Acme Outdoor Gear",
			Headline:       "Rugged Jackets For Every Season Ahead",
			PrimaryText:    "Discover waterproof jackets built for real weather.",
			CTALabel:       "Shop now",
			DestinationURL: "https://acme.example.com/jackets",
			DateStarted:    "Mar 7, 2025",
			MediaURLs:      []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
			CapturedAt:     time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		},
		{
			AdID:       "998877665544332",
			LibraryID:  "998877665544332",
			PageName:   "Borealis Coffee Roasters",
			Headline:   "Small Batch Beans Delivered Fresh",
			CTALabel:   "Learn more",
			CapturedAt: time.Date(2025, 6, 15, 12, 5, 0, 0, time.UTC),
		},
	}
}

func TestWriteJSON(t *testing.T) {
	e := New(t.TempDir())

	path, err := e.WriteJSON("Acme Outdoor Gear", sampleRecords())
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.HasPrefix(stem(path), "acme-outdoor-gear_") {
		t.Errorf("filename = %q, want brand slug prefix", stem(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var got []ads.Record
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Headline != "Rugged Jackets For Every Season Ahead" {
		t.Errorf("headline = %q", got[0].Headline)
	}
}

func TestWriteCSV(t *testing.T) {
	e := New(t.TempDir())

	path, err := e.WriteCSV("Acme Outdoor Gear", sampleRecords())
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "ad_id" {
		t.Errorf("header[0] = %q, want ad_id", rows[0][0])
	}
	if rows[1][3] != "Rugged Jackets For Every Season Ahead" {
		t.Errorf("row headline = %q", rows[1][3])
	}
	if rows[1][8] != "2" {
		t.Errorf("media_count = %q, want 2", rows[1][8])
	}
	if rows[2][6] != "" {
		t.Errorf("empty destination url rendered as %q", rows[2][6])
	}
}

func TestFilenameEmptyBrand(t *testing.T) {
	name := filename("", "json")
	if !strings.HasPrefix(name, "all_") {
		t.Errorf("filename = %q, want all_ prefix", name)
	}
}

func stem(path string) string {
	parts := strings.Split(path, string(os.PathSeparator))
	return parts[len(parts)-1]
}
