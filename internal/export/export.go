// Package export writes scraped ad records to interchange formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adscope/adscope/internal/ads"
)

// Exporter writes session results into a directory, one timestamped
// file per format per session.
type Exporter struct {
	dir string
}

// New creates an exporter writing into dir.
func New(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// WriteJSON saves records as an indented JSON array. Returns the path
// to the written file.
func (e *Exporter) WriteJSON(brand string, records []ads.Record) (string, error) {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(e.dir, filename(brand, "json"))
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal records: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

// csvHeader defines the flat column layout for spreadsheet use.
var csvHeader = []string{
	"ad_id", "library_id", "page_name", "headline", "primary_text",
	"cta_label", "destination_url", "date_started", "media_count", "captured_at",
}

// WriteCSV saves records as a flat CSV for spreadsheet use. Returns the
// path to the written file.
func (e *Exporter) WriteCSV(brand string, records []ads.Record) (string, error) {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(e.dir, filename(brand, "csv"))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.AdID, r.LibraryID, r.PageName, r.Headline, r.PrimaryText,
			r.CTALabel, r.DestinationURL, r.DateStarted,
			strconv.Itoa(len(r.MediaURLs)), r.CapturedAt.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush export: %w", err)
	}
	return path, nil
}

func filename(brand, ext string) string {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(brand), " ", "-"))
	if slug == "" {
		slug = "all"
	}
	return fmt.Sprintf("%s_%s.%s", slug, time.Now().Format("2006-01-02T15-04-05"), ext)
}
