// Package ads defines the entities shared across the scraping and
// analysis pipeline.
package ads

import "time"

// Placement identifies where an ad was served.
type Placement string

const (
	PlacementFeed    Placement = "feed"
	PlacementStories Placement = "stories"
	PlacementReels   Placement = "reels"
	PlacementUnknown Placement = "unknown"
)

// MediaItem is a single image or video attached to an ad.
type MediaItem struct {
	Type      string `json:"type"` // "image" or "video"
	URL       string `json:"url"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Poster    string `json:"poster,omitempty"`
	LocalPath string `json:"local_path,omitempty"`
}

// Source records how a record was extracted so that captures from
// different paths (DOM, markdown, network) remain distinguishable.
type Source struct {
	Method   string `json:"method"`             // "dom", "lines", "network"
	Selector string `json:"selector,omitempty"` // selector or path that matched
}

// Record is one detected advertisement.
type Record struct {
	// AdID is the stable identity: the platform library ID when present,
	// otherwise a content hash assigned by the assembler.
	AdID      string `json:"ad_id"`
	LibraryID string `json:"library_id,omitempty"`

	PageName    string `json:"page_name,omitempty"`
	Headline    string `json:"headline,omitempty"`
	PrimaryText string `json:"primary_text,omitempty"`
	Subheadline string `json:"subheadline,omitempty"`
	CTALabel    string `json:"cta_label,omitempty"`

	Media     []MediaItem `json:"media,omitempty"`
	MediaURLs []string    `json:"media_urls,omitempty"` // flat list kept for export compatibility

	DestinationURL string `json:"destination_url,omitempty"`
	DateStarted    string `json:"date_started,omitempty"`

	Placement      Placement `json:"placement"`
	SponsoredLabel string    `json:"sponsored_label,omitempty"`

	Source     Source    `json:"source"`
	CapturedAt time.Time `json:"captured_at"`
}

// HasContent reports whether the record carries enough meaningful content
// to be worth keeping. Records failing this are dropped by the assembler.
func (r *Record) HasContent() bool {
	return r.PrimaryText != "" ||
		r.Headline != "" ||
		r.CTALabel != "" ||
		r.LibraryID != "" ||
		len(r.MediaURLs) > 0
}

// Analysis holds LLM-derived insights for one ad.
type Analysis struct {
	AdID               string    `json:"ad_id"`
	HookAnalysis       string    `json:"hook_analysis"`
	Angle              string    `json:"angle"`
	PainPoints         []string  `json:"pain_points"`
	Benefits           []string  `json:"benefits"`
	Emotion            string    `json:"emotion"`
	TargetAudience     string    `json:"target_audience"`
	EffectivenessScore float64   `json:"effectiveness_score"`
	Improvements       []string  `json:"improvements"`
	AnalyzedAt         time.Time `json:"analyzed_at"`
}

// PatternSummary aggregates copywriting patterns across many ads.
type PatternSummary struct {
	CommonHooks       []string `json:"common_hooks"`
	PowerWords        []string `json:"power_words"`
	EmotionalTriggers []string `json:"emotional_triggers"`
	StructurePatterns []string `json:"structure_patterns"`
	CTAPatterns       []string `json:"cta_patterns"`
	SampleSize        int      `json:"sample_size"`
}

// Session is the metadata for one scrape of one brand target.
type Session struct {
	Brand      string    `json:"brand"`
	URL        string    `json:"url"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	AdsFound   int       `json:"ads_found"`
	Scrolls    int       `json:"scrolls"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
}

// RecordWithAnalysis pairs a stored record with its analysis, if any.
type RecordWithAnalysis struct {
	Record   Record
	Analysis *Analysis
}
