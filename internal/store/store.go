package store

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/adscope/adscope/internal/ads"
)

// Store handles all database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with SQLite backend
func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ads (
		ad_id TEXT PRIMARY KEY,
		library_id TEXT,
		page_name TEXT NOT NULL,
		headline TEXT,
		primary_text TEXT,
		subheadline TEXT,
		cta_label TEXT,
		media TEXT,
		media_urls TEXT,
		destination_url TEXT,
		date_started TEXT,
		placement TEXT,
		source_method TEXT,
		source_selector TEXT,
		captured_at DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS analysis (
		ad_id TEXT PRIMARY KEY REFERENCES ads(ad_id),
		hook_analysis TEXT,
		angle TEXT,
		pain_points TEXT,
		benefits TEXT,
		emotion TEXT,
		target_audience TEXT,
		effectiveness_score REAL,
		improvements TEXT,
		analyzed_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		brand TEXT NOT NULL,
		url TEXT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		ads_found INTEGER,
		scrolls INTEGER,
		success BOOLEAN,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_ads_page_name ON ads(page_name);
	CREATE INDEX IF NOT EXISTS idx_ads_captured_at ON ads(captured_at);
	CREATE INDEX IF NOT EXISTS idx_analysis_score ON analysis(effectiveness_score);
	CREATE INDEX IF NOT EXISTS idx_sessions_brand ON sessions(brand);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveAd inserts or updates an ad record. A re-scraped ad refreshes the
// mutable fields but keeps its first captured_at.
func (s *Store) SaveAd(r *ads.Record) error {
	mediaJSON, _ := json.Marshal(r.Media)
	urlsJSON, _ := json.Marshal(r.MediaURLs)

	_, err := s.db.Exec(`
		INSERT INTO ads (ad_id, library_id, page_name, headline, primary_text,
			subheadline, cta_label, media, media_urls, destination_url,
			date_started, placement, source_method, source_selector, captured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ad_id) DO UPDATE SET
			headline = excluded.headline,
			primary_text = excluded.primary_text,
			subheadline = excluded.subheadline,
			cta_label = excluded.cta_label,
			media = excluded.media,
			media_urls = excluded.media_urls,
			destination_url = excluded.destination_url,
			date_started = excluded.date_started
	`, r.AdID, r.LibraryID, r.PageName, r.Headline, r.PrimaryText,
		r.Subheadline, r.CTALabel, string(mediaJSON), string(urlsJSON), r.DestinationURL,
		r.DateStarted, string(r.Placement), r.Source.Method, r.Source.Selector, r.CapturedAt)

	return err
}

// SaveAnalysis inserts or updates analysis for an ad
func (s *Store) SaveAnalysis(a *ads.Analysis) error {
	painJSON, _ := json.Marshal(a.PainPoints)
	benefitsJSON, _ := json.Marshal(a.Benefits)
	improveJSON, _ := json.Marshal(a.Improvements)

	_, err := s.db.Exec(`
		INSERT INTO analysis (ad_id, hook_analysis, angle, pain_points, benefits,
			emotion, target_audience, effectiveness_score, improvements, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ad_id) DO UPDATE SET
			hook_analysis = excluded.hook_analysis,
			angle = excluded.angle,
			pain_points = excluded.pain_points,
			benefits = excluded.benefits,
			emotion = excluded.emotion,
			target_audience = excluded.target_audience,
			effectiveness_score = excluded.effectiveness_score,
			improvements = excluded.improvements,
			analyzed_at = excluded.analyzed_at
	`, a.AdID, a.HookAnalysis, a.Angle, string(painJSON), string(benefitsJSON),
		a.Emotion, a.TargetAudience, a.EffectivenessScore, string(improveJSON), a.AnalyzedAt)

	return err
}

// GetAnalyses returns stored analyses, most recent first. A limit of 0
// or less returns all of them.
func (s *Store) GetAnalyses(limit int) ([]ads.Analysis, error) {
	rows, err := s.db.Query(`
		SELECT ad_id, hook_analysis, angle, pain_points, benefits,
			emotion, target_audience, effectiveness_score, improvements, analyzed_at
		FROM analysis
		ORDER BY analyzed_at DESC
		LIMIT ?
	`, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ads.Analysis
	for rows.Next() {
		var a ads.Analysis
		var painJSON, benefitsJSON, improveJSON string
		err := rows.Scan(&a.AdID, &a.HookAnalysis, &a.Angle, &painJSON, &benefitsJSON,
			&a.Emotion, &a.TargetAudience, &a.EffectivenessScore, &improveJSON, &a.AnalyzedAt)
		if err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(painJSON), &a.PainPoints)
		json.Unmarshal([]byte(benefitsJSON), &a.Benefits)
		json.Unmarshal([]byte(improveJSON), &a.Improvements)
		results = append(results, a)
	}
	return results, rows.Err()
}

// GetUnanalyzedAds returns ads that haven't been analyzed yet.
// A limit of 0 or less returns all of them.
func (s *Store) GetUnanalyzedAds(limit int) ([]ads.Record, error) {
	rows, err := s.db.Query(`
		SELECT `+adColumns+`
		FROM ads a
		LEFT JOIN analysis an ON a.ad_id = an.ad_id
		WHERE an.ad_id IS NULL
		ORDER BY a.captured_at DESC
		LIMIT ?
	`, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAds(rows)
}

// GetAds returns stored ads for a brand, newest first. An empty brand
// returns ads across all brands.
func (s *Store) GetAds(brand string, limit int) ([]ads.Record, error) {
	rows, err := s.db.Query(`
		SELECT `+adColumns+`
		FROM ads a
		WHERE (? = '' OR a.page_name = ?)
		ORDER BY a.captured_at DESC
		LIMIT ?
	`, brand, brand, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAds(rows)
}

// GetAdsWithAnalysis returns analyzed ads at or above the score
// threshold, strongest first.
func (s *Store) GetAdsWithAnalysis(threshold float64, limit int) ([]ads.RecordWithAnalysis, error) {
	rows, err := s.db.Query(`
		SELECT `+adColumns+`,
			an.hook_analysis, an.angle, an.pain_points, an.benefits,
			an.emotion, an.target_audience, an.effectiveness_score,
			an.improvements, an.analyzed_at
		FROM ads a
		JOIN analysis an ON a.ad_id = an.ad_id
		WHERE an.effectiveness_score >= ?
		ORDER BY an.effectiveness_score DESC
		LIMIT ?
	`, threshold, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ads.RecordWithAnalysis
	for rows.Next() {
		var r ads.Record
		var a ads.Analysis
		var mediaJSON, urlsJSON, painJSON, benefitsJSON, improveJSON string
		var placement, method, selector string

		err := rows.Scan(
			&r.AdID, &r.LibraryID, &r.PageName, &r.Headline, &r.PrimaryText,
			&r.Subheadline, &r.CTALabel, &mediaJSON, &urlsJSON, &r.DestinationURL,
			&r.DateStarted, &placement, &method, &selector, &r.CapturedAt,
			&a.HookAnalysis, &a.Angle, &painJSON, &benefitsJSON,
			&a.Emotion, &a.TargetAudience, &a.EffectivenessScore,
			&improveJSON, &a.AnalyzedAt,
		)
		if err != nil {
			return nil, err
		}

		json.Unmarshal([]byte(mediaJSON), &r.Media)
		json.Unmarshal([]byte(urlsJSON), &r.MediaURLs)
		json.Unmarshal([]byte(painJSON), &a.PainPoints)
		json.Unmarshal([]byte(benefitsJSON), &a.Benefits)
		json.Unmarshal([]byte(improveJSON), &a.Improvements)
		r.Placement = ads.Placement(placement)
		r.Source = ads.Source{Method: method, Selector: selector}
		a.AdID = r.AdID

		results = append(results, ads.RecordWithAnalysis{Record: r, Analysis: &a})
	}

	return results, rows.Err()
}

// SaveSession records the outcome of one scraping session
func (s *Store) SaveSession(sess *ads.Session) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (brand, url, started_at, finished_at, ads_found, scrolls, success, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, sess.Brand, sess.URL, sess.StartedAt, sess.FinishedAt, sess.AdsFound, sess.Scrolls, sess.Success, sess.Error)
	return err
}

// AdExists checks if an ad ID already exists
func (s *Store) AdExists(id string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM ads WHERE ad_id = ?)`, id).Scan(&exists)
	return exists, err
}

// Stats summarizes the stored corpus.
type Stats struct {
	TotalAds     int       `json:"total_ads"`
	UniqueBrands int       `json:"unique_brands"`
	AnalyzedAds  int       `json:"analyzed_ads"`
	LastCapture  time.Time `json:"last_capture"`
}

// GetStats returns corpus-wide counts.
func (s *Store) GetStats() (Stats, error) {
	var st Stats
	var last sql.NullTime

	err := s.db.QueryRow(`
		SELECT COUNT(*),
			COUNT(DISTINCT page_name),
			(SELECT COUNT(*) FROM analysis),
			MAX(captured_at)
		FROM ads
	`).Scan(&st.TotalAds, &st.UniqueBrands, &st.AnalyzedAds, &last)
	if err != nil {
		return Stats{}, err
	}
	if last.Valid {
		st.LastCapture = last.Time
	}
	return st, nil
}

const adColumns = `a.ad_id, a.library_id, a.page_name, a.headline, a.primary_text,
			a.subheadline, a.cta_label, a.media, a.media_urls, a.destination_url,
			a.date_started, a.placement, a.source_method, a.source_selector, a.captured_at`

// normalizeLimit maps "no limit" to SQLite's LIMIT -1.
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func scanAds(rows *sql.Rows) ([]ads.Record, error) {
	var records []ads.Record
	for rows.Next() {
		var r ads.Record
		var mediaJSON, urlsJSON string
		var placement, method, selector string

		err := rows.Scan(
			&r.AdID, &r.LibraryID, &r.PageName, &r.Headline, &r.PrimaryText,
			&r.Subheadline, &r.CTALabel, &mediaJSON, &urlsJSON, &r.DestinationURL,
			&r.DateStarted, &placement, &method, &selector, &r.CapturedAt,
		)
		if err != nil {
			return nil, err
		}

		json.Unmarshal([]byte(mediaJSON), &r.Media)
		json.Unmarshal([]byte(urlsJSON), &r.MediaURLs)
		r.Placement = ads.Placement(placement)
		r.Source = ads.Source{Method: method, Selector: selector}

		records = append(records, r)
	}
	return records, rows.Err()
}
