package scraper

import (
	"encoding/json"
	"fmt"
	"os"
)

// Ad library DOM selectors
// These are isolated here because the library changes its DOM frequently
// Update these (or ship a hints file) when scraping breaks

// Selectors groups the CSS selectors the scraper drives the page with.
// Card containers are a cascade: the first selector that matches
// anything wins, so a hints file can lead with the current layout while
// older fallbacks stay behind it.
type Selectors struct {
	// Results area that must be visible before extraction starts.
	Results string `json:"results"`
	// Candidate ad card containers, tried in order.
	CardContainers []string `json:"card_containers"`
	// Cookie consent buttons, tried in order, all optional.
	CookieAccept []string `json:"cookie_accept"`
	// Text shown when a search matches nothing.
	NoResultsText string `json:"no_results_text"`
}

// DefaultSelectors returns the selector set for the current Meta Ad
// Library layout.
func DefaultSelectors() Selectors {
	return Selectors{
		Results: `div[role="main"]`,
		CardContainers: []string{
			`div.xh8yej3 > div[class*="x1dr59a3"]`,
			`div[class*="_7jvw"]`,
			`div[role="main"] hr + div > div`,
		},
		CookieAccept: []string{
			`div[aria-label="Allow all cookies"]`,
			`button[data-cookiebanner="accept_button"]`,
			`div[role="dialog"] div[aria-label*="cookie" i] [role="button"]`,
		},
		NoResultsText: "No results found",
	}
}

// LoadSelectorHints overlays selectors from a JSON hints file onto the
// defaults. Empty fields in the file keep their default values, so a
// hints file only needs the selectors that actually changed.
func LoadSelectorHints(path string) (Selectors, error) {
	sel := DefaultSelectors()
	if path == "" {
		return sel, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return sel, fmt.Errorf("read selector hints: %w", err)
	}

	var hints Selectors
	if err := json.Unmarshal(data, &hints); err != nil {
		return sel, fmt.Errorf("parse selector hints: %w", err)
	}

	if hints.Results != "" {
		sel.Results = hints.Results
	}
	if len(hints.CardContainers) > 0 {
		sel.CardContainers = hints.CardContainers
	}
	if len(hints.CookieAccept) > 0 {
		sel.CookieAccept = hints.CookieAccept
	}
	if hints.NoResultsText != "" {
		sel.NoResultsText = hints.NoResultsText
	}
	return sel, nil
}
