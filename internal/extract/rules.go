// Package extract turns raw page captures into structured ad records.
// It works over two tolerated input shapes: flat text (DOM innerText or
// scraped markdown) and HTML fragments.
package extract

// Rules holds every heuristic the extraction pipeline applies. The
// thresholds were tuned against the Meta Ad Library card layout; other
// ad-library-style sources can supply their own values instead of
// patching control flow.
type Rules struct {
	// Structural markers.
	SponsoredMarker string // literal label marking paid content
	LibraryIDMarker string // literal token preceding the catalogued ad ID
	DateMarker      string // literal prefix of the start-date line

	// Validator length thresholds, in characters.
	MinTextLen     int // below this a candidate is too sparse to consider
	MinCardLen     int // below this it is a fragment
	MaxCardLen     int // above this it is a whole-page capture
	MaxInterface   int // more than this many interface phrases rejects
	MinIndicators  int // at least this many ad-content phrases required
	MinBrandLen    int // exclusive lower bound on the brand-name line
	MaxBrandLen    int // exclusive upper bound on the brand-name line
	MaxAdvertiser  int // advertiser line longer than this is interface text
	PrimaryTextCap int // primary text is truncated to this many characters

	// Headline length window (exclusive bounds).
	MinHeadlineLen int
	MaxHeadlineLen int

	// Phrase lists.
	InterfacePhrases []string // page chrome that should not appear in a card
	IndicatorPhrases []string // phrases that genuine ad cards contain
	CTAPhrases       []string // recognised call-to-action button labels
	AdvertiserSkips  []string // fragments disqualifying the brand-name line
	PrimaryTextSkips []string // fragments disqualifying primary-text lines

	// Media extraction.
	CDNMarker    string // substring identifying ad-CDN media URLs
	MinMediaSize int    // images at or below this many pixels are decorative
}

// DefaultRules returns the rule set for the Meta Ad Library layout.
func DefaultRules() Rules {
	return Rules{
		SponsoredMarker: "Sponsored",
		LibraryIDMarker: "Library ID:",
		DateMarker:      "Started running on",

		MinTextLen:     20,
		MinCardLen:     100,
		MaxCardLen:     5000,
		MaxInterface:   2,
		MinIndicators:  1,
		MinBrandLen:    2,
		MaxBrandLen:    100,
		MaxAdvertiser:  50,
		PrimaryTextCap: 500,

		MinHeadlineLen: 30,
		MaxHeadlineLen: 150,

		InterfacePhrases: []string{
			"Meta Ad Library",
			"Ad Library Report",
			"Select country",
			"Filter results",
			"System status",
			"Subscribe to email",
			"About ads and data use",
		},
		IndicatorPhrases: []string{
			"Started running on",
			"Platforms",
			"Shop now",
			"Learn more",
			"Sign up",
			"Get started",
		},
		CTAPhrases: []string{
			"Shop now",
			"Shop Now",
			"Learn more",
			"Get started",
			"Sign up",
			"Buy now",
		},
		AdvertiserSkips: []string{
			"Library ID",
			"Started running",
			"Platforms",
			"See ad details",
			"This ad has multiple",
			"Open Dropdown",
			"Learn more",
		},
		PrimaryTextSkips: []string{
			"Active",
			"Library ID",
			"Started running",
			"Platforms",
			"Sponsored",
			"See ad details",
			"See summary details",
			"This ad has multiple",
			"Open Dropdown",
			"Learn more",
			"Shop now",
			"Shop Now",
		},

		CDNMarker:    "fbcdn",
		MinMediaSize: 100,
	}
}
