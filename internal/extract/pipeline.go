package extract

import (
	"crypto/md5"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/adscope/adscope/internal/ads"
	"github.com/adscope/adscope/internal/datefilter"
	"github.com/adscope/adscope/internal/dedup"
)

// Pipeline turns one page capture into validated, deduplicated ad
// records. A pipeline holds per-session state (the deduplicator's
// seen-sets), so each scraping session builds its own.
type Pipeline struct {
	rules     Rules
	validator *Validator
	dedup     *dedup.Deduplicator
	filter    *datefilter.Filter
	log       zerolog.Logger
}

// Result carries the accepted records plus counters describing what the
// pipeline did with the rest of the capture.
type Result struct {
	Records   []ads.Record
	MediaURLs []string

	Candidates   int
	Invalid      int
	Duplicates   int
	OutOfRange   int
	NoContent    int
	UnknownDates int
}

// NewPipeline builds a pipeline for one session. filter may be nil, in
// which case no date restriction applies.
func NewPipeline(rules Rules, filter *datefilter.Filter, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		rules:     rules,
		validator: NewValidator(rules),
		dedup:     dedup.New(),
		filter:    filter,
		log:       log,
	}
}

// DedupStats exposes the session deduplicator's seen-set sizes.
func (p *Pipeline) DedupStats() dedup.Stats {
	return p.dedup.Stats()
}

// ExtractText processes a plain-text page capture. The capture is
// segmented into candidate containers at each sponsored-label line, and
// each candidate runs through validation, field extraction,
// deduplication, and the date filter. Malformed candidates are skipped,
// never fatal.
func (p *Pipeline) ExtractText(capture, pageName string) Result {
	var res Result
	for _, block := range p.segment(capture) {
		res.Candidates++
		p.assemble(&res, block, nil, pageName, "text")
	}
	return res
}

// ExtractHTML processes an HTML page capture. Candidate containers are
// the deepest elements whose text carries the library-id marker; field
// extraction then works on both the flattened text and the DOM
// selection, so link targets and media elements survive.
func (p *Pipeline) ExtractHTML(html, pageName string) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Result{}, fmt.Errorf("parse capture: %w", err)
	}

	var res Result
	doc.Find("div").Each(func(_ int, sel *goquery.Selection) {
		if !strings.Contains(sel.Text(), p.rules.LibraryIDMarker) {
			return
		}
		// Skip ancestors; only the innermost matching div is a card.
		if sel.ChildrenFiltered("div").FilterFunction(func(_ int, c *goquery.Selection) bool {
			return strings.Contains(c.Text(), p.rules.LibraryIDMarker)
		}).Length() > 0 {
			return
		}
		res.Candidates++
		p.assemble(&res, ContainerText(sel), sel, pageName, "html")
	})
	return res, nil
}

// ExtractContainer processes a single pre-isolated container, as
// delivered by a per-card browser query.
func (p *Pipeline) ExtractContainer(text, pageName string) (ads.Record, bool) {
	var res Result
	res.Candidates = 1
	p.assemble(&res, text, nil, pageName, "container")
	if len(res.Records) == 0 {
		return ads.Record{}, false
	}
	return res.Records[0], true
}

// segmentLookback is how far above a sponsored label the card's
// library-id header line can sit.
const segmentLookback = 6

// segment splits a page capture into candidate blocks, one per
// sponsored-label line. Each block is anchored at the library-id header
// just above its label and runs through the next card's anchor, so
// blocks never overlap and one card's media cannot poison the
// deduplicator against its neighbour.
func (p *Pipeline) segment(capture string) []string {
	lines := strings.Split(capture, "\n")

	var begins []int
	prev := 0
	for i, line := range lines {
		if !strings.Contains(line, p.rules.SponsoredMarker) {
			continue
		}
		begin := i
		for j := i - 1; j >= i-segmentLookback && j >= prev; j-- {
			if strings.Contains(lines[j], p.rules.LibraryIDMarker) {
				begin = j
				break
			}
		}
		begins = append(begins, begin)
		prev = i + 1
	}

	blocks := make([]string, 0, len(begins))
	for i, begin := range begins {
		end := len(lines)
		if i+1 < len(begins) {
			end = begins[i+1]
		}
		blocks = append(blocks, strings.Join(lines[begin:end], "\n"))
	}
	return blocks
}

// assemble runs one candidate through the full pipeline, appending an
// accepted record to res and bumping the matching counter otherwise.
func (p *Pipeline) assemble(res *Result, text string, sel *goquery.Selection, pageName, method string) {
	if !p.validator.IsValidAd(text) {
		res.Invalid++
		return
	}

	lines := SplitLines(text)
	rec := ads.Record{
		LibraryID:      p.rules.LibraryID(lines),
		PageName:       p.rules.Advertiser(lines),
		Headline:       p.rules.Headline(lines),
		PrimaryText:    p.rules.PrimaryText(lines),
		CTALabel:       p.rules.CTA(lines),
		DateStarted:    p.rules.StartDate(lines),
		SponsoredLabel: p.rules.SponsoredMarker,
		Placement:      ads.PlacementUnknown,
		Source:         ads.Source{Method: method},
		CapturedAt:     time.Now().UTC(),
	}
	rec.Subheadline = p.rules.Subheadline(lines, rec.Headline)
	if rec.PageName == "" {
		rec.PageName = pageName
	}

	if sel != nil {
		rec.Media = p.rules.MediaItems(sel)
		rec.DestinationURL = p.rules.DestinationURL(sel)
		for _, m := range rec.Media {
			rec.MediaURLs = append(rec.MediaURLs, m.URL)
		}
	}

	if !rec.HasContent() {
		res.NoContent++
		return
	}

	rec.AdID = rec.LibraryID
	if rec.AdID == "" {
		rec.AdID = contentID(rec.PageName, rec.Headline, rec.CTALabel)
	}

	dedupKey := text
	if len(rec.MediaURLs) > 0 {
		dedupKey += "\n" + strings.Join(rec.MediaURLs, "\n")
	}
	if p.dedup.IsDuplicate(dedupKey) {
		res.Duplicates++
		p.log.Debug().Str("ad_id", rec.AdID).Msg("duplicate ad skipped")
		return
	}

	if p.filter != nil {
		// Ads whose start date cannot be read are kept, not excluded.
		if when, ok := datefilter.ExtractDate(rec.DateStarted); !ok {
			res.UnknownDates++
		} else if !p.filter.InRange(when) {
			res.OutOfRange++
			p.log.Debug().Str("ad_id", rec.AdID).Str("date", rec.DateStarted).Msg("ad outside date range")
			return
		}
	}

	res.Records = append(res.Records, rec)
	res.MediaURLs = append(res.MediaURLs, rec.MediaURLs...)
}

// contentID derives a stable identifier for ads that do not expose a
// library id.
func contentID(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%x", sum)[:12]
}
