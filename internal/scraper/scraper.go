// Package scraper drives a headless browser over an ad library page and
// feeds what it finds into the extraction pipeline.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/adscope/adscope/internal/ads"
	"github.com/adscope/adscope/internal/browser"
	"github.com/adscope/adscope/internal/datefilter"
	"github.com/adscope/adscope/internal/extract"
)

// Options configures one scraping session.
type Options struct {
	MaxAds          int
	MaxScrolls      int
	Headless        bool
	CheckpointEvery int
	// OnCheckpoint, when set, receives the records collected so far
	// every CheckpointEvery accepted ads. A crash mid-session then
	// loses at most one interval.
	OnCheckpoint func(records []ads.Record)
}

// Result is what one session produced.
type Result struct {
	Records   []ads.Record
	MediaURLs []string
	Session   ads.Session
}

// Scraper extracts ad records from an ad library page. Each Scrape call
// builds its own extraction pipeline, so deduplication state never
// leaks between sessions.
type Scraper struct {
	sel    Selectors
	rules  extract.Rules
	filter *datefilter.Filter
	log    zerolog.Logger
}

// New creates a scraper. filter may be nil to disable date filtering.
func New(sel Selectors, rules extract.Rules, filter *datefilter.Filter, log zerolog.Logger) *Scraper {
	return &Scraper{sel: sel, rules: rules, filter: filter, log: log}
}

// Scrape loads the brand's ad library page, scrolls until it stops
// yielding new ads, and returns the validated records. Network media
// responses are captured alongside the DOM so creatives served outside
// the card markup are not lost.
func (s *Scraper) Scrape(ctx context.Context, brand, url string, opts Options) (Result, error) {
	if opts.MaxAds <= 0 {
		opts.MaxAds = 200
	}
	if opts.MaxScrolls <= 0 {
		opts.MaxScrolls = 50
	}

	res := Result{
		Session: ads.Session{Brand: brand, URL: url, StartedAt: time.Now().UTC()},
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, browser.Options(opts.Headless)...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	browserCtx, timeoutCancel := context.WithTimeout(browserCtx, 10*time.Minute)
	defer timeoutCancel()

	mediaURLs := s.captureNetworkMedia(browserCtx)

	if err := chromedp.Run(browserCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitVisible(s.sel.Results, chromedp.ByQuery),
	); err != nil {
		return s.finish(res, fmt.Errorf("failed to load ad library page: %w", err), mediaURLs)
	}

	s.dismissCookieBanner(browserCtx)

	empty, err := s.noResults(browserCtx)
	if err != nil {
		return s.finish(res, err, mediaURLs)
	}
	if empty {
		s.log.Info().Str("brand", brand).Msg("no ads found for search")
		return s.finish(res, nil, mediaURLs)
	}

	pipe := extract.NewPipeline(s.rules, s.filter, s.log)
	if err := s.collect(browserCtx, pipe, &res, opts); err != nil {
		return s.finish(res, err, mediaURLs)
	}

	return s.finish(res, nil, mediaURLs)
}

// finish stamps the session and merges network-captured media URLs.
func (s *Scraper) finish(res Result, err error, mediaURLs func() []string) (Result, error) {
	res.MediaURLs = mergeURLs(res.MediaURLs, mediaURLs())
	res.Session.FinishedAt = time.Now().UTC()
	res.Session.AdsFound = len(res.Records)
	res.Session.Success = err == nil
	if err != nil {
		res.Session.Error = err.Error()
	}
	return res, err
}

// collect runs the scroll-and-extract loop. It stops when two scrolls
// in a row produce neither new ads nor new page height, or when the ad
// or scroll budget is spent.
func (s *Scraper) collect(ctx context.Context, pipe *extract.Pipeline, res *Result, opts Options) error {
	consecutiveEmpty := 0
	lastCheckpoint := 0

	for scroll := 0; scroll < opts.MaxScrolls && len(res.Records) < opts.MaxAds; scroll++ {
		added, err := s.extractVisible(ctx, pipe, res)
		if err != nil {
			return err
		}

		grew, err := s.scrollPage(ctx)
		if err != nil {
			return err
		}
		res.Session.Scrolls++

		if added == 0 && !grew {
			consecutiveEmpty++
			if consecutiveEmpty >= 2 {
				s.log.Debug().Int("scrolls", res.Session.Scrolls).Msg("page stopped yielding content")
				break
			}
		} else {
			consecutiveEmpty = 0
		}

		if opts.OnCheckpoint != nil && opts.CheckpointEvery > 0 &&
			len(res.Records)-lastCheckpoint >= opts.CheckpointEvery {
			opts.OnCheckpoint(res.Records)
			lastCheckpoint = len(res.Records)
		}

		// Human-paced delay between scrolls.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(800+rand.Intn(700)) * time.Millisecond):
		}
	}

	if len(res.Records) > opts.MaxAds {
		res.Records = res.Records[:opts.MaxAds]
	}
	return nil
}

// extractVisible captures the text of every candidate card currently in
// the DOM and runs each through the pipeline. Returns how many new
// records were accepted.
func (s *Scraper) extractVisible(ctx context.Context, pipe *extract.Pipeline, res *Result) (int, error) {
	texts, err := s.cardTexts(ctx)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, text := range texts {
		rec, ok := pipe.ExtractContainer(text, res.Session.Brand)
		if !ok {
			continue
		}
		res.Records = append(res.Records, rec)
		res.MediaURLs = append(res.MediaURLs, rec.MediaURLs...)
		added++
	}
	if added > 0 {
		s.log.Debug().Int("new", added).Int("total", len(res.Records)).Msg("extracted ads")
	}
	return added, nil
}

// cardTexts returns the innerText of each element matched by the first
// container selector that matches anything.
func (s *Scraper) cardTexts(ctx context.Context) ([]string, error) {
	selectorsJSON, err := json.Marshal(s.sel.CardContainers)
	if err != nil {
		return nil, err
	}

	extractJS := fmt.Sprintf(`
		(function() {
			const cascade = %s;
			for (const sel of cascade) {
				let nodes;
				try {
					nodes = document.querySelectorAll(sel);
				} catch (e) {
					continue;
				}
				if (nodes.length > 0) {
					return Array.from(nodes).map(n => n.innerText || '');
				}
			}
			return [];
		})()
	`, selectorsJSON)

	var texts []string
	if err := chromedp.Run(ctx, chromedp.Evaluate(extractJS, &texts)); err != nil {
		return nil, fmt.Errorf("failed to extract card text: %w", err)
	}
	return texts, nil
}

// scrollPage scrolls down one viewport and reports whether the page
// grew afterwards. Infinite-scroll pages that stop growing have run out
// of results.
func (s *Scraper) scrollPage(ctx context.Context) (bool, error) {
	var before, after int
	err := chromedp.Run(ctx,
		chromedp.Evaluate(`document.body.scrollHeight`, &before),
		chromedp.Evaluate(`window.scrollBy(0, window.innerHeight * 0.8)`, nil),
		chromedp.Sleep(300*time.Millisecond),
		chromedp.Evaluate(`document.body.scrollHeight`, &after),
	)
	if err != nil {
		return false, fmt.Errorf("failed to scroll: %w", err)
	}
	return after > before, nil
}

// dismissCookieBanner clicks the first matching consent button, if any.
// Banners differ by region so every selector is optional.
func (s *Scraper) dismissCookieBanner(ctx context.Context) {
	for _, sel := range s.sel.CookieAccept {
		clickCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := chromedp.Run(clickCtx, chromedp.Click(sel, chromedp.ByQuery, chromedp.NodeVisible))
		cancel()
		if err == nil {
			s.log.Debug().Str("selector", sel).Msg("dismissed cookie banner")
			return
		}
	}
}

// noResults reports whether the page says the search matched nothing.
func (s *Scraper) noResults(ctx context.Context) (bool, error) {
	var body string
	if err := chromedp.Run(ctx, chromedp.Text("body", &body, chromedp.ByQuery)); err != nil {
		return false, fmt.Errorf("failed to read page text: %w", err)
	}
	return strings.Contains(body, s.sel.NoResultsText), nil
}

// captureNetworkMedia listens for media responses on the wire and
// returns a function that yields the URLs seen so far. Creatives load
// through CDN responses that never appear as card <img> tags once the
// library lazy-loads them out again.
func (s *Scraper) captureNetworkMedia(ctx context.Context) func() []string {
	var mu sync.Mutex
	seen := make(map[string]bool)
	var urls []string

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok {
			return
		}
		if resp.Type != network.ResourceTypeImage && resp.Type != network.ResourceTypeMedia {
			return
		}
		u := resp.Response.URL
		if !strings.Contains(u, s.rules.CDNMarker) && resp.Type != network.ResourceTypeMedia {
			return
		}
		mu.Lock()
		if !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
		mu.Unlock()
	})

	return func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), urls...)
	}
}

func mergeURLs(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, u := range append(a, b...) {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
