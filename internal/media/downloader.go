// Package media downloads ad creatives referenced by scraped records.
package media

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Downloader fetches media files with bounded concurrency. Failures are
// queued and retried in later passes rather than aborting the batch; ad
// CDNs routinely drop a fraction of requests under load.
type Downloader struct {
	client      *http.Client
	dir         string
	concurrency int
	retryPasses int
	log         zerolog.Logger

	mu     sync.Mutex
	failed []string
}

// Result describes the outcome of one batch download.
type Result struct {
	Saved  map[string]string // URL to local path
	Failed []string          // URLs that failed every pass
}

// Options configures a Downloader. Zero values fall back to defaults.
type Options struct {
	Dir         string
	Concurrency int
	Timeout     time.Duration
	RetryPasses int
}

// NewDownloader creates a downloader writing into opts.Dir.
func NewDownloader(opts Options, log zerolog.Logger) *Downloader {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryPasses <= 0 {
		opts.RetryPasses = 1
	}
	return &Downloader{
		client:      &http.Client{Timeout: opts.Timeout},
		dir:         opts.Dir,
		concurrency: opts.Concurrency,
		retryPasses: opts.RetryPasses,
		log:         log,
	}
}

// DownloadAll fetches every URL, retrying failures in additional passes.
// The returned error reflects setup problems only; per-URL failures are
// reported in the Result.
func (d *Downloader) DownloadAll(ctx context.Context, urls []string) (Result, error) {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return Result{}, fmt.Errorf("create media dir: %w", err)
	}

	res := Result{Saved: make(map[string]string)}
	pending := dedupeURLs(urls)

	for pass := 0; pass <= d.retryPasses && len(pending) > 0; pass++ {
		if pass > 0 {
			d.log.Info().Int("pass", pass).Int("urls", len(pending)).Msg("retrying failed downloads")
		}
		d.failed = nil

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(d.concurrency)

		var mu sync.Mutex
		for _, u := range pending {
			g.Go(func() error {
				local, err := d.fetch(gctx, u)
				if err != nil {
					d.log.Warn().Err(err).Str("url", u).Msg("download failed")
					d.mu.Lock()
					d.failed = append(d.failed, u)
					d.mu.Unlock()
					return nil
				}
				mu.Lock()
				res.Saved[u] = local
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return res, err
		}
		pending = d.failed
	}

	res.Failed = pending
	return res, nil
}

// fetch downloads one URL into the media directory.
func (d *Downloader) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	name := filenameFor(rawURL)
	local := filepath.Join(d.dir, name)

	f, err := os.Create(local)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(local)
		return "", fmt.Errorf("write body: %w", err)
	}
	return local, nil
}

// filenameFor derives a safe local filename from a media URL. The hash
// prefix keeps same-named files from different CDN paths apart.
func filenameFor(rawURL string) string {
	h := fnv.New32a()
	h.Write([]byte(rawURL))

	base := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		if b := path.Base(u.Path); b != "/" && b != "." && b != "" {
			base = b
		}
	}
	return SanitizeFilename(fmt.Sprintf("%08x_%s", h.Sum32(), base))
}

func dedupeURLs(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
