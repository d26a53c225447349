// Package app wires the scraper, analyzer, and report delivery into the
// flows exposed by the CLI.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/adscope/adscope/internal/ads"
	"github.com/adscope/adscope/internal/analyzer"
	"github.com/adscope/adscope/internal/config"
	"github.com/adscope/adscope/internal/datefilter"
	"github.com/adscope/adscope/internal/export"
	"github.com/adscope/adscope/internal/extract"
	"github.com/adscope/adscope/internal/media"
	"github.com/adscope/adscope/internal/notifier"
	"github.com/adscope/adscope/internal/report"
	"github.com/adscope/adscope/internal/scheduler"
	"github.com/adscope/adscope/internal/scraper"
	"github.com/adscope/adscope/internal/store"
)

// App holds the application state.
type App struct {
	mu    sync.RWMutex
	store *store.Store // immutable after creation
	log   zerolog.Logger

	// Mutable fields - use getSnapshot() for concurrent access.
	config   *config.Config
	scraper  *scraper.Scraper
	analyzer *analyzer.Analyzer
}

// snapshot holds fields that may be replaced by ReloadConfig.
// Use getSnapshot() to obtain a consistent, point-in-time copy.
type snapshot struct {
	config   *config.Config
	scraper  *scraper.Scraper
	analyzer *analyzer.Analyzer
}

// getSnapshot returns a snapshot of mutable fields under read lock.
func (a *App) getSnapshot() snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return snapshot{
		config:   a.config,
		scraper:  a.scraper,
		analyzer: a.analyzer,
	}
}

// New assembles an App from configuration. The store is opened at the
// platform data directory; callers must Close the App when done.
func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	dataDir, err := config.DataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	st, err := store.New(filepath.Join(dataDir, "adscope.db"))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	an, err := analyzer.New(cfg.Analysis)
	if err != nil {
		st.Close()
		return nil, err
	}

	sc, err := buildScraper(cfg, log)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &App{
		store:    st,
		log:      log,
		config:   cfg,
		scraper:  sc,
		analyzer: an,
	}, nil
}

// Close releases the App's resources.
func (a *App) Close() error {
	return a.store.Close()
}

func buildScraper(cfg *config.Config, log zerolog.Logger) (*scraper.Scraper, error) {
	sel, err := scraper.LoadSelectorHints(cfg.Scraping.SelectorHints)
	if err != nil {
		return nil, fmt.Errorf("load selector hints: %w", err)
	}

	filter, err := buildDateFilter(cfg.DateRange)
	if err != nil {
		return nil, err
	}

	return scraper.New(sel, extract.DefaultRules(), filter, log), nil
}

func buildDateFilter(cfg config.DateRangeConfig) (*datefilter.Filter, error) {
	now := time.Now()
	if cfg.DaysBack > 0 {
		return datefilter.CustomRange(cfg.DaysBack, now), nil
	}
	if cfg.Preset == "" {
		return nil, nil
	}
	preset, err := datefilter.ParsePreset(cfg.Preset)
	if err != nil {
		return nil, err
	}
	return datefilter.FromPreset(preset, now)
}

// Scrape runs one scraping session for every configured target,
// bounded by max_concurrent, and persists what it finds.
func (a *App) Scrape(ctx context.Context) error {
	s := a.getSnapshot()

	if len(s.config.Targets) == 0 {
		return fmt.Errorf("no targets configured; add [[targets]] entries to %s", configPathHint())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Scraping.MaxConcurrent)

	for _, target := range s.config.Targets {
		g.Go(func() error {
			if err := a.scrapeTarget(gctx, s, target); err != nil {
				// One failed brand should not abort the rest of the run.
				a.log.Error().Err(err).Str("brand", target.Brand).Msg("scrape failed")
			}
			return nil
		})
	}
	return g.Wait()
}

func (a *App) scrapeTarget(ctx context.Context, s snapshot, target config.TargetConfig) error {
	a.log.Info().Str("brand", target.Brand).Str("url", target.URL).Msg("scraping target")

	opts := scraper.Options{
		MaxAds:          s.config.Scraping.MaxAds,
		MaxScrolls:      s.config.Scraping.MaxScrolls,
		Headless:        s.config.Scraping.Headless,
		CheckpointEvery: s.config.Scraping.CheckpointEvery,
		OnCheckpoint: func(records []ads.Record) {
			if path, err := store.SaveStepOutput(store.StepRecords, records); err != nil {
				a.log.Warn().Err(err).Msg("checkpoint save failed")
			} else {
				a.log.Debug().Str("path", path).Int("records", len(records)).Msg("checkpoint saved")
			}
		},
	}

	res, err := s.scraper.Scrape(ctx, target.Brand, target.URL, opts)

	// Persist the session row even when the scrape errored; the run
	// history is how a user notices a target has gone stale.
	if dbErr := a.store.SaveSession(&res.Session); dbErr != nil {
		a.log.Warn().Err(dbErr).Str("brand", target.Brand).Msg("failed to record session")
	}
	if err != nil {
		return err
	}

	for i := range res.Records {
		if err := a.store.SaveAd(&res.Records[i]); err != nil {
			a.log.Warn().Err(err).Str("ad_id", res.Records[i].AdID).Msg("failed to save ad")
		}
	}
	a.log.Info().Str("brand", target.Brand).Int("ads", len(res.Records)).Msg("scrape complete")

	if _, err := store.SaveStepOutput(store.StepRecords, res.Records); err != nil {
		a.log.Warn().Err(err).Msg("failed to cache records")
	}

	if s.config.Media.Download && len(res.MediaURLs) > 0 {
		a.downloadMedia(ctx, s, target.Brand, res.MediaURLs)
	}

	a.exportRecords(s, target.Brand, res.Records)
	return nil
}

func (a *App) downloadMedia(ctx context.Context, s snapshot, brand string, urls []string) {
	dataDir, err := config.DataDir()
	if err != nil {
		a.log.Warn().Err(err).Msg("cannot resolve media dir")
		return
	}

	dl := media.NewDownloader(media.Options{
		Dir:         filepath.Join(dataDir, "media", slug(brand)),
		Concurrency: s.config.Media.Concurrency,
		Timeout:     time.Duration(s.config.Media.TimeoutSecs) * time.Second,
		RetryPasses: s.config.Media.RetryPasses,
	}, a.log)

	res, err := dl.DownloadAll(ctx, urls)
	if err != nil {
		a.log.Warn().Err(err).Str("brand", brand).Msg("media download failed")
		return
	}
	a.log.Info().Str("brand", brand).
		Int("saved", len(res.Saved)).Int("failed", len(res.Failed)).
		Msg("media downloaded")
}

func (a *App) exportRecords(s snapshot, brand string, records []ads.Record) {
	if len(records) == 0 || (!s.config.Export.JSON && !s.config.Export.CSV) {
		return
	}

	dataDir, err := config.DataDir()
	if err != nil {
		a.log.Warn().Err(err).Msg("cannot resolve export dir")
		return
	}
	exp := export.New(filepath.Join(dataDir, "exports"))

	if s.config.Export.JSON {
		if path, err := exp.WriteJSON(brand, records); err != nil {
			a.log.Warn().Err(err).Msg("json export failed")
		} else {
			a.log.Info().Str("path", path).Msg("exported json")
		}
	}
	if s.config.Export.CSV {
		if path, err := exp.WriteCSV(brand, records); err != nil {
			a.log.Warn().Err(err).Msg("csv export failed")
		} else {
			a.log.Info().Str("path", path).Msg("exported csv")
		}
	}
}

// Analyze runs the LLM over every stored ad that has no analysis yet.
func (a *App) Analyze(ctx context.Context) error {
	s := a.getSnapshot()

	records, err := a.store.GetUnanalyzedAds(0)
	if err != nil {
		return fmt.Errorf("load unanalyzed ads: %w", err)
	}
	if len(records) == 0 {
		a.log.Info().Msg("no ads awaiting analysis")
		return nil
	}
	a.log.Info().Int("ads", len(records)).Msg("analyzing ads")

	analyses, err := s.analyzer.AnalyzeAds(ctx, records)
	if err != nil {
		return fmt.Errorf("analyze ads: %w", err)
	}

	for i := range analyses {
		if err := a.store.SaveAnalysis(&analyses[i]); err != nil {
			a.log.Warn().Err(err).Str("ad_id", analyses[i].AdID).Msg("failed to save analysis")
		}
	}

	if _, err := store.SaveStepOutput(store.StepAnalyses, analyses); err != nil {
		a.log.Warn().Err(err).Msg("failed to cache analyses")
	}

	a.log.Info().Int("analyzed", len(analyses)).Msg("analysis complete")
	return nil
}

// Report extracts cross-ad patterns, generates strategy suggestions,
// and emails the assembled report.
func (a *App) Report(ctx context.Context) error {
	s := a.getSnapshot()

	analyzed, err := a.store.GetAdsWithAnalysis(s.config.Analysis.ScoreThreshold, 0)
	if err != nil {
		return fmt.Errorf("load analyzed ads: %w", err)
	}
	if len(analyzed) == 0 {
		a.log.Info().Float64("threshold", s.config.Analysis.ScoreThreshold).
			Msg("no ads above score threshold; run scrape and analyze first")
		return nil
	}

	a.log.Info().Int("ads", len(analyzed)).Msg("extracting patterns")
	patterns, err := s.analyzer.ExtractPatterns(ctx, analyzed)
	if err != nil {
		return fmt.Errorf("extract patterns: %w", err)
	}
	if _, err := store.SaveTextOutput(store.StepPatterns, patterns, ".md"); err != nil {
		a.log.Warn().Err(err).Msg("failed to cache patterns")
	}

	brands := trackedBrands(s.config.Targets)
	a.log.Info().Str("brands", brands).Msg("generating strategy")
	strategy, err := s.analyzer.GenerateStrategy(ctx, analyzer.StrategyRequest{
		Brand:     brands,
		Budget:    s.config.Report.Budget,
		Objective: s.config.Report.Objective,
		Patterns:  patterns,
	})
	if err != nil {
		return fmt.Errorf("generate strategy: %w", err)
	}
	if _, err := store.SaveTextOutput(store.StepStrategy, strategy, ".md"); err != nil {
		a.log.Warn().Err(err).Msg("failed to cache strategy")
	}

	builder, err := report.New(s.config.Report.MaxAds)
	if err != nil {
		return fmt.Errorf("create report builder: %w", err)
	}
	rep, err := builder.Build(analyzed, patterns, strategy)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	if _, err := store.SaveTextOutput(store.StepReport, rep.HTMLBody, ".html"); err != nil {
		a.log.Warn().Err(err).Msg("failed to cache report")
	}

	n, err := notifier.NewFromConfig(s.config.Email)
	if err != nil {
		return fmt.Errorf("create notifier: %w", err)
	}
	if err := n.SendReport(rep, s.config.Email.ToAddr); err != nil {
		return fmt.Errorf("send report: %w", err)
	}

	a.log.Info().Str("to", s.config.Email.ToAddr).Int("ads", len(rep.AdIDs)).Msg("report sent")
	return nil
}

// Run schedules recurring scrape and report jobs and blocks until ctx
// is cancelled.
func (a *App) Run(ctx context.Context) error {
	s := a.getSnapshot()

	sched, err := scheduler.New(s.config.Report.Timezone, a.log)
	if err != nil {
		return err
	}

	err = sched.AddScrapeJob(s.config.Scraping.ScrapeIntervalHours, func(ctx context.Context) error {
		if err := a.Scrape(ctx); err != nil {
			return err
		}
		return a.Analyze(ctx)
	})
	if err != nil {
		return err
	}

	if err := sched.AddReportJob(s.config.Report.Time, a.Report); err != nil {
		return err
	}

	sched.Start()
	a.log.Info().
		Int("scrape_interval_hours", s.config.Scraping.ScrapeIntervalHours).
		Str("report_time", s.config.Report.Time).
		Str("timezone", s.config.Report.Timezone).
		Msg("scheduler running")

	<-ctx.Done()
	a.log.Info().Msg("shutting down")
	stopCtx := sched.Stop()
	<-stopCtx.Done()
	return nil
}

// Stats returns aggregate counts from the store.
func (a *App) Stats() (store.Stats, error) {
	return a.store.GetStats()
}

// ReloadConfig reloads the configuration from disk and rebuilds the
// components that depend on it.
func (a *App) ReloadConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	newAnalyzer, err := analyzer.New(cfg.Analysis)
	if err != nil {
		return err
	}
	newScraper, err := buildScraper(cfg, a.log)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.config = cfg
	a.analyzer = newAnalyzer
	a.scraper = newScraper
	a.mu.Unlock()

	a.log.Info().Msg("configuration reloaded")
	return nil
}

func trackedBrands(targets []config.TargetConfig) string {
	names := make([]string, 0, len(targets))
	for _, t := range targets {
		names = append(names, t.Brand)
	}
	return strings.Join(names, ", ")
}

func slug(brand string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(brand), " ", "-"))
}

func configPathHint() string {
	path, err := config.ConfigPath()
	if err != nil {
		return "the config file"
	}
	return path
}
