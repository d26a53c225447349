// Command adscope scrapes competitor ads from public ad libraries,
// analyzes them with an LLM, and delivers scheduled intelligence reports.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/pkg/browser"
	"github.com/rs/zerolog"

	"github.com/adscope/adscope/internal/app"
	browseropts "github.com/adscope/adscope/internal/browser"
	"github.com/adscope/adscope/internal/config"
)

func main() {
	args, verbose := splitVerboseFlag(os.Args[1:])
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	switch args[0] {
	case "init":
		runInit(log)
	case "scrape":
		runApp(log, func(ctx context.Context, a *app.App) error { return a.Scrape(ctx) })
	case "analyze":
		runApp(log, func(ctx context.Context, a *app.App) error { return a.Analyze(ctx) })
	case "report":
		runApp(log, func(ctx context.Context, a *app.App) error { return a.Report(ctx) })
	case "run":
		runApp(log, func(ctx context.Context, a *app.App) error { return a.Run(ctx) })
	case "stats":
		runStats(log)
	case "open":
		if len(args) < 2 {
			fmt.Println("Usage: adscope open <config|cache|data>")
			os.Exit(1)
		}
		runOpen(log, args[1])
	case "bot-test":
		runBotTest()
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: adscope <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init          Write a default config file")
	fmt.Println("  scrape        Scrape all configured targets once")
	fmt.Println("  analyze       Analyze stored ads that have no analysis yet")
	fmt.Println("  report        Build and email an intelligence report")
	fmt.Println("  run           Run scrape and report jobs on a schedule")
	fmt.Println("  stats         Show database counts")
	fmt.Println("  open config   Open the config file in the default editor")
	fmt.Println("  open cache    Open the cache directory in the file explorer")
	fmt.Println("  open data     Open the data directory in the file explorer")
	fmt.Println("  bot-test      Open bot.sannysoft.com to audit the browser fingerprint")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -v            Enable debug logging")
}

// splitVerboseFlag pulls -v out of the argument list wherever it sits.
func splitVerboseFlag(in []string) ([]string, bool) {
	out := make([]string, 0, len(in))
	verbose := false
	for _, arg := range in {
		if arg == "-v" || arg == "--verbose" {
			verbose = true
			continue
		}
		out = append(out, arg)
	}
	return out, verbose
}

func runApp(log zerolog.Logger, fn func(ctx context.Context, a *app.App) error) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config; run 'adscope init' first")
	}

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fn(ctx, a); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func runInit(log zerolog.Logger) {
	path, err := config.ConfigPath()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot resolve config path")
	}
	if _, err := os.Stat(path); err == nil {
		log.Fatal().Str("path", path).Msg("config already exists; edit it instead")
	}

	if err := config.Default().Save(); err != nil {
		log.Fatal().Err(err).Msg("failed to write config")
	}
	fmt.Printf("Wrote %s\n", path)
	fmt.Println("Add [[targets]] entries and an API key, then run 'adscope scrape'.")
}

func runStats(log zerolog.Logger) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}
	defer a.Close()

	stats, err := a.Stats()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read stats")
	}

	fmt.Printf("Ads captured:  %d\n", stats.TotalAds)
	fmt.Printf("Brands:        %d\n", stats.UniqueBrands)
	fmt.Printf("Analyzed:      %d\n", stats.AnalyzedAds)
	if !stats.LastCapture.IsZero() {
		fmt.Printf("Last capture:  %s\n", stats.LastCapture.Format(time.RFC1123))
	}
}

func runOpen(log zerolog.Logger, target string) {
	var path string
	var err error

	switch target {
	case "config":
		path, err = config.ConfigPath()
	case "cache":
		path, err = config.CacheDir()
	case "data":
		path, err = config.DataDir()
	default:
		fmt.Printf("Unknown target: %s\n", target)
		os.Exit(1)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve path")
	}

	if err := browser.OpenFile(path); err != nil {
		log.Fatal().Err(err).Msg("failed to open")
	}
}

func runBotTest() {
	fmt.Println("Opening bot.sannysoft.com with stealth browser options...")

	opts := browseropts.Options(false) // non-headless so you can see it

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	go func() {
		err := chromedp.Run(ctx,
			chromedp.Navigate("https://bot.sannysoft.com"),
		)
		if err != nil {
			fmt.Printf("Failed to navigate: %v\n", err)
		}
	}()

	fmt.Println("Press Enter to end program...")
	fmt.Scanln()
}
