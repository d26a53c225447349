package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Provider names accepted in [analysis] llm_provider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds all application configuration
type Config struct {
	Version   int             `toml:"version"`
	Targets   []TargetConfig  `toml:"targets"`
	Scraping  ScrapingConfig  `toml:"scraping"`
	DateRange DateRangeConfig `toml:"date_range"`
	Analysis  AnalysisConfig  `toml:"analysis"`
	Media     MediaConfig     `toml:"media"`
	Export    ExportConfig    `toml:"export"`
	Report    ReportConfig    `toml:"report"`
	Email     EmailConfig     `toml:"email"`
}

// TargetConfig names one brand whose ads are tracked.
type TargetConfig struct {
	Brand string `toml:"brand"`
	URL   string `toml:"url"`
}

type ScrapingConfig struct {
	MaxAds              int    `toml:"max_ads"`
	MaxScrolls          int    `toml:"max_scrolls"`
	ScrapeIntervalHours int    `toml:"scrape_interval_hours"`
	Headless            bool   `toml:"headless"`
	MaxConcurrent       int    `toml:"max_concurrent"`
	CheckpointEvery     int    `toml:"checkpoint_every"`
	SelectorHints       string `toml:"selector_hints"` // optional JSON file overriding CSS selectors
}

type DateRangeConfig struct {
	Preset   string `toml:"preset"`    // last_7_days, last_30_days, last_90_days, last_6_months, last_year
	DaysBack int    `toml:"days_back"` // custom window; overrides preset when > 0
}

type AnalysisConfig struct {
	LLMProvider    string  `toml:"llm_provider"`
	APIKey         string  `toml:"api_key"`
	Model          string  `toml:"model"`
	ScoreThreshold float64 `toml:"score_threshold"`
	BatchSize      int     `toml:"batch_size"`
}

type MediaConfig struct {
	Download    bool `toml:"download"`
	Concurrency int  `toml:"concurrency"`
	TimeoutSecs int  `toml:"timeout_secs"`
	RetryPasses int  `toml:"retry_passes"`
}

type ExportConfig struct {
	JSON bool `toml:"json"`
	CSV  bool `toml:"csv"`
}

type ReportConfig struct {
	Time     string `toml:"time"` // HH:MM, local to Timezone
	Timezone string `toml:"timezone"`
	MaxAds   int    `toml:"max_ads"`

	// Optional context handed to strategy generation.
	Budget    string `toml:"budget"`
	Objective string `toml:"objective"`
}

type EmailConfig struct {
	Provider string `toml:"provider"`
	SMTPHost string `toml:"smtp_host"`
	SMTPPort int    `toml:"smtp_port"`
	SMTPUser string `toml:"smtp_user"`
	SMTPPass string `toml:"smtp_pass"`
	FromAddr string `toml:"from_address"`
	ToAddr   string `toml:"to_address"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Version: 1,
		Targets: []TargetConfig{},
		Scraping: ScrapingConfig{
			MaxAds:              200,
			MaxScrolls:          50,
			ScrapeIntervalHours: 12,
			Headless:            true,
			MaxConcurrent:       2,
			CheckpointEvery:     50,
		},
		DateRange: DateRangeConfig{
			Preset: "last_30_days",
		},
		Analysis: AnalysisConfig{
			LLMProvider:    ProviderOpenAI,
			Model:          "gpt-4o",
			ScoreThreshold: 5.0,
			BatchSize:      5,
		},
		Media: MediaConfig{
			Download:    true,
			Concurrency: 4,
			TimeoutSecs: 30,
			RetryPasses: 1,
		},
		Export: ExportConfig{
			JSON: true,
			CSV:  true,
		},
		Report: ReportConfig{
			Time:     "08:00",
			Timezone: "America/New_York",
			MaxAds:   20,
		},
		Email: EmailConfig{
			Provider: "smtp",
			SMTPPort: 587,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "adscope"), nil
}

// CacheDir returns the platform-appropriate cache directory
func CacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "adscope"), nil
}

// DataDir returns the directory for the database and downloaded media
func DataDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

// ConfigPath returns the full path to the config file
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads config from disk. API keys may come from the environment
// instead of the file, so a key in the TOML is optional.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv overlays secrets from the environment onto the loaded file.
func (c *Config) applyEnv() {
	if c.Analysis.APIKey != "" {
		return
	}
	switch c.Analysis.LLMProvider {
	case ProviderOpenAI:
		c.Analysis.APIKey = os.Getenv("OPENAI_API_KEY")
	case ProviderAnthropic:
		c.Analysis.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
}

// Validate rejects configurations that would fail at runtime in less
// obvious ways.
func (c *Config) Validate() error {
	for i, t := range c.Targets {
		if t.Brand == "" {
			return fmt.Errorf("targets[%d]: brand is required", i)
		}
		if t.URL == "" {
			return fmt.Errorf("targets[%d]: url is required", i)
		}
	}
	switch c.Analysis.LLMProvider {
	case ProviderOpenAI, ProviderAnthropic, "":
	default:
		return fmt.Errorf("unknown llm_provider %q", c.Analysis.LLMProvider)
	}
	return nil
}

// Save writes config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}
