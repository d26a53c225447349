package analyzer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/adscope/adscope/internal/ads"
	"github.com/adscope/adscope/internal/analyzer/providers"
	"github.com/adscope/adscope/internal/config"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Analyze scores a batch of ads and returns one analysis per ad.
	Analyze(ctx context.Context, records []ads.Record) ([]ads.Analysis, error)
	// Complete answers a free-form prompt, for the pattern and strategy
	// steps that work over already-analyzed ads.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Analyzer handles LLM-based ad analysis
type Analyzer struct {
	provider  Provider
	batchSize int
}

// New creates a new analyzer with the appropriate provider based on config
func New(analysisConfig config.AnalysisConfig) (*Analyzer, error) {
	var provider Provider

	switch analysisConfig.LLMProvider {
	case config.ProviderOpenAI:
		provider = providers.NewOpenAIProvider(analysisConfig.APIKey, analysisConfig.Model)
	case config.ProviderAnthropic:
		provider = providers.NewAnthropicProvider(analysisConfig.APIKey, analysisConfig.Model)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", analysisConfig.LLMProvider)
	}

	batchSize := analysisConfig.BatchSize
	if batchSize <= 0 {
		batchSize = 5
	}

	return &Analyzer{
		provider:  provider,
		batchSize: batchSize,
	}, nil
}

// AnalyzeAds processes ads through the LLM for creative analysis
func (a *Analyzer) AnalyzeAds(ctx context.Context, records []ads.Record) ([]ads.Analysis, error) {
	if len(records) == 0 {
		return nil, nil
	}

	// Calculate number of batches
	numBatches := (len(records) + a.batchSize - 1) / a.batchSize

	// Pre-allocate results slice (one slice per batch)
	results := make([][]ads.Analysis, numBatches)

	g, ctx := errgroup.WithContext(ctx)

	// Process batches concurrently
	for i := 0; i < len(records); i += a.batchSize {
		batchIdx := i / a.batchSize
		start := i
		end := min(i+a.batchSize, len(records))
		batch := records[start:end]

		g.Go(func() error {
			analyses, err := a.provider.Analyze(ctx, batch)
			if err != nil {
				return fmt.Errorf("failed to analyze batch %d: %w", batchIdx, err)
			}
			results[batchIdx] = analyses
			return nil
		})
	}

	// Wait for all goroutines and check for errors
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Flatten results in order
	var allAnalyses []ads.Analysis
	for _, batchResult := range results {
		allAnalyses = append(allAnalyses, batchResult...)
	}

	return allAnalyses, nil
}

// patternSampleSize caps how many ads go into one pattern-extraction
// prompt; beyond this the prompt drowns its own signal.
const patternSampleSize = 20

// ExtractPatterns asks the LLM what the analyzed ads have in common:
// recurring hooks, angles, and offer structures across the corpus.
// Callers should pass ads ordered strongest-first, since only the top
// patternSampleSize are included.
func (a *Analyzer) ExtractPatterns(ctx context.Context, analyzed []ads.RecordWithAnalysis) (string, error) {
	if len(analyzed) == 0 {
		return "", fmt.Errorf("no analyzed ads to extract patterns from")
	}
	if len(analyzed) > patternSampleSize {
		analyzed = analyzed[:patternSampleSize]
	}
	return a.provider.Complete(ctx, BuildPatternsPrompt(analyzed))
}

// StrategyRequest describes the campaign a strategy should be written
// for. Budget and Objective are free-form and may be empty.
type StrategyRequest struct {
	Brand     string
	Budget    string
	Objective string
	Patterns  string
}

// GenerateStrategy turns extracted patterns into a campaign strategy
// proposal competing with the given brand.
func (a *Analyzer) GenerateStrategy(ctx context.Context, req StrategyRequest) (string, error) {
	if req.Patterns == "" {
		return "", fmt.Errorf("no patterns to build a strategy from")
	}
	return a.provider.Complete(ctx, BuildStrategyPrompt(req))
}
