package analyzer

import (
	"fmt"
	"strings"

	"github.com/adscope/adscope/internal/ads"
)

// BuildPatternsPrompt constructs the prompt for cross-ad pattern
// extraction.
func BuildPatternsPrompt(analyzed []ads.RecordWithAnalysis) string {
	var sb strings.Builder

	sb.WriteString("You are a marketing analyst reviewing a competitor's ad creative portfolio.\n\n")
	sb.WriteString("## Analyzed Ads\n\n")

	for i, aa := range analyzed {
		sb.WriteString(fmt.Sprintf("### Ad %d (%s)\n", i+1, aa.Record.PageName))
		if aa.Record.Headline != "" {
			sb.WriteString(fmt.Sprintf("Headline: %s\n", aa.Record.Headline))
		}
		if aa.Record.PrimaryText != "" {
			sb.WriteString(fmt.Sprintf("Primary text: %s\n", aa.Record.PrimaryText))
		}
		if aa.Record.CTALabel != "" {
			sb.WriteString(fmt.Sprintf("CTA: %s\n", aa.Record.CTALabel))
		}
		if aa.Analysis != nil {
			sb.WriteString(fmt.Sprintf("Hook: %s\n", aa.Analysis.HookAnalysis))
			sb.WriteString(fmt.Sprintf("Angle: %s\n", aa.Analysis.Angle))
			sb.WriteString(fmt.Sprintf("Emotion: %s\n", aa.Analysis.Emotion))
			sb.WriteString(fmt.Sprintf("Score: %.1f\n", aa.Analysis.EffectivenessScore))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Task\n\n")
	sb.WriteString("Identify the recurring patterns across these ads:\n")
	sb.WriteString("1. Common hooks and opening lines\n")
	sb.WriteString("2. Messaging angles used most often\n")
	sb.WriteString("3. Emotional triggers\n")
	sb.WriteString("4. Offer structures and calls to action\n")
	sb.WriteString("5. What the highest-scoring ads do differently\n\n")
	sb.WriteString("Write a concise markdown summary.\n")

	return sb.String()
}

// BuildStrategyPrompt constructs the prompt for campaign strategy
// generation from extracted patterns.
func BuildStrategyPrompt(req StrategyRequest) string {
	var sb strings.Builder

	sb.WriteString("You are a performance marketing strategist.\n\n")
	sb.WriteString(fmt.Sprintf("The following patterns were extracted from %s's recent ad creatives:\n\n", req.Brand))
	sb.WriteString(req.Patterns)
	if req.Budget != "" {
		sb.WriteString(fmt.Sprintf("\n\nCampaign budget: %s", req.Budget))
	}
	if req.Objective != "" {
		sb.WriteString(fmt.Sprintf("\nCampaign objective: %s", req.Objective))
	}
	sb.WriteString("\n\n## Task\n\n")
	sb.WriteString("Propose a campaign strategy that competes with these ads:\n")
	sb.WriteString("1. Three creative concepts with example headlines and hooks\n")
	sb.WriteString("2. Angles the competitor is not covering\n")
	sb.WriteString("3. Audience segments to target first\n")
	sb.WriteString("4. A testing plan ordering the concepts by expected impact\n\n")
	sb.WriteString("Write the strategy as markdown.\n")

	return sb.String()
}
