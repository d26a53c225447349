package providers

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/adscope/adscope/internal/ads"
)

// AnalysisResult represents the expected JSON structure from any LLM provider
type AnalysisResult struct {
	AdID               string   `json:"ad_id"`
	HookAnalysis       string   `json:"hook_analysis"`
	Angle              string   `json:"angle"`
	PainPoints         []string `json:"pain_points"`
	Benefits           []string `json:"benefits"`
	Emotion            string   `json:"emotion"`
	TargetAudience     string   `json:"target_audience"`
	EffectivenessScore float64  `json:"effectiveness_score"`
	Improvements       []string `json:"improvements"`
}

// ParseAnalysisResponse parses raw JSON bytes from an LLM provider into Analysis objects.
// Each provider is responsible for assembling the complete JSON before calling this.
func ParseAnalysisResponse(jsonBytes []byte) ([]ads.Analysis, error) {
	var results []AnalysisResult
	if err := json.Unmarshal(jsonBytes, &results); err != nil {
		return nil, fmt.Errorf("failed to parse analysis JSON: %w (response was: %.500s)", err, string(jsonBytes))
	}

	now := time.Now()
	analyses := make([]ads.Analysis, len(results))
	for i, r := range results {
		analyses[i] = ads.Analysis{
			AdID:               r.AdID,
			HookAnalysis:       r.HookAnalysis,
			Angle:              r.Angle,
			PainPoints:         r.PainPoints,
			Benefits:           r.Benefits,
			Emotion:            r.Emotion,
			TargetAudience:     r.TargetAudience,
			EffectivenessScore: r.EffectivenessScore,
			Improvements:       r.Improvements,
			AnalyzedAt:         now,
		}
	}

	return analyses, nil
}

// ExtractJSON pulls a JSON array out of a model response, tolerating
// markdown code fences around it.
func ExtractJSON(text string) string {
	re := regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(\[.*?\])\s*\n?` + "```")
	if matches := re.FindStringSubmatch(text); len(matches) > 1 {
		return matches[1]
	}

	re = regexp.MustCompile(`(?s)(\[.*\])`)
	if matches := re.FindStringSubmatch(text); len(matches) > 1 {
		return matches[1]
	}

	return text
}

// buildAnalysisPrompt constructs the LLM prompt for analyzing a batch of ads
func buildAnalysisPrompt(records []ads.Record) string {
	var sb strings.Builder

	sb.WriteString("You are analyzing competitor ad creatives for a marketing intelligence report.\n\n")
	sb.WriteString("## Ads to Analyze\n\n")

	for i, r := range records {
		sb.WriteString(fmt.Sprintf("### Ad %d (ID: %s)\n", i+1, r.AdID))
		sb.WriteString(fmt.Sprintf("Brand: %s\n", r.PageName))
		if r.Headline != "" {
			sb.WriteString(fmt.Sprintf("Headline: %s\n", r.Headline))
		}
		if r.PrimaryText != "" {
			sb.WriteString(fmt.Sprintf("Primary text: %s\n", r.PrimaryText))
		}
		if r.CTALabel != "" {
			sb.WriteString(fmt.Sprintf("CTA: %s\n", r.CTALabel))
		}
		if r.DateStarted != "" {
			sb.WriteString(fmt.Sprintf("Running since: %s\n", r.DateStarted))
		}
		if len(r.MediaURLs) > 0 {
			sb.WriteString(fmt.Sprintf("Media: %d creative(s)\n", len(r.MediaURLs)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Task\n\n")
	sb.WriteString("For each ad, provide:\n")
	sb.WriteString("1. hook_analysis (string): What grabs attention in the first line and why\n")
	sb.WriteString("2. angle (string): The marketing angle (problem/solution, social proof, urgency, ...)\n")
	sb.WriteString("3. pain_points (array): Customer pain points the ad speaks to\n")
	sb.WriteString("4. benefits (array): Benefits the ad promises\n")
	sb.WriteString("5. emotion (string): The primary emotion the ad targets\n")
	sb.WriteString("6. target_audience (string): Who this ad is written for\n")
	sb.WriteString("7. effectiveness_score (0.0 to 10.0): How strong is this creative overall?\n")
	sb.WriteString("8. improvements (array, max 3): Concrete ways to make it stronger\n\n")

	sb.WriteString("IMPORTANT: Respond with ONLY a valid JSON array. No markdown, no code blocks, no explanation - just the raw JSON starting with [ and ending with ].\n\n")
	sb.WriteString("Example structure:\n")
	sb.WriteString(`[{"ad_id": "...", "hook_analysis": "...", "angle": "urgency", "pain_points": ["..."], "benefits": ["..."], "emotion": "fear of missing out", "target_audience": "...", "effectiveness_score": 7.5, "improvements": ["..."]}]`)
	sb.WriteString("\n")

	return sb.String()
}
