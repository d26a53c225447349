// Package report renders analyzed ads into an HTML intelligence report.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/adscope/adscope/internal/ads"
)

// Builder creates intelligence reports from analyzed ads
type Builder struct {
	maxAds   int
	template *template.Template
}

// New creates a new report builder
func New(maxAds int) (*Builder, error) {
	tmpl, err := template.New("report").Parse(defaultTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	return &Builder{
		maxAds:   maxAds,
		template: tmpl,
	}, nil
}

// Report represents a compiled report ready for sending
type Report struct {
	Subject   string
	HTMLBody  string
	PlainBody string
	AdIDs     []string
	CreatedAt time.Time
}

// reportData is the template data structure
type reportData struct {
	Title    string
	Date     string
	Ads      []adData
	Patterns string
	Strategy string
	Stats    statsData
}

// adData represents one ad in the report template
type adData struct {
	Brand        string
	Headline     string
	PrimaryText  string
	CTA          string
	DateStarted  string
	URL          string
	Score        float64
	Hook         string
	Angle        string
	Emotion      string
	Audience     string
	Improvements []string
}

type statsData struct {
	TotalIncluded int
	Brands        int
}

// Build creates a report from analyzed ads. patterns and strategy are
// optional markdown sections; either may be empty.
func (b *Builder) Build(analyzed []ads.RecordWithAnalysis, patterns, strategy string) (*Report, error) {
	if len(analyzed) == 0 {
		return nil, fmt.Errorf("no ads to include in report")
	}

	// Sort by effectiveness score descending
	sort.Slice(analyzed, func(i, j int) bool {
		return analyzed[i].Analysis.EffectivenessScore > analyzed[j].Analysis.EffectivenessScore
	})

	// Limit to max ads
	if len(analyzed) > b.maxAds {
		analyzed = analyzed[:b.maxAds]
	}

	now := time.Now()
	brands := make(map[string]bool)
	data := reportData{
		Title:    "Competitor Ad Intelligence",
		Date:     now.Format("Monday, January 2"),
		Ads:      make([]adData, len(analyzed)),
		Patterns: patterns,
		Strategy: strategy,
	}

	adIDs := make([]string, len(analyzed))
	for i, aa := range analyzed {
		brands[aa.Record.PageName] = true
		data.Ads[i] = adData{
			Brand:        aa.Record.PageName,
			Headline:     aa.Record.Headline,
			PrimaryText:  truncate(aa.Record.PrimaryText, 280),
			CTA:          aa.Record.CTALabel,
			DateStarted:  aa.Record.DateStarted,
			URL:          aa.Record.DestinationURL,
			Score:        aa.Analysis.EffectivenessScore,
			Hook:         aa.Analysis.HookAnalysis,
			Angle:        aa.Analysis.Angle,
			Emotion:      aa.Analysis.Emotion,
			Audience:     aa.Analysis.TargetAudience,
			Improvements: aa.Analysis.Improvements,
		}
		adIDs[i] = aa.Record.AdID
	}
	data.Stats = statsData{
		TotalIncluded: len(analyzed),
		Brands:        len(brands),
	}

	var htmlBuf bytes.Buffer
	if err := b.template.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}

	return &Report{
		Subject:   fmt.Sprintf("Ad Intelligence - %s", now.Format("Jan 2")),
		HTMLBody:  htmlBuf.String(),
		PlainBody: buildPlainText(data),
		AdIDs:     adIDs,
		CreatedAt: now,
	}, nil
}

// truncate shortens s to at most maxLen bytes including the ellipsis,
// cutting on a rune boundary so the result stays valid UTF-8.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func buildPlainText(data reportData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("%s\n%s\n\n", data.Title, data.Date))

	for i, a := range data.Ads {
		buf.WriteString(fmt.Sprintf("%d. %s (%.1f): %s\n", i+1, a.Brand, a.Score, a.Headline))
		buf.WriteString(fmt.Sprintf("   Angle: %s · Emotion: %s\n\n", a.Angle, a.Emotion))
	}

	if data.Patterns != "" {
		buf.WriteString("Patterns\n--------\n")
		buf.WriteString(data.Patterns)
		buf.WriteString("\n\n")
	}
	if data.Strategy != "" {
		buf.WriteString("Strategy\n--------\n")
		buf.WriteString(data.Strategy)
		buf.WriteString("\n")
	}

	return buf.String()
}

const defaultTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 640px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
        .container { background: white; border-radius: 8px; padding: 20px; }
        h1 { color: #0866ff; margin-bottom: 5px; }
        h2 { color: #333; border-top: 1px solid #eee; padding-top: 15px; }
        .date { color: #666; margin-bottom: 20px; }
        .ad { border-bottom: 1px solid #eee; padding: 15px 0; }
        .ad:last-child { border-bottom: none; }
        .brand { font-weight: bold; color: #333; }
        .score { float: right; background: #e7f3ff; color: #0866ff; padding: 2px 10px; border-radius: 12px; font-size: 13px; }
        .headline { margin: 8px 0; font-weight: 600; }
        .copy { margin: 8px 0; line-height: 1.4; color: #444; }
        .hook { color: #0866ff; font-style: italic; margin: 8px 0; }
        .meta { color: #666; font-size: 13px; }
        .improvement { color: #666; font-size: 13px; margin-left: 12px; }
        .section { white-space: pre-wrap; line-height: 1.5; color: #333; }
        .link { color: #0866ff; text-decoration: none; }
        .footer { margin-top: 20px; padding-top: 15px; border-top: 1px solid #eee; color: #999; font-size: 12px; text-align: center; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <div class="date">{{.Date}}</div>

        {{range .Ads}}
        <div class="ad">
            <div class="brand">{{.Brand}} <span class="score">{{printf "%.1f" .Score}}</span></div>
            {{if .Headline}}<div class="headline">{{.Headline}}</div>{{end}}
            {{if .PrimaryText}}<div class="copy">{{.PrimaryText}}</div>{{end}}
            {{if .Hook}}<div class="hook">{{.Hook}}</div>{{end}}
            <div class="meta">{{.Angle}}{{if .Emotion}} · {{.Emotion}}{{end}}{{if .Audience}} · {{.Audience}}{{end}}{{if .DateStarted}} · running since {{.DateStarted}}{{end}}{{if .CTA}} · {{.CTA}}{{end}}</div>
            {{range .Improvements}}<div class="improvement">→ {{.}}</div>{{end}}
            {{if .URL}}<a href="{{.URL}}" class="link">View landing page</a>{{end}}
        </div>
        {{end}}

        {{if .Patterns}}
        <h2>Recurring Patterns</h2>
        <div class="section">{{.Patterns}}</div>
        {{end}}

        {{if .Strategy}}
        <h2>Suggested Strategy</h2>
        <div class="section">{{.Strategy}}</div>
        {{end}}

        <div class="footer">
            {{.Stats.TotalIncluded}} ads across {{.Stats.Brands}} brand(s) · Generated by adscope
        </div>
    </div>
</body>
</html>`
