// Package dedup suppresses repeated captures of the same underlying ad
// within one scraping session.
package dedup

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
)

var (
	imageURLPattern = regexp.MustCompile(`(?i)https?://[^\s"')]+\.(?:jpg|jpeg|png|gif|webp)`)
	base64Pattern   = regexp.MustCompile(`data:image/[^;]+;base64,([A-Za-z0-9+/=]{50})`)
	videoURLPattern = regexp.MustCompile(`(?i)https?://[^\s"')]+\.(?:mp4|avi|mov|webm)`)
	youtubePattern  = regexp.MustCompile(`youtube\.com/watch\?v=([A-Za-z0-9_-]+)`)
	fbVideoPattern  = regexp.MustCompile(`facebook\.com/[^/]+/videos/(\d+)`)
)

// Deduplicator tracks content fingerprints seen during one session. It is
// not safe for concurrent use; each scraping session owns its own
// instance.
type Deduplicator struct {
	seenHeadlines    map[string]bool
	seenImages       map[string]bool
	seenVideos       map[string]bool
	seenCombinations map[string]bool
}

// Stats reports the size of each seen-set.
type Stats struct {
	UniqueHeadlines   int `json:"unique_headlines"`
	UniqueImages      int `json:"unique_images"`
	UniqueVideos      int `json:"unique_videos"`
	TotalCombinations int `json:"total_combinations"`
}

// New creates an empty deduplicator.
func New() *Deduplicator {
	return &Deduplicator{
		seenHeadlines:    make(map[string]bool),
		seenImages:       make(map[string]bool),
		seenVideos:       make(map[string]bool),
		seenCombinations: make(map[string]bool),
	}
}

// IsDuplicate reports whether content repeats a previously accepted ad,
// matching on the composite signature, the headline, any single image
// URL, or any single video identifier. A shared image across two
// otherwise-different captures usually means the same ad was captured
// twice, once from the DOM and once from the network, so any component
// match rejects. When the candidate is new, all of its components are
// recorded atomically; a rejected candidate leaves the seen-sets
// untouched.
func (d *Deduplicator) IsDuplicate(content string) bool {
	headline := extractHeadline(content)
	images := extractImages(content)
	videos := extractVideos(content)

	signature := signature(headline, images, videos)

	if d.seenCombinations[signature] {
		return true
	}
	if headline != "" && d.seenHeadlines[headline] {
		return true
	}
	for _, img := range images {
		if d.seenImages[img] {
			return true
		}
	}
	for _, vid := range videos {
		if d.seenVideos[vid] {
			return true
		}
	}

	if headline != "" {
		d.seenHeadlines[headline] = true
	}
	for _, img := range images {
		d.seenImages[img] = true
	}
	for _, vid := range videos {
		d.seenVideos[vid] = true
	}
	d.seenCombinations[signature] = true

	return false
}

// Stats returns the current seen-set sizes.
func (d *Deduplicator) Stats() Stats {
	return Stats{
		UniqueHeadlines:   len(d.seenHeadlines),
		UniqueImages:      len(d.seenImages),
		UniqueVideos:      len(d.seenVideos),
		TotalCombinations: len(d.seenCombinations),
	}
}

// extractHeadline returns the first textual line longer than 10
// characters that is not a URL, handle, or hashtag, normalized to
// lower case.
func extractHeadline(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if len(line) <= 10 {
			continue
		}
		if strings.HasPrefix(line, "http") || strings.HasPrefix(line, "www") ||
			strings.HasPrefix(line, "@") || strings.HasPrefix(line, "#") {
			continue
		}
		return strings.ToLower(line)
	}
	return ""
}

func extractImages(content string) []string {
	images := imageURLPattern.FindAllString(content, -1)
	for _, m := range base64Pattern.FindAllStringSubmatch(content, -1) {
		images = append(images, m[1])
	}
	return images
}

func extractVideos(content string) []string {
	videos := videoURLPattern.FindAllString(content, -1)
	for _, m := range youtubePattern.FindAllStringSubmatch(content, -1) {
		videos = append(videos, m[1])
	}
	for _, m := range fbVideoPattern.FindAllStringSubmatch(content, -1) {
		videos = append(videos, m[1])
	}
	return videos
}

// signature derives the composite fingerprint from whichever components
// are present; the literal "empty" stands in when none are.
func signature(headline string, images, videos []string) string {
	var parts []string

	if headline != "" {
		if len(headline) > 50 {
			headline = headline[:50]
		}
		parts = append(parts, "h:"+headline)
	}
	if len(images) > 0 {
		parts = append(parts, fmt.Sprintf("i:%d:%d", len(images), hashStrings(images)))
	}
	if len(videos) > 0 {
		parts = append(parts, fmt.Sprintf("v:%d:%d", len(videos), hashStrings(videos)))
	}

	if len(parts) == 0 {
		return "empty"
	}
	return strings.Join(parts, "|")
}

func hashStrings(items []string) uint64 {
	h := fnv.New64a()
	for _, item := range items {
		h.Write([]byte(item))
		h.Write([]byte{0})
	}
	return h.Sum64()
}
