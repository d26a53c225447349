package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/adscope/adscope/internal/ads"
)

// DOM-fragment extractors. A candidate container arrives as a goquery
// selection over one ad card's HTML; everything here tolerates missing
// attributes the same way the line extractors tolerate missing lines.

var bgImagePattern = regexp.MustCompile(`url\(['"]?([^'")]+)['"]?\)`)

// DestinationURL returns the first non-javascript href in the container,
// with any query string stripped.
func (r Rules) DestinationURL(sel *goquery.Selection) string {
	var dest string
	sel.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok || href == "" || strings.HasPrefix(href, "javascript:") {
			return true
		}
		if idx := strings.Index(href, "?"); idx >= 0 {
			href = href[:idx]
		}
		dest = href
		return false
	})
	return dest
}

// MediaItems collects ad-CDN images (skipping small decorative ones),
// inline background images, and direct video sources. URLs are
// deduplicated; order of first appearance is preserved.
func (r Rules) MediaItems(sel *goquery.Selection) []ads.MediaItem {
	var items []ads.MediaItem
	seen := make(map[string]bool)

	add := func(item ads.MediaItem) {
		if item.URL == "" || seen[item.URL] {
			return
		}
		seen[item.URL] = true
		items = append(items, item)
	}

	sel.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || !strings.Contains(src, r.CDNMarker) {
			return
		}
		w := attrInt(img, "width")
		h := attrInt(img, "height")
		// Width/height attributes are optional; when present, tiny
		// images are profile pictures and icons.
		if (w > 0 && w <= r.MinMediaSize) || (h > 0 && h <= r.MinMediaSize) {
			return
		}
		add(ads.MediaItem{Type: "image", URL: src, Width: w, Height: h})
	})

	sel.Find("[style*='background-image']").Each(func(_ int, el *goquery.Selection) {
		style, _ := el.Attr("style")
		if !strings.Contains(style, r.CDNMarker) {
			return
		}
		for _, m := range bgImagePattern.FindAllStringSubmatch(style, -1) {
			if strings.Contains(m[1], r.CDNMarker) {
				add(ads.MediaItem{Type: "image", URL: m[1]})
			}
		}
	})

	sel.Find("video").Each(func(_ int, video *goquery.Selection) {
		src, ok := video.Attr("src")
		if !ok {
			src, ok = video.Find("source").Attr("src")
		}
		if !ok || src == "" {
			return
		}
		poster, _ := video.Attr("poster")
		add(ads.MediaItem{Type: "video", URL: src, Poster: poster})
	})

	return items
}

// ContainerText flattens a container's text content into the same
// line-oriented shape the innerText capture path produces, so the line
// extractors run unchanged over DOM input.
func ContainerText(sel *goquery.Selection) string {
	var b strings.Builder
	sel.Contents().Each(func(_ int, n *goquery.Selection) {
		appendNodeText(&b, n)
	})
	return b.String()
}

func appendNodeText(b *strings.Builder, sel *goquery.Selection) {
	if goquery.NodeName(sel) == "#text" {
		if t := strings.TrimSpace(sel.Text()); t != "" {
			b.WriteString(t)
			b.WriteString("\n")
		}
		return
	}
	sel.Contents().Each(func(_ int, n *goquery.Selection) {
		appendNodeText(b, n)
	})
}

func attrInt(sel *goquery.Selection, name string) int {
	v, ok := sel.Attr(name)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSuffix(v, "px"))
	if err != nil {
		return 0
	}
	return n
}
