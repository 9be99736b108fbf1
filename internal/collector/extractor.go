package collector

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/pvandamm/misinfowatch/internal/fetch"
)

// Text shorter than this is UI chrome (buttons, counters), not a post.
const minPostLen = 20

// Posts are deduplicated on this many leading characters of their text.
// Long posts sharing a boilerplate opener will merge; known limitation.
const dedupPrefixLen = 100

// RawPost is one extracted post before persistence. Optional fields stay nil
// when their lookup failed; only total extraction failure drops the element.
type RawPost struct {
	TextContent    string
	Author         *string
	URL            *string
	ScreenshotPath *string
}

// Extractor turns page elements into deduplicated RawPosts.
type Extractor struct {
	screenshotsDir string
	progress       ProgressFunc
}

// NewExtractor creates an extractor that writes screenshot artifacts into
// screenshotsDir. An empty dir disables screenshots.
func NewExtractor(screenshotsDir string, progress ProgressFunc) *Extractor {
	if progress == nil {
		progress = func(string) {}
	}
	return &Extractor{screenshotsDir: screenshotsDir, progress: progress}
}

// Extract collects up to maxPosts distinct posts from page. Selector
// strategies run in priority order and share the seen dedup set, so a text
// prefix seen under one selector is never re-added under another. Passing the
// same set across calls extends deduplication over a whole collection run;
// nil means dedup within this page only.
func (e *Extractor) Extract(page fetch.Page, targetName string, maxPosts int, seen map[string]bool) []RawPost {
	var posts []RawPost
	if seen == nil {
		seen = make(map[string]bool)
	}

	for _, selector := range postSelectors {
		elements, err := page.FindAll(selector)
		if err != nil {
			continue
		}
		e.progress(fmt.Sprintf("Found %d elements with selector %s", len(elements), selector))

		// Scan extra elements to allow for noise filtering.
		if len(elements) > maxPosts*2 {
			elements = elements[:maxPosts*2]
		}

		for _, el := range elements {
			if len(posts) >= maxPosts {
				break
			}

			rp, ok := e.extractOne(el, targetName)
			if !ok {
				continue
			}

			key := dedupKey(rp.TextContent)
			if seen[key] {
				continue
			}
			seen[key] = true
			posts = append(posts, rp)
		}

		if len(posts) >= maxPosts {
			break
		}
	}

	return posts
}

// extractOne pulls the fields out of a single element. Author, URL and
// screenshot lookups degrade to nil on failure.
func (e *Extractor) extractOne(el fetch.Element, targetName string) (RawPost, bool) {
	text, err := el.Text()
	if err != nil {
		return RawPost{}, false
	}
	text = strings.TrimSpace(text)
	if len([]rune(text)) < minPostLen {
		return RawPost{}, false
	}

	rp := RawPost{TextContent: text}

	for _, sel := range authorSelectors {
		sub, err := el.Find(sel)
		if err != nil {
			continue
		}
		author, err := sub.Text()
		if err != nil {
			continue
		}
		author = strings.TrimSpace(author)
		if author != "" {
			rp.Author = &author
			break
		}
	}

	if link, err := el.Find(permalinkSelector); err == nil {
		if href, err := link.Attribute("href"); err == nil && href != "" {
			url := normalizePostURL(href)
			rp.URL = &url
		}
	}

	if e.screenshotsDir != "" {
		filename := screenshotFilename(targetName)
		if err := el.Screenshot(filepath.Join(e.screenshotsDir, filename)); err == nil {
			rp.ScreenshotPath = &filename
		}
	}

	return rp, true
}

func dedupKey(text string) string {
	r := []rune(text)
	if len(r) > dedupPrefixLen {
		r = r[:dedupPrefixLen]
	}
	return string(r)
}

func normalizePostURL(href string) string {
	switch {
	case strings.HasPrefix(href, "/"):
		return "https://www.facebook.com" + href
	case !strings.HasPrefix(href, "http"):
		return "https://www.facebook.com/" + href
	}
	return href
}

func screenshotFilename(targetName string) string {
	name := strings.ReplaceAll(targetName, " ", "_")
	return fmt.Sprintf("%s_%s.png", name, ulid.Make().String())
}
