package collector

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pvandamm/misinfowatch/internal/fetch"
)

// fakeElement implements fetch.Element from canned values. Zero-value fields
// produce errors, mimicking lookups that find nothing.
type fakeElement struct {
	text     string
	textErr  error
	author   string
	href     string
	children map[string]*fakeElement
}

func (e *fakeElement) Text() (string, error) {
	if e.textErr != nil {
		return "", e.textErr
	}
	return e.text, nil
}

func (e *fakeElement) Attribute(name string) (string, error) {
	if name == "href" && e.href != "" {
		return e.href, nil
	}
	return "", fetch.ErrNoMatch
}

func (e *fakeElement) Find(selector string) (fetch.Element, error) {
	if child, ok := e.children[selector]; ok {
		return child, nil
	}
	if e.author != "" && selector == authorSelectors[0] {
		return &fakeElement{text: e.author}, nil
	}
	if e.href != "" && selector == permalinkSelector {
		return &fakeElement{href: e.href}, nil
	}
	return nil, fetch.ErrNoMatch
}

func (e *fakeElement) Screenshot(path string) error {
	return fetch.ErrScreenshotUnsupported
}

// fakePage serves elements per selector.
type fakePage struct {
	bySelector map[string][]fetch.Element
}

func (p *fakePage) FindAll(selector string) ([]fetch.Element, error) {
	return p.bySelector[selector], nil
}

func (p *fakePage) Scroll() error { return nil }
func (p *fakePage) Close()        {}

func post(text string) *fakeElement {
	return &fakeElement{text: text}
}

func TestExtractBasic(t *testing.T) {
	page := &fakePage{bySelector: map[string][]fetch.Element{
		postSelectors[0]: {
			&fakeElement{
				text:   "A long enough post with something worth keeping around",
				author: "Jane Poster",
				href:   "/groups/123/posts/456",
			},
		},
	}}

	e := NewExtractor("", nil)
	posts := e.Extract(page, "page", 10, nil)
	if len(posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(posts))
	}

	p := posts[0]
	if p.Author == nil || *p.Author != "Jane Poster" {
		t.Errorf("author = %v", p.Author)
	}
	if p.URL == nil || *p.URL != "https://www.facebook.com/groups/123/posts/456" {
		t.Errorf("url = %v", p.URL)
	}
	if p.ScreenshotPath != nil {
		t.Errorf("expected nil screenshot with no screenshots dir, got %v", *p.ScreenshotPath)
	}
}

func TestExtractDropsShortText(t *testing.T) {
	page := &fakePage{bySelector: map[string][]fetch.Element{
		postSelectors[0]: {
			post("Like"),
			post("See more"),
			post("This one is long enough to count as an actual post"),
		},
	}}

	posts := NewExtractor("", nil).Extract(page, "page", 10, nil)
	if len(posts) != 1 {
		t.Fatalf("expected 1 post after filtering chrome, got %d", len(posts))
	}
}

func TestExtractDropsTextFailures(t *testing.T) {
	page := &fakePage{bySelector: map[string][]fetch.Element{
		postSelectors[0]: {
			&fakeElement{textErr: fetch.ErrNoMatch},
			post("A perfectly extractable post with plenty of text"),
		},
	}}

	posts := NewExtractor("", nil).Extract(page, "page", 10, nil)
	if len(posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(posts))
	}
}

func TestExtractDedupAcrossStrategies(t *testing.T) {
	dup := "The exact same post text appearing under two selector strategies"
	page := &fakePage{bySelector: map[string][]fetch.Element{
		postSelectors[0]: {post(dup)},
		postSelectors[1]: {post(dup), post("A different post that should survive deduplication fine")},
	}}

	posts := NewExtractor("", nil).Extract(page, "page", 10, nil)
	if len(posts) != 2 {
		t.Fatalf("expected 2 distinct posts, got %d", len(posts))
	}
}

func TestExtractDedupOnPrefix(t *testing.T) {
	prefix := strings.Repeat("a", dedupPrefixLen)
	page := &fakePage{bySelector: map[string][]fetch.Element{
		postSelectors[0]: {
			post(prefix + " first tail"),
			post(prefix + " second tail"),
		},
	}}

	posts := NewExtractor("", nil).Extract(page, "page", 10, nil)
	if len(posts) != 1 {
		t.Fatalf("expected prefix dedup to keep 1 post, got %d", len(posts))
	}
}

func TestExtractRespectsMaxPosts(t *testing.T) {
	var elements []fetch.Element
	for i := 0; i < 30; i++ {
		elements = append(elements, post(fmt.Sprintf("Distinct post number %d with enough padding text", i)))
	}
	page := &fakePage{bySelector: map[string][]fetch.Element{
		postSelectors[0]: elements,
	}}

	posts := NewExtractor("", nil).Extract(page, "page", 5, nil)
	if len(posts) != 5 {
		t.Fatalf("expected max 5 posts, got %d", len(posts))
	}
}

func TestExtractSharedSeenAcrossPages(t *testing.T) {
	crossPost := "The same content cross-posted to two different targets"
	pageA := &fakePage{bySelector: map[string][]fetch.Element{
		postSelectors[0]: {post(crossPost)},
	}}
	pageB := &fakePage{bySelector: map[string][]fetch.Element{
		postSelectors[0]: {post(crossPost), post("Unique content only the second target carries")},
	}}

	e := NewExtractor("", nil)
	seen := make(map[string]bool)
	a := e.Extract(pageA, "target-a", 10, seen)
	b := e.Extract(pageB, "target-b", 10, seen)

	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("expected cross-page dedup to keep 1+1 posts, got %d+%d", len(a), len(b))
	}
}

func TestExtractEmptyPage(t *testing.T) {
	posts := NewExtractor("", nil).Extract(&fakePage{}, "page", 10, nil)
	if len(posts) != 0 {
		t.Fatalf("expected no posts from empty page, got %d", len(posts))
	}
}

func TestExtractMissingMetadataDegrades(t *testing.T) {
	page := &fakePage{bySelector: map[string][]fetch.Element{
		postSelectors[0]: {
			post("A post whose author and permalink lookups all fail"),
		},
	}}

	posts := NewExtractor("", nil).Extract(page, "page", 10, nil)
	if len(posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(posts))
	}
	if posts[0].Author != nil || posts[0].URL != nil {
		t.Errorf("expected nil author and url, got %v %v", posts[0].Author, posts[0].URL)
	}
}

func TestNormalizePostURL(t *testing.T) {
	cases := map[string]string{
		"/posts/123":                      "https://www.facebook.com/posts/123",
		"https://example.com/x":           "https://example.com/x",
		"permalink.php?story_fbid=1&id=2": "https://www.facebook.com/permalink.php?story_fbid=1&id=2",
	}
	for in, want := range cases {
		if got := normalizePostURL(in); got != want {
			t.Errorf("normalizePostURL(%q) = %q, want %q", in, got, want)
		}
	}
}
