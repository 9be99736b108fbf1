package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pvandamm/misinfowatch/internal/browser"
)

// StaticFetcher retrieves plain HTML over HTTP and parses it with goquery.
// It serves targets that render server-side; there is no scrolling and no
// screenshot rendering.
type StaticFetcher struct {
	client *http.Client
}

// NewStaticFetcher creates an HTTP-backed fetcher.
func NewStaticFetcher(timeout time.Duration) *StaticFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &StaticFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads and parses the document at url.
func (f *StaticFetcher) Fetch(ctx context.Context, url string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, &NavigationError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", browser.DefaultUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &NavigationTimeoutError{URL: url}
		}
		return nil, &NavigationError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &NavigationError{URL: url, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &NavigationError{URL: url, Err: err}
	}

	return &staticPage{doc: doc}, nil
}

type staticPage struct {
	doc *goquery.Document
}

func (p *staticPage) FindAll(selector string) ([]Element, error) {
	sel := p.doc.Find(selector)
	elements := make([]Element, 0, sel.Length())
	sel.Each(func(i int, s *goquery.Selection) {
		elements = append(elements, &staticElement{sel: s})
	})
	return elements, nil
}

// Scroll is a no-op; static documents are fully loaded on fetch.
func (p *staticPage) Scroll() error { return nil }

func (p *staticPage) Close() {}

type staticElement struct {
	sel *goquery.Selection
}

func (e *staticElement) Text() (string, error) {
	return e.sel.Text(), nil
}

func (e *staticElement) Attribute(name string) (string, error) {
	val, ok := e.sel.Attr(name)
	if !ok {
		return "", ErrNoMatch
	}
	return val, nil
}

func (e *staticElement) Find(selector string) (Element, error) {
	found := e.sel.Find(selector)
	if found.Length() == 0 {
		return nil, ErrNoMatch
	}
	return &staticElement{sel: found.First()}, nil
}

func (e *staticElement) Screenshot(path string) error {
	return ErrScreenshotUnsupported
}
