// Package fetch abstracts page retrieval behind a small capability surface so
// the collector can be driven by a real browser, a plain HTTP client, or a
// fake in tests.
package fetch

import (
	"context"
	"errors"
	"fmt"
)

// Fetcher retrieves a navigable page for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// Page is a loaded document. Close releases the underlying session; pages
// must not be used after Close.
type Page interface {
	FindAll(selector string) ([]Element, error)
	Scroll() error
	Close()
}

// Element is an opaque handle to one matched node. Any method may fail
// independently; callers degrade per field rather than dropping the element.
type Element interface {
	Text() (string, error)
	Attribute(name string) (string, error)
	Find(selector string) (Element, error)
	Screenshot(path string) error
}

// ErrNoMatch is returned by Find and Attribute when nothing matches.
var ErrNoMatch = errors.New("no element matches selector")

// ErrScreenshotUnsupported is returned by fetchers that cannot render
// screenshots. Screenshot failures are non-fatal upstream.
var ErrScreenshotUnsupported = errors.New("screenshots not supported by this fetcher")

// NavigationTimeoutError indicates the page did not load within the deadline.
type NavigationTimeoutError struct {
	URL string
}

func (e *NavigationTimeoutError) Error() string {
	return fmt.Sprintf("navigation to %s timed out", e.URL)
}

// NavigationError indicates the page could not be loaded for a reason other
// than a timeout.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}
