package fetch

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/pvandamm/misinfowatch/internal/browser"
)

// ChromeFetcher drives a real Chrome instance via chromedp. One browser
// session is created per Fetch and released by Page.Close, so targets are
// processed strictly one at a time.
type ChromeFetcher struct {
	headless bool
	timeout  time.Duration
}

// NewChromeFetcher creates a browser-backed fetcher. timeout bounds
// navigation and each subsequent page operation.
func NewChromeFetcher(headless bool, timeout time.Duration) *ChromeFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChromeFetcher{headless: headless, timeout: timeout}
}

// Fetch navigates to url and returns a live page handle.
func (f *ChromeFetcher) Fetch(ctx context.Context, url string) (Page, error) {
	opts := browser.Options(f.headless)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		browserCancel()
		allocCancel()
	}

	navCtx, navCancel := context.WithTimeout(browserCtx, f.timeout)
	defer navCancel()

	err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		cancel()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &NavigationTimeoutError{URL: url}
		}
		return nil, &NavigationError{URL: url, Err: err}
	}

	return &chromePage{ctx: browserCtx, cancel: cancel, timeout: f.timeout}, nil
}

type chromePage struct {
	ctx     context.Context
	cancel  func()
	timeout time.Duration
}

func (p *chromePage) run(actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// FindAll returns handles for every node matching the CSS selector. No
// matches is an empty slice, not an error.
func (p *chromePage) FindAll(selector string) ([]Element, error) {
	var nodes []*cdp.Node
	err := p.run(chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, err
	}

	elements := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		elements = append(elements, &chromeElement{page: p, node: n})
	}
	return elements, nil
}

func (p *chromePage) Scroll() error {
	return p.run(chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil))
}

func (p *chromePage) Close() {
	p.cancel()
}

// chromeElement addresses its node by full XPath. Nodes go stale when the
// page re-renders, which surfaces as per-element errors the extractor
// tolerates.
type chromeElement struct {
	page *chromePage
	node *cdp.Node
}

func (e *chromeElement) Text() (string, error) {
	var text string
	err := e.page.run(chromedp.Text(e.node.FullXPath(), &text, chromedp.BySearch))
	if err != nil {
		return "", err
	}
	return text, nil
}

func (e *chromeElement) Attribute(name string) (string, error) {
	var value string
	var ok bool
	err := e.page.run(chromedp.AttributeValue(e.node.FullXPath(), name, &value, &ok, chromedp.BySearch))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNoMatch
	}
	return value, nil
}

func (e *chromeElement) Find(selector string) (Element, error) {
	var nodes []*cdp.Node
	err := e.page.run(chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.FromNode(e.node), chromedp.AtLeast(0)))
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, ErrNoMatch
	}
	return &chromeElement{page: e.page, node: nodes[0]}, nil
}

func (e *chromeElement) Screenshot(path string) error {
	var buf []byte
	err := e.page.run(chromedp.Screenshot(e.node.FullXPath(), &buf, chromedp.BySearch))
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}
