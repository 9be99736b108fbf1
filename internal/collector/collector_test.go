package collector

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pvandamm/misinfowatch/internal/config"
	"github.com/pvandamm/misinfowatch/internal/fetch"
	"github.com/pvandamm/misinfowatch/internal/scoring"
	"github.com/pvandamm/misinfowatch/internal/store"
)

// fakeFetcher maps URLs to pages or errors.
type fakeFetcher struct {
	pages map[string]fetch.Page
	errs  map[string]error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (fetch.Page, error) {
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return nil, &fetch.NavigationError{URL: url, Err: fetch.ErrNoMatch}
}

func testCollector(t *testing.T, fetcher fetch.Fetcher) (*Collector, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.New(filepath.Join(dir, "posts.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	c := New(st, scoring.NewScorer(nil), fetcher, fetcher, "", func(string) {})
	return c, st
}

func pageWith(texts ...string) fetch.Page {
	var elements []fetch.Element
	for _, text := range texts {
		elements = append(elements, post(text))
	}
	return &fakePage{bySelector: map[string][]fetch.Element{
		postSelectors[0]: elements,
	}}
}

func fastOpts() Options {
	return Options{MaxPostsPerTarget: 10, ScrollPasses: 1, ScrollDelay: 1, MaxTargets: 10}
}

func TestRunCollectsAndScores(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]fetch.Page{
		"https://example.com/a": pageWith(
			"SHOCKING truth they don't want you to know about!!!!",
			"A perfectly ordinary post about the weather this weekend",
		),
	}}
	c, st := testCollector(t, fetcher)

	res := c.Run(context.Background(), []config.Target{
		{Name: "target-a", URL: "https://example.com/a", Type: "page"},
	}, fastOpts())

	require.Equal(t, 1, res.TargetsProcessed)
	require.Equal(t, 2, res.PostsCollected)
	require.Empty(t, res.Errors)

	posts, err := st.ListPosts(store.Filter{OrderBy: "id", OrderDir: "ASC"})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	for _, p := range posts {
		require.Equal(t, store.StatusQueued, p.Status)
		require.NotNil(t, p.MisinfoScore, "every collected post gets scored")
	}
	require.Greater(t, *posts[0].MisinfoScore, *posts[1].MisinfoScore)
}

func TestRunIsolatesTargetFailures(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string]fetch.Page{
			"https://example.com/a": pageWith("First target post with plenty of content here"),
			"https://example.com/c": pageWith("Third target post with plenty of content here"),
		},
		errs: map[string]error{
			"https://example.com/b": &fetch.NavigationTimeoutError{URL: "https://example.com/b"},
		},
	}
	c, st := testCollector(t, fetcher)

	res := c.Run(context.Background(), []config.Target{
		{Name: "target-a", URL: "https://example.com/a"},
		{Name: "target-b", URL: "https://example.com/b"},
		{Name: "target-c", URL: "https://example.com/c"},
	}, fastOpts())

	require.Equal(t, 2, res.TargetsProcessed)
	require.Equal(t, 2, res.PostsCollected)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0], "target-b")
	require.Contains(t, res.Errors[0], "timed out")

	posts, err := st.ListPosts(store.Filter{})
	require.NoError(t, err)
	require.Len(t, posts, 2)
}

func TestRunMaxTargetsCap(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]fetch.Page{
		"https://example.com/a": pageWith("Post from the first target with enough length"),
		"https://example.com/b": pageWith("Post from the second target with enough length"),
	}}
	c, _ := testCollector(t, fetcher)

	opts := fastOpts()
	opts.MaxTargets = 1
	res := c.Run(context.Background(), []config.Target{
		{Name: "target-a", URL: "https://example.com/a"},
		{Name: "target-b", URL: "https://example.com/b"},
	}, opts)

	require.Equal(t, 1, res.TargetsProcessed)
	require.Equal(t, 1, res.PostsCollected)
}

func TestRunStopBetweenTargets(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]fetch.Page{
		"https://example.com/a": pageWith("Post from the only target processed before stopping"),
	}}
	c, _ := testCollector(t, fetcher)
	c.Stop()

	// Stop flag is reset at the start of each run.
	res := c.Run(context.Background(), []config.Target{
		{Name: "target-a", URL: "https://example.com/a"},
	}, fastOpts())
	require.Equal(t, 1, res.TargetsProcessed)
}

func TestRunCancelledContext(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]fetch.Page{}}
	c, _ := testCollector(t, fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.Run(ctx, []config.Target{
		{Name: "target-a", URL: "https://example.com/a"},
	}, fastOpts())
	require.Equal(t, 0, res.TargetsProcessed)
	require.NotEmpty(t, res.Errors)
}

func TestRescorePending(t *testing.T) {
	c, st := testCollector(t, &fakeFetcher{})

	id1, err := st.AddPost(store.NewPost{TargetName: "page", TextContent: "shocking truth: wake up, the deep state is behind this"})
	require.NoError(t, err)
	id2, err := st.AddPost(store.NewPost{TargetName: "page", TextContent: "a calm note about the local farmers market schedule"})
	require.NoError(t, err)

	// Already-scored posts must be left alone.
	id3, err := st.AddPost(store.NewPost{TargetName: "page", TextContent: "previously scored content that stays untouched"})
	require.NoError(t, err)
	existing := 99
	require.NoError(t, st.UpdatePost(id3, store.PostUpdate{MisinfoScore: &existing}))

	n, err := c.RescorePending(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)

	p1, err := st.GetPost(id1)
	require.NoError(t, err)
	require.NotNil(t, p1.MisinfoScore)
	require.Greater(t, *p1.MisinfoScore, scoring.ThresholdMedium)

	p2, err := st.GetPost(id2)
	require.NoError(t, err)
	require.NotNil(t, p2.MisinfoScore)
	require.Equal(t, 0, *p2.MisinfoScore)

	p3, err := st.GetPost(id3)
	require.NoError(t, err)
	require.Equal(t, 99, *p3.MisinfoScore)
}

func TestRescorePendingEmpty(t *testing.T) {
	c, _ := testCollector(t, &fakeFetcher{})
	n, err := c.RescorePending(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestScreenshotFilename(t *testing.T) {
	name := screenshotFilename("Local News Page")
	require.True(t, strings.HasPrefix(name, "Local_News_Page_"))
	require.True(t, strings.HasSuffix(name, ".png"))

	// ULIDs keep names unique across posts of the same target.
	require.NotEqual(t, name, screenshotFilename("Local News Page"))
}
