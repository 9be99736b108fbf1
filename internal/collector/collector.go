// Package collector drives collection runs: fetch each target, scroll the
// page, extract and persist posts, and score them as they land in the queue.
// Targets are isolated from each other; one bad target never aborts the run.
package collector

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/pvandamm/misinfowatch/internal/config"
	"github.com/pvandamm/misinfowatch/internal/fetch"
	"github.com/pvandamm/misinfowatch/internal/scoring"
	"github.com/pvandamm/misinfowatch/internal/store"
)

// ProgressFunc receives human-readable status lines at run checkpoints. It
// is a notification side channel, not part of the result contract.
type ProgressFunc func(msg string)

// Options control one collection run. Zero values fall back to the
// configuration defaults.
type Options struct {
	MaxPostsPerTarget int
	ScrollPasses      int
	ScrollDelay       time.Duration
	MaxTargets        int
}

// Result summarizes a collection run. TargetsProcessed counts targets that
// completed without error; Errors holds one entry per failed target.
type Result struct {
	TargetsProcessed int      `json:"targets_processed"`
	PostsCollected   int      `json:"posts_collected"`
	Errors           []string `json:"errors"`
}

// Collector orchestrates collection across targets.
type Collector struct {
	store     *store.Store
	scorer    *scoring.Scorer
	browser   fetch.Fetcher
	static    fetch.Fetcher
	extractor *Extractor
	progress  ProgressFunc
	stop      atomic.Bool
}

// New creates a collector. staticFetcher serves targets of type "static";
// everything else goes through browserFetcher. A nil progress sink logs to
// the standard logger.
func New(st *store.Store, scorer *scoring.Scorer, browserFetcher, staticFetcher fetch.Fetcher, screenshotsDir string, progress ProgressFunc) *Collector {
	if progress == nil {
		progress = func(msg string) { log.Println(msg) }
	}
	return &Collector{
		store:     st,
		scorer:    scorer,
		browser:   browserFetcher,
		static:    staticFetcher,
		extractor: NewExtractor(screenshotsDir, progress),
		progress:  progress,
	}
}

// Stop requests the current run to halt. It takes effect at the next target
// boundary; the target in flight finishes normally.
func (c *Collector) Stop() {
	c.stop.Store(true)
}

// Run collects from each target in order. Per-target failures are recorded
// and skipped; already-collected posts are never discarded.
func (c *Collector) Run(ctx context.Context, targets []config.Target, opts Options) Result {
	opts = withDefaults(opts)

	if opts.MaxTargets > 0 && len(targets) > opts.MaxTargets {
		c.progress(fmt.Sprintf("Limiting run to first %d of %d targets", opts.MaxTargets, len(targets)))
		targets = targets[:opts.MaxTargets]
	}

	c.stop.Store(false)
	var res Result

	// One dedup set for the whole run, so cross-posted content collected
	// from multiple targets lands in the queue once.
	seen := make(map[string]bool)

	for _, t := range targets {
		if c.stop.Load() {
			c.progress("Stop requested, ending run")
			break
		}
		if ctx.Err() != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("run cancelled: %v", ctx.Err()))
			break
		}

		n, err := c.collectTarget(ctx, t, opts, seen)
		res.PostsCollected += n
		if err != nil {
			msg := fmt.Sprintf("target %s: %v", t.Name, err)
			c.progress(msg)
			res.Errors = append(res.Errors, msg)
			continue
		}
		res.TargetsProcessed++
	}

	return res
}

func (c *Collector) collectTarget(ctx context.Context, t config.Target, opts Options, seen map[string]bool) (int, error) {
	c.progress("Processing target: " + t.Name)

	fetcher := c.browser
	if t.Type == "static" {
		fetcher = c.static
	}

	page, err := fetcher.Fetch(ctx, t.URL)
	if err != nil {
		return 0, err
	}
	defer page.Close()

	c.progress(fmt.Sprintf("Scrolling to load posts (passes: %d)", opts.ScrollPasses))
	for i := 0; i < opts.ScrollPasses; i++ {
		if err := page.Scroll(); err != nil {
			return 0, fmt.Errorf("scroll failed: %w", err)
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(opts.ScrollDelay):
		}
		c.progress(fmt.Sprintf("Scroll pass %d/%d", i+1, opts.ScrollPasses))
	}

	c.progress("Extracting posts...")
	raws := c.extractor.Extract(page, t.Name, opts.MaxPostsPerTarget, seen)

	// Persistence faults are real failures, unlike analysis degradation:
	// a post we cannot store must surface in the run errors.
	count := 0
	for _, rp := range raws {
		id, err := c.store.AddPost(store.NewPost{
			TargetName:     t.Name,
			URL:            rp.URL,
			Author:         rp.Author,
			TextContent:    rp.TextContent,
			ScreenshotPath: rp.ScreenshotPath,
		})
		if err != nil {
			return count, err
		}

		result := c.scorer.Score(ctx, rp.TextContent)
		if err := c.scoreUpdate(id, result); err != nil {
			return count, err
		}
		count++
	}

	c.progress(fmt.Sprintf("Collected %d posts from %s", count, t.Name))
	return count, nil
}

func (c *Collector) scoreUpdate(id int64, result scoring.Result) error {
	return c.store.UpdatePost(id, store.PostUpdate{
		MisinfoScore:       &result.Score,
		Tags:               &result.Tags,
		Rationale:          &result.Rationale,
		FactCheckQuestions: &result.FactCheckQuestions,
	})
}

func withDefaults(opts Options) Options {
	def := config.Default().Collection
	if opts.MaxPostsPerTarget <= 0 {
		opts.MaxPostsPerTarget = def.MaxPostsPerTarget
	}
	if opts.ScrollPasses <= 0 {
		opts.ScrollPasses = def.ScrollPasses
	}
	if opts.ScrollDelay <= 0 {
		opts.ScrollDelay = time.Duration(def.ScrollDelaySeconds * float64(time.Second))
	}
	if opts.MaxTargets < 0 {
		opts.MaxTargets = def.MaxTargetsPerRun
	}
	return opts
}
