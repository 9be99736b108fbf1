package collector

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pvandamm/misinfowatch/internal/scoring"
	"github.com/pvandamm/misinfowatch/internal/store"
)

// rescoreConcurrency bounds in-flight scoring calls so a batch of unscored
// posts does not hammer the LLM provider.
const rescoreConcurrency = 4

// RescorePending scores every post that has no misinfo score yet and writes
// the results back. Scoring runs concurrently; store writes stay sequential.
// Returns the number of posts scored.
func (c *Collector) RescorePending(ctx context.Context) (int, error) {
	posts, err := c.store.ListPosts(store.Filter{Unscored: true, OrderBy: "id", OrderDir: "ASC"})
	if err != nil {
		return 0, fmt.Errorf("failed to list unscored posts: %w", err)
	}
	if len(posts) == 0 {
		return 0, nil
	}

	c.progress(fmt.Sprintf("Rescoring %d unscored posts", len(posts)))

	results := make([]scoring.Result, len(posts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rescoreConcurrency)
	for i, p := range posts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.scorer.Score(gctx, p.TextContent)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	for i, p := range posts {
		if err := c.scoreUpdate(p.ID, results[i]); err != nil {
			return i, fmt.Errorf("failed to store score for post %d: %w", p.ID, err)
		}
	}

	return len(posts), nil
}
