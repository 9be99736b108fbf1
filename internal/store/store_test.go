package store

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// testStore opens a fresh store in a temp dir with a screenshots directory.
func testStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "posts.db"), filepath.Join(dir, "screenshots"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func addPost(t *testing.T, s *Store, target, text string) int64 {
	t.Helper()
	id, err := s.AddPost(NewPost{TargetName: target, TextContent: text})
	require.NoError(t, err)
	return id
}

func TestAddAndGetPost(t *testing.T) {
	s := testStore(t)

	id, err := s.AddPost(NewPost{
		TargetName:  "Local News Page",
		URL:         strPtr("https://www.facebook.com/posts/123"),
		Author:      strPtr("Jane Poster"),
		TextContent: "Some collected post text",
	})
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	p, err := s.GetPost(id)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, "Local News Page", p.TargetName)
	require.Equal(t, "Some collected post text", p.TextContent)
	require.Equal(t, StatusQueued, p.Status)
	require.Nil(t, p.MisinfoScore)
	require.NotNil(t, p.URL)
	require.Equal(t, "https://www.facebook.com/posts/123", *p.URL)
	require.False(t, p.CollectedAt.IsZero())
}

func TestGetMissingPost(t *testing.T) {
	s := testStore(t)
	p, err := s.GetPost(9999)
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestUpdatePostPartial(t *testing.T) {
	s := testStore(t)
	id := addPost(t, s, "page", "original text")

	score := 68
	tags := []string{"sensational_language", "conspiracy_theory"}
	require.NoError(t, s.UpdatePost(id, PostUpdate{
		MisinfoScore: &score,
		Tags:         &tags,
		Rationale:    strPtr("Uses sensational framing"),
	}))

	p, err := s.GetPost(id)
	require.NoError(t, err)
	require.Equal(t, 68, *p.MisinfoScore)
	require.Equal(t, tags, p.Tags)
	require.Equal(t, "Uses sensational framing", p.Rationale)
	// Untouched fields survive.
	require.Equal(t, "original text", p.TextContent)
	require.Equal(t, StatusQueued, p.Status)
}

func TestUpdatePostValidation(t *testing.T) {
	s := testStore(t)
	id := addPost(t, s, "page", "text")

	bad := Status("archived")
	require.Error(t, s.UpdatePost(id, PostUpdate{Status: &bad}))

	require.Error(t, s.UpdatePost(id, PostUpdate{MisinfoScore: intPtr(101)}))
	require.Error(t, s.UpdatePost(id, PostUpdate{MisinfoScore: intPtr(-1)}))

	two := []string{"a", "b"}
	require.Error(t, s.UpdatePost(id, PostUpdate{Drafts: &two}))

	// Empty update is a no-op, not an error.
	require.NoError(t, s.UpdatePost(id, PostUpdate{}))
}

func TestUpdatePostDrafts(t *testing.T) {
	s := testStore(t)
	id := addPost(t, s, "page", "text")

	drafts := []string{"short punchy", "factual calm", "snarky but appropriate"}
	require.NoError(t, s.UpdatePost(id, PostUpdate{Drafts: &drafts}))

	p, err := s.GetPost(id)
	require.NoError(t, err)
	require.Equal(t, drafts, p.Drafts)
}

func TestListPostsFilters(t *testing.T) {
	s := testStore(t)

	id1 := addPost(t, s, "page-a", "plain unscored post")
	id2 := addPost(t, s, "page-a", "high scoring post about the deep state")
	id3 := addPost(t, s, "page-b", "medium scoring post")

	require.NoError(t, s.UpdatePost(id2, PostUpdate{MisinfoScore: intPtr(85)}))
	require.NoError(t, s.UpdatePost(id3, PostUpdate{MisinfoScore: intPtr(50)}))
	done := StatusDone
	require.NoError(t, s.UpdatePost(id3, PostUpdate{Status: &done}))

	// Score floor must exclude unscored posts, not treat NULL as zero.
	posts, err := s.ListPosts(Filter{MinScore: intPtr(70)})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, id2, posts[0].ID)

	queued := StatusQueued
	posts, err = s.ListPosts(Filter{Status: &queued})
	require.NoError(t, err)
	require.Len(t, posts, 2)

	posts, err = s.ListPosts(Filter{Unscored: true})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, id1, posts[0].ID)

	posts, err = s.ListPosts(Filter{TargetName: "page-b"})
	require.NoError(t, err)
	require.Len(t, posts, 1)

	posts, err = s.ListPosts(Filter{SearchTerm: "deep state"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, id2, posts[0].ID)
}

func TestListPostsOrderAndLimit(t *testing.T) {
	s := testStore(t)
	for i := 0; i < 5; i++ {
		addPost(t, s, "page", strings.Repeat("x", 20+i))
	}

	posts, err := s.ListPosts(Filter{OrderBy: "id", OrderDir: "ASC", Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Less(t, posts[0].ID, posts[1].ID)

	_, err = s.ListPosts(Filter{OrderBy: "drop table"})
	require.Error(t, err)

	_, err = s.ListPosts(Filter{OrderDir: "sideways"})
	require.Error(t, err)
}

func TestDeletePostRemovesScreenshot(t *testing.T) {
	s := testStore(t)

	shot := "page_01HTEST.png"
	shotPath := filepath.Join(s.screenshotsDir, shot)
	require.NoError(t, os.WriteFile(shotPath, []byte("png"), 0644))

	id, err := s.AddPost(NewPost{TargetName: "page", TextContent: "text", ScreenshotPath: &shot})
	require.NoError(t, err)

	require.NoError(t, s.DeletePost(id))

	p, err := s.GetPost(id)
	require.NoError(t, err)
	require.Nil(t, p)

	_, err = os.Stat(shotPath)
	require.True(t, os.IsNotExist(err))

	// Deleting again is a no-op.
	require.NoError(t, s.DeletePost(id))
}

func TestStatsPartition(t *testing.T) {
	s := testStore(t)

	scores := []int{85, 70, 55, 40, 10}
	for i, sc := range scores {
		id := addPost(t, s, "page", strings.Repeat("p", 20+i))
		require.NoError(t, s.UpdatePost(id, PostUpdate{MisinfoScore: intPtr(sc)}))
	}
	addPost(t, s, "page", "never scored")

	stats, err := s.Stats()
	require.NoError(t, err)
	require.Equal(t, 6, stats.Total)
	require.Equal(t, 2, stats.ScoreDistribution.High)     // 85, 70
	require.Equal(t, 2, stats.ScoreDistribution.Medium)   // 55, 40
	require.Equal(t, 1, stats.ScoreDistribution.Low)      // 10
	require.Equal(t, 1, stats.ScoreDistribution.Unscored)

	sum := stats.ScoreDistribution.High + stats.ScoreDistribution.Medium +
		stats.ScoreDistribution.Low + stats.ScoreDistribution.Unscored
	require.Equal(t, stats.Total, sum)
	require.Equal(t, 6, stats.ByStatus[StatusQueued])
}

func TestCountPosts(t *testing.T) {
	s := testStore(t)
	id := addPost(t, s, "page", "first")
	addPost(t, s, "page", "second")
	require.NoError(t, s.UpdatePost(id, PostUpdate{MisinfoScore: intPtr(90)}))

	n, err := s.CountPosts(nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = s.CountPosts(nil, intPtr(70), nil)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestExportCSV(t *testing.T) {
	s := testStore(t)
	id := addPost(t, s, "page", "text, with a comma")
	tags := []string{"sensational_language", "vague_sources"}
	require.NoError(t, s.UpdatePost(id, PostUpdate{MisinfoScore: intPtr(72), Tags: &tags}))

	posts, err := s.ListPosts(Filter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, posts))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "id,target_name,url,author,post_timestamp,text_content,status,misinfo_score,tags,rationale,collected_at", lines[0])
	require.Contains(t, lines[1], `"text, with a comma"`)
	require.Contains(t, lines[1], "sensational_language, vague_sources")
	require.Contains(t, lines[1], "72")
}