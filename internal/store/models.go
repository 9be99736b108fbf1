package store

import "time"

// Status is the review state of a collected post. Posts enter the queue as
// StatusQueued and only move when a reviewer acts on them; nothing in the
// pipeline transitions a post automatically.
type Status string

const (
	StatusQueued        Status = "queued"
	StatusDone          Status = "done"
	StatusSkip          Status = "skip"
	StatusNeedsResearch Status = "needs_research"
)

// ValidStatus reports whether s is one of the four review states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusQueued, StatusDone, StatusSkip, StatusNeedsResearch:
		return true
	}
	return false
}

// Post represents a collected social media post and its review state
type Post struct {
	ID                 int64     `json:"id"`
	TargetName         string    `json:"target_name"`
	URL                *string   `json:"url"`
	Author             *string   `json:"author"`
	PostTimestamp      *string   `json:"post_timestamp"`
	TextContent        string    `json:"text_content"`
	ScreenshotPath     *string   `json:"screenshot_path"`
	Status             Status    `json:"status"`
	MisinfoScore       *int      `json:"misinfo_score"`
	Tags               []string  `json:"tags"`
	Rationale          string    `json:"rationale"`
	FactCheckQuestions []string  `json:"fact_check_questions"`
	Drafts             []string  `json:"drafts"` // nil until generated, then exactly 3
	CollectedAt        time.Time `json:"collected_at"`
}

// NewPost carries the fields known at collection time. Optional fields may be
// nil; AddPost never rejects a post for missing metadata.
type NewPost struct {
	TargetName     string
	URL            *string
	Author         *string
	PostTimestamp  *string
	TextContent    string
	ScreenshotPath *string
}

// PostUpdate is a partial update. Nil fields are left untouched.
type PostUpdate struct {
	Status             *Status
	MisinfoScore       *int
	Tags               *[]string
	Rationale          *string
	FactCheckQuestions *[]string
	Drafts             *[]string
	URL                *string
	Author             *string
	PostTimestamp      *string
	TextContent        *string
}

// Filter narrows ListPosts results. All set fields are AND-combined.
type Filter struct {
	Status     *Status
	MinScore   *int
	MaxScore   *int
	Unscored   bool // only posts with no score yet
	TargetName string
	SearchTerm string // substring match on text_content or author, case-insensitive
	Limit      int    // 0 = no limit
	Offset     int
	OrderBy    string // collected_at (default), misinfo_score, id, target_name
	OrderDir   string // ASC or DESC (default)
}

// Stats summarizes the review queue.
type Stats struct {
	Total             int               `json:"total"`
	ByStatus          map[Status]int    `json:"by_status"`
	ScoreDistribution ScoreDistribution `json:"score_distribution"`
}

// ScoreDistribution buckets posts by misinfo score. The high/medium edges
// mirror scoring.ThresholdHigh and scoring.ThresholdMedium; the four buckets
// partition the table exactly.
type ScoreDistribution struct {
	High     int `json:"high"`     // score >= 70
	Medium   int `json:"medium"`   // 40 <= score < 70
	Low      int `json:"low"`      // score < 40
	Unscored int `json:"unscored"` // score is NULL
}
