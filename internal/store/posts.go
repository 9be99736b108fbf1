package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pvandamm/misinfowatch/internal/scoring"
)

// AddPost inserts a newly collected post with status queued and returns its
// id. Missing optional fields are fine; the only failure mode is a storage
// fault.
func (s *Store) AddPost(p NewPost) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO posts (target_name, url, author, post_timestamp,
			text_content, screenshot_path, status, collected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.TargetName, p.URL, p.Author, p.PostTimestamp,
		p.TextContent, p.ScreenshotPath, StatusQueued, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert post: %w", err)
	}
	return res.LastInsertId()
}

// UpdatePost applies the set fields of upd to the post with the given id.
// Status, score and drafts are validated; an update with no fields set is a
// no-op.
func (s *Store) UpdatePost(id int64, upd PostUpdate) error {
	var sets []string
	var args []any

	if upd.Status != nil {
		if !ValidStatus(*upd.Status) {
			return fmt.Errorf("invalid status %q", *upd.Status)
		}
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.MisinfoScore != nil {
		if *upd.MisinfoScore < 0 || *upd.MisinfoScore > 100 {
			return fmt.Errorf("misinfo_score %d out of range [0,100]", *upd.MisinfoScore)
		}
		sets = append(sets, "misinfo_score = ?")
		args = append(args, *upd.MisinfoScore)
	}
	if upd.Tags != nil {
		data, err := json.Marshal(*upd.Tags)
		if err != nil {
			return err
		}
		sets = append(sets, "tags = ?")
		args = append(args, string(data))
	}
	if upd.Rationale != nil {
		sets = append(sets, "rationale = ?")
		args = append(args, *upd.Rationale)
	}
	if upd.FactCheckQuestions != nil {
		data, err := json.Marshal(*upd.FactCheckQuestions)
		if err != nil {
			return err
		}
		sets = append(sets, "fact_check_questions = ?")
		args = append(args, string(data))
	}
	if upd.Drafts != nil {
		if len(*upd.Drafts) != 3 {
			return fmt.Errorf("drafts must have exactly 3 entries, got %d", len(*upd.Drafts))
		}
		data, err := json.Marshal(*upd.Drafts)
		if err != nil {
			return err
		}
		sets = append(sets, "drafts = ?")
		args = append(args, string(data))
	}
	if upd.URL != nil {
		sets = append(sets, "url = ?")
		args = append(args, *upd.URL)
	}
	if upd.Author != nil {
		sets = append(sets, "author = ?")
		args = append(args, *upd.Author)
	}
	if upd.PostTimestamp != nil {
		sets = append(sets, "post_timestamp = ?")
		args = append(args, *upd.PostTimestamp)
	}
	if upd.TextContent != nil {
		sets = append(sets, "text_content = ?")
		args = append(args, *upd.TextContent)
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := "UPDATE posts SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update post %d: %w", id, err)
	}
	return nil
}

// GetPost returns the post with the given id, or nil if it does not exist.
func (s *Store) GetPost(id int64) (*Post, error) {
	row := s.db.QueryRow(selectColumns+" FROM posts WHERE id = ?", id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPosts returns posts matching the filter, all conditions AND-combined.
func (s *Store) ListPosts(f Filter) ([]Post, error) {
	query := selectColumns + " FROM posts WHERE 1=1"
	var args []any

	if f.Status != nil {
		if !ValidStatus(*f.Status) {
			return nil, fmt.Errorf("invalid status filter %q", *f.Status)
		}
		query += " AND status = ?"
		args = append(args, *f.Status)
	}
	if f.MinScore != nil {
		query += " AND misinfo_score >= ?"
		args = append(args, *f.MinScore)
	}
	if f.MaxScore != nil {
		query += " AND misinfo_score <= ?"
		args = append(args, *f.MaxScore)
	}
	if f.Unscored {
		query += " AND misinfo_score IS NULL"
	}
	if f.TargetName != "" {
		query += " AND target_name = ?"
		args = append(args, f.TargetName)
	}
	if f.SearchTerm != "" {
		query += " AND (text_content LIKE ? OR author LIKE ?)"
		like := "%" + f.SearchTerm + "%"
		args = append(args, like, like)
	}

	orderBy := f.OrderBy
	if orderBy == "" {
		orderBy = "collected_at"
	}
	switch orderBy {
	case "collected_at", "misinfo_score", "id", "target_name":
	default:
		return nil, fmt.Errorf("invalid order_by column %q", f.OrderBy)
	}
	orderDir := strings.ToUpper(f.OrderDir)
	if orderDir == "" {
		orderDir = "DESC"
	}
	if orderDir != "ASC" && orderDir != "DESC" {
		return nil, fmt.Errorf("invalid order_dir %q", f.OrderDir)
	}
	query += " ORDER BY " + orderBy + " " + orderDir

	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// CountPosts returns the number of posts matching the given criteria. Nil
// criteria are not applied.
func (s *Store) CountPosts(status *Status, minScore, maxScore *int) (int, error) {
	query := "SELECT COUNT(*) FROM posts WHERE 1=1"
	var args []any

	if status != nil {
		if !ValidStatus(*status) {
			return 0, fmt.Errorf("invalid status filter %q", *status)
		}
		query += " AND status = ?"
		args = append(args, *status)
	}
	if minScore != nil {
		query += " AND misinfo_score >= ?"
		args = append(args, *minScore)
	}
	if maxScore != nil {
		query += " AND misinfo_score <= ?"
		args = append(args, *maxScore)
	}

	var count int
	err := s.db.QueryRow(query, args...).Scan(&count)
	return count, err
}

// DeletePost removes a post and its screenshot artifact. Deleting a missing
// id is a no-op.
func (s *Store) DeletePost(id int64) error {
	p, err := s.GetPost(id)
	if err != nil {
		return err
	}
	if p == nil {
		return nil
	}

	if p.ScreenshotPath != nil && s.screenshotsDir != "" {
		file := filepath.Join(s.screenshotsDir, filepath.Base(*p.ScreenshotPath))
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove screenshot for post %d: %w", id, err)
		}
	}

	_, err = s.db.Exec("DELETE FROM posts WHERE id = ?", id)
	return err
}

// Stats returns queue totals, per-status counts, and the score distribution.
// The bucket edges come from the scoring thresholds so the dashboard buckets
// and the scorer's semantics cannot drift apart.
func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{ByStatus: make(map[Status]int)}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&stats.Total); err != nil {
		return nil, err
	}

	rows, err := s.db.Query("SELECT status, COUNT(*) FROM posts GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var st Status
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		stats.ByStatus[st] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = s.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN misinfo_score >= ? THEN 1 END),
			COUNT(CASE WHEN misinfo_score >= ? AND misinfo_score < ? THEN 1 END),
			COUNT(CASE WHEN misinfo_score < ? THEN 1 END),
			COUNT(CASE WHEN misinfo_score IS NULL THEN 1 END)
		FROM posts
	`, scoring.ThresholdHigh, scoring.ThresholdMedium, scoring.ThresholdHigh, scoring.ThresholdMedium).Scan(
		&stats.ScoreDistribution.High,
		&stats.ScoreDistribution.Medium,
		&stats.ScoreDistribution.Low,
		&stats.ScoreDistribution.Unscored,
	)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

const selectColumns = `SELECT id, target_name, url, author, post_timestamp,
	text_content, screenshot_path, status, misinfo_score, tags, rationale,
	fact_check_questions, drafts, collected_at`

// scannable covers *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanPost(row scannable) (*Post, error) {
	var p Post
	var url, author, postTS, screenshot sql.NullString
	var score sql.NullInt64
	var tagsJSON, questionsJSON, draftsJSON sql.NullString

	err := row.Scan(
		&p.ID, &p.TargetName, &url, &author, &postTS,
		&p.TextContent, &screenshot, &p.Status, &score, &tagsJSON,
		&p.Rationale, &questionsJSON, &draftsJSON, &p.CollectedAt,
	)
	if err != nil {
		return nil, err
	}

	p.URL = nullableString(url)
	p.Author = nullableString(author)
	p.PostTimestamp = nullableString(postTS)
	p.ScreenshotPath = nullableString(screenshot)
	if score.Valid {
		v := int(score.Int64)
		p.MisinfoScore = &v
	}
	if tagsJSON.Valid && tagsJSON.String != "" {
		json.Unmarshal([]byte(tagsJSON.String), &p.Tags)
	}
	if questionsJSON.Valid && questionsJSON.String != "" {
		json.Unmarshal([]byte(questionsJSON.String), &p.FactCheckQuestions)
	}
	if draftsJSON.Valid && draftsJSON.String != "" {
		json.Unmarshal([]byte(draftsJSON.String), &p.Drafts)
	}

	return &p, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
