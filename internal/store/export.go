package store

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// exportColumns is the fixed CSV column order. Tags are flattened to a
// comma-joined string; drafts and questions are not exported.
var exportColumns = []string{
	"id", "target_name", "url", "author", "post_timestamp",
	"text_content", "status", "misinfo_score", "tags",
	"rationale", "collected_at",
}

// ExportCSV writes the given posts to w in the fixed tabular layout.
func ExportCSV(w io.Writer, posts []Post) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportColumns); err != nil {
		return err
	}

	for _, p := range posts {
		score := ""
		if p.MisinfoScore != nil {
			score = strconv.Itoa(*p.MisinfoScore)
		}
		row := []string{
			strconv.FormatInt(p.ID, 10),
			p.TargetName,
			deref(p.URL),
			deref(p.Author),
			deref(p.PostTimestamp),
			p.TextContent,
			string(p.Status),
			score,
			strings.Join(p.Tags, ", "),
			p.Rationale,
			p.CollectedAt.Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
