package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Analysis is the fixed-shape result a provider is asked to produce for a
// scoring prompt.
type Analysis struct {
	Score              int      `json:"score"`
	Tags               []string `json:"tags"`
	Rationale          string   `json:"rationale"`
	FactCheckQuestions []string `json:"fact_check_questions"`
}

// ParseError indicates the provider's reply did not contain a usable JSON
// object. Callers substitute their own defensive default.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "failed to parse provider response: " + e.Reason
}

// Providers wrap JSON in prose or markdown fences, so we scan for the first
// brace-delimited span instead of unmarshaling the whole reply.
var objectRe = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractObject returns the first JSON-object-looking span in text.
func ExtractObject(text string) (string, bool) {
	m := objectRe.FindString(text)
	return m, m != ""
}

// ParseAnalysis extracts and decodes an Analysis from a raw provider reply.
func ParseAnalysis(raw string) (*Analysis, error) {
	obj, ok := ExtractObject(raw)
	if !ok {
		return nil, &ParseError{Reason: "no JSON object in response"}
	}

	// Scores come back as floats from some models.
	var decoded struct {
		Score              float64  `json:"score"`
		Tags               []string `json:"tags"`
		Rationale          string   `json:"rationale"`
		FactCheckQuestions []string `json:"fact_check_questions"`
	}
	if err := json.Unmarshal([]byte(obj), &decoded); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}

	score := int(decoded.Score)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return &Analysis{
		Score:              score,
		Tags:               decoded.Tags,
		Rationale:          decoded.Rationale,
		FactCheckQuestions: decoded.FactCheckQuestions,
	}, nil
}
