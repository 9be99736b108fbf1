// Package scoring computes a misinformation-likelihood score for a single
// text blob. The heuristic pass is pure and deterministic; when a real
// provider is configured its result is blended in, and any provider trouble
// degrades back to the heuristic result instead of failing the caller.
package scoring

import (
	"context"
	"log"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/pvandamm/misinfowatch/internal/llm"
)

// Score thresholds shared with the store's stats buckets. Changing one side
// without the other is a correctness bug, so the store reads these constants.
const (
	ThresholdHigh   = 70
	ThresholdMedium = 40
)

// Blend weights for heuristic vs provider score.
const (
	blendHeuristicWeight = 0.4
	blendProviderWeight  = 0.6
)

// Result holds the score and supporting explanation for one post.
type Result struct {
	Score              int      `json:"score"` // 0-100
	Tags               []string `json:"tags"`
	Rationale          string   `json:"rationale"`
	FactCheckQuestions []string `json:"fact_check_questions"` // at most 3
}

// Scorer scores posts, optionally blending in a text-analysis provider.
type Scorer struct {
	provider llm.Provider
}

// NewScorer creates a scorer. A nil or mock provider means heuristic-only.
func NewScorer(provider llm.Provider) *Scorer {
	return &Scorer{provider: provider}
}

// Score computes the misinformation score for text. It always returns a
// usable result; provider failures only cost the richer analysis.
func (s *Scorer) Score(ctx context.Context, text string) Result {
	if text == "" {
		return Result{
			Score:     0,
			Rationale: "No text content to analyze",
		}
	}

	heuristicScore, heuristicTags := Heuristic(text)

	if !llm.Disabled(s.provider) {
		prompt := buildScoringPrompt(text, heuristicScore, heuristicTags)
		raw, err := s.provider.Analyze(ctx, prompt)
		if err == nil {
			analysis, perr := llm.ParseAnalysis(raw)
			if perr != nil {
				// Defensive substitute for the provider's share of the
				// blend; the tag keeps the degradation auditable.
				analysis = &llm.Analysis{
					Score:     50,
					Tags:      []string{"llm_parse_error"},
					Rationale: "Failed to parse LLM response",
				}
			}
			final := int(math.Round(blendHeuristicWeight*float64(heuristicScore) + blendProviderWeight*float64(analysis.Score)))
			return Result{
				Score:              clamp(final),
				Tags:               union(heuristicTags, analysis.Tags),
				Rationale:          analysis.Rationale,
				FactCheckQuestions: capQuestions(analysis.FactCheckQuestions),
			}
		}
		log.Printf("LLM scoring failed, using heuristics only: %v", err)
	}

	return Result{
		Score:              heuristicScore,
		Tags:               heuristicTags,
		Rationale:          heuristicRationale(heuristicTags),
		FactCheckQuestions: heuristicQuestions(text, heuristicTags),
	}
}

// Heuristic runs the pattern rules over text and returns the additive score
// (clamped to [0,100]) and the triggered tags in rule order.
func Heuristic(text string) (int, []string) {
	lower := strings.ToLower(text)
	score := 0
	var tags []string

	// Excessive capitalization: uppercase letters over total length.
	runes := []rune(text)
	upper := 0
	for _, r := range runes {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if float64(upper)/float64(max(len(runes), 1)) > 0.3 {
		score += 15
		tags = append(tags, "excessive_caps")
	}

	// Excessive punctuation.
	if n := strings.Count(text, "!"); n > 3 {
		score += min(10+n*2, 25)
		tags = append(tags, "excessive_punctuation")
	}

	// Sensational phrases score once, on the first match.
	if matchesAny(lower, sensationalPhrases) {
		score += 20
		tags = append(tags, "sensational_language")
	}

	if matchesAny(lower, vagueSourcePhrases) {
		score += 15
		tags = append(tags, "vague_sources")
	}

	// Conspiracy markers stack per distinct pattern, capped.
	conspiracy := 0
	for _, re := range conspiracyMarkers {
		if re.MatchString(lower) {
			conspiracy++
		}
	}
	if conspiracy > 0 {
		score += min(conspiracy*15, 30)
		tags = append(tags, "conspiracy_theory")
	}

	if matchesAny(lower, urgencyPhrases) {
		score += 10
		tags = append(tags, "urgency_manipulation")
	}

	emotion := 0
	for _, re := range emotionWords {
		if re.MatchString(lower) {
			emotion++
		}
	}
	if emotion >= 2 {
		score += 15
		tags = append(tags, "emotional_manipulation")
	}

	return clamp(score), tags
}

var tagExplanations = map[string]string{
	"excessive_caps":         "Contains excessive capitalization",
	"excessive_punctuation":  "Uses excessive punctuation marks",
	"sensational_language":   "Uses sensational or clickbait language",
	"vague_sources":          "Lacks specific credible sources",
	"conspiracy_theory":      "Contains conspiracy theory markers",
	"urgency_manipulation":   "Uses urgency to pressure action",
	"emotional_manipulation": "Uses emotional manipulation tactics",
}

func heuristicRationale(tags []string) string {
	if len(tags) == 0 {
		return "No significant misinformation indicators detected."
	}

	n := min(len(tags), 3)
	explanations := make([]string, 0, n)
	for _, tag := range tags[:n] {
		if expl, ok := tagExplanations[tag]; ok {
			explanations = append(explanations, expl)
		} else {
			explanations = append(explanations, tag)
		}
	}
	return strings.Join(explanations, ". ") + "."
}

func heuristicQuestions(text string, tags []string) []string {
	var questions []string
	tagged := func(t string) bool {
		for _, tag := range tags {
			if tag == t {
				return true
			}
		}
		return false
	}

	if tagged("vague_sources") {
		questions = append(questions, "What are the specific, named sources for these claims?")
	}
	if tagged("conspiracy_theory") || tagged("sensational_language") {
		questions = append(questions,
			"What credible evidence supports this claim?",
			"Have mainstream fact-checkers investigated this?")
	}

	// Look for a strong assertion in the opening sentences and ask the
	// reviewer to verify that specific one.
	sentences := strings.Split(text, ".")
	for i, sent := range sentences {
		if i >= 2 {
			break
		}
		lower := strings.ToLower(sent)
		if strings.Contains(lower, "proof") || strings.Contains(lower, "evidence") ||
			strings.Contains(lower, "study") || strings.Contains(lower, "research") {
			questions = append(questions, "Can you verify: "+truncateRunes(strings.TrimSpace(sent), 100)+"?")
			break
		}
	}

	return capQuestions(questions)
}

func capQuestions(qs []string) []string {
	if len(qs) > 3 {
		return qs[:3]
	}
	return qs
}

func matchesAny(lower string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
