package scoring

import (
	"fmt"
	"strings"
)

// buildScoringPrompt constructs the provider prompt for one post. The
// heuristic findings are included as context so the model can confirm or
// override them.
func buildScoringPrompt(text string, heuristicScore int, heuristicTags []string) string {
	var sb strings.Builder

	sb.WriteString("Analyze this social media post for misinformation indicators.\n\n")
	sb.WriteString("Post content:\n")
	sb.WriteString(truncateRunes(text, 1000))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Heuristic analysis found a score of %d/100 with tags: %s\n\n",
		heuristicScore, strings.Join(heuristicTags, ", ")))

	sb.WriteString("Provide your analysis as JSON with:\n")
	sb.WriteString("- score (0-100): likelihood of misinformation\n")
	sb.WriteString("- tags (array): descriptive tags like \"unverified_claim\", \"misleading_statistics\", etc.\n")
	sb.WriteString("- rationale (string): 1-2 sentences explaining the score\n")
	sb.WriteString("- fact_check_questions (array): 3 specific questions to verify claims\n\n")
	sb.WriteString("Respond with ONLY valid JSON, no other text.")

	return sb.String()
}
