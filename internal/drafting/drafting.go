// Package drafting produces candidate rebuttals for human review. Drafting
// never fails: provider trouble falls back to deterministic templates, so the
// caller always gets exactly three drafts (short punchy, factual calm, snarky
// but appropriate). Nothing here ever posts anywhere.
package drafting

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/pvandamm/misinfowatch/internal/llm"
)

// DraftCount is the fixed number of rebuttal drafts per post.
const DraftCount = 3

// Drafter generates rebuttal drafts, optionally through a provider.
type Drafter struct {
	provider llm.Provider
}

// NewDrafter creates a drafter. A nil or mock provider means template-only.
func NewDrafter(provider llm.Provider) *Drafter {
	return &Drafter{provider: provider}
}

// Generate returns exactly three non-empty drafts for the post.
func (d *Drafter) Generate(ctx context.Context, postText string, tags []string, rationale string) []string {
	if postText == "" {
		return []string{
			"No content to respond to.",
			"No content to respond to.",
			"No content to respond to.",
		}
	}

	if !llm.Disabled(d.provider) {
		prompt := buildDraftingPrompt(postText, tags, rationale)
		raw, err := d.provider.Analyze(ctx, prompt)
		if err == nil {
			return parseDrafts(raw)
		}
		log.Printf("LLM drafting failed, using templates: %v", err)
	}

	return templateDrafts(postText, tags)
}

// Fragments under this length are treated as separator debris, not drafts.
const minFragmentLen = 20

var draftSeparator = regexp.MustCompile(`---+|DRAFT \d+[:\-]`)

// parseDrafts splits a provider reply into three drafts. Short fragments are
// dropped; one or two survivors are padded by repeating the first; zero
// survivors yields the fixed fallback set.
func parseDrafts(response string) []string {
	parts := draftSeparator.Split(response, -1)

	var drafts []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) > minFragmentLen {
			drafts = append(drafts, p)
		}
	}

	if len(drafts) >= DraftCount {
		return drafts[:DraftCount]
	}
	if len(drafts) > 0 {
		for len(drafts) < DraftCount {
			drafts = append(drafts, drafts[0])
		}
		return drafts
	}

	return []string{
		"This claim needs verification. Do you have credible sources?",
		"I'm skeptical of this claim. Here's what we actually know based on reliable sources.",
		"Cool story, but gonna need some actual evidence on this one.",
	}
}

// templateDrafts builds the rule-based fallback set. Selection is keyed on
// the text length so identical input always yields identical drafts.
func templateDrafts(postText string, tags []string) []string {
	textLen := len([]rune(postText))
	tagged := func(t string) bool {
		for _, tag := range tags {
			if tag == t {
				return true
			}
		}
		return false
	}

	firstTag := "misinformation"
	if len(tags) > 0 {
		firstTag = tags[0]
	}

	draft1Options := []string{
		fmt.Sprintf("Got a source for that? This sounds like %s.", firstTag),
		"That's not accurate. Please verify your sources before sharing.",
		"Hold up. Where's the evidence for this claim?",
		"This has been debunked multiple times. Check reputable fact-checkers.",
	}
	draft1 := draft1Options[textLen%len(draft1Options)]

	var draft2 string
	switch {
	case tagged("vague_sources") || tagged("conspiracy_theory"):
		draft2 = "I'd like to see the evidence for this claim. What we know from credible sources is often different from what gets shared on social media. What we don't know is whether this specific claim has been verified by reputable fact-checkers. Can you share your sources?"
	case tagged("sensational_language"):
		draft2 = "This appears to use sensational language to grab attention. When checking claims like these, it's important to look for peer-reviewed research, statements from domain experts, and fact-checker analysis. What credible sources support this?"
	default:
		draft2 = "This claim warrants skepticism. What we know is that extraordinary claims require extraordinary evidence. What we don't know is whether this has been verified by reliable sources. I'd encourage everyone to fact-check before sharing."
	}

	draft3Options := []string{
		"My dude, you can't just say stuff like this without receipts. Where's the actual proof?",
		"Yeah, I'm gonna need to see some real sources here because this sounds completely made up.",
		"Love how this conveniently has zero credible sources. Almost like it's not true. Wild.",
		"This is the kind of thing that sounds dramatic but falls apart the second you actually look into it. Try fact-checking.",
	}
	var draft3 string
	switch {
	case tagged("conspiracy_theory"):
		draft3 = "Okay so this is conspiracy theory territory. If there's actual evidence, please share it from credible sources. Otherwise this is just creative fiction."
	case tagged("emotional_manipulation"):
		draft3 = "The emotional manipulation here is pretty obvious. Real facts don't need this much drama. Got any actual evidence?"
	default:
		draft3 = draft3Options[textLen%len(draft3Options)]
	}

	return []string{draft1, draft2, draft3}
}

// buildDraftingPrompt asks the provider for three drafts in fixed styles,
// separated by a delimiter parseDrafts understands.
func buildDraftingPrompt(postText string, tags []string, rationale string) string {
	tagsStr := "none identified"
	if len(tags) > 0 {
		tagsStr = strings.Join(tags, ", ")
	}

	var sb strings.Builder
	sb.WriteString("Generate 3 different rebuttal drafts for this social media post that contains potential misinformation.\n\n")
	sb.WriteString("Original post:\n")
	sb.WriteString(truncateRunes(postText, 800))
	sb.WriteString("\n\n")
	sb.WriteString("Analysis: " + rationale + "\n")
	sb.WriteString("Tags: " + tagsStr + "\n\n")
	sb.WriteString("Generate exactly 3 drafts with these styles:\n\n")
	sb.WriteString("DRAFT 1 - Short Punchy:\nA brief, direct response (2-3 sentences max). Cut through the nonsense quickly. No fluff.\n\n")
	sb.WriteString("DRAFT 2 - Factual Calm:\nA measured, evidence-based response. Use \"what we know / what we don't know\" framework. Calm and educational tone. 3-4 sentences.\n\n")
	sb.WriteString("DRAFT 3 - Snarky But Appropriate:\nA response with personality and a bit of snark, but NO slurs, threats, or personal attacks. Sound like a real person, not corporate. Still fact-based. 3-4 sentences.\n\n")
	sb.WriteString("IMPORTANT FORMATTING:\n")
	sb.WriteString("- NO bullet points or dashes\n")
	sb.WriteString("- Use short paragraphs only\n")
	sb.WriteString("- Sound natural and conversational\n")
	sb.WriteString("- Separate each draft with \"---\"\n\n")
	sb.WriteString("Generate the 3 drafts now:")

	return sb.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
