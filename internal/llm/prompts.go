package llm

import (
	"fmt"
	"strings"

	"github.com/truelens/truelens/internal/model"
	"github.com/truelens/truelens/internal/rules"
)

const extractionSystemPrompt = "You are a precise fact-checking assistant that extracts verifiable claims and suspicious terms from captured screen and audio content."

const verificationSystemPrompt = "You are a strict fact-checker that verifies claims using only the provided evidence snippets from authoritative sources."

// BuildExtractionPrompt constructs the claim-extraction prompt from session
// entries, the media-analysis context, and the flag definitions.
func BuildExtractionPrompt(entries []model.Entry, mediaCtx *model.MediaContext, defs []rules.FlagDefinition) string {
	var b strings.Builder

	b.WriteString(`Your task is two-fold:
1. Extract verifiable factual claims from the text.
2. Identify specific terms/phrases that match the provided suspicious flag definitions.

INPUT TEXT:
`)
	b.WriteString(formatEntries(entries))

	b.WriteString("\n\nMEDIA ANALYSIS CONTEXT:\n")
	b.WriteString(formatMediaContext(mediaCtx))

	b.WriteString("\n\nSUSPICIOUS FLAG DEFINITIONS:\n")
	b.WriteString(formatFlagDefinitions(defs))

	b.WriteString(`

RULES FOR CLAIMS:
- Extract statements of fact (events, stats, definitions).
- IGNORE opinions, questions, greetings.
- IGNORE metadata like "Retweets", "Likes", timestamps, or device info.
- IGNORE user handles (e.g. @username) unless they are the subject of the claim.
- Use Media Analysis context to extract claims about image origin/context.

RULES FOR FLAGS:
- Identify terms matching the flag definitions exactly.
- Cite the "term" containing the suspicious content.

RETURN JSON format ONLY:
{
  "claims": [
    {
      "claim": "exact text of claim",
      "domain": "general/medical/political/etc",
      "source_entry_ids": ["id1"]
    }
  ],
  "flagged_terms": [
    {
      "term": "suspicious phrase",
      "flag_name": "FLAG_NAME_FROM_LIST",
      "flag_category": "category_from_list",
      "entry_id": "id1",
      "context": "surrounding context"
    }
  ]
}
`)

	return b.String()
}

// BuildVerificationPrompt constructs the verification prompt from the claim
// and its domain-restricted evidence snippets.
func BuildVerificationPrompt(claimText, domain string, evidence []model.EvidenceSnippet) string {
	var snippets strings.Builder
	for i, s := range evidence {
		fmt.Fprintf(&snippets, "[%d] Source: %s\nSnippet: %s\n\n", i+1, s.Source, s.Snippet)
	}

	return fmt.Sprintf(`Verify a claim using ONLY the provided evidence snippets from authoritative sources.

CLAIM: %q
DOMAIN: %s

EVIDENCE SNIPPETS (from trusted sources):
%s
TASK:
1. Analyze the snippets to determine if they confirm, contradict, or provide context to the claim.
2. Determine the verdict based on this logic:
   - TRUE: Evidence explicitly confirms the claim is factually accurate.
   - FALSE: Evidence explicitly contradicts the claim.
   - MISLEADING: Evidence shows the claim is missing context, exaggerated, or technically true but deceptive.
   - UNVERIFIED: The snippets are irrelevant, vague, or do not directly address the core claim.

RULES:
- DO NOT use external knowledge. Use ONLY the provided snippets.
- If snippets mention the topic but don't prove/disprove the specific claim -> UNVERIFIED.
- Cite the specific sources (e.g. "who.int", "cdc.gov") that support your verdict.

RETURN JSON ONLY:
{
  "verdict": "TRUE" | "FALSE" | "MISLEADING" | "UNVERIFIED",
  "reasoning": "Concise explanation citing the evidence.",
  "sources_cited": ["source1", "source2"]
}
`, claimText, domain, snippets.String())
}

func formatEntries(entries []model.Entry) string {
	var lines []string
	for _, e := range entries {
		text := strings.TrimSpace(e.Text)
		if text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s]: %s", e.ID, text))
	}
	if len(lines) == 0 {
		return "(no text entries)"
	}
	return strings.Join(lines, "\n")
}

func formatMediaContext(mc *model.MediaContext) string {
	if mc == nil {
		return "No media analysis available."
	}

	var lines []string
	if n := len(mc.Context.MatchedSources); n > 0 {
		lines = append(lines, fmt.Sprintf("Reverse search found %d matches.", n))
		for i, m := range mc.Context.MatchedSources {
			if i >= 3 {
				break
			}
			lines = append(lines, fmt.Sprintf("- Source %d: %s (%s) - %s", i+1, m.Title, m.Domain, m.Date))
		}
	}
	if mc.Context.OldestKnownUse != "" {
		lines = append(lines, fmt.Sprintf("Oldest known use of this image: %s", mc.Context.OldestKnownUse))
	}

	if len(lines) == 0 {
		return "No significant media context found."
	}
	return strings.Join(lines, "\n")
}

func formatFlagDefinitions(defs []rules.FlagDefinition) string {
	if len(defs) == 0 {
		return "No flags configured."
	}
	var lines []string
	for _, d := range defs {
		lines = append(lines, fmt.Sprintf("- %s: %s (Category: %s)", d.Name, d.Description, d.Category))
	}
	return strings.Join(lines, "\n")
}
