// Package explain implements Stage 5: deterministic composition of the
// human-readable explanation and the final per-claim output records.
package explain

import (
	"fmt"
	"strings"

	"github.com/truelens/truelens/internal/model"
	"github.com/truelens/truelens/internal/rules"
)

// Explainer composes explanations from upstream artifacts. It makes no
// backend calls and tolerates absent optional fields by omitting their
// paragraph.
type Explainer struct {
	defs map[string]rules.FlagDefinition
}

// NewExplainer creates the explanation stage.
func NewExplainer() *Explainer {
	return &Explainer{defs: rules.DefinitionsByName()}
}

var verdictClosings = map[model.Verdict]string{
	model.VerdictTrue:       "The claim is supported by authoritative sources.",
	model.VerdictFalse:      "The claim is contradicted by authoritative sources.",
	model.VerdictMisleading: "The claim contains some truth but is presented in a misleading way.",
	model.VerdictUnverified: "Insufficient authoritative information to determine the truth of this claim.",
	model.VerdictSkipped:    "Verification was skipped due to low trust score.",
}

// Results maps verified claims to final output records.
func (e *Explainer) Results(claims []*model.Claim, mediaCtx *model.MediaContext) []model.ClaimResult {
	results := make([]model.ClaimResult, 0, len(claims))
	for _, claim := range claims {
		verdict := claim.Verdict
		if verdict == "" {
			verdict = model.VerdictUnverified
		}
		sources := claim.SourcesCited
		if sources == nil {
			sources = []string{}
		}

		results = append(results, model.ClaimResult{
			Claim:       claim.Text,
			Verdict:     verdict,
			TrustScore:  claim.TrustScore,
			Flags:       claim.Flags,
			Explanation: e.Explain(claim, mediaCtx),
			Sources:     sources,
			Metadata: model.ClaimMetadata{
				ClaimID:        claim.ID,
				Domain:         claim.Domain,
				SourceEntryIDs: claim.SourceEntryIDs,
				SemanticMatch:  claim.SemanticMatch,
				MediaAnalysis:  mediaCtx,
			},
		})
	}
	return results
}

// Explain builds the multi-part explanation for one claim.
func (e *Explainer) Explain(claim *model.Claim, mediaCtx *model.MediaContext) string {
	var parts []string

	if media := mediaNarrative(mediaCtx); media != "" {
		parts = append(parts, media)
	}

	parts = append(parts, trustNarrative(claim.TrustScore))

	if len(claim.Flags) > 0 {
		parts = append(parts, "\n\nSuspicion indicators:")
		for _, flag := range claim.Flags {
			def, ok := e.defs[flag]
			if !ok {
				def = rules.FlagDefinition{Description: "Unknown flag"}
			}
			parts = append(parts, fmt.Sprintf("\n- %s: %s (-%d points)", flag, def.Description, def.Penalty))
		}
	}

	if m := claim.SemanticMatch; m != nil {
		parts = append(parts, fmt.Sprintf(
			"\n\nThis claim is semantically similar (similarity: %.2f%%) to a previously debunked claim: %q. Debunked by: %s.",
			m.Similarity*100, m.MatchedClaim, strings.Join(m.DebunkedBy, ", ")))
	}

	if claim.VerificationReasoning != "" {
		parts = append(parts, fmt.Sprintf("\n\nVerification: %s", claim.VerificationReasoning))
	}

	verdict := claim.Verdict
	if verdict == "" {
		verdict = model.VerdictUnverified
	}
	parts = append(parts, fmt.Sprintf("\n\nFinal verdict: %s. %s", verdict, verdictClosings[verdict]))

	return strings.Join(parts, "")
}

// trustNarrative returns the fixed wording for the claim's trust band.
func trustNarrative(score int) string {
	switch {
	case score < 40:
		return fmt.Sprintf("This claim has a very low trust score (%d/100) and was not verified. Multiple suspicion indicators were detected.", score)
	case score < 70:
		return fmt.Sprintf("This claim has a moderate trust score (%d/100). Some suspicion indicators were detected.", score)
	default:
		return fmt.Sprintf("This claim has a high trust score (%d/100). Few or no suspicion indicators were detected.", score)
	}
}

// mediaNarrative renders the media-analysis paragraph, or "" when neither
// repetition nor reverse-search data is present.
func mediaNarrative(mc *model.MediaContext) string {
	if mc == nil {
		return ""
	}

	var lines []string

	if rep := mc.Repetition; rep.SeenBefore {
		lines = append(lines, "\n\nMedia Analysis:", "This media has been seen before in our system.")
		if rep.FirstSeen != "" {
			lines = append(lines, fmt.Sprintf("First seen: %s", rep.FirstSeen))
		}
		if len(rep.Platforms) > 0 {
			lines = append(lines, fmt.Sprintf("Previously seen on: %s", strings.Join(rep.Platforms, ", ")))
		}
		if rep.SimilarityScore > 0 && rep.SimilarityScore < 1.0 {
			lines = append(lines, fmt.Sprintf("Similarity score: %.1f%% (suggesting possible editing or cropping)", rep.SimilarityScore*100))
		}
	}

	cv := mc.Context
	if cv.OldestKnownUse != "" || len(cv.MatchedSources) > 0 {
		if len(lines) == 0 {
			lines = append(lines, "\n\nMedia Analysis:")
		}
		if cv.OldestKnownUse != "" {
			lines = append(lines, fmt.Sprintf("This media appeared online earlier (oldest known use: %s).", cv.OldestKnownUse))
		}
		if cv.ContextMismatch {
			lines = append(lines, "The media appears in different contexts online, suggesting it may be used out of context here.")
		}
		if len(cv.MatchedSources) > 0 {
			lines = append(lines, "Found on:")
			for i, src := range cv.MatchedSources {
				if i >= 3 {
					break
				}
				info := "  - " + src.Domain
				if src.Date != "" {
					info += fmt.Sprintf(" (%s)", src.Date)
				}
				if src.Context != "" && len(src.Context) < 100 {
					info += ": " + src.Context
				}
				lines = append(lines, info)
			}
		}
	}

	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}
