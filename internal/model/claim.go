package model

// Claim represents a verifiable factual assertion extracted from session entries.
// A claim is created once at extraction and only annotated by later stages:
// scoring fills TrustScore/Flags, semantic detection may attach SemanticMatch,
// verification assigns the Verdict. Identity never changes.
type Claim struct {
	ID             string   `json:"claim_id"`
	Text           string   `json:"claim"`
	Domain         string   `json:"domain"` // free-form label: medical, political, general, ...
	SourceEntryIDs []string `json:"source_entry_ids"`

	TrustScore int      `json:"trust_score"`
	Flags      []string `json:"flags"`

	SemanticMatch *SemanticMatch `json:"semantic_match,omitempty"`

	Verdict               Verdict  `json:"verdict,omitempty"`
	VerificationReasoning string   `json:"verification_reasoning,omitempty"`
	SourcesCited          []string `json:"sources_cited,omitempty"`
}

// AddFlag appends a flag name if not already present. The flag set is
// append-only and unique; a flag triggered by two independent predicates
// still appears (and is penalized) once.
func (c *Claim) AddFlag(name string) bool {
	for _, f := range c.Flags {
		if f == name {
			return false
		}
	}
	c.Flags = append(c.Flags, name)
	return true
}

// Penalize subtracts points from the trust score, floored at 0.
func (c *Claim) Penalize(points int) {
	c.TrustScore -= points
	if c.TrustScore < 0 {
		c.TrustScore = 0
	}
}

// SemanticMatch links a claim to a known-misinformation record it is a
// near-duplicate of.
type SemanticMatch struct {
	MatchedClaim string   `json:"matched_claim"`
	Similarity   float64  `json:"similarity"`
	DebunkedBy   []string `json:"debunked_by"`
	Category     string   `json:"category"`
}

// FlaggedTerm is a phrase in an entry that matched a suspicion-flag
// definition during extraction. It is reported in the final output but not
// carried through the pipeline.
type FlaggedTerm struct {
	Term     string `json:"term"`
	FlagName string `json:"flag_name"`
	Category string `json:"flag_category"`
	EntryID  string `json:"entry_id"`
	Context  string `json:"context,omitempty"`
}

// Verdict is the closed-set truth classification assigned by verification.
type Verdict string

const (
	VerdictTrue       Verdict = "TRUE"
	VerdictFalse      Verdict = "FALSE"
	VerdictMisleading Verdict = "MISLEADING"
	VerdictUnverified Verdict = "UNVERIFIED"
	VerdictSkipped    Verdict = "SKIPPED_LOW_TRUST"
)

// CoerceVerdict maps untrusted backend output onto the closed verdict set.
// Anything outside {TRUE, FALSE, MISLEADING, UNVERIFIED} becomes UNVERIFIED.
func CoerceVerdict(s string) Verdict {
	switch Verdict(s) {
	case VerdictTrue, VerdictFalse, VerdictMisleading, VerdictUnverified:
		return Verdict(s)
	default:
		return VerdictUnverified
	}
}

// EvidenceSnippet is a short excerpt retrieved from an authoritative,
// domain-restricted search. Ephemeral: produced during verification only.
type EvidenceSnippet struct {
	Source  string `json:"source"`
	Title   string `json:"title,omitempty"`
	Snippet string `json:"snippet"`
	Link    string `json:"link,omitempty"`
}
