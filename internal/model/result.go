package model

// Status classifies the terminal state of a pipeline run.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusNoClaims Status = "no_claims"
	StatusError    Status = "error"
)

// FinalResult is the well-formed object every pipeline run produces.
// Callers never receive a raised error; failures surface as StatusError.
type FinalResult struct {
	SessionID    string        `json:"session_id"`
	Status       Status        `json:"status"`
	TotalClaims  int           `json:"total_claims"`
	Claims       []ClaimResult `json:"claims"`
	FlaggedTerms []FlaggedTerm `json:"flagged_terms"`
	Error        string        `json:"error,omitempty"`
}

// ClaimResult is the per-claim entry in the final output.
type ClaimResult struct {
	Claim       string        `json:"claim"`
	Verdict     Verdict       `json:"verdict"`
	TrustScore  int           `json:"trust_score"`
	Flags       []string      `json:"flags"`
	Explanation string        `json:"explanation"`
	Sources     []string      `json:"sources"`
	Metadata    ClaimMetadata `json:"metadata"`
}

// ClaimMetadata carries provenance for a claim result.
type ClaimMetadata struct {
	ClaimID        string         `json:"claim_id"`
	Domain         string         `json:"domain"`
	SourceEntryIDs []string       `json:"source_entry_ids"`
	SemanticMatch  *SemanticMatch `json:"semantic_match,omitempty"`
	MediaAnalysis  *MediaContext  `json:"media_analysis,omitempty"`
}

// Extraction is Stage 1 output: the claim set plus flagged terms.
type Extraction struct {
	Claims       []*Claim      `json:"claims"`
	FlaggedTerms []FlaggedTerm `json:"flagged_terms"`
}
