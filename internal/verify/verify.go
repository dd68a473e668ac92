// Package verify implements Stage 4: the low-trust and evidence-sufficiency
// decision gates followed by backend verdict classification.
package verify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/truelens/truelens/internal/model"
	"github.com/truelens/truelens/internal/parse"
	"github.com/truelens/truelens/internal/search"
)

// NoEvidenceReasoning is the fixed reasoning attached when the evidence
// gate fails.
const NoEvidenceReasoning = "No authoritative evidence found in trusted sources."

// Backend classifies a claim against evidence snippets, returning raw
// structured text.
type Backend interface {
	VerifyClaim(ctx context.Context, claimText, domain string, evidence []model.EvidenceSnippet) (string, error)
}

// Verifier is the Stage 4 component. Every claim leaves this stage with a
// verdict assigned; failures degrade to UNVERIFIED and never propagate.
type Verifier struct {
	backend Backend
	search  search.Client
	sources *search.TrustedSources
	cfg     model.VerifyConfig
	log     *zap.Logger
}

// NewVerifier creates the verification stage.
func NewVerifier(backend Backend, searcher search.Client, sources *search.TrustedSources, cfg model.VerifyConfig, logger *zap.Logger) *Verifier {
	if cfg.MinTrustScore == 0 {
		cfg.MinTrustScore = 40
	}
	if cfg.MinEvidence == 0 {
		cfg.MinEvidence = 2
	}
	return &Verifier{
		backend: backend,
		search:  searcher,
		sources: sources,
		cfg:     cfg,
		log:     logger,
	}
}

// Verify runs the per-claim gate state machine.
func (v *Verifier) Verify(ctx context.Context, claims []*model.Claim) {
	for _, claim := range claims {
		v.verifyClaim(ctx, claim)
	}
}

func (v *Verifier) verifyClaim(ctx context.Context, claim *model.Claim) {
	// Gate 1: low trust terminates immediately. This is the dominant exit
	// for heavily flagged content.
	if claim.TrustScore < v.cfg.MinTrustScore {
		v.log.Info("claim skipped by low-trust gate",
			zap.String("claim_id", claim.ID),
			zap.Int("trust_score", claim.TrustScore))
		claim.Verdict = model.VerdictSkipped
		claim.VerificationReasoning = fmt.Sprintf(
			"Claim skipped verification due to low trust score (%d/100). Multiple suspicion flags triggered.",
			claim.TrustScore)
		return
	}

	// Gate 2: evidence sufficiency over the domain allow-list. A search
	// failure counts as no evidence rather than aborting the session.
	domains := v.sources.DomainsFor(claim.Domain)
	snippets, err := v.search.Search(ctx, claim.Text, domains)
	if err != nil {
		v.log.Warn("trusted search failed",
			zap.String("claim_id", claim.ID), zap.Error(err))
		snippets = nil
	}
	snippets = dedupeByText(snippets)

	if len(snippets) < v.cfg.MinEvidence {
		v.log.Info("insufficient evidence for claim",
			zap.String("claim_id", claim.ID),
			zap.Int("snippets", len(snippets)))
		claim.Verdict = model.VerdictUnverified
		claim.VerificationReasoning = NoEvidenceReasoning
		claim.SourcesCited = []string{}
		return
	}

	// Gate 3: backend classification with defensive coercion of the verdict.
	raw, err := v.backend.VerifyClaim(ctx, claim.Text, claim.Domain, snippets)
	if err != nil {
		v.degrade(claim, fmt.Sprintf("Verification failed: %v", err))
		return
	}

	result, err := parse.ParseVerification(raw)
	if err != nil {
		v.degrade(claim, "Verification failed: backend returned an unusable response.")
		return
	}

	claim.Verdict = model.CoerceVerdict(result.Verdict)
	claim.VerificationReasoning = result.Reasoning
	claim.SourcesCited = result.SourcesCited
	if claim.SourcesCited == nil {
		claim.SourcesCited = []string{}
	}

	v.log.Info("claim verified",
		zap.String("claim_id", claim.ID),
		zap.String("verdict", string(claim.Verdict)))
}

func (v *Verifier) degrade(claim *model.Claim, reasoning string) {
	v.log.Warn("verification degraded to UNVERIFIED",
		zap.String("claim_id", claim.ID), zap.String("reason", reasoning))
	claim.Verdict = model.VerdictUnverified
	claim.VerificationReasoning = reasoning
	claim.SourcesCited = []string{}
}

// dedupeByText drops snippets with identical text. The search client already
// dedupes single responses; this also covers fake or aggregated clients.
func dedupeByText(snippets []model.EvidenceSnippet) []model.EvidenceSnippet {
	seen := make(map[string]bool, len(snippets))
	var out []model.EvidenceSnippet
	for _, s := range snippets {
		if s.Snippet == "" || seen[s.Snippet] {
			continue
		}
		seen[s.Snippet] = true
		out = append(out, s)
	}
	return out
}
