package verify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/truelens/truelens/internal/model"
	"github.com/truelens/truelens/internal/search"
)

type fakeBackend struct {
	response string
	err      error
	called   bool
}

func (f *fakeBackend) VerifyClaim(ctx context.Context, claimText, domain string, evidence []model.EvidenceSnippet) (string, error) {
	f.called = true
	return f.response, f.err
}

type fakeSearch struct {
	snippets []model.EvidenceSnippet
	err      error
	called   bool
	domains  []string
}

func (f *fakeSearch) Search(ctx context.Context, claimText string, allowedDomains []string) ([]model.EvidenceSnippet, error) {
	f.called = true
	f.domains = allowedDomains
	return f.snippets, f.err
}

func newTestVerifier(backend Backend, searcher search.Client) *Verifier {
	return NewVerifier(backend, searcher, search.DefaultTrustedSources(),
		model.VerifyConfig{MinTrustScore: 40, MinEvidence: 2}, zap.NewNop())
}

func snippets(n int) []model.EvidenceSnippet {
	out := make([]model.EvidenceSnippet, n)
	for i := range out {
		out[i] = model.EvidenceSnippet{
			Source:  "who.int",
			Snippet: "evidence snippet " + string(rune('a'+i)),
		}
	}
	return out
}

func TestVerifier_Verify_LowTrustGate(t *testing.T) {
	backend := &fakeBackend{}
	searcher := &fakeSearch{}
	v := newTestVerifier(backend, searcher)

	claim := &model.Claim{ID: "c1", Text: "low trust claim", Domain: "medical", TrustScore: 39}
	v.Verify(context.Background(), []*model.Claim{claim})

	if claim.Verdict != model.VerdictSkipped {
		t.Errorf("expected SKIPPED_LOW_TRUST, got %s", claim.Verdict)
	}
	if !strings.Contains(claim.VerificationReasoning, "low trust score (39/100)") {
		t.Errorf("unexpected reasoning: %q", claim.VerificationReasoning)
	}
	if searcher.called {
		t.Errorf("search must not run for skipped claims")
	}
	if backend.called {
		t.Errorf("backend must not run for skipped claims")
	}
}

func TestVerifier_Verify_GateBoundary(t *testing.T) {
	// Exactly at the threshold the claim proceeds to verification.
	backend := &fakeBackend{response: `{"verdict": "TRUE", "reasoning": "supported", "sources_cited": ["who.int"]}`}
	searcher := &fakeSearch{snippets: snippets(2)}
	v := newTestVerifier(backend, searcher)

	claim := &model.Claim{ID: "c1", Text: "boundary claim", Domain: "medical", TrustScore: 40}
	v.Verify(context.Background(), []*model.Claim{claim})

	if claim.Verdict == model.VerdictSkipped {
		t.Errorf("score equal to threshold must not be skipped")
	}
	if !searcher.called {
		t.Errorf("expected search to run at the boundary")
	}
}

func TestVerifier_Verify_EvidenceGate(t *testing.T) {
	backend := &fakeBackend{}
	searcher := &fakeSearch{snippets: snippets(1)}
	v := newTestVerifier(backend, searcher)

	claim := &model.Claim{ID: "c1", Text: "thin evidence claim", Domain: "medical", TrustScore: 80}
	v.Verify(context.Background(), []*model.Claim{claim})

	if claim.Verdict != model.VerdictUnverified {
		t.Errorf("expected UNVERIFIED, got %s", claim.Verdict)
	}
	if claim.VerificationReasoning != NoEvidenceReasoning {
		t.Errorf("expected fixed reasoning %q, got %q", NoEvidenceReasoning, claim.VerificationReasoning)
	}
	if claim.SourcesCited == nil || len(claim.SourcesCited) != 0 {
		t.Errorf("expected empty (non-nil) sources, got %v", claim.SourcesCited)
	}
	if backend.called {
		t.Errorf("backend must not run without sufficient evidence")
	}
}

func TestVerifier_Verify_DuplicateSnippetsDoNotCount(t *testing.T) {
	dup := model.EvidenceSnippet{Source: "who.int", Snippet: "same text"}
	backend := &fakeBackend{}
	searcher := &fakeSearch{snippets: []model.EvidenceSnippet{dup, dup, dup}}
	v := newTestVerifier(backend, searcher)

	claim := &model.Claim{ID: "c1", Text: "claim", Domain: "medical", TrustScore: 80}
	v.Verify(context.Background(), []*model.Claim{claim})

	if claim.Verdict != model.VerdictUnverified {
		t.Errorf("three copies of one snippet are one piece of evidence, got %s", claim.Verdict)
	}
}

func TestVerifier_Verify_SearchFailureCountsAsNoEvidence(t *testing.T) {
	backend := &fakeBackend{}
	searcher := &fakeSearch{err: errors.New("quota exhausted")}
	v := newTestVerifier(backend, searcher)

	claim := &model.Claim{ID: "c1", Text: "claim", Domain: "medical", TrustScore: 80}
	v.Verify(context.Background(), []*model.Claim{claim})

	if claim.Verdict != model.VerdictUnverified {
		t.Errorf("expected UNVERIFIED on search failure, got %s", claim.Verdict)
	}
	if claim.VerificationReasoning != NoEvidenceReasoning {
		t.Errorf("unexpected reasoning: %q", claim.VerificationReasoning)
	}
}

func TestVerifier_Verify_ClassifiesWithEvidence(t *testing.T) {
	backend := &fakeBackend{response: `{"verdict": "FALSE", "reasoning": "Contradicted by WHO guidance.", "sources_cited": ["who.int", "cdc.gov"]}`}
	searcher := &fakeSearch{snippets: snippets(3)}
	v := newTestVerifier(backend, searcher)

	claim := &model.Claim{ID: "c1", Text: "hot water kills the virus", Domain: "medical", TrustScore: 75}
	v.Verify(context.Background(), []*model.Claim{claim})

	if claim.Verdict != model.VerdictFalse {
		t.Errorf("expected FALSE, got %s", claim.Verdict)
	}
	if claim.VerificationReasoning != "Contradicted by WHO guidance." {
		t.Errorf("unexpected reasoning: %q", claim.VerificationReasoning)
	}
	if len(claim.SourcesCited) != 2 {
		t.Errorf("expected 2 cited sources, got %v", claim.SourcesCited)
	}

	// Search is restricted to the medical allow-list plus government domains.
	found := false
	for _, d := range searcher.domains {
		if d == "who.int" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected who.int in medical allow-list, got %v", searcher.domains)
	}
}

func TestVerifier_Verify_CoercesOffSetVerdicts(t *testing.T) {
	backend := &fakeBackend{response: `{"verdict": "PROBABLY_FALSE", "reasoning": "hedged", "sources_cited": []}`}
	searcher := &fakeSearch{snippets: snippets(2)}
	v := newTestVerifier(backend, searcher)

	claim := &model.Claim{ID: "c1", Text: "claim", Domain: "general", TrustScore: 90}
	v.Verify(context.Background(), []*model.Claim{claim})

	if claim.Verdict != model.VerdictUnverified {
		t.Errorf("off-set verdict must coerce to UNVERIFIED, got %s", claim.Verdict)
	}
}

func TestVerifier_Verify_BackendFailureDegrades(t *testing.T) {
	backend := &fakeBackend{err: errors.New("model timeout")}
	searcher := &fakeSearch{snippets: snippets(2)}
	v := newTestVerifier(backend, searcher)

	claim := &model.Claim{ID: "c1", Text: "claim", Domain: "general", TrustScore: 90}
	v.Verify(context.Background(), []*model.Claim{claim})

	if claim.Verdict != model.VerdictUnverified {
		t.Errorf("expected UNVERIFIED on backend failure, got %s", claim.Verdict)
	}
	if !strings.HasPrefix(claim.VerificationReasoning, "Verification failed:") {
		t.Errorf("unexpected reasoning: %q", claim.VerificationReasoning)
	}
	if claim.SourcesCited == nil {
		t.Errorf("sources must be an empty slice, not nil")
	}
}

func TestVerifier_Verify_UnusableBackendResponseDegrades(t *testing.T) {
	backend := &fakeBackend{response: "I think this claim might be false."}
	searcher := &fakeSearch{snippets: snippets(2)}
	v := newTestVerifier(backend, searcher)

	claim := &model.Claim{ID: "c1", Text: "claim", Domain: "general", TrustScore: 90}
	v.Verify(context.Background(), []*model.Claim{claim})

	if claim.Verdict != model.VerdictUnverified {
		t.Errorf("expected UNVERIFIED on unusable response, got %s", claim.Verdict)
	}
}
