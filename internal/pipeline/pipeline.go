// Package pipeline orchestrates the five-stage claim-evaluation run for a
// session: extraction, scoring, semantic duplication, verification, and
// explanation, preceded by media analysis.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/truelens/truelens/internal/explain"
	"github.com/truelens/truelens/internal/extract"
	"github.com/truelens/truelens/internal/model"
	"github.com/truelens/truelens/internal/results"
	"github.com/truelens/truelens/internal/score"
	"github.com/truelens/truelens/internal/semantic"
	"github.com/truelens/truelens/internal/verify"
)

// Analyzer is the media-analysis collaborator (perceptual hashing plus
// reverse image search). Its internals are outside this module; a nil
// analyzer means sessions always get the default context.
type Analyzer interface {
	Analyze(ctx context.Context, session *model.Session) (*model.MediaContext, error)
}

// Pipeline sequences the stages for one session at a time. Independent
// sessions may run concurrently; the stages share only read-mostly state
// (corpus, flag definitions, source lists).
type Pipeline struct {
	analyzer  Analyzer
	extractor *extract.Extractor
	scorer    *score.Scorer
	detector  *semantic.Detector
	verifier  *verify.Verifier
	explainer *explain.Explainer
	results   *results.Store
	log       *zap.Logger
}

// New assembles a pipeline from its stage components.
func New(analyzer Analyzer, extractor *extract.Extractor, scorer *score.Scorer, detector *semantic.Detector, verifier *verify.Verifier, explainer *explain.Explainer, store *results.Store, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		analyzer:  analyzer,
		extractor: extractor,
		scorer:    scorer,
		detector:  detector,
		verifier:  verifier,
		explainer: explainer,
		results:   store,
		log:       logger,
	}
}

// Process runs a session through the complete pipeline. It always returns a
// well-formed result: stage failures degrade inside their stage, and
// anything that still escapes is converted to a status "error" result here.
// The caller never sees a panic or an error value.
func (p *Pipeline) Process(ctx context.Context, session *model.Session) (result *model.FinalResult) {
	log := p.log.With(zap.String("session_id", session.ID))

	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline panicked", zap.Any("panic", r))
			result = p.errorResult(session.ID, fmt.Sprintf("pipeline failure: %v", r))
		}
	}()

	log.Info("processing session", zap.Int("entries", len(session.Entries)))

	// Stage 0: attach media context. Sessions without image entries get the
	// default context so downstream stages see a uniform shape.
	p.attachMediaContext(ctx, session, log)
	p.results.SaveStage(session.ID, 0, map[string]any{
		"media_analysis": session.MediaContext,
		"entries":        session.Entries,
	})

	// Stage 1: claim extraction.
	extraction := p.extractor.Extract(ctx, session)
	p.results.SaveStage(session.ID, 1, extraction)

	if len(extraction.Claims) == 0 {
		log.Info("no claims found, ending pipeline")
		result = &model.FinalResult{
			SessionID:    session.ID,
			Status:       model.StatusNoClaims,
			TotalClaims:  0,
			Claims:       []model.ClaimResult{},
			FlaggedTerms: flaggedTerms(extraction),
		}
		p.results.SaveFinal(result)
		return result
	}

	// Stage 2: suspicion flags and trust score.
	p.scorer.Score(extraction.Claims, session)
	p.results.SaveStage(session.ID, 2, extraction.Claims)

	// Stage 3: rewritten-misinformation detection.
	p.detector.Detect(ctx, extraction.Claims)
	p.results.SaveStage(session.ID, 3, extraction.Claims)

	// Stage 4: decision gates and deep verification.
	p.verifier.Verify(ctx, extraction.Claims)
	p.results.SaveStage(session.ID, 4, extraction.Claims)

	// Stage 5: explanations and final output.
	claimResults := p.explainer.Results(extraction.Claims, session.MediaContext)

	result = &model.FinalResult{
		SessionID:    session.ID,
		Status:       model.StatusSuccess,
		TotalClaims:  len(claimResults),
		Claims:       claimResults,
		FlaggedTerms: flaggedTerms(extraction),
	}
	p.results.SaveFinal(result)

	log.Info("pipeline complete", zap.Int("total_claims", result.TotalClaims))
	return result
}

func (p *Pipeline) attachMediaContext(ctx context.Context, session *model.Session, log *zap.Logger) {
	if session.HasImages() && p.analyzer != nil {
		mc, err := p.analyzer.Analyze(ctx, session)
		if err != nil {
			log.Warn("media analysis failed, using default context", zap.Error(err))
		} else if mc != nil {
			session.MediaContext = mc
			return
		}
	}
	session.MediaContext = model.NothingDetected()
}

func (p *Pipeline) errorResult(sessionID, msg string) *model.FinalResult {
	result := &model.FinalResult{
		SessionID:    sessionID,
		Status:       model.StatusError,
		Claims:       []model.ClaimResult{},
		FlaggedTerms: []model.FlaggedTerm{},
		Error:        msg,
	}
	p.results.SaveFinal(result)
	return result
}

func flaggedTerms(e *model.Extraction) []model.FlaggedTerm {
	if e.FlaggedTerms == nil {
		return []model.FlaggedTerm{}
	}
	return e.FlaggedTerms
}
