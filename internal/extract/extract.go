// Package extract implements Stage 1: turning session entries plus media
// context into candidate claims and flagged terms via the extraction backend.
package extract

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/truelens/truelens/internal/model"
	"github.com/truelens/truelens/internal/parse"
	"github.com/truelens/truelens/internal/rules"
)

// Backend produces raw structured text for a claim-extraction request.
// Output may be malformed or truncated.
type Backend interface {
	ExtractClaims(ctx context.Context, entries []model.Entry, mediaCtx *model.MediaContext, defs []rules.FlagDefinition) (string, error)
}

// Extractor is the Stage 1 component.
type Extractor struct {
	backend Backend
	defs    []rules.FlagDefinition
	log     *zap.Logger
}

// NewExtractor creates the extraction stage.
func NewExtractor(backend Backend, logger *zap.Logger) *Extractor {
	return &Extractor{
		backend: backend,
		defs:    rules.Definitions(),
		log:     logger,
	}
}

// Extract returns the claim set and flagged terms for a session. Failures
// are non-fatal: a backend error or an unusable response yields empty sets,
// which the pipeline treats as "no claims found".
func (e *Extractor) Extract(ctx context.Context, session *model.Session) *model.Extraction {
	if !hasText(session.Entries) {
		e.log.Warn("no text entries in session", zap.String("session_id", session.ID))
		return &model.Extraction{}
	}

	raw, err := e.backend.ExtractClaims(ctx, session.Entries, session.MediaContext, e.defs)
	if err != nil {
		e.log.Warn("extraction backend failed",
			zap.String("session_id", session.ID), zap.Error(err))
		return &model.Extraction{}
	}

	parsed, err := parse.ParseExtraction(raw)
	if err != nil {
		e.log.Warn("extraction response unusable",
			zap.String("session_id", session.ID), zap.Error(err))
		return &model.Extraction{}
	}
	if parsed.Salvaged {
		e.log.Info("salvaged partial extraction response",
			zap.String("session_id", session.ID),
			zap.Int("claims", len(parsed.Claims)),
			zap.Int("flagged_terms", len(parsed.FlaggedTerms)))
	}

	claims := make([]*model.Claim, 0, len(parsed.Claims))
	for i, rc := range parsed.Claims {
		id := fmt.Sprintf("c%d", i+1)
		if parsed.Salvaged {
			// Salvaged records keep their provenance visible downstream.
			id += "_rescued"
		}
		domain := rc.Domain
		if domain == "" {
			domain = "general"
		}
		claims = append(claims, &model.Claim{
			ID:             id,
			Text:           rc.Claim,
			Domain:         domain,
			SourceEntryIDs: rc.SourceEntryIDs,
			TrustScore:     100,
			Flags:          []string{},
		})
	}

	e.log.Info("extraction complete",
		zap.String("session_id", session.ID),
		zap.Int("claims", len(claims)),
		zap.Int("flagged_terms", len(parsed.FlaggedTerms)))

	return &model.Extraction{
		Claims:       claims,
		FlaggedTerms: parsed.FlaggedTerms,
	}
}

func hasText(entries []model.Entry) bool {
	for _, e := range entries {
		if strings.TrimSpace(e.Text) != "" {
			return true
		}
	}
	return false
}
