// Package semantic implements Stage 3: detecting claims that are rewritten
// near-duplicates of known misinformation via embedding similarity.
package semantic

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/truelens/truelens/internal/corpus"
	"github.com/truelens/truelens/internal/model"
	"github.com/truelens/truelens/internal/rules"
)

// Detector matches claim embeddings against the known-misinformation corpus.
type Detector struct {
	embedder  corpus.Embedder
	store     *corpus.Store
	threshold float64
	penalty   int
	cache     *gocache.Cache
	log       *zap.Logger
}

// NewDetector creates the semantic duplication stage. The corpus store must
// already have its embeddings backfilled (corpus.Store.EnsureEmbeddings runs
// once at startup, before any session is processed).
func NewDetector(embedder corpus.Embedder, store *corpus.Store, cfg model.CorpusConfig, cacheCfg model.CacheConfig, logger *zap.Logger) *Detector {
	threshold := cfg.SimilarityThreshold
	if threshold == 0 {
		threshold = 0.85
	}
	penalty := cfg.MatchPenalty
	if penalty == 0 {
		penalty = 30
	}

	var c *gocache.Cache
	if cacheCfg.Enabled {
		ttl := cacheCfg.TTL
		if ttl == 0 {
			ttl = time.Hour
		}
		c = gocache.New(ttl, 10*time.Minute)
	}

	return &Detector{
		embedder:  embedder,
		store:     store,
		threshold: threshold,
		penalty:   penalty,
		cache:     c,
		log:       logger,
	}
}

// Detect embeds each claim and attaches a SemanticMatch when the best corpus
// match meets the similarity threshold, adding REWRITTEN_MISINFORMATION and
// the extra penalty. A failed embedding passes the claim through
// unannotated; nothing here is pipeline-fatal.
func (d *Detector) Detect(ctx context.Context, claims []*model.Claim) {
	for _, claim := range claims {
		embedding, err := d.embed(ctx, claim.Text)
		if err != nil {
			d.log.Warn("embedding generation failed, claim passes through",
				zap.String("claim_id", claim.ID), zap.Error(err))
			continue
		}

		rec, similarity, ok := d.store.BestMatch(embedding, d.threshold)
		if !ok {
			continue
		}

		d.log.Info("claim matches known misinformation",
			zap.String("claim_id", claim.ID),
			zap.String("matched_claim", rec.Claim),
			zap.Float64("similarity", similarity))

		// Penalty applies only when the flag is newly added, so a repeated
		// detection run cannot double-penalize.
		if claim.AddFlag(rules.FlagRewrittenMisinformation) {
			claim.Penalize(d.penalty)
		}
		claim.SemanticMatch = &model.SemanticMatch{
			MatchedClaim: rec.Claim,
			Similarity:   similarity,
			DebunkedBy:   rec.DebunkedBy,
			Category:     rec.Category,
		}
	}
}

func (d *Detector) embed(ctx context.Context, text string) ([]float32, error) {
	if d.cache != nil {
		if cached, found := d.cache.Get(text); found {
			return cached.([]float32), nil
		}
	}

	embedding, err := d.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		d.cache.SetDefault(text, embedding)
	}
	return embedding, nil
}
