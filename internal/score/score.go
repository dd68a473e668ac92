// Package score implements Stage 2: rule-based suspicion flags and the
// trust score derived from them.
package score

import (
	"go.uber.org/zap"

	"github.com/truelens/truelens/internal/model"
	"github.com/truelens/truelens/internal/rules"
)

// Scorer annotates claims with flags and a bounded trust score. Scoring is
// pure and total: no inputs produce an error, and a claim nothing matches
// keeps score 100 with no flags.
type Scorer struct {
	engine *rules.Engine
	log    *zap.Logger
}

// NewScorer creates the scoring stage.
func NewScorer(logger *zap.Logger) *Scorer {
	return &Scorer{
		engine: rules.NewEngine(),
		log:    logger,
	}
}

// Score runs the rule engine over each claim and sets
// score = 100 - sum(penalties), floored at 0. Resetting to 100 first keeps
// the stage idempotent if it is ever re-run over the same claims.
func (s *Scorer) Score(claims []*model.Claim, session *model.Session) {
	for _, claim := range claims {
		claim.TrustScore = 100
		claim.Flags = []string{}

		for _, name := range s.engine.Evaluate(claim.Text, claim.Domain, session) {
			if claim.AddFlag(name) {
				claim.Penalize(rules.Penalty(name))
			}
		}

		s.log.Info("claim scored",
			zap.String("claim_id", claim.ID),
			zap.Int("trust_score", claim.TrustScore),
			zap.Int("flags", len(claim.Flags)))
	}
}
