package policy

import (
	"context"
	"math/rand"

	"github.com/sandevgo/verifid/internal/config"
	"github.com/sandevgo/verifid/pkg/log"
)

const (
	PolicyShuffle = "shuffle"
	PolicyRanked  = "ranked"
)

// NewOrdering selects the configured ordering strategy. Unknown names fall
// back to the shuffle baseline with a warning rather than failing startup.
func NewOrdering(ctx context.Context, cfg *config.AppConfig, qtable *QTable, model *SuccessModel, rng *rand.Rand) Ordering {
	switch cfg.Policy {
	case PolicyRanked:
		return NewRanked(qtable, model, cfg.Exploration, rng)
	case PolicyShuffle, "":
		return NewShuffle(rng)
	default:
		log.FromCtx(ctx).Warn().Str("policy", cfg.Policy).Msg("unknown selection policy, using shuffle")
		return NewShuffle(rng)
	}
}
