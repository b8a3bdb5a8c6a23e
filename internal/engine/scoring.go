package engine

import "go.uber.org/zap"

// ScoreEntry holds the scoring breakdown for one player.
type ScoreEntry struct {
	PlayerID    string `json:"player_id"`
	ImmediateVP int    `json:"immediate_vp"`
	DeferredVP  int    `json:"deferred_vp"`
	BonusVP     int    `json:"bonus_vp"`
	Total       int    `json:"total"`
}

// Scorer settles deferred effects and totals victory points.
type Scorer struct {
	resolver *Resolver
	logger   *zap.Logger
}

func NewScorer(resolver *Resolver, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{resolver: resolver, logger: logger}
}

// Finalize settles every player's deferred queue in enqueue order and
// returns the breakdown in player order. Once st is finalized later calls
// return the cached result. No tie-break is applied.
func (s *Scorer) Finalize(st *BoardState) []ScoreEntry {
	if st.Finalized {
		return st.Scores
	}
	entries := make([]ScoreEntry, len(st.Players))
	for i, p := range st.Players {
		e := ScoreEntry{
			PlayerID:    p.ID,
			ImmediateVP: p.VP - p.BonusVP,
			BonusVP:     p.BonusVP,
		}
		for _, d := range p.Deferred {
			o := s.resolver.settle(st, p.ID, d)
			if o.Err != nil {
				s.logger.Warn("deferred effect failed", zap.String("player", p.ID),
					zap.String("effect", d.Effect.String()), zap.Error(o.Err))
				continue
			}
			if d.Source.Kind == SourcePairBonus {
				e.BonusVP += o.Delta.VP
			} else {
				e.DeferredVP += o.Delta.VP
			}
		}
		e.Total = e.ImmediateVP + e.DeferredVP + e.BonusVP
		entries[i] = e
	}
	st.Finalized = true
	st.Scores = entries
	s.logger.Info("game finalized", zap.Int("players", len(entries)))
	return entries
}
