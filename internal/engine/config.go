package engine

import "go.uber.org/zap"

// GameConfig holds configuration for creating a new game.
type GameConfig struct {
	StartingCoins         int         // coins each player starts with (default 4)
	StartingTempKnowledge int         // temporary knowledge each player starts with (default 1)
	SealOrder             string      // placement rule name for seals, "" for none
	ObjectiveOrder        string      // placement rule name for objectives, "" for none
	AutoUnlockRows        []int       // locked rows opened at setup
	Logger                *zap.Logger // defaults to a no-op logger
}

// DefaultConfig imposes no placement order, so it works without a rule
// registry.
func DefaultConfig() GameConfig {
	return GameConfig{
		StartingCoins:         4,
		StartingTempKnowledge: 1,
	}
}
