package engine

import (
	"fmt"
	"slices"
)

// FiredBonus is a pair bonus awarded to a player.
type FiredBonus struct {
	BonusID string `json:"bonus_id"`
	Player  string `json:"player"`
	Reward  Effect `json:"reward"`
}

// Tracker records objective claims and fires cross-objective bonuses.
type Tracker struct {
	board *PlayerBoard
}

func NewTracker(board *PlayerBoard) *Tracker {
	return &Tracker{board: board}
}

// RecordClaim marks slotID as held by player.
func (t *Tracker) RecordClaim(st *BoardState, slotID, player string) error {
	if _, ok := t.board.Objective(slotID); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSlotReference, slotID)
	}
	if _, err := st.Player(player); err != nil {
		return err
	}
	if holder, ok := st.ClaimantOf(slotID); ok {
		return fmt.Errorf("%w: %s holds %s", ErrAlreadyClaimed, holder, slotID)
	}
	st.Claims[slotID] = player
	return nil
}

// EvaluatePairBonus fires bonus the first time both condition slots share a
// claimant. Every later call reports false.
func (t *Tracker) EvaluatePairBonus(st *BoardState, bonus ObjectivePairBonus) (FiredBonus, bool) {
	if _, fired := st.FiredBonuses[bonus.ID]; fired {
		return FiredBonus{}, false
	}
	a, ok := st.ClaimantOf(bonus.Condition[0])
	if !ok {
		return FiredBonus{}, false
	}
	b, ok := st.ClaimantOf(bonus.Condition[1])
	if !ok || a != b {
		return FiredBonus{}, false
	}
	st.FiredBonuses[bonus.ID] = a
	return FiredBonus{BonusID: bonus.ID, Player: a, Reward: bonus.RewardAction}, true
}

// EvaluateSlot re-checks the bonuses that name slotID.
func (t *Tracker) EvaluateSlot(st *BoardState, slotID string) []FiredBonus {
	var fired []FiredBonus
	for _, pb := range t.board.PairBonuses {
		if !slices.Contains(pb.Condition[:], slotID) {
			continue
		}
		if f, ok := t.EvaluatePairBonus(st, pb); ok {
			fired = append(fired, f)
		}
	}
	return fired
}

// EvaluateTier re-checks the bonuses that name a slot of tier. Seal slots
// with a distinction trigger call this after placement.
func (t *Tracker) EvaluateTier(st *BoardState, tier Tier) []FiredBonus {
	var fired []FiredBonus
	for _, pb := range t.board.PairBonuses {
		if !t.references(pb, tier) {
			continue
		}
		if f, ok := t.EvaluatePairBonus(st, pb); ok {
			fired = append(fired, f)
		}
	}
	return fired
}

func (t *Tracker) references(pb ObjectivePairBonus, tier Tier) bool {
	for _, id := range pb.Condition {
		if s, ok := t.board.Objective(id); ok && s.Type == tier {
			return true
		}
	}
	return false
}
