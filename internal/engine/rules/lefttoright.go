package rules

import (
	"fmt"

	"journeyboard/internal/engine"
)

// LeftToRight fills worker rows from the lowest slot index up and claims
// objectives of a tier in position order.
type LeftToRight struct{}

func (LeftToRight) Name() string { return NameLeftToRight }

func (LeftToRight) CheckSeal(board *engine.PlayerBoard, st *engine.BoardState, player string, row, slot int) error {
	r, ok := board.Row(row)
	if !ok {
		return fmt.Errorf("%w: no row %d", engine.ErrUnknownSlotReference, row)
	}
	for _, s := range r.SealSlots {
		if s.SlotIndex < slot && !st.IsSlotFilled(player, row, s.SlotIndex) {
			return fmt.Errorf("%w: row %d slot %d is still open", ErrOutOfOrder, row, s.SlotIndex)
		}
	}
	return nil
}

func (LeftToRight) CheckObjective(board *engine.PlayerBoard, st *engine.BoardState, player string, slotID string) error {
	target, ok := board.Objective(slotID)
	if !ok {
		return fmt.Errorf("%w: %q", engine.ErrUnknownSlotReference, slotID)
	}
	for _, s := range board.ObjectivesOfTier(target.Type) {
		if s.Position < target.Position && !st.HasClaimed(s.SlotID) {
			return fmt.Errorf("%w: %s is still open", ErrOutOfOrder, s.SlotID)
		}
	}
	return nil
}
