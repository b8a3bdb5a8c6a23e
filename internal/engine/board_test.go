package engine_test

import (
	"errors"
	"testing"

	"journeyboard/internal/engine"
)

func TestBoardValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *engine.PlayerBoard)
		want   error
	}{
		{"ok", func(b *engine.PlayerBoard) {}, nil},
		{"missing id", func(b *engine.PlayerBoard) { b.BoardID = "" }, engine.ErrInvalidBoard},
		{"row gap", func(b *engine.PlayerBoard) { b.WorkerRows[1].RowIndex = 3 }, engine.ErrInvalidBoard},
		{"duplicate row", func(b *engine.PlayerBoard) { b.WorkerRows[1].RowIndex = 0 }, engine.ErrInvalidBoard},
		{"duplicate seal slot", func(b *engine.PlayerBoard) { b.WorkerRows[0].SealSlots[1].SlotIndex = 0 }, engine.ErrInvalidBoard},
		{"negative cost", func(b *engine.PlayerBoard) { b.WorkerRows[0].SealSlots[1].PlacementCost = -1 }, engine.ErrInvalidBoard},
		{"duplicate objective", func(b *engine.PlayerBoard) { b.ObjectiveSlots[1].SlotID = "SILVER_1" }, engine.ErrInvalidBoard},
		{"bad tier", func(b *engine.PlayerBoard) { b.ObjectiveSlots[0].Type = "BRONZE" }, engine.ErrInvalidBoard},
		{"unknown bonus slot", func(b *engine.PlayerBoard) {
			b.PairBonuses = []engine.ObjectivePairBonus{{
				ID: "P", Condition: [2]string{"SILVER_1", "GOLDEN_9"},
				RewardAction: engine.Effect{Kind: engine.KindGainVP, Value: engine.Int(4)},
			}}
		}, engine.ErrUnknownSlotReference},
		{"trigger without tier", func(b *engine.PlayerBoard) {
			b.ObjectiveSlots = b.ObjectiveSlots[:1]
			b.WorkerRows[0].SealSlots[2].DistinctionTrigger = engine.TierGolden
		}, engine.ErrUnknownSlotReference},
		{"malformed reward", func(b *engine.PlayerBoard) {
			b.WorkerRows[0].SealSlots[0].RewardAction = &engine.Effect{Kind: engine.KindGainVP}
		}, engine.ErrMalformedEffect},
		{"malformed reveal", func(b *engine.PlayerBoard) {
			b.StampSlots[0].RevealedAction = &engine.Effect{Kind: engine.KindChoice}
		}, engine.ErrMalformedEffect},
		{"duplicate specimen", func(b *engine.PlayerBoard) {
			b.SpecimenGrid = []engine.SpecimenGridSlot{{SpecimenTokenID: "X"}, {SpecimenTokenID: "X"}}
		}, engine.ErrInvalidBoard},
	}
	for _, tt := range tests {
		b := smallBoard()
		tt.mutate(b)
		err := b.Validate()
		if tt.want == nil {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tt.name, err)
			}
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestLockedRowMayDefineSlots(t *testing.T) {
	b := smallBoard()
	row, ok := b.Row(1)
	if !ok || !row.Locked() {
		t.Fatal("row 1 should be locked")
	}
	if row.Capacity() != 1 {
		t.Errorf("locked row capacity once opened: got %d, want 1", row.Capacity())
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("locked row with slots is valid: %v", err)
	}
}

func TestObjectivesOfTier(t *testing.T) {
	b := standardBoard(t)
	silver := b.ObjectivesOfTier(engine.TierSilver)
	if len(silver) != 5 {
		t.Fatalf("expected 5 silver slots, got %d", len(silver))
	}
	for i, s := range silver {
		if s.Position != i+1 {
			t.Errorf("slot %s at index %d has position %d", s.SlotID, i, s.Position)
		}
	}
	last, ok := b.LastRow()
	if !ok || last.RowIndex != 4 {
		t.Errorf("last row: got %d", last.RowIndex)
	}
}
