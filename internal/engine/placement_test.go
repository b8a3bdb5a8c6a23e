package engine_test

import (
	"errors"
	"testing"

	"journeyboard/internal/engine"
)

// smallBoard has one open row of capacity 2 over three slots, one locked
// row, and a seal discount on stamp 0.
func smallBoard() *engine.PlayerBoard {
	return &engine.PlayerBoard{
		BoardID: "SMALL",
		WorkerRows: []engine.WorkerRow{
			{RowIndex: 0, MaxSeals: 2, SealSlots: []engine.SealSlot{
				{SlotIndex: 0},
				{SlotIndex: 1, PlacementCost: 2},
				{SlotIndex: 2, PlacementCost: 1},
			}},
			{RowIndex: 1, MaxSeals: 0, SealSlots: []engine.SealSlot{{SlotIndex: 0}}},
		},
		ObjectiveSlots: []engine.ObjectiveSlot{
			{SlotID: "SILVER_1", Type: engine.TierSilver, Position: 1},
			{SlotID: "GOLDEN_1", Type: engine.TierGolden, Position: 1, PlacementCost: 3},
		},
		StampSlots: []engine.RevealSlot{
			{SlotIndex: 0, RevealedAction: &engine.Effect{Kind: engine.KindPlaceSeal, CostModifier: engine.Int(-2)}},
			{SlotIndex: 1, RevealedAction: &engine.Effect{Kind: engine.KindPlaceObjective, CostModifier: engine.Int(-1)}},
		},
	}
}

func TestSealCapacity(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.StartingCoins = 10
	g := newGameWith(t, smallBoard(), cfg)

	mustApply(t, g, "A", engine.Action{Type: engine.ActionPlaceSeal, Row: 0, Slot: 0})
	mustApply(t, g, "A", engine.Action{Type: engine.ActionPlaceSeal, Row: 0, Slot: 2, Color: engine.SealRed})

	_, err := g.Apply("A", engine.Action{Type: engine.ActionPlaceSeal, Row: 0, Slot: 1})
	if !errors.Is(err, engine.ErrIllegalPlacement) {
		t.Fatalf("expected ErrIllegalPlacement on a full row, got %v", err)
	}
	if n := g.State.FilledCount("A", 0); n != 2 {
		t.Fatalf("filled count must not exceed capacity: got %d", n)
	}
	p := mustPlayer(t, g, "A")
	if p.Coins != 9 {
		t.Errorf("coins after paying 0 + 1: got %d, want 9", p.Coins)
	}
	if p.Seals[1].Color != engine.SealRed {
		t.Errorf("seal colour: got %s, want RED", p.Seals[1].Color)
	}
}

func TestSealIllegal(t *testing.T) {
	g := newGameWith(t, smallBoard(), engine.DefaultConfig())
	mustApply(t, g, "A", engine.Action{Type: engine.ActionPlaceSeal, Row: 0, Slot: 0})

	tests := []struct {
		name      string
		row, slot int
		color     engine.SealColor
		want      error
	}{
		{"locked row", 1, 0, "", engine.ErrIllegalPlacement},
		{"missing row", 7, 0, "", engine.ErrIllegalPlacement},
		{"missing slot", 0, 9, "", engine.ErrIllegalPlacement},
		{"occupied slot", 0, 0, "", engine.ErrIllegalPlacement},
		{"bad colour", 0, 2, "PURPLE", engine.ErrInvalidAction},
	}
	for _, tt := range tests {
		before := mustPlayer(t, g, "A").Coins
		_, err := g.Apply("A", engine.Action{Type: engine.ActionPlaceSeal, Row: tt.row, Slot: tt.slot, Color: tt.color})
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
		if after := mustPlayer(t, g, "A").Coins; after != before {
			t.Errorf("%s: rejected placement changed coins %d -> %d", tt.name, before, after)
		}
	}
	if n := g.State.FilledCount("A", 0); n != 1 {
		t.Errorf("rejected placements must not fill slots, got %d", n)
	}
}

func TestSealInsufficientCoins(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.StartingCoins = 1
	g := newGameWith(t, smallBoard(), cfg)
	_, err := g.Apply("A", engine.Action{Type: engine.ActionPlaceSeal, Row: 0, Slot: 1})
	if !errors.Is(err, engine.ErrIllegalPlacement) || !errors.Is(err, engine.ErrInsufficientCoins) {
		t.Fatalf("expected illegal placement for lack of coins, got %v", err)
	}
	if g.State.IsSlotFilled("A", 0, 1) {
		t.Fatal("slot must stay empty")
	}
	if p := mustPlayer(t, g, "A"); p.Coins != 1 {
		t.Fatalf("coins must be untouched, got %d", p.Coins)
	}
}

func TestQuoteDoesNotMutate(t *testing.T) {
	g := newGameWith(t, smallBoard(), engine.DefaultConfig())
	q, err := g.QuoteSeal("A", 0, 1)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q != (engine.Quote{Base: 2, Modifier: 0, Cost: 2}) {
		t.Errorf("unexpected quote %+v", q)
	}
	if _, err := g.QuoteObjective("A", "SILVER_1"); err != nil {
		t.Fatalf("quote objective: %v", err)
	}
	p := mustPlayer(t, g, "A")
	if p.Coins != 4 || len(p.Seals) != 0 || g.State.HasClaimed("SILVER_1") {
		t.Fatal("quotes must not change state")
	}
}

func TestPassiveSealDiscount(t *testing.T) {
	g := newGameWith(t, smallBoard(), engine.DefaultConfig())
	before, err := g.QuoteSeal("A", 0, 1)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	mustApply(t, g, "A", engine.Action{Type: engine.ActionRevealStamp, Index: 0})
	after, err := g.QuoteSeal("A", 0, 1)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if before.Cost != 2 {
		t.Errorf("a quote taken earlier keeps its cost, got %d", before.Cost)
	}
	if after != (engine.Quote{Base: 2, Modifier: -2, Cost: 0}) {
		t.Errorf("unexpected discounted quote %+v", after)
	}
	// Base 1 with -2 floors at 0.
	if q, _ := g.QuoteSeal("A", 0, 2); q.Cost != 0 {
		t.Errorf("cost must floor at 0, got %d", q.Cost)
	}
	mustApply(t, g, "A", engine.Action{Type: engine.ActionPlaceSeal, Row: 0, Slot: 1})
	if p := mustPlayer(t, g, "A"); p.Coins != 4 {
		t.Errorf("discounted seal should be free, coins %d", p.Coins)
	}
}

func TestObjectiveDiscount(t *testing.T) {
	g := newGameWith(t, smallBoard(), engine.DefaultConfig())
	mustApply(t, g, "A", engine.Action{Type: engine.ActionRevealStamp, Index: 1})
	q, err := g.QuoteObjective("A", "GOLDEN_1")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.Cost != 2 {
		t.Fatalf("GOLDEN_1 with -1: got %d, want 2", q.Cost)
	}
	if got := g.State.ActiveModifierFor("A", engine.KindPlaceObjective); got != -1 {
		t.Fatalf("active modifier: got %d, want -1", got)
	}
}

func TestObjectiveAlreadyClaimed(t *testing.T) {
	g := newGameWith(t, smallBoard(), engine.DefaultConfig())
	mustApply(t, g, "A", engine.Action{Type: engine.ActionClaimObjective, SlotID: "SILVER_1"})

	_, err := g.Apply("B", engine.Action{Type: engine.ActionClaimObjective, SlotID: "SILVER_1"})
	if !errors.Is(err, engine.ErrIllegalPlacement) || !errors.Is(err, engine.ErrAlreadyClaimed) {
		t.Fatalf("expected ErrIllegalPlacement wrapping ErrAlreadyClaimed, got %v", err)
	}
	if holder, _ := g.State.ClaimantOf("SILVER_1"); holder != "A" {
		t.Fatalf("claimant changed to %q", holder)
	}
	if _, err := g.QuoteObjective("A", "BRONZE_1"); !errors.Is(err, engine.ErrUnknownSlotReference) {
		t.Fatalf("expected ErrUnknownSlotReference, got %v", err)
	}
}

func TestTrackerRecordClaim(t *testing.T) {
	board := smallBoard()
	st := engine.NewBoardState(board, []string{"A", "B"}, 0)
	tr := engine.NewTracker(board)
	if err := tr.RecordClaim(st, "SILVER_1", "A"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := tr.RecordClaim(st, "SILVER_1", "B"); !errors.Is(err, engine.ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
	if err := tr.RecordClaim(st, "NOPE", "B"); !errors.Is(err, engine.ErrUnknownSlotReference) {
		t.Fatalf("expected ErrUnknownSlotReference, got %v", err)
	}
}
