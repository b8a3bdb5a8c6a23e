package engine

import (
	"fmt"
	"slices"
	"sort"
)

// Tier is an objective slot type.
type Tier string

const (
	TierSilver Tier = "SILVER"
	TierGolden Tier = "GOLDEN"
)

func (t Tier) Valid() bool {
	return t == TierSilver || t == TierGolden
}

// SealColor is the colour of a seal placed on a worker row.
type SealColor string

const (
	SealBlue    SealColor = "BLUE"
	SealGreen   SealColor = "GREEN"
	SealYellow  SealColor = "YELLOW"
	SealRed     SealColor = "RED"
	SealSpecial SealColor = "SPECIAL"
)

func (c SealColor) Valid() bool {
	switch c {
	case SealBlue, SealGreen, SealYellow, SealRed, SealSpecial:
		return true
	}
	return false
}

// SealSlot is one position on a worker row.
type SealSlot struct {
	SlotIndex          int     `json:"slot_index"`
	PlacementCost      int     `json:"placement_cost"`
	DistinctionTrigger Tier    `json:"distinction_trigger,omitempty"`
	RewardAction       *Effect `json:"reward_action,omitempty"`
}

// WorkerRow is a row of seal slots. A row with MaxSeals == 0 starts locked.
type WorkerRow struct {
	RowIndex               int        `json:"row_index"`
	MaxSeals               int        `json:"max_seals"`
	HasStartingSpecialSeal bool       `json:"has_starting_special_seal,omitempty"`
	SealSlots              []SealSlot `json:"seal_slots"`
}

// Locked reports whether the row is closed until an effect unlocks it.
func (r WorkerRow) Locked() bool { return r.MaxSeals == 0 }

// Capacity is the number of seals the row can hold once open.
func (r WorkerRow) Capacity() int {
	if r.MaxSeals > 0 {
		return r.MaxSeals
	}
	return len(r.SealSlots)
}

// Slot looks up a seal slot by its index.
func (r WorkerRow) Slot(index int) (SealSlot, bool) {
	for _, s := range r.SealSlots {
		if s.SlotIndex == index {
			return s, true
		}
	}
	return SealSlot{}, false
}

// ObjectiveSlot holds a silver or golden objective tile once claimed.
type ObjectiveSlot struct {
	SlotID        string   `json:"slot_id"`
	Type          Tier     `json:"type"`
	Position      int      `json:"position"`
	PlacementCost int      `json:"placement_cost"`
	RewardAction  []Effect `json:"reward_action,omitempty"`
}

// ReserveSlotType is the only type a reserve slot carries.
const ReserveSlotType = "RESERVE"

// ReserveSlot holds an objective tile a player has taken but not yet placed.
type ReserveSlot struct {
	SlotID   string `json:"slot_id"`
	Type     string `json:"type"`
	Position int    `json:"position"`
}

// ObjectivePairBonus rewards one player claiming both condition slots.
type ObjectivePairBonus struct {
	ID           string    `json:"id"`
	Condition    [2]string `json:"condition"`
	RewardAction Effect    `json:"reward_action"`
}

// RevealSlot is a tent or stamp slot uncovered during play. A nil
// RevealedAction is an empty slot.
type RevealSlot struct {
	SlotIndex      int     `json:"slot_index"`
	RevealedAction *Effect `json:"revealed_action,omitempty"`
}

// SpecimenGridSlot names the specimen token printed on a grid cell.
type SpecimenGridSlot struct {
	SpecimenTokenID string `json:"specimen_token_id"`
}

// PlayerBoard is the immutable configuration shared by every player of a game.
type PlayerBoard struct {
	BoardID        string               `json:"board_id"`
	WorkerRows     []WorkerRow          `json:"worker_rows"`
	ObjectiveSlots []ObjectiveSlot      `json:"objective_slots"`
	ReserveSlots   []ReserveSlot        `json:"reserve_objective_slots,omitempty"`
	PairBonuses    []ObjectivePairBonus `json:"pair_bonuses,omitempty"`
	TentSlots      []RevealSlot         `json:"tent_slots"`
	StampSlots     []RevealSlot         `json:"stamp_slots"`
	SpecimenGrid   []SpecimenGridSlot   `json:"specimen_grid_slots"`
}

// Row looks up a worker row by index.
func (b *PlayerBoard) Row(index int) (WorkerRow, bool) {
	for _, r := range b.WorkerRows {
		if r.RowIndex == index {
			return r, true
		}
	}
	return WorkerRow{}, false
}

// LastRow returns the highest-indexed worker row.
func (b *PlayerBoard) LastRow() (WorkerRow, bool) {
	if len(b.WorkerRows) == 0 {
		return WorkerRow{}, false
	}
	last := b.WorkerRows[0]
	for _, r := range b.WorkerRows[1:] {
		if r.RowIndex > last.RowIndex {
			last = r
		}
	}
	return last, true
}

// Objective looks up an objective slot by id.
func (b *PlayerBoard) Objective(slotID string) (ObjectiveSlot, bool) {
	for _, s := range b.ObjectiveSlots {
		if s.SlotID == slotID {
			return s, true
		}
	}
	return ObjectiveSlot{}, false
}

// ObjectivesOfTier returns the slots of one tier ordered by position.
func (b *PlayerBoard) ObjectivesOfTier(t Tier) []ObjectiveSlot {
	var out []ObjectiveSlot
	for _, s := range b.ObjectiveSlots {
		if s.Type == t {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// Reserve returns the reserve slots ordered by position.
func (b *PlayerBoard) Reserve() []ReserveSlot {
	out := slices.Clone(b.ReserveSlots)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// Tent looks up a tent slot by index.
func (b *PlayerBoard) Tent(index int) (RevealSlot, bool) {
	return findReveal(b.TentSlots, index)
}

// Stamp looks up a stamp slot by index.
func (b *PlayerBoard) Stamp(index int) (RevealSlot, bool) {
	return findReveal(b.StampSlots, index)
}

func findReveal(slots []RevealSlot, index int) (RevealSlot, bool) {
	for _, s := range slots {
		if s.SlotIndex == index {
			return s, true
		}
	}
	return RevealSlot{}, false
}

// HasSpecimen reports whether token is printed on the grid.
func (b *PlayerBoard) HasSpecimen(token string) bool {
	for _, s := range b.SpecimenGrid {
		if s.SpecimenTokenID == token {
			return true
		}
	}
	return false
}

// Validate checks structural integrity. It is called once at setup; any
// error aborts the game before play begins.
func (b *PlayerBoard) Validate() error {
	if b.BoardID == "" {
		return fmt.Errorf("%w: missing board_id", ErrInvalidBoard)
	}
	if err := b.validateRows(); err != nil {
		return err
	}
	tiers := make(map[Tier]bool)
	ids := make(map[string]bool)
	for _, s := range b.ObjectiveSlots {
		if s.SlotID == "" {
			return fmt.Errorf("%w: objective slot without slot_id", ErrInvalidBoard)
		}
		if ids[s.SlotID] {
			return fmt.Errorf("%w: duplicate objective slot %s", ErrInvalidBoard, s.SlotID)
		}
		ids[s.SlotID] = true
		if !s.Type.Valid() {
			return fmt.Errorf("%w: objective slot %s has type %q", ErrInvalidBoard, s.SlotID, s.Type)
		}
		if s.PlacementCost < 0 {
			return fmt.Errorf("%w: objective slot %s has negative cost", ErrInvalidBoard, s.SlotID)
		}
		tiers[s.Type] = true
		for i, e := range s.RewardAction {
			if err := e.Validate(); err != nil {
				return fmt.Errorf("objective slot %s reward %d: %w", s.SlotID, i, err)
			}
		}
	}
	if err := b.validateReserve(ids); err != nil {
		return err
	}
	bonusIDs := make(map[string]bool)
	for _, pb := range b.PairBonuses {
		if pb.ID == "" || bonusIDs[pb.ID] {
			return fmt.Errorf("%w: pair bonus id %q missing or duplicated", ErrInvalidBoard, pb.ID)
		}
		bonusIDs[pb.ID] = true
		for _, ref := range pb.Condition {
			if !ids[ref] {
				return fmt.Errorf("%w: pair bonus %s names %q", ErrUnknownSlotReference, pb.ID, ref)
			}
		}
		if pb.Condition[0] == pb.Condition[1] {
			return fmt.Errorf("%w: pair bonus %s names %s twice", ErrInvalidBoard, pb.ID, pb.Condition[0])
		}
		if err := pb.RewardAction.Validate(); err != nil {
			return fmt.Errorf("pair bonus %s: %w", pb.ID, err)
		}
	}
	for _, r := range b.WorkerRows {
		for _, s := range r.SealSlots {
			if s.DistinctionTrigger != "" && !tiers[s.DistinctionTrigger] {
				return fmt.Errorf("%w: row %d slot %d triggers tier %q with no objective slots",
					ErrUnknownSlotReference, r.RowIndex, s.SlotIndex, s.DistinctionTrigger)
			}
		}
	}
	if err := validateReveals("tent", b.TentSlots); err != nil {
		return err
	}
	if err := validateReveals("stamp", b.StampSlots); err != nil {
		return err
	}
	tokens := make(map[string]bool)
	for i, s := range b.SpecimenGrid {
		if s.SpecimenTokenID == "" || tokens[s.SpecimenTokenID] {
			return fmt.Errorf("%w: specimen cell %d token %q missing or duplicated", ErrInvalidBoard, i, s.SpecimenTokenID)
		}
		tokens[s.SpecimenTokenID] = true
	}
	return nil
}

func (b *PlayerBoard) validateRows() error {
	if len(b.WorkerRows) == 0 {
		return fmt.Errorf("%w: no worker rows", ErrInvalidBoard)
	}
	seen := make(map[int]bool)
	for _, r := range b.WorkerRows {
		if r.RowIndex < 0 || r.RowIndex >= len(b.WorkerRows) || seen[r.RowIndex] {
			return fmt.Errorf("%w: row indices must be unique and contiguous from 0, got %d", ErrInvalidBoard, r.RowIndex)
		}
		seen[r.RowIndex] = true
		if r.MaxSeals < 0 {
			return fmt.Errorf("%w: row %d has negative max_seals", ErrInvalidBoard, r.RowIndex)
		}
		if r.HasStartingSpecialSeal && len(r.SealSlots) == 0 {
			return fmt.Errorf("%w: row %d has a starting seal but no slots", ErrInvalidBoard, r.RowIndex)
		}
		slots := make(map[int]bool)
		for _, s := range r.SealSlots {
			if s.SlotIndex < 0 || slots[s.SlotIndex] {
				return fmt.Errorf("%w: row %d slot index %d invalid or duplicated", ErrInvalidBoard, r.RowIndex, s.SlotIndex)
			}
			slots[s.SlotIndex] = true
			if s.PlacementCost < 0 {
				return fmt.Errorf("%w: row %d slot %d has negative cost", ErrInvalidBoard, r.RowIndex, s.SlotIndex)
			}
			if s.DistinctionTrigger != "" && !s.DistinctionTrigger.Valid() {
				return fmt.Errorf("%w: row %d slot %d has trigger %q", ErrInvalidBoard, r.RowIndex, s.SlotIndex, s.DistinctionTrigger)
			}
			if s.RewardAction != nil {
				if err := s.RewardAction.Validate(); err != nil {
					return fmt.Errorf("row %d slot %d: %w", r.RowIndex, s.SlotIndex, err)
				}
			}
		}
	}
	return nil
}

// validateReserve checks reserve slots against each other and against the
// objective slot ids in taken.
func (b *PlayerBoard) validateReserve(taken map[string]bool) error {
	positions := make(map[int]bool)
	seen := make(map[string]bool)
	for _, s := range b.ReserveSlots {
		if s.SlotID == "" || seen[s.SlotID] || taken[s.SlotID] {
			return fmt.Errorf("%w: reserve slot id %q missing or duplicated", ErrInvalidBoard, s.SlotID)
		}
		seen[s.SlotID] = true
		if s.Type != ReserveSlotType {
			return fmt.Errorf("%w: reserve slot %s has type %q", ErrInvalidBoard, s.SlotID, s.Type)
		}
		if s.Position < 1 || positions[s.Position] {
			return fmt.Errorf("%w: reserve slot %s position %d invalid or duplicated", ErrInvalidBoard, s.SlotID, s.Position)
		}
		positions[s.Position] = true
	}
	return nil
}

func validateReveals(kind string, slots []RevealSlot) error {
	seen := make(map[int]bool)
	for _, s := range slots {
		if s.SlotIndex < 0 || seen[s.SlotIndex] {
			return fmt.Errorf("%w: %s slot index %d invalid or duplicated", ErrInvalidBoard, kind, s.SlotIndex)
		}
		seen[s.SlotIndex] = true
		if s.RevealedAction != nil {
			if err := s.RevealedAction.Validate(); err != nil {
				return fmt.Errorf("%s slot %d: %w", kind, s.SlotIndex, err)
			}
		}
	}
	return nil
}
