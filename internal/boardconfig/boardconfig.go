// Package boardconfig loads player board definitions from JSON and returns
// them validated.
package boardconfig

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"journeyboard/internal/engine"
)

//go:embed standard_board.json
var standardBoard []byte

// StandardBoardID is the id of the embedded board.
const StandardBoardID = "STANDARD_PLAYER_BOARD"

// Standard returns the embedded standard player board.
func Standard() (*engine.PlayerBoard, error) {
	return Parse(standardBoard)
}

// Load reads and parses the board at path. An empty path loads the
// standard board.
func Load(path string) (*engine.PlayerBoard, error) {
	if path == "" {
		return Standard()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read board: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

type rawBoard struct {
	BoardID            string            `json:"board_id"`
	WorkerRows         []rawRow          `json:"worker_rows"`
	ObjectiveSlots     []json.RawMessage `json:"objective_slots"`
	ReserveSlots       []json.RawMessage `json:"reserve_objective_slots"`
	ObjectivePairBonus json.RawMessage   `json:"objective_pair_bonus"`
	TentSlots          []rawReveal       `json:"tent_slots"`
	StampSlots         []rawReveal       `json:"stamp_slots"`
	SpecimenGridSlots  []struct {
		SpecimenTokenID string `json:"specimen_token_id"`
	} `json:"specimen_grid_slots"`
}

type rawRow struct {
	RowIndex               int           `json:"row_index"`
	MaxSeals               int           `json:"max_seals"`
	HasStartingSpecialSeal bool          `json:"has_starting_special_seal"`
	SealSlots              []rawSealSlot `json:"seal_slots"`
}

type rawSealSlot struct {
	SlotIndex          int             `json:"slot_index"`
	PlacementCost      int             `json:"placement_cost"`
	DistinctionTrigger string          `json:"distinction_trigger"`
	RewardAction       json.RawMessage `json:"reward_action"`
}

type rawObjective struct {
	SlotID        string          `json:"slot_id"`
	Type          string          `json:"type"`
	Position      *int            `json:"position"`
	PlacementCost int             `json:"placement_cost"`
	RewardAction  json.RawMessage `json:"reward_action"`
}

type rawReserve struct {
	SlotID   string `json:"slot_id"`
	Type     string `json:"type"`
	Position *int   `json:"position"`
}

type rawPairBonus struct {
	ID           string          `json:"id"`
	Condition    []string        `json:"condition"`
	RewardAction json.RawMessage `json:"reward_action"`
}

type rawReveal struct {
	SlotIndex      int             `json:"slot_index"`
	RevealedAction json.RawMessage `json:"revealed_action"`
}

// Parse decodes a board definition and validates it.
func Parse(data []byte) (*engine.PlayerBoard, error) {
	var raw rawBoard
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrInvalidBoard, err)
	}
	b := &engine.PlayerBoard{BoardID: raw.BoardID}

	for _, r := range raw.WorkerRows {
		row := engine.WorkerRow{
			RowIndex:               r.RowIndex,
			MaxSeals:               r.MaxSeals,
			HasStartingSpecialSeal: r.HasStartingSpecialSeal,
		}
		for _, s := range r.SealSlots {
			reward, err := engine.ParseEffect(s.RewardAction)
			if err != nil {
				return nil, fmt.Errorf("row %d slot %d: %w", r.RowIndex, s.SlotIndex, err)
			}
			row.SealSlots = append(row.SealSlots, engine.SealSlot{
				SlotIndex:          s.SlotIndex,
				PlacementCost:      s.PlacementCost,
				DistinctionTrigger: engine.Tier(s.DistinctionTrigger),
				RewardAction:       reward,
			})
		}
		b.WorkerRows = append(b.WorkerRows, row)
	}
	sort.SliceStable(b.WorkerRows, func(i, j int) bool {
		return b.WorkerRows[i].RowIndex < b.WorkerRows[j].RowIndex
	})

	for i, item := range raw.ObjectiveSlots {
		if isAnnotation(item) {
			continue
		}
		var o rawObjective
		if err := json.Unmarshal(item, &o); err != nil {
			return nil, fmt.Errorf("%w: objective slot %d: %v", engine.ErrInvalidBoard, i, err)
		}
		if o.SlotID == "" {
			return nil, fmt.Errorf("%w: objective slot %d has no slot_id", engine.ErrInvalidBoard, i)
		}
		slot, err := parseObjective(o)
		if err != nil {
			return nil, err
		}
		b.ObjectiveSlots = append(b.ObjectiveSlots, slot)
	}
	for i, item := range raw.ReserveSlots {
		if isAnnotation(item) {
			continue
		}
		slot, err := parseReserve(i, item)
		if err != nil {
			return nil, err
		}
		b.ReserveSlots = append(b.ReserveSlots, slot)
	}

	bonuses, err := parsePairBonuses(raw.ObjectivePairBonus, b)
	if err != nil {
		return nil, err
	}
	b.PairBonuses = bonuses

	if b.TentSlots, err = parseReveals("tent", raw.TentSlots); err != nil {
		return nil, err
	}
	if b.StampSlots, err = parseReveals("stamp", raw.StampSlots); err != nil {
		return nil, err
	}
	for _, s := range raw.SpecimenGridSlots {
		b.SpecimenGrid = append(b.SpecimenGrid, engine.SpecimenGridSlot{SpecimenTokenID: s.SpecimenTokenID})
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func parseObjective(o rawObjective) (engine.ObjectiveSlot, error) {
	rewards, err := engine.ParseEffects(o.RewardAction)
	if err != nil {
		return engine.ObjectiveSlot{}, fmt.Errorf("objective slot %s: %w", o.SlotID, err)
	}
	pos := 0
	if o.Position != nil {
		pos = *o.Position
	} else if pos, err = trailingNumber(o.SlotID); err != nil {
		return engine.ObjectiveSlot{}, fmt.Errorf("%w: objective slot %s has no position", engine.ErrInvalidBoard, o.SlotID)
	}
	tier := o.Type
	if tier == "" {
		tier, _, _ = strings.Cut(o.SlotID, "_")
	}
	return engine.ObjectiveSlot{
		SlotID:        o.SlotID,
		Type:          engine.Tier(strings.ToUpper(tier)),
		Position:      pos,
		PlacementCost: o.PlacementCost,
		RewardAction:  rewards,
	}, nil
}

// parseReserve reads one reserve slot. Type defaults to RESERVE and the
// position to the number ending the slot id.
func parseReserve(i int, item json.RawMessage) (engine.ReserveSlot, error) {
	var r rawReserve
	if err := json.Unmarshal(item, &r); err != nil {
		return engine.ReserveSlot{}, fmt.Errorf("%w: reserve slot %d: %v", engine.ErrInvalidBoard, i, err)
	}
	if r.SlotID == "" {
		return engine.ReserveSlot{}, fmt.Errorf("%w: reserve slot %d has no slot_id", engine.ErrInvalidBoard, i)
	}
	slot := engine.ReserveSlot{SlotID: r.SlotID, Type: strings.ToUpper(r.Type)}
	if slot.Type == "" {
		slot.Type = engine.ReserveSlotType
	}
	if r.Position != nil {
		slot.Position = *r.Position
	} else {
		pos, err := trailingNumber(r.SlotID)
		if err != nil {
			return engine.ReserveSlot{}, fmt.Errorf("%w: reserve slot %s has no position", engine.ErrInvalidBoard, r.SlotID)
		}
		slot.Position = pos
	}
	return slot, nil
}

// isAnnotation reports whether a list entry only carries "_"-prefixed keys
// such as "_comment".
func isAnnotation(item json.RawMessage) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil || len(fields) == 0 {
		return false
	}
	for k := range fields {
		if !strings.HasPrefix(k, "_") {
			return false
		}
	}
	return true
}

// parsePairBonuses accepts a single bonus object or a list of them. A bonus
// without a condition pairs the last silver and last golden slot.
func parsePairBonuses(raw json.RawMessage, b *engine.PlayerBoard) ([]engine.ObjectivePairBonus, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var items []rawPairBonus
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: objective_pair_bonus: %v", engine.ErrInvalidBoard, err)
		}
	} else {
		var one rawPairBonus
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, fmt.Errorf("%w: objective_pair_bonus: %v", engine.ErrInvalidBoard, err)
		}
		items = []rawPairBonus{one}
	}

	var out []engine.ObjectivePairBonus
	for i, item := range items {
		reward, err := engine.ParseEffect(item.RewardAction)
		if err != nil {
			return nil, fmt.Errorf("objective pair bonus %d: %w", i, err)
		}
		if reward == nil {
			continue
		}
		pb := engine.ObjectivePairBonus{ID: item.ID, RewardAction: *reward}
		if pb.ID == "" {
			pb.ID = "PAIR_BONUS_" + strconv.Itoa(i+1)
		}
		switch len(item.Condition) {
		case 2:
			pb.Condition = [2]string{item.Condition[0], item.Condition[1]}
		case 0:
			pb.Condition = [2]string{lastOfTier(b, engine.TierSilver), lastOfTier(b, engine.TierGolden)}
		default:
			return nil, fmt.Errorf("%w: pair bonus %s needs exactly 2 slots, got %d", engine.ErrInvalidBoard, pb.ID, len(item.Condition))
		}
		out = append(out, pb)
	}
	return out, nil
}

func lastOfTier(b *engine.PlayerBoard, t engine.Tier) string {
	slots := b.ObjectivesOfTier(t)
	if len(slots) == 0 {
		return ""
	}
	return slots[len(slots)-1].SlotID
}

func parseReveals(kind string, raw []rawReveal) ([]engine.RevealSlot, error) {
	out := make([]engine.RevealSlot, 0, len(raw))
	for _, r := range raw {
		e, err := engine.ParseEffect(r.RevealedAction)
		if err != nil {
			return nil, fmt.Errorf("%s slot %d: %w", kind, r.SlotIndex, err)
		}
		out = append(out, engine.RevealSlot{SlotIndex: r.SlotIndex, RevealedAction: e})
	}
	return out, nil
}

func trailingNumber(s string) (int, error) {
	i := len(s)
	for i > 0 && unicode.IsDigit(rune(s[i-1])) {
		i--
	}
	return strconv.Atoi(s[i:])
}
