package engine

import (
	"fmt"

	"go.uber.org/zap"
)

// Quote is the cost of a placement after modifiers.
type Quote struct {
	Base     int `json:"base"`
	Modifier int `json:"modifier"`
	Cost     int `json:"cost"`
}

func quote(st *BoardState, player string, kind Kind, base int) Quote {
	mod := st.ActiveModifierFor(player, kind)
	return Quote{Base: base, Modifier: mod, Cost: max(0, base+mod)}
}

// PlacementRule adds ordering constraints on top of the board's own
// legality checks. A nil error means the rule allows the placement.
type PlacementRule interface {
	Name() string
	CheckSeal(board *PlayerBoard, st *BoardState, player string, row, slot int) error
	CheckObjective(board *PlayerBoard, st *BoardState, player string, slotID string) error
}

// Validator checks and commits seal and objective placements.
type Validator struct {
	board      *PlayerBoard
	sealRule   PlacementRule
	objectives PlacementRule
	tracker    *Tracker
	logger     *zap.Logger
}

// NewValidator builds a validator. Nil rules impose no ordering.
func NewValidator(board *PlayerBoard, sealRule, objectiveRule PlacementRule, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{
		board:      board,
		sealRule:   sealRule,
		objectives: objectiveRule,
		tracker:    NewTracker(board),
		logger:     logger,
	}
}

// QuoteSeal checks a seal placement without changing state.
func (v *Validator) QuoteSeal(st *BoardState, player string, row, slot int) (Quote, error) {
	p, err := st.Player(player)
	if err != nil {
		return Quote{}, err
	}
	r, ok := v.board.Row(row)
	if !ok {
		return Quote{}, fmt.Errorf("%w: no row %d", ErrIllegalPlacement, row)
	}
	if !st.IsRowUnlocked(player, row) {
		return Quote{}, fmt.Errorf("%w: row %d is locked", ErrIllegalPlacement, row)
	}
	s, ok := r.Slot(slot)
	if !ok {
		return Quote{}, fmt.Errorf("%w: row %d has no slot %d", ErrIllegalPlacement, row, slot)
	}
	if st.IsSlotFilled(player, row, slot) {
		return Quote{}, fmt.Errorf("%w: row %d slot %d is occupied", ErrIllegalPlacement, row, slot)
	}
	if st.FilledCount(player, row) >= r.Capacity() {
		return Quote{}, fmt.Errorf("%w: row %d is full", ErrIllegalPlacement, row)
	}
	q := quote(st, player, KindPlaceSeal, s.PlacementCost)
	if p.Coins < q.Cost {
		return q, fmt.Errorf("%w: %w: seal costs %d, have %d", ErrIllegalPlacement, ErrInsufficientCoins, q.Cost, p.Coins)
	}
	if v.sealRule != nil {
		if err := v.sealRule.CheckSeal(v.board, st, player, row, slot); err != nil {
			return q, fmt.Errorf("%w: %s: %w", ErrIllegalPlacement, v.sealRule.Name(), err)
		}
	}
	return q, nil
}

// QuoteObjective checks an objective claim without changing state.
func (v *Validator) QuoteObjective(st *BoardState, player string, slotID string) (Quote, error) {
	p, err := st.Player(player)
	if err != nil {
		return Quote{}, err
	}
	s, ok := v.board.Objective(slotID)
	if !ok {
		return Quote{}, fmt.Errorf("%w: %w: %q", ErrIllegalPlacement, ErrUnknownSlotReference, slotID)
	}
	if holder, ok := st.ClaimantOf(slotID); ok {
		return Quote{}, fmt.Errorf("%w: %w: %s holds %s", ErrIllegalPlacement, ErrAlreadyClaimed, holder, slotID)
	}
	q := quote(st, player, KindPlaceObjective, s.PlacementCost)
	if p.Coins < q.Cost {
		return q, fmt.Errorf("%w: %w: %s costs %d, have %d", ErrIllegalPlacement, ErrInsufficientCoins, slotID, q.Cost, p.Coins)
	}
	if v.objectives != nil {
		if err := v.objectives.CheckObjective(v.board, st, player, slotID); err != nil {
			return q, fmt.Errorf("%w: %s: %w", ErrIllegalPlacement, v.objectives.Name(), err)
		}
	}
	return q, nil
}

// CommitSeal re-checks the placement, then pays for it and occupies the
// slot. A failed check leaves st untouched.
func (v *Validator) CommitSeal(st *BoardState, player string, row, slot int, color SealColor) (Quote, error) {
	q, err := v.QuoteSeal(st, player, row, slot)
	if err != nil {
		v.logger.Debug("seal rejected", zap.String("player", player),
			zap.Int("row", row), zap.Int("slot", slot), zap.Error(err))
		return q, err
	}
	if color == "" {
		color = SealBlue
	}
	if !color.Valid() {
		return q, fmt.Errorf("%w: unknown seal colour %q", ErrInvalidAction, color)
	}
	p, _ := st.Player(player)
	if err := p.spend(q.Cost); err != nil {
		return q, fmt.Errorf("%w: %w", ErrIllegalPlacement, err)
	}
	p.Seals = append(p.Seals, Seal{Row: row, Slot: slot, Color: color})
	return q, nil
}

// CommitObjective re-checks the claim, then pays for it and records it.
func (v *Validator) CommitObjective(st *BoardState, player string, slotID string) (Quote, error) {
	q, err := v.QuoteObjective(st, player, slotID)
	if err != nil {
		v.logger.Debug("objective rejected", zap.String("player", player),
			zap.String("slot", slotID), zap.Error(err))
		return q, err
	}
	p, _ := st.Player(player)
	if err := p.spend(q.Cost); err != nil {
		return q, fmt.Errorf("%w: %w", ErrIllegalPlacement, err)
	}
	if err := v.tracker.RecordClaim(st, slotID, player); err != nil {
		p.Coins += q.Cost
		return q, fmt.Errorf("%w: %w", ErrIllegalPlacement, err)
	}
	return q, nil
}
