package engine

import (
	"fmt"

	"go.uber.org/zap"
)

// TimingFilter selects which timings a resolution pass may apply.
type TimingFilter uint8

const (
	FilterImmediate TimingFilter = 1 << iota
	FilterPassive
	FilterEndgame

	FilterAll = FilterImmediate | FilterPassive | FilterEndgame
)

func (f TimingFilter) allows(t Timing) bool {
	switch t {
	case TimingImmediate:
		return f&FilterImmediate != 0
	case TimingPassive:
		return f&FilterPassive != 0
	case TimingEndgame:
		return f&FilterEndgame != 0
	}
	return false
}

// Delta is the change an immediate effect made to a player's state.
type Delta struct {
	VP                int          `json:"vp,omitempty"`
	Coins             int          `json:"coins,omitempty"`
	TempKnowledge     int          `json:"temp_knowledge,omitempty"`
	Theory            int          `json:"theory,omitempty"`
	Credits           map[Kind]int `json:"credits,omitempty"`
	UnlockedRow       *int         `json:"unlocked_row,omitempty"`
	TentReactivations int          `json:"tent_reactivations,omitempty"`
	ResearchCredits   int          `json:"research_credits,omitempty"`
}

// Outcome reports what happened to one effect in a resolution pass.
type Outcome struct {
	Effect   Effect         `json:"effect"`
	Timing   Timing         `json:"timing"`
	Delta    Delta          `json:"delta"`
	Modifier *Modifier      `json:"modifier,omitempty"`
	Deferred bool           `json:"deferred,omitempty"`
	Choice   *PendingChoice `json:"choice,omitempty"`
	Skipped  bool           `json:"skipped,omitempty"`
	Err      error          `json:"-"`
}

// Resolver interprets effects against a BoardState.
type Resolver struct {
	board  *PlayerBoard
	logger *zap.Logger
}

func NewResolver(board *PlayerBoard, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{board: board, logger: logger}
}

// Resolve applies effects in order for player. Each effect yields exactly
// one Outcome; a failure is reported in its own Outcome and later effects
// still resolve.
func (r *Resolver) Resolve(st *BoardState, player string, effects []Effect, filter TimingFilter, src Source) []Outcome {
	out := make([]Outcome, 0, len(effects))
	for _, e := range effects {
		out = append(out, r.resolveOne(st, player, e, filter, src, 0))
	}
	return out
}

// ResolveChoice applies option index of a pending choice. The chosen branch
// resolves with its own timing.
func (r *Resolver) ResolveChoice(st *BoardState, player string, choiceID, index int, filter TimingFilter) ([]Outcome, error) {
	if _, err := st.Player(player); err != nil {
		return nil, err
	}
	var pending *PendingChoice
	for i := range st.Pending {
		if st.Pending[i].ID == choiceID && st.Pending[i].Player == player {
			pending = &st.Pending[i]
			break
		}
	}
	if pending == nil {
		return nil, fmt.Errorf("%w: choice %d for %s", ErrNoPendingChoice, choiceID, player)
	}
	if index < 0 || index >= len(pending.Options) {
		return nil, fmt.Errorf("%w: %d of %d options", ErrInvalidChoice, index, len(pending.Options))
	}
	c, _ := st.takeChoice(player, choiceID)
	o := r.resolveOne(st, player, c.Options[index], filter, c.Source, c.Depth+1)
	r.logger.Debug("choice resolved", zap.String("player", player),
		zap.Int("choice", choiceID), zap.Int("index", index), zap.String("option", o.Effect.String()))
	return []Outcome{o}, nil
}

// settle applies a deferred effect during final scoring.
func (r *Resolver) settle(st *BoardState, player string, d DeferredEffect) Outcome {
	e := d.Effect
	e.Timing = TimingImmediate
	o := r.resolveOne(st, player, e, FilterImmediate, d.Source, 0)
	o.Timing = TimingEndgame
	return o
}

func (r *Resolver) resolveOne(st *BoardState, player string, e Effect, filter TimingFilter, src Source, depth int) Outcome {
	o := Outcome{Effect: e, Timing: e.EffectiveTiming()}
	defer func() {
		r.log(player, src, o)
	}()

	if err := e.validate(depth); err != nil {
		o.Err = err
		return o
	}
	p, err := st.Player(player)
	if err != nil {
		o.Err = err
		return o
	}
	if !filter.allows(o.Timing) {
		o.Skipped = true
		return o
	}

	switch o.Timing {
	case TimingPassive:
		m := Modifier{Kind: e.Kind, Delta: *e.CostModifier, Source: src}
		p.Modifiers[e.Kind] = append(p.Modifiers[e.Kind], m)
		o.Modifier = &m
	case TimingEndgame:
		p.Deferred = append(p.Deferred, DeferredEffect{Effect: e, Source: src})
		o.Deferred = true
	default:
		if e.Kind == KindChoice {
			c := PendingChoice{
				ID:      st.NextChoiceID,
				Player:  player,
				Options: e.Options,
				Source:  src,
				Depth:   depth,
			}
			st.NextChoiceID++
			st.Pending = append(st.Pending, c)
			o.Choice = &c
			return o
		}
		o.Delta, o.Err = r.apply(st, p, e, src)
	}
	return o
}

func (r *Resolver) apply(st *BoardState, p *PlayerState, e Effect, src Source) (Delta, error) {
	var d Delta
	n := e.Amount()
	switch kindClasses[e.Kind] {
	case classGain:
		switch e.Kind {
		case KindGainVP:
			p.VP += n
			if src.Kind == SourcePairBonus {
				p.BonusVP += n
			}
			d.VP = n
		case KindGainCoins:
			p.Coins += n
			d.Coins = n
		case KindGainTempKnowledge:
			p.TempKnowledge += n
			d.TempKnowledge = n
		case KindAdvanceTheory:
			p.Theory += n
			d.Theory = n
		}
	case classAction:
		p.Credits[e.Kind] += n
		d.Credits = map[Kind]int{e.Kind: n}
	case classObjective:
		switch e.Kind {
		case KindUnlockWorker5:
			row, ok := r.board.LastRow()
			if !ok {
				return d, fmt.Errorf("%w: board has no worker rows", ErrUnknownSlotReference)
			}
			if row.Locked() && p.unlockRow(row.RowIndex) {
				idx := row.RowIndex
				d.UnlockedRow = &idx
			}
		case KindReactivateTent:
			p.TentReactivations += n
			d.TentReactivations = n
		case KindResearchSpecimen:
			p.ResearchCredits += n
			d.ResearchCredits = n
		}
	default:
		return d, fmt.Errorf("%w: cannot apply %s", ErrMalformedEffect, e.Kind)
	}
	return d, nil
}

func (r *Resolver) log(player string, src Source, o Outcome) {
	fields := []zap.Field{
		zap.String("player", player),
		zap.String("kind", string(o.Effect.Kind)),
		zap.String("timing", string(o.Timing)),
		zap.String("source", src.String()),
	}
	switch {
	case o.Err != nil:
		r.logger.Debug("effect failed", append(fields, zap.Error(o.Err))...)
	case o.Skipped:
		r.logger.Debug("effect skipped", fields...)
	case o.Choice != nil:
		r.logger.Debug("choice pending", append(fields, zap.Int("choice", o.Choice.ID))...)
	case o.Modifier != nil:
		r.logger.Debug("modifier registered", append(fields, zap.Int("delta", o.Modifier.Delta))...)
	case o.Deferred:
		r.logger.Debug("effect deferred", fields...)
	default:
		r.logger.Debug("effect applied", append(fields, zap.Int("vp", o.Delta.VP), zap.Int("coins", o.Delta.Coins))...)
	}
}
