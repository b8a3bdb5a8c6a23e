package engine

import (
	"fmt"
	"slices"
)

// SourceKind names the board element an effect came from.
type SourceKind string

const (
	SourceSealSlot      SourceKind = "seal_slot"
	SourceObjectiveSlot SourceKind = "objective_slot"
	SourcePairBonus     SourceKind = "pair_bonus"
	SourceTent          SourceKind = "tent"
	SourceStamp         SourceKind = "stamp"
	SourceExternal      SourceKind = "external"
)

// Source identifies where an effect, modifier or deferred entry came from.
type Source struct {
	Kind SourceKind `json:"kind"`
	Ref  string     `json:"ref,omitempty"`
}

func (s Source) String() string {
	if s.Ref == "" {
		return string(s.Kind)
	}
	return string(s.Kind) + ":" + s.Ref
}

func sealSource(row, slot int) Source {
	return Source{Kind: SourceSealSlot, Ref: fmt.Sprintf("%d/%d", row, slot)}
}

// Seal is a placed seal. Seals never leave their slot.
type Seal struct {
	Row   int       `json:"row"`
	Slot  int       `json:"slot"`
	Color SealColor `json:"color"`
}

// Modifier is a standing adjustment to the cost of an action kind.
type Modifier struct {
	Kind   Kind   `json:"kind"`
	Delta  int    `json:"delta"`
	Source Source `json:"source"`
}

// DeferredEffect is an ENDGAME effect waiting for final scoring.
type DeferredEffect struct {
	Effect Effect `json:"effect"`
	Source Source `json:"source"`
}

// PendingChoice is a CHOICE awaiting the owning player's selection.
type PendingChoice struct {
	ID      int      `json:"id"`
	Player  string   `json:"player"`
	Options []Effect `json:"options"`
	Source  Source   `json:"source"`
	Depth   int      `json:"depth"`
}

// PlayerState is one player's mutable board state.
type PlayerState struct {
	ID                string              `json:"id"`
	Coins             int                 `json:"coins"`
	VP                int                 `json:"vp"`
	BonusVP           int                 `json:"bonus_vp"`
	TempKnowledge     int                 `json:"temp_knowledge"`
	Theory            int                 `json:"theory"`
	Seals             []Seal              `json:"seals"`
	UnlockedRows      []int               `json:"unlocked_rows,omitempty"`
	Modifiers         map[Kind][]Modifier `json:"modifiers,omitempty"`
	Deferred          []DeferredEffect    `json:"deferred,omitempty"`
	Credits           map[Kind]int        `json:"credits,omitempty"`
	TentsRevealed     []int               `json:"tents_revealed,omitempty"`
	StampsRevealed    []int               `json:"stamps_revealed,omitempty"`
	TentReactivations int                 `json:"tent_reactivations"`
	ResearchCredits   int                 `json:"research_credits"`
	Specimens         []string            `json:"specimens,omitempty"`
	Reserve           map[string]string   `json:"reserve,omitempty"`
	Distinctions      map[Tier]int        `json:"distinctions,omitempty"`
}

func newPlayerState(id string, coins int) *PlayerState {
	return &PlayerState{
		ID:           id,
		Coins:        coins,
		Modifiers:    make(map[Kind][]Modifier),
		Credits:      make(map[Kind]int),
		Distinctions: make(map[Tier]int),
		Reserve:      make(map[string]string),
	}
}

// BoardState is the live state of every player's board in one game.
// Objective claims are game-wide: a slot id has at most one claimant.
type BoardState struct {
	Players      []*PlayerState    `json:"players"`
	Claims       map[string]string `json:"claims"`
	FiredBonuses map[string]string `json:"fired_bonuses"`
	Pending      []PendingChoice   `json:"pending,omitempty"`
	NextChoiceID int               `json:"next_choice_id"`
	Finalized    bool              `json:"finalized"`
	Scores       []ScoreEntry      `json:"scores,omitempty"`

	board *PlayerBoard
}

// NewBoardState creates an empty state for players on board.
func NewBoardState(board *PlayerBoard, players []string, startingCoins int) *BoardState {
	st := &BoardState{
		Claims:       make(map[string]string),
		FiredBonuses: make(map[string]string),
		NextChoiceID: 1,
		board:        board,
	}
	for _, id := range players {
		st.Players = append(st.Players, newPlayerState(id, startingCoins))
	}
	return st
}

// Board returns the configuration this state was built for.
func (st *BoardState) Board() *PlayerBoard { return st.board }

func (st *BoardState) attach(board *PlayerBoard) {
	st.board = board
	if st.Claims == nil {
		st.Claims = make(map[string]string)
	}
	if st.FiredBonuses == nil {
		st.FiredBonuses = make(map[string]string)
	}
	for _, p := range st.Players {
		if p.Modifiers == nil {
			p.Modifiers = make(map[Kind][]Modifier)
		}
		if p.Credits == nil {
			p.Credits = make(map[Kind]int)
		}
		if p.Distinctions == nil {
			p.Distinctions = make(map[Tier]int)
		}
		if p.Reserve == nil {
			p.Reserve = make(map[string]string)
		}
	}
}

// Player returns the state for id.
func (st *BoardState) Player(id string) (*PlayerState, error) {
	for _, p := range st.Players {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
}

// IsSlotFilled reports whether player has a seal on row/slot.
func (st *BoardState) IsSlotFilled(player string, row, slot int) bool {
	p, err := st.Player(player)
	if err != nil {
		return false
	}
	for _, s := range p.Seals {
		if s.Row == row && s.Slot == slot {
			return true
		}
	}
	return false
}

// FilledCount returns the number of seals player has on row.
func (st *BoardState) FilledCount(player string, row int) int {
	p, err := st.Player(player)
	if err != nil {
		return 0
	}
	n := 0
	for _, s := range p.Seals {
		if s.Row == row {
			n++
		}
	}
	return n
}

// IsRowUnlocked reports whether player may place seals on row. A state
// decoded without its board reports every row as locked.
func (st *BoardState) IsRowUnlocked(player string, row int) bool {
	if st.board == nil {
		return false
	}
	r, ok := st.board.Row(row)
	if !ok {
		return false
	}
	if !r.Locked() {
		return true
	}
	p, err := st.Player(player)
	if err != nil {
		return false
	}
	return slices.Contains(p.UnlockedRows, row)
}

// ActiveModifierFor sums every standing modifier player holds for kind.
func (st *BoardState) ActiveModifierFor(player string, kind Kind) int {
	p, err := st.Player(player)
	if err != nil {
		return 0
	}
	sum := 0
	for _, m := range p.Modifiers[kind] {
		sum += m.Delta
	}
	return sum
}

// EffectiveCost applies player's modifiers for kind to base, floored at 0.
func (st *BoardState) EffectiveCost(player string, kind Kind, base int) int {
	return max(0, base+st.ActiveModifierFor(player, kind))
}

// HasClaimed reports whether any player has claimed slotID.
func (st *BoardState) HasClaimed(slotID string) bool {
	_, ok := st.Claims[slotID]
	return ok
}

// ClaimantOf returns the player holding slotID.
func (st *BoardState) ClaimantOf(slotID string) (string, bool) {
	p, ok := st.Claims[slotID]
	return p, ok
}

// PendingFor returns the choices player still has to resolve.
func (st *BoardState) PendingFor(player string) []PendingChoice {
	var out []PendingChoice
	for _, c := range st.Pending {
		if c.Player == player {
			out = append(out, c)
		}
	}
	return out
}

// AdjustCoins applies income or spending from outside the personal board.
// Coins never go below zero.
func (st *BoardState) AdjustCoins(player string, delta int) error {
	p, err := st.Player(player)
	if err != nil {
		return err
	}
	return p.spend(-delta)
}

func (p *PlayerState) spend(n int) error {
	if p.Coins-n < 0 {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientCoins, p.Coins, n)
	}
	p.Coins -= n
	return nil
}

func (p *PlayerState) unlockRow(row int) bool {
	if slices.Contains(p.UnlockedRows, row) {
		return false
	}
	p.UnlockedRows = append(p.UnlockedRows, row)
	return true
}

// ReservedSlotOf returns the reserve slot holding tile for player.
func (st *BoardState) ReservedSlotOf(player, tile string) (string, bool) {
	p, err := st.Player(player)
	if err != nil {
		return "", false
	}
	for slotID, held := range p.Reserve {
		if held == tile {
			return slotID, true
		}
	}
	return "", false
}

func (st *BoardState) takeChoice(player string, id int) (PendingChoice, bool) {
	for i, c := range st.Pending {
		if c.ID == id && c.Player == player {
			st.Pending = append(st.Pending[:i:i], st.Pending[i+1:]...)
			return c, true
		}
	}
	return PendingChoice{}, false
}
