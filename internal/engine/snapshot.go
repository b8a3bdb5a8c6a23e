package engine

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the persisted form of a game. It carries everything needed to
// rebuild the Game against the same board configuration.
type Snapshot struct {
	GameID         string      `json:"game_id"`
	BoardID        string      `json:"board_id"`
	Phase          GamePhase   `json:"phase"`
	SealOrder      string      `json:"seal_order,omitempty"`
	ObjectiveOrder string      `json:"objective_order,omitempty"`
	State          *BoardState `json:"state"`
}

// Snapshot returns a deep copy of the game's state.
func (g *Game) Snapshot() (Snapshot, error) {
	raw, err := json.Marshal(g.State)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode state: %w", err)
	}
	var st BoardState
	if err := json.Unmarshal(raw, &st); err != nil {
		return Snapshot{}, fmt.Errorf("decode state: %w", err)
	}
	st.attach(g.Board)
	return Snapshot{
		GameID:         g.ID,
		BoardID:        g.Board.BoardID,
		Phase:          g.Phase,
		SealOrder:      g.Config.SealOrder,
		ObjectiveOrder: g.Config.ObjectiveOrder,
		State:          &st,
	}, nil
}

// RestoreGame rebuilds a game from snap. The snapshot's placement orders
// override the ones in config.
func RestoreGame(board *PlayerBoard, snap Snapshot, config GameConfig, rules *RuleRegistry) (*Game, error) {
	if snap.State == nil {
		return nil, fmt.Errorf("%w: snapshot %s has no state", ErrInvalidAction, snap.GameID)
	}
	if board != nil && board.BoardID != snap.BoardID {
		return nil, fmt.Errorf("%w: snapshot is for board %s, not %s", ErrInvalidBoard, snap.BoardID, board.BoardID)
	}
	config.SealOrder = snap.SealOrder
	config.ObjectiveOrder = snap.ObjectiveOrder
	g, err := newGame(snap.GameID, board, config, rules)
	if err != nil {
		return nil, err
	}
	snap.State.attach(board)
	g.State = snap.State
	g.Phase = snap.Phase
	return g, nil
}
