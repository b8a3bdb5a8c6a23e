package rules

import (
	"fmt"
	"os"

	"github.com/Shopify/go-lua"

	"journeyboard/internal/engine"
)

// Script is a placement rule written in Lua. The script may define
//
//	allow_seal(player, row, slot)
//	allow_objective(player, slot_id, tier, position)
//
// returning a boolean and an optional reason. A missing function allows
// everything. The script can query the board through claimant(slot_id),
// seal_filled(player, row, slot) and filled_count(player, row).
//
// Each Script owns one Lua state and must not be shared between games.
type Script struct {
	state *lua.State
	st    *engine.BoardState
}

// RegisterScript registers a Lua rule under name. Every game built from the
// registry loads source into its own Lua state.
func RegisterScript(r *engine.RuleRegistry, name, source string) {
	r.Register(name, func(*engine.PlayerBoard) (engine.PlacementRule, error) {
		return NewScript(source)
	})
}

// LoadScriptFile reads path and registers it under name.
func LoadScriptFile(r *engine.RuleRegistry, name, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read rules script: %w", err)
	}
	if _, err := NewScript(string(src)); err != nil {
		return err
	}
	RegisterScript(r, name, string(src))
	return nil
}

// NewScript runs source in a fresh Lua state.
func NewScript(source string) (*Script, error) {
	s := &Script{state: lua.NewState()}
	lua.OpenLibraries(s.state)
	s.registerHelpers()
	if err := lua.DoString(s.state, source); err != nil {
		return nil, fmt.Errorf("run rules script: %w", err)
	}
	return s, nil
}

func (s *Script) Name() string { return NameScript }

func (s *Script) CheckSeal(_ *engine.PlayerBoard, st *engine.BoardState, player string, row, slot int) error {
	return s.call(st, "allow_seal", func(l *lua.State) int {
		l.PushString(player)
		l.PushInteger(row)
		l.PushInteger(slot)
		return 3
	})
}

func (s *Script) CheckObjective(board *engine.PlayerBoard, st *engine.BoardState, player string, slotID string) error {
	obj, ok := board.Objective(slotID)
	if !ok {
		return fmt.Errorf("%w: %q", engine.ErrUnknownSlotReference, slotID)
	}
	return s.call(st, "allow_objective", func(l *lua.State) int {
		l.PushString(player)
		l.PushString(slotID)
		l.PushString(string(obj.Type))
		l.PushInteger(obj.Position)
		return 4
	})
}

func (s *Script) call(st *engine.BoardState, fn string, push func(*lua.State) int) error {
	l := s.state
	l.Global(fn)
	if !l.IsFunction(-1) {
		l.Pop(1)
		return nil
	}
	s.st = st
	defer func() { s.st = nil }()

	args := push(l)
	if err := l.ProtectedCall(args, 2, 0); err != nil {
		l.Pop(1)
		return fmt.Errorf("%s: %w", fn, err)
	}
	defer l.Pop(2)
	if l.ToBoolean(-2) {
		return nil
	}
	if reason, ok := l.ToString(-1); ok && reason != "" {
		return fmt.Errorf("%w: %s", ErrScriptRejected, reason)
	}
	return ErrScriptRejected
}

func (s *Script) registerHelpers() {
	s.state.Register("claimant", func(l *lua.State) int {
		slotID := lua.CheckString(l, 1)
		if s.st == nil {
			l.PushNil()
			return 1
		}
		if p, ok := s.st.ClaimantOf(slotID); ok {
			l.PushString(p)
		} else {
			l.PushNil()
		}
		return 1
	})
	s.state.Register("seal_filled", func(l *lua.State) int {
		player := lua.CheckString(l, 1)
		row := lua.CheckInteger(l, 2)
		slot := lua.CheckInteger(l, 3)
		l.PushBoolean(s.st != nil && s.st.IsSlotFilled(player, row, slot))
		return 1
	})
	s.state.Register("filled_count", func(l *lua.State) int {
		player := lua.CheckString(l, 1)
		row := lua.CheckInteger(l, 2)
		n := 0
		if s.st != nil {
			n = s.st.FilledCount(player, row)
		}
		l.PushInteger(n)
		return 1
	})
}
