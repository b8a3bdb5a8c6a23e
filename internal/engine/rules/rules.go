// Package rules holds the placement-order rules a game can be configured
// with. Each rule is registered by name in an engine.RuleRegistry.
package rules

import (
	"errors"

	"journeyboard/internal/engine"
)

const (
	NameUnordered   = "unordered"
	NameLeftToRight = "left-to-right"
	NameScript      = "script"
)

var (
	ErrOutOfOrder     = errors.New("placement out of order")
	ErrScriptRejected = errors.New("rejected by rules script")
)

// Default returns a registry with the built-in rules.
func Default() *engine.RuleRegistry {
	r := engine.NewRuleRegistry()
	r.Register(NameUnordered, func(*engine.PlayerBoard) (engine.PlacementRule, error) {
		return Unordered{}, nil
	})
	r.Register(NameLeftToRight, func(*engine.PlayerBoard) (engine.PlacementRule, error) {
		return LeftToRight{}, nil
	})
	return r
}

// Unordered allows any legal slot.
type Unordered struct{}

func (Unordered) Name() string { return NameUnordered }

func (Unordered) CheckSeal(*engine.PlayerBoard, *engine.BoardState, string, int, int) error {
	return nil
}

func (Unordered) CheckObjective(*engine.PlayerBoard, *engine.BoardState, string, string) error {
	return nil
}
