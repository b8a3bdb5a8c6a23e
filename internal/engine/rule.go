package engine

import (
	"fmt"
	"sort"
)

// RuleFactory builds a PlacementRule for one game. Rules that hold state
// get a fresh instance per game.
type RuleFactory func(board *PlayerBoard) (PlacementRule, error)

// RuleRegistry maps rule names to their factories.
type RuleRegistry struct {
	factories map[string]RuleFactory
}

func NewRuleRegistry() *RuleRegistry {
	return &RuleRegistry{factories: make(map[string]RuleFactory)}
}

func (r *RuleRegistry) Register(name string, f RuleFactory) {
	r.factories[name] = f
}

// New builds the rule registered under name. An empty name means no rule.
func (r *RuleRegistry) New(name string, board *PlayerBoard) (PlacementRule, error) {
	if name == "" {
		return nil, nil
	}
	if r == nil {
		return nil, fmt.Errorf("no placement rule registered for %q", name)
	}
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("no placement rule registered for %q", name)
	}
	return f(board)
}

// Names lists the registered rule names.
func (r *RuleRegistry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
