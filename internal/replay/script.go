// Package replay drives games from recorded action scripts. Each script runs
// against its own Game, so scripts can be replayed in parallel.
package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"journeyboard/internal/engine"
)

// Step is one action taken by one player.
type Step struct {
	Player string        `json:"player"`
	Action engine.Action `json:"action"`
	// ExpectRejected marks a step the engine must refuse.
	ExpectRejected bool `json:"expect_rejected,omitempty"`
}

// Script is a recorded game: its seating, optional config overrides, the
// steps in order and, optionally, the final totals they must produce.
type Script struct {
	Name           string         `json:"name"`
	Players        []string       `json:"players"`
	StartingCoins  *int           `json:"starting_coins,omitempty"`
	SealOrder      *string        `json:"seal_order,omitempty"`
	ObjectiveOrder *string        `json:"objective_order,omitempty"`
	AutoUnlockRows []int          `json:"auto_unlock_rows,omitempty"`
	Steps          []Step         `json:"steps"`
	Expect         map[string]int `json:"expect,omitempty"`
}

// ParseScript decodes a script from JSON.
func ParseScript(data []byte) (Script, error) {
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("decode script: %w", err)
	}
	if len(s.Players) == 0 {
		return Script{}, fmt.Errorf("script %q has no players", s.Name)
	}
	for i, step := range s.Steps {
		if step.Player == "" || step.Action.Type == "" {
			return Script{}, fmt.Errorf("script %q step %d: player and action type are required", s.Name, i)
		}
	}
	return s, nil
}

// LoadScript reads a script file. A script without a name is named after
// the file.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, err
	}
	s, err := ParseScript(data)
	if err != nil {
		return Script{}, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// config layers the script's overrides on top of base.
func (s Script) config(base engine.GameConfig) engine.GameConfig {
	cfg := base
	if s.StartingCoins != nil {
		cfg.StartingCoins = *s.StartingCoins
	}
	if s.SealOrder != nil {
		cfg.SealOrder = *s.SealOrder
	}
	if s.ObjectiveOrder != nil {
		cfg.ObjectiveOrder = *s.ObjectiveOrder
	}
	if s.AutoUnlockRows != nil {
		cfg.AutoUnlockRows = s.AutoUnlockRows
	}
	return cfg
}
