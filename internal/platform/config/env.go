// Package config loads journeyboard settings from JOURNEY_* variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Prefix is prepended to every env tag, so a field tagged `env:"STORE"`
// reads JOURNEY_STORE.
const Prefix = "JOURNEY_"

// ParseEnv fills target from prefixed environment variables and its
// envDefault tags.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: Prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
