// Package config loads service configuration from the environment.
//
// Components declare env-tagged structs (MERGINGTON_-prefixed variables)
// and parse them through ParseEnv; flags may then override the values.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills target's env-tagged fields from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
