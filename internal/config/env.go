// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv fills cfg from the process environment. Names come from the
// `env` and `envPrefix` tags of [StructuredConfig]: APP_KDF_ITERATIONS,
// STORAGE_DB_DATABASE_URI, STORAGE_CACHE_TTL and so on. Unset variables
// leave their fields zero so the other sources can fill them.
func parseEnv(cfg *StructuredConfig) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEnvConfigs, err)
	}

	return nil
}
