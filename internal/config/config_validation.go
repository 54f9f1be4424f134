// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "fmt"

// MinKDFIterations is the lowest PBKDF2 iteration count the server accepts.
const MinKDFIterations = 100_000

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	switch cfg.Storage.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: unsupported driver %q", ErrInvalidStorageConfigs, cfg.Storage.DB.Driver)
	}

	if cfg.Storage.DB.DSN == "" {
		return fmt.Errorf("%w: empty database DSN", ErrInvalidStorageConfigs)
	}

	if cfg.Storage.Cache.TTL <= 0 {
		return fmt.Errorf("%w: cache TTL must be positive", ErrInvalidStorageConfigs)
	}

	if cfg.App.KDFIterations < MinKDFIterations {
		return fmt.Errorf("%w: KDF iterations below %d", ErrInvalidAppConfigs, MinKDFIterations)
	}

	if cfg.Server.HTTPAddress != "" && cfg.App.TokenSignKey == "" {
		return fmt.Errorf("%w: token sign key is required when HTTP is enabled", ErrInvalidAppConfigs)
	}

	if cfg.Server.RequestTimeout < 0 || cfg.Server.ShutdownTimeout < 0 {
		return ErrInvalidServerConfigs
	}

	return nil
}
