// Package config loads the process-wide environment configuration of
// spec §6, using caarlos0/env struct tags — the same env:"..." tag
// convention the teacher's eventbus module uses for its own config
// struct, here actually parsed by the library rather than a bespoke
// decoder.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the full set of environment settings spec §6 lists. All are
// required unless a default is given via envDefault — matching the
// original source's `env::var(...).expect(...)` behavior for the
// non-defaulted ones.
type Config struct {
	HTTPAddress string `env:"HTTP_ADDRESS,required"`
	HTTPPort    uint16 `env:"HTTP_PORT,required"`

	// MaxWorker is N in spec §4.7 — worker count for the persistence pool.
	MaxWorker uint16 `env:"MAX_WORKER,required"`

	DatabaseURL string `env:"DATABASE_URL,required"`

	// DBPoolMaxConnectionsThread is the per-worker connection pool size
	// (spec §6's DB_POOL_MAX_CONNECTIONS_THREAD).
	DBPoolMaxConnectionsThread uint32 `env:"DB_POOL_MAX_CONNECTIONS_THREAD,required"`

	// EnableMigrations gates running golang-migrate at startup (spec §6).
	EnableMigrations bool `env:"ENABLE_MIGRATIONS" envDefault:"false"`
}

// Load parses Config from the process environment. A missing required
// variable or a malformed value is a fatal configuration error per spec
// §7 — the caller (cmd/radishd) is expected to log and os.Exit on error,
// not retry or guess a default.
func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
