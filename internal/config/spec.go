// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for keva-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Limits  LimitsSection  `koanf:"limits"`
	Store   StoreSection   `koanf:"store"`
	Metrics MetricsSection `koanf:"metrics"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures the TCP listener.
type ServerSection struct {
	// Addr is the listen address (e.g., "127.0.0.1:6380").
	Addr string `koanf:"addr"`

	// ReadTimeout bounds a single socket read.
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds a single reply write.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// IdleTimeout closes connections with no complete frame for this
	// long. Zero disables idle tracking.
	IdleTimeout time.Duration `koanf:"idle_timeout"`
}

// LimitsSection configures admission control.
type LimitsSection struct {
	// MaxConnections is the concurrency ceiling. The listener holds
	// accepts once this many handlers are live.
	MaxConnections int `koanf:"max_connections"`

	// RatePerSecond is the per-client-IP connection rate. Zero
	// disables rate limiting.
	RatePerSecond float64 `koanf:"rate_per_second"`

	// RateBurst is the per-client-IP burst allowance.
	RateBurst int `koanf:"rate_burst"`
}

// StoreSection configures the key-value store.
type StoreSection struct {
	// SweepInterval is the period of the expired-key sweeper.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
