// Package config defines the server configuration structure.
package config

import (
	"errors"
	"fmt"
)

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validFormats = map[string]bool{
	"json": true,
	"text": true,
}

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyLimits(&cfg.Limits); err != nil {
		return err
	}
	if err := verifyStore(&cfg.Store); err != nil {
		return err
	}
	if err := verifyMetrics(&cfg.Metrics); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.Addr == "" {
		return errors.New("server.addr is required")
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 || cfg.IdleTimeout < 0 {
		return errors.New("server timeouts must not be negative")
	}
	return nil
}

func verifyLimits(cfg *LimitsSection) error {
	if cfg.MaxConnections < 1 {
		return errors.New("limits.max_connections must be at least 1")
	}
	if cfg.RatePerSecond < 0 {
		return errors.New("limits.rate_per_second must not be negative")
	}
	if cfg.RatePerSecond > 0 && cfg.RateBurst < 1 {
		return errors.New("limits.rate_burst must be at least 1 when rate limiting is enabled")
	}
	return nil
}

func verifyStore(cfg *StoreSection) error {
	if cfg.SweepInterval <= 0 {
		return errors.New("store.sweep_interval must be positive")
	}
	return nil
}

func verifyMetrics(cfg *MetricsSection) error {
	if cfg.Enabled && cfg.Addr == "" {
		return errors.New("metrics.addr is required when metrics are enabled")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !validLevels[cfg.Level] {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	if !validFormats[cfg.Format] {
		return fmt.Errorf("log.format %q is not one of json, text", cfg.Format)
	}
	return nil
}
