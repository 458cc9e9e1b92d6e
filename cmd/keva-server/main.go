// Package main provides the entry point for keva-server.
//
// keva-server is a small in-memory key-value cache speaking a
// type-prefixed text protocol over TCP.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mvasek/keva-go/internal/config"
	"github.com/mvasek/keva-go/internal/infra/buildinfo"
	"github.com/mvasek/keva-go/internal/infra/confloader"
	"github.com/mvasek/keva-go/internal/infra/shutdown"
	"github.com/mvasek/keva-go/internal/server"
	"github.com/mvasek/keva-go/internal/store"
	"github.com/mvasek/keva-go/internal/telemetry/logger"
	"github.com/mvasek/keva-go/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse command line flags
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		listenAddr  = flag.String("addr", "", "Listen address (overrides config)")
		connLimit   = flag.Int("conn-limit", 0, "Maximum concurrent connections (overrides config)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	// Show version and exit
	if *showVersion {
		fmt.Printf("keva-server %s\n", buildinfo.String())
		return nil
	}

	// Load configuration
	cfg, err := loadConfig(*configFile, *listenAddr, *connLimit)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Initialize logger
	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting keva-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", *configFile)

	// Initialize metrics
	var reg *metric.Registry
	if cfg.Metrics.Enabled {
		reg = metric.NewRegistry()
	}

	// Initialize the store and start its expiry sweeper
	st := initStore(cfg, log, reg)
	st.Start()

	startTime := time.Now()

	// Metrics endpoint
	var metricsSrv *http.Server
	if reg != nil {
		reg.Register(metric.NewCollector(st, startTime))
		metricsSrv = metric.StartHTTPServer(cfg.Metrics.Addr, reg, log)
	}

	// Create and start the TCP server
	kv := server.New(serverConfig(cfg), st,
		server.WithLogger(log),
		server.WithMetrics(reg))

	ctx := context.Background()
	if err := kv.Start(ctx); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	// Watch the config file for runtime log-level changes
	watcher, err := watchConfig(*configFile, log)
	if err != nil {
		log.Warn("config watch disabled", "error", err)
	}

	// Setup graceful shutdown
	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	// Register shutdown hooks (reverse order of startup)
	if watcher != nil {
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			return watcher.Stop()
		})
	}

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down TCP server")
		return kv.Shutdown(ctx)
	})

	if metricsSrv != nil {
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			metric.ShutdownHTTPServer(ctx, metricsSrv, log)
			return nil
		})
	}

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down store")
		return st.Close()
	})

	// Wait for shutdown signal
	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment, with flags
// taking priority over both.
func loadConfig(configFile, listenAddr string, connLimit int) (*config.ServerConfig, error) {
	// Start with defaults
	cfg := config.Default()

	// Create loader with optional config file
	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)

	// Load and unmarshal
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	// Flag overrides
	if listenAddr != "" {
		cfg.Server.Addr = listenAddr
	}
	if connLimit > 0 {
		cfg.Limits.MaxConnections = connLimit
	}

	// Validate configuration
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initLogger initializes the structured logger and installs it as the
// process default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}

	logger.SetDefault(log)
	return log, nil
}

// initStore builds the key-value store. Sweep evictions feed the
// metrics registry when metrics are enabled.
func initStore(cfg *config.ServerConfig, log logger.Logger, reg *metric.Registry) *store.Store {
	opts := []store.Option{
		store.WithSweepInterval(cfg.Store.SweepInterval),
		store.WithLogger(log),
	}
	if reg != nil {
		opts = append(opts, store.WithSweepObserver(func(evicted int) {
			reg.KeysSwept.Add(float64(evicted))
		}))
	}
	return store.New(opts...)
}

// serverConfig maps the loaded configuration onto the TCP server's.
func serverConfig(cfg *config.ServerConfig) *server.Config {
	return &server.Config{
		Addr:           cfg.Server.Addr,
		MaxConnections: cfg.Limits.MaxConnections,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		RatePerSecond:  cfg.Limits.RatePerSecond,
		RateBurst:      cfg.Limits.RateBurst,
	}
}

// watchConfig re-reads the config file on change and applies the log
// level at runtime. Other settings require a restart.
func watchConfig(configFile string, log logger.Logger) (*confloader.Watcher, error) {
	if configFile == "" {
		return nil, nil
	}

	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(configFile); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(path string) {
		// The watcher reports any change in the config's directory.
		if filepath.Base(path) != filepath.Base(configFile) {
			return
		}

		cfg := config.Default()
		loader := confloader.NewLoader(confloader.WithConfigFile(configFile))
		if err := loader.Load(cfg); err != nil {
			log.Warn("config reload failed", "error", err)
			return
		}
		if err := config.Verify(cfg); err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			log.Info("log level changed", "level", cfg.Log.Level)
			logger.SetLevel(cfg.Log.Level)
		}
	})
	watcher.StartAsync()

	return watcher, nil
}
