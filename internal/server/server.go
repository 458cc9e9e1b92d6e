package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/mvasek/keva-go/internal/pool"
	"github.com/mvasek/keva-go/internal/store"
	"github.com/mvasek/keva-go/internal/telemetry/logger"
	"github.com/mvasek/keva-go/internal/telemetry/metric"
)

// Config holds the server configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string
	// MaxConnections is the concurrency ceiling. The accept loop holds
	// until a permit frees up, so at most this many handlers are ever
	// live (default: 250).
	MaxConnections int
	// ReadTimeout is the timeout for reading a command once its first
	// bytes have arrived (default: 30s). Helps prevent slowloris.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing a reply (default: 30s).
	WriteTimeout time.Duration
	// IdleTimeout is the timeout for idle connections (default: 5m).
	IdleTimeout time.Duration
	// RatePerSecond is the maximum connections per second per IP.
	// Set to 0 to disable rate limiting.
	RatePerSecond float64
	// RateBurst is the per-IP burst allowance.
	RateBurst int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:           "127.0.0.1:6380",
		MaxConnections: 250,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    5 * time.Minute,
		RatePerSecond:  0,
		RateBurst:      16,
	}
}

// Server is the Keva TCP server.
type Server struct {
	cfg     *Config
	store   *store.Store
	pools   *pool.BufferPool
	log     logger.Logger
	metrics *metric.Registry
	limiter *ipLimiter

	sem *semaphore.Weighted
	ln  net.Listener

	running    atomic.Bool
	cancelOnce sync.Once
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metric.Registry) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New creates a new server. The store must be non-nil; the caller owns
// its lifecycle.
func New(cfg *Config, st *store.Store, opts ...Option) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxConnections < 1 {
		cfg.MaxConnections = 1
	}

	s := &Server{
		cfg:   cfg,
		store: st,
		pools: pool.NewBufferPool(),
		log:   logger.Default(),
		sem:   semaphore.NewWeighted(int64(cfg.MaxConnections)),
	}

	for _, opt := range opts {
		opt(s)
	}

	if cfg.RatePerSecond > 0 {
		s.limiter = newIPLimiter(cfg.RatePerSecond, cfg.RateBurst)
	}

	return s
}

// Start binds the listener and launches the accept loop. It returns
// once the listener is bound, so Addr is valid immediately after.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.running.Store(true)

	acceptCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.log.Info("server listening", "addr", ln.Addr().String(), "max_connections", s.cfg.MaxConnections)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.acceptLoop(acceptCtx, ln)
	}()

	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// acceptLoop admits connections under the concurrency ceiling. The
// permit is acquired before Accept so the listener simply stops
// accepting when the ceiling is reached; excess clients queue in the
// kernel backlog instead of being turned away.
func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) {
	for {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return
		}

		c, err := ln.Accept()
		if err != nil {
			s.sem.Release(1)
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
			// Transient accept failures (e.g. EMFILE) must not take the
			// listener down; only gate acquisition failure is fatal.
			s.log.Error("accept failed", "error", err)
			continue
		}

		if s.limiter != nil && !s.limiter.Allow(remoteIP(c)) {
			if s.metrics != nil {
				s.metrics.ConnectionsRejected.Inc()
			}
			s.log.Debug("connection rate limited", "remote", c.RemoteAddr().String())
			_ = c.Close()
			s.sem.Release(1)
			continue
		}

		if s.metrics != nil {
			s.metrics.ConnectionsAccepted.Inc()
			s.metrics.ConnectionsActive.Inc()
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			// Exactly one release per admitted connection.
			defer s.sem.Release(1)
			if s.metrics != nil {
				defer s.metrics.ConnectionsActive.Dec()
			}
			s.serveConn(ctx, c)
		}()
	}
}

// Shutdown stops accepting and waits for live handlers to finish, up
// to ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)
	s.cancelOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})

	var firstErr error
	if s.ln != nil {
		if err := s.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			firstErr = err
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return firstErr
}

// remoteIP extracts the client IP, without port, for rate limiting.
func remoteIP(c net.Conn) string {
	host, _, err := net.SplitHostPort(c.RemoteAddr().String())
	if err != nil {
		return c.RemoteAddr().String()
	}
	return host
}
