package metric

import (
	"context"
	"net/http"
	"time"

	"github.com/mvasek/keva-go/internal/telemetry/logger"
)

// StartHTTPServer starts an HTTP server on addr that serves this
// registry at /metrics. It returns the server so the caller can shut
// it down gracefully.
func StartHTTPServer(addr string, reg *Registry, log logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", "error", err)
		}
	}()

	return srv
}

// ShutdownHTTPServer gracefully shuts down the metrics HTTP server.
func ShutdownHTTPServer(ctx context.Context, srv *http.Server, log logger.Logger) {
	if srv == nil {
		return
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("metrics server shutdown failed", "error", err)
	}
}
