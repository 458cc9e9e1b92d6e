// Package metric provides Prometheus metrics for Keva.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Prometheus registry and HTTP handler
//   - collector.go: Scrape-time collector for store statistics
//   - server.go: The /metrics HTTP listener
//
// Hot-path counters (commands, connections) are registered directly;
// store gauges are pulled on scrape by the custom collector so the
// command path never touches them.
package metric
