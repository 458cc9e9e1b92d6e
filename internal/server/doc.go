// Package server provides the Keva TCP listener and connection handler.
//
// The listener admits connections under a fixed concurrency ceiling:
// a semaphore permit is acquired before each accept, so the ceiling can
// never be overshot, and the permit is released exactly once when the
// connection's handler exits. Each handler runs the per-connection
// read/decode/dispatch/reply loop against the shared store.
package server
