// Package store provides the in-memory key-value store for keva.
//
// Entries optionally carry a time-to-live. Expiration is enforced lazily
// at read time; a background sweeper additionally evicts expired entries
// on a fixed interval so memory is reclaimed for keys nobody reads.
package store
