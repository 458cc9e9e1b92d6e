// Package pool provides reusable byte buffers for the connection loop.
//
// Buffers are checked out to exactly one in-flight connection or reply
// at a time and cleared on release, so no bytes from a prior borrower
// are ever visible to the next one.
package pool
