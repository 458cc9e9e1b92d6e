// Package resp implements the RESP wire protocol used by keva.
//
// It provides a tagged Value type covering the protocol's data model and
// a streaming codec over byte buffers: Decode consumes exactly one value
// from the front of a buffer and reports ErrIncomplete when the buffer
// holds a valid but unfinished frame, so the connection loop can keep
// accumulating bytes without discarding state. Append* functions are the
// exact inverse of decoding for every value the decoder can produce.
package resp
