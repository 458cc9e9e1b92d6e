// Package command turns decoded wire values into typed, validated
// commands.
//
// A command is built once per request from the frame's value tree,
// consumed immediately by the dispatcher and discarded; it may alias the
// connection's read buffer and must not outlive the request.
package command
