// Package client implements the wire-protocol client used by keva-cli.
//
// It speaks the same framing as the server: commands go out as arrays
// of bulk strings, replies come back as single frames decoded
// incrementally from the socket.
package client
