package resp

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// MaxLength bounds declared bulk string and array lengths (512MiB).
// Declared lengths outside {-1} ∪ [0, MaxLength) are rejected.
const MaxLength = 512 * 1024 * 1024

var (
	// ErrIncomplete reports that the buffer is a valid prefix of a frame
	// but more bytes are needed. It is a retry signal, never a failure:
	// the caller keeps the buffer and reads more input.
	ErrIncomplete = errors.New("resp: incomplete frame")

	// ErrProtocol reports bytes that violate the frame grammar.
	ErrProtocol = errors.New("resp: protocol error")

	// ErrLengthOutOfRange reports a declared length < -1 or >= MaxLength.
	ErrLengthOutOfRange = errors.New("resp: length out of range")

	// ErrInvalidUTF8 reports non-UTF-8 bytes where text is required.
	ErrInvalidUTF8 = errors.New("resp: invalid utf8")

	// ErrTrailingBytes reports leftover input after a complete top-level
	// value when the whole buffer was expected to be one frame.
	ErrTrailingBytes = errors.New("resp: trailing bytes after value")
)

// Parse decodes a single value spanning the whole buffer. Leftover bytes
// after the value are an error; an unfinished frame is ErrIncomplete.
func Parse(buf []byte) (Value, error) {
	v, rest, err := Decode(buf)
	if err != nil {
		return Value{}, err
	}
	if len(rest) != 0 {
		return Value{}, fmt.Errorf("%w: %d bytes", ErrTrailingBytes, len(rest))
	}
	return v, nil
}

// Decode decodes one value from the front of buf and returns the
// unconsumed suffix. The returned Value may alias buf.
func Decode(buf []byte) (Value, []byte, error) {
	if len(buf) == 0 {
		return Value{}, nil, ErrIncomplete
	}

	switch buf[0] {
	case '+':
		return decodeLineText(buf[1:], TypeSimpleString)
	case '-':
		return decodeLineText(buf[1:], TypeError)
	case ':':
		return decodeInteger(buf[1:])
	case '$':
		return decodeBulkString(buf[1:])
	case '*':
		return decodeArray(buf[1:])
	default:
		return Value{}, nil, fmt.Errorf("%w: unknown type prefix %q", ErrProtocol, buf[0])
	}
}

// readLine splits off one CRLF-terminated line (without the CRLF).
// A buffer with no terminator yet is ErrIncomplete; a CR followed by
// anything but LF is malformed.
func readLine(buf []byte) (line, rest []byte, err error) {
	i := bytes.IndexByte(buf, '\r')
	if i < 0 {
		if bytes.IndexByte(buf, '\n') >= 0 {
			return nil, nil, fmt.Errorf("%w: bare LF", ErrProtocol)
		}
		return nil, nil, ErrIncomplete
	}
	if i+1 >= len(buf) {
		return nil, nil, ErrIncomplete
	}
	if buf[i+1] != '\n' {
		return nil, nil, fmt.Errorf("%w: CR without LF", ErrProtocol)
	}
	line = buf[:i]
	if bytes.IndexByte(line, '\n') >= 0 {
		return nil, nil, fmt.Errorf("%w: bare LF", ErrProtocol)
	}
	return line, buf[i+2:], nil
}

func decodeLineText(buf []byte, t Type) (Value, []byte, error) {
	line, rest, err := readLine(buf)
	if err != nil {
		return Value{}, nil, err
	}
	if !utf8.Valid(line) {
		return Value{}, nil, fmt.Errorf("%w: %s payload", ErrInvalidUTF8, t)
	}
	return Value{Type: t, Str: string(line)}, rest, nil
}

func decodeInteger(buf []byte) (Value, []byte, error) {
	line, rest, err := readLine(buf)
	if err != nil {
		return Value{}, nil, err
	}
	n, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		return Value{}, nil, fmt.Errorf("%w: invalid integer %q", ErrProtocol, line)
	}
	return Integer(n), rest, nil
}

// decodeLength parses the "<len>\r\n" header shared by bulk strings and
// arrays. -1 is the null sentinel; anything else outside [0, MaxLength)
// is out of range.
func decodeLength(buf []byte, what string) (int64, []byte, error) {
	line, rest, err := readLine(buf)
	if err != nil {
		return 0, nil, err
	}
	n, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: invalid %s length %q", ErrProtocol, what, line)
	}
	if n < -1 || n >= MaxLength {
		return 0, nil, fmt.Errorf("%w: %s length %d", ErrLengthOutOfRange, what, n)
	}
	return n, rest, nil
}

func decodeBulkString(buf []byte) (Value, []byte, error) {
	n, rest, err := decodeLength(buf, "bulk string")
	if err != nil {
		return Value{}, nil, err
	}
	if n == -1 {
		return Null(), rest, nil
	}
	// Payload plus trailing CRLF must be fully buffered.
	if int64(len(rest)) < n+2 {
		return Value{}, nil, ErrIncomplete
	}
	if rest[n] != '\r' || rest[n+1] != '\n' {
		return Value{}, nil, fmt.Errorf("%w: bulk string missing CRLF terminator", ErrProtocol)
	}
	return BulkString(rest[:n:n]), rest[n+2:], nil
}

func decodeArray(buf []byte) (Value, []byte, error) {
	n, rest, err := decodeLength(buf, "array")
	if err != nil {
		return Value{}, nil, err
	}
	if n == -1 {
		return NullArray(), rest, nil
	}
	// Cap the preallocation hint: the declared count is attacker
	// controlled and the elements may not be buffered yet.
	hint := n
	if hint > 1024 {
		hint = 1024
	}
	items := make([]Value, 0, hint)
	for i := int64(0); i < n; i++ {
		var item Value
		item, rest, err = Decode(rest)
		if err != nil {
			return Value{}, nil, err
		}
		items = append(items, item)
	}
	return Value{Type: TypeArray, Array: items}, rest, nil
}
