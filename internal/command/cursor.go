package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mvasek/keva-go/pkg/resp"
)

var (
	// ErrOutOfBounds reports that a command expected another argument
	// and the argument stream was exhausted.
	ErrOutOfBounds = errors.New("command: not enough arguments")

	// ErrInvalidType reports an argument whose wire type does not match
	// what the command expects at that position.
	ErrInvalidType = errors.New("command: invalid argument type")

	// ErrInvalidNumber reports a string-like argument that could not be
	// parsed as a base-10 integer.
	ErrInvalidNumber = errors.New("command: invalid number")
)

// Cursor consumes the elements of a command array in order. It is
// deliberately forward-only and single-pass, mirroring the protocol's
// argument stream; there is no rewind.
type Cursor struct {
	items []resp.Value
	pos   int
}

// NewCursor returns a cursor over items.
func NewCursor(items []resp.Value) *Cursor {
	return &Cursor{items: items}
}

// Remaining returns the number of unconsumed elements.
func (c *Cursor) Remaining() int {
	return len(c.items) - c.pos
}

// Next advances to and returns the next element.
func (c *Cursor) Next() (resp.Value, error) {
	if c.pos >= len(c.items) {
		return resp.Value{}, ErrOutOfBounds
	}
	v := c.items[c.pos]
	c.pos++
	return v, nil
}

// TakeBytes consumes a string-like element (simple or bulk string) as
// raw bytes. The returned slice may alias the decode buffer.
func (c *Cursor) TakeBytes() ([]byte, error) {
	v, err := c.Next()
	if err != nil {
		return nil, err
	}
	switch v.Type {
	case resp.TypeSimpleString:
		return []byte(v.Str), nil
	case resp.TypeBulkString:
		return v.Bulk, nil
	default:
		return nil, fmt.Errorf("%w: want string, got %s", ErrInvalidType, v.Type)
	}
}

// TakeString consumes a string-like element as text.
func (c *Cursor) TakeString() (string, error) {
	v, err := c.Next()
	if err != nil {
		return "", err
	}
	switch v.Type {
	case resp.TypeSimpleString:
		return v.Str, nil
	case resp.TypeBulkString:
		return string(v.Bulk), nil
	default:
		return "", fmt.Errorf("%w: want string, got %s", ErrInvalidType, v.Type)
	}
}

// TakeKeyword consumes a string-like element normalized to upper case,
// for case-insensitive table lookups.
func (c *Cursor) TakeKeyword() (string, error) {
	s, err := c.TakeString()
	if err != nil {
		return "", err
	}
	return strings.ToUpper(s), nil
}

// TakeInt consumes a numeric element: an integer directly, or a
// string-like element parsed as base-10.
func (c *Cursor) TakeInt() (int64, error) {
	v, err := c.Next()
	if err != nil {
		return 0, err
	}
	switch v.Type {
	case resp.TypeInteger:
		return v.Int, nil
	case resp.TypeSimpleString, resp.TypeBulkString:
		text := v.Str
		if v.Type == resp.TypeBulkString {
			text = string(v.Bulk)
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, text)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: want integer, got %s", ErrInvalidType, v.Type)
	}
}

// TakeValue consumes the next element as-is.
func (c *Cursor) TakeValue() (resp.Value, error) {
	return c.Next()
}
