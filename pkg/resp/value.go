package resp

import (
	"bytes"
	"fmt"
	"strconv"
)

// Type identifies the protocol shape of a Value.
type Type uint8

const (
	// TypeNull is the absent scalar ("$-1\r\n").
	TypeNull Type = iota
	// TypeNullArray is the absent aggregate ("*-1\r\n"), distinct from an
	// empty array.
	TypeNullArray
	// TypeSimpleString is short trusted text with no embedded CR or LF.
	TypeSimpleString
	// TypeError is a protocol-level error payload.
	TypeError
	// TypeInteger is a signed 64-bit integer.
	TypeInteger
	// TypeBulkString is a binary payload of known length.
	TypeBulkString
	// TypeArray is a fixed-arity ordered sequence of values.
	TypeArray
)

// String returns the protocol name of the type.
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeNullArray:
		return "null_array"
	case TypeSimpleString:
		return "simple_string"
	case TypeError:
		return "error"
	case TypeInteger:
		return "integer"
	case TypeBulkString:
		return "bulk_string"
	case TypeArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is one protocol value. A decoded Value may alias the input buffer
// it was decoded from; callers that retain a Value past the buffer's
// lifetime must copy the payload (the store does this on insert).
type Value struct {
	Type  Type
	Str   string // payload for TypeSimpleString and TypeError
	Bulk  []byte // payload for TypeBulkString
	Int   int64  // payload for TypeInteger
	Array []Value
}

// Null returns the null bulk string.
func Null() Value { return Value{Type: TypeNull} }

// NullArray returns the null array.
func NullArray() Value { return Value{Type: TypeNullArray} }

// SimpleString returns a simple string value.
func SimpleString(s string) Value { return Value{Type: TypeSimpleString, Str: s} }

// Error returns a protocol error value.
func Error(s string) Value { return Value{Type: TypeError, Str: s} }

// Errorf returns a protocol error value built from a format string.
func Errorf(format string, args ...any) Value {
	return Value{Type: TypeError, Str: fmt.Sprintf(format, args...)}
}

// Integer returns an integer value.
func Integer(n int64) Value { return Value{Type: TypeInteger, Int: n} }

// BulkString returns a bulk string value. A nil slice is a valid empty
// payload, not the null bulk string.
func BulkString(b []byte) Value { return Value{Type: TypeBulkString, Bulk: b} }

// BulkStringText returns a bulk string value from text.
func BulkStringText(s string) Value { return BulkString([]byte(s)) }

// Array returns an array value.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Type: TypeArray, Array: items}
}

// Equal reports whether two values are structurally identical.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case TypeSimpleString, TypeError:
		return v.Str == o.Str
	case TypeInteger:
		return v.Int == o.Int
	case TypeBulkString:
		return bytes.Equal(v.Bulk, o.Bulk)
	case TypeArray:
		if len(v.Array) != len(o.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(o.Array[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// GoString renders the value for test failure messages.
func (v Value) GoString() string {
	switch v.Type {
	case TypeSimpleString:
		return "SimpleString(" + strconv.Quote(v.Str) + ")"
	case TypeError:
		return "Error(" + strconv.Quote(v.Str) + ")"
	case TypeInteger:
		return "Integer(" + strconv.FormatInt(v.Int, 10) + ")"
	case TypeBulkString:
		return "BulkString(" + strconv.Quote(string(v.Bulk)) + ")"
	case TypeArray:
		var b bytes.Buffer
		b.WriteString("Array[")
		for i, item := range v.Array {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(item.GoString())
		}
		b.WriteString("]")
		return b.String()
	case TypeNullArray:
		return "NullArray"
	default:
		return "Null"
	}
}
