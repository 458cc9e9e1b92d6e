package store

import (
	"errors"

	"github.com/mvasek/keva-go/pkg/resp"
)

// ErrUnstorableValue reports a wire value with no store representation
// (errors and aggregates cannot be stored).
var ErrUnstorableValue = errors.New("store: value cannot be stored")

// Kind identifies the shape of a stored value.
type Kind uint8

const (
	// KindNull is the stored null scalar.
	KindNull Kind = iota
	// KindText is stored simple-string text.
	KindText
	// KindBytes is a stored binary payload.
	KindBytes
	// KindInteger is a stored signed integer.
	KindInteger
)

// Value is a stored value in its native wire shape. Values own their
// payload: construction copies borrowed bytes so a Value never aliases a
// connection's read buffer.
type Value struct {
	kind  Kind
	text  string
	bytes []byte
	num   int64
}

// NewValue converts a decoded wire value into a storable one, copying
// the payload. Error and array values have no store representation.
func NewValue(v resp.Value) (Value, error) {
	switch v.Type {
	case resp.TypeNull:
		return Value{kind: KindNull}, nil
	case resp.TypeSimpleString:
		return Value{kind: KindText, text: v.Str}, nil
	case resp.TypeBulkString:
		b := make([]byte, len(v.Bulk))
		copy(b, v.Bulk)
		return Value{kind: KindBytes, bytes: b}, nil
	case resp.TypeInteger:
		return Value{kind: KindInteger, num: v.Int}, nil
	default:
		return Value{}, ErrUnstorableValue
	}
}

// TextValue returns a stored text value.
func TextValue(s string) Value { return Value{kind: KindText, text: s} }

// BytesValue returns a stored binary value, copying b.
func BytesValue(b []byte) Value {
	c := make([]byte, len(b))
	copy(c, b)
	return Value{kind: KindBytes, bytes: c}
}

// IntegerValue returns a stored integer value.
func IntegerValue(n int64) Value { return Value{kind: KindInteger, num: n} }

// Kind returns the shape of the value.
func (v Value) Kind() Kind { return v.kind }

// Wire converts the value back to its wire form for serialization.
func (v Value) Wire() resp.Value {
	switch v.kind {
	case KindText:
		return resp.SimpleString(v.text)
	case KindBytes:
		return resp.BulkString(v.bytes)
	case KindInteger:
		return resp.Integer(v.num)
	default:
		return resp.Null()
	}
}

// Equal reports whether two stored values are identical.
func (v Value) Equal(o Value) bool {
	return v.Wire().Equal(o.Wire())
}
