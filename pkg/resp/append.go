package resp

import "strconv"

// Common pre-encoded replies.
var (
	RawPong      = []byte("+PONG\r\n")
	RawOK        = []byte("+OK\r\n")
	RawNull      = []byte("$-1\r\n")
	RawNullArray = []byte("*-1\r\n")
)

// Append serializes v onto dst and returns the extended slice. The output
// is the byte-exact inverse of Decode for any value Decode can produce.
func Append(dst []byte, v Value) []byte {
	switch v.Type {
	case TypeNull:
		return append(dst, RawNull...)
	case TypeNullArray:
		return append(dst, RawNullArray...)
	case TypeSimpleString:
		return AppendSimpleString(dst, v.Str)
	case TypeError:
		return AppendError(dst, v.Str)
	case TypeInteger:
		return AppendInteger(dst, v.Int)
	case TypeBulkString:
		return AppendBulkString(dst, v.Bulk)
	case TypeArray:
		dst = AppendArrayHeader(dst, len(v.Array))
		for _, item := range v.Array {
			dst = Append(dst, item)
		}
		return dst
	default:
		return dst
	}
}

// AppendSimpleString appends "+<s>\r\n". The payload must not contain CR
// or LF; the decoder never produces one that does.
func AppendSimpleString(dst []byte, s string) []byte {
	dst = append(dst, '+')
	dst = append(dst, s...)
	return append(dst, '\r', '\n')
}

// AppendError appends "-<s>\r\n".
func AppendError(dst []byte, s string) []byte {
	dst = append(dst, '-')
	dst = append(dst, s...)
	return append(dst, '\r', '\n')
}

// AppendInteger appends ":<n>\r\n" with minimal decimal formatting.
func AppendInteger(dst []byte, n int64) []byte {
	dst = append(dst, ':')
	dst = strconv.AppendInt(dst, n, 10)
	return append(dst, '\r', '\n')
}

// AppendBulkString appends "$<len>\r\n<payload>\r\n".
func AppendBulkString(dst []byte, b []byte) []byte {
	dst = append(dst, '$')
	dst = strconv.AppendInt(dst, int64(len(b)), 10)
	dst = append(dst, '\r', '\n')
	dst = append(dst, b...)
	return append(dst, '\r', '\n')
}

// AppendArrayHeader appends "*<n>\r\n"; the caller appends n values.
func AppendArrayHeader(dst []byte, n int) []byte {
	dst = append(dst, '*')
	dst = strconv.AppendInt(dst, int64(n), 10)
	return append(dst, '\r', '\n')
}
