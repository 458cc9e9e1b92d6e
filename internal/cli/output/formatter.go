// Package output renders protocol replies for humans.
package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mvasek/keva-go/pkg/resp"
)

// Reply renders a decoded reply the way an interactive client shows it.
// Bulk strings are quoted so binary and whitespace payloads stay legible;
// null and null-array both render as (nil).
func Reply(v resp.Value) string {
	switch v.Type {
	case resp.TypeSimpleString:
		return v.Str
	case resp.TypeError:
		return "(error) " + v.Str
	case resp.TypeInteger:
		return fmt.Sprintf("(integer) %d", v.Int)
	case resp.TypeBulkString:
		return strconv.Quote(string(v.Bulk))
	case resp.TypeNull, resp.TypeNullArray:
		return "(nil)"
	case resp.TypeArray:
		if len(v.Array) == 0 {
			return "(empty array)"
		}
		var sb strings.Builder
		for i, item := range v.Array {
			if i > 0 {
				sb.WriteByte('\n')
			}
			fmt.Fprintf(&sb, "%d) %s", i+1, Reply(item))
		}
		return sb.String()
	default:
		return fmt.Sprintf("(unknown type %d)", v.Type)
	}
}
