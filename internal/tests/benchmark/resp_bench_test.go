package benchmark

import (
	"testing"

	"github.com/mvasek/keva-go/internal/command"
	"github.com/mvasek/keva-go/pkg/resp"
)

// setFrame is a typical three-argument request on the wire.
var setFrame = []byte("*3\r\n$3\r\nSET\r\n$5\r\nmykey\r\n$7\r\nmyvalue\r\n")

// BenchmarkRespDecode measures decoding one complete request frame.
func BenchmarkRespDecode(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, _, err := resp.Decode(setFrame); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRespAppend measures serializing a reply into a reused buffer.
func BenchmarkRespAppend(b *testing.B) {
	v := resp.Array(
		resp.BulkStringText("SET"),
		resp.BulkStringText("mykey"),
		resp.BulkStringText("myvalue"),
	)

	b.ReportAllocs()
	buf := make([]byte, 0, 128)
	for i := 0; i < b.N; i++ {
		buf = resp.Append(buf[:0], v)
	}
}

// BenchmarkCommandParse measures turning a decoded frame into a typed
// command.
func BenchmarkCommandParse(b *testing.B) {
	v, _, err := resp.Decode(setFrame)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := command.Parse(v); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkCommandParseWithTTL includes modifier handling in the cost.
func BenchmarkCommandParseWithTTL(b *testing.B) {
	frame := []byte("*5\r\n$3\r\nSET\r\n$5\r\nmykey\r\n$7\r\nmyvalue\r\n$2\r\nEX\r\n$2\r\n10\r\n")
	v, _, err := resp.Decode(frame)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := command.Parse(v); err != nil {
			b.Fatal(err)
		}
	}
}
