package benchmark

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/oklog/ulid/v2"

	"github.com/mvasek/keva-go/internal/store"
	"github.com/mvasek/keva-go/pkg/resp"
)

// KeyCounts defines the store sizes for benchmarking.
var KeyCounts = []int{1000, 10000, 100000, 500000}

// SmallKeyCounts for quick benchmarks.
var SmallKeyCounts = []int{1000, 10000}

// newKey generates a unique key.
func newKey() []byte {
	return []byte("bench-" + ulid.Make().String())
}

// benchValue is a representative payload.
func benchValue() store.Value {
	v, _ := store.NewValue(resp.BulkStringText("benchmark payload value"))
	return v
}

// prefillStore fills a store with count keys and returns them.
func prefillStore(st *store.Store, count int) [][]byte {
	keys := make([][]byte, count)
	val := benchValue()
	for i := 0; i < count; i++ {
		keys[i] = []byte(fmt.Sprintf("bench-key-%d", i))
		st.Set(keys[i], val, 0)
	}
	return keys
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithKeyCounts runs a benchmark function with various store sizes.
func runWithKeyCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("keys_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
