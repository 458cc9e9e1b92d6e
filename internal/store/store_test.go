package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mvasek/keva-go/pkg/resp"
)

// ============================================================
// Value Conversion
// ============================================================

func TestNewValue(t *testing.T) {
	tests := []struct {
		name    string
		input   resp.Value
		want    Value
		wantErr bool
	}{
		{
			name:  "null",
			input: resp.Null(),
			want:  Value{kind: KindNull},
		},
		{
			name:  "simple string",
			input: resp.SimpleString("hello"),
			want:  TextValue("hello"),
		},
		{
			name:  "bulk string",
			input: resp.BulkStringText("payload"),
			want:  BytesValue([]byte("payload")),
		},
		{
			name:  "integer",
			input: resp.Integer(42),
			want:  IntegerValue(42),
		},
		{
			name:    "error value rejected",
			input:   resp.Error("ERR nope"),
			wantErr: true,
		},
		{
			name:    "array rejected",
			input:   resp.Array(resp.Integer(1)),
			wantErr: true,
		},
		{
			name:    "null array rejected",
			input:   resp.NullArray(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewValue(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got.Wire(), tt.want.Wire())
			}
		})
	}
}

func TestNewValue_CopiesBulkPayload(t *testing.T) {
	buf := []byte("mutable")
	v, err := NewValue(resp.BulkString(buf))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	buf[0] = 'X' // simulate the read buffer being reused

	if got := v.Wire(); string(got.Bulk) != "mutable" {
		t.Errorf("stored value aliased the input buffer: %q", got.Bulk)
	}
}

func TestValue_Wire(t *testing.T) {
	if got := TextValue("a").Wire(); !got.Equal(resp.SimpleString("a")) {
		t.Errorf("text wire form = %#v", got)
	}
	if got := IntegerValue(-5).Wire(); !got.Equal(resp.Integer(-5)) {
		t.Errorf("integer wire form = %#v", got)
	}
	if got := (Value{}).Wire(); !got.Equal(resp.Null()) {
		t.Errorf("null wire form = %#v", got)
	}
}

// ============================================================
// Get / Set
// ============================================================

func TestStore_SetGet(t *testing.T) {
	s := New()
	defer s.Close()

	s.Set([]byte("key"), IntegerValue(1), 0)

	got, ok := s.Get([]byte("key"))
	if !ok {
		t.Fatal("Get(key) missed")
	}
	if !got.Equal(IntegerValue(1)) {
		t.Errorf("got %v, want 1", got.Wire())
	}

	if _, ok := s.Get([]byte("not_exists")); ok {
		t.Error("Get(not_exists) reported a hit")
	}

	// Overwrite always succeeds and replaces the TTL.
	s.Set([]byte("key"), TextValue("two"), 0)
	got, _ = s.Get([]byte("key"))
	if !got.Equal(TextValue("two")) {
		t.Errorf("after overwrite got %v, want two", got.Wire())
	}
}

// ============================================================
// Expiration (lazy, no sweep involved)
// ============================================================

func TestStore_ExpirationWithoutSweep(t *testing.T) {
	s := New() // sweeper intentionally never started
	defer s.Close()

	s.Set([]byte("key"), IntegerValue(1), 100*time.Millisecond)

	if _, ok := s.Get([]byte("key")); !ok {
		t.Fatal("key absent immediately after Set")
	}

	time.Sleep(120 * time.Millisecond)

	if _, ok := s.Get([]byte("key")); ok {
		t.Error("expired key still visible to Get")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1 (entry physically present until swept)", s.Len())
	}
}

// ============================================================
// Sweep
// ============================================================

func TestStore_Sweep(t *testing.T) {
	s := New()
	defer s.Close()

	s.Set([]byte("key1"), IntegerValue(1), 10*time.Millisecond)
	s.Set([]byte("key2"), IntegerValue(2), 100*time.Millisecond)
	s.Set([]byte("key3"), IntegerValue(3), 0)

	time.Sleep(11 * time.Millisecond)

	if evicted := s.Sweep(); evicted != 1 {
		t.Errorf("first sweep evicted %d, want 1", evicted)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
	if _, ok := s.Get([]byte("key2")); !ok {
		t.Error("key2 should survive the first sweep")
	}

	time.Sleep(100 * time.Millisecond)

	if evicted := s.Sweep(); evicted != 1 {
		t.Errorf("second sweep evicted %d, want 1", evicted)
	}
	if _, ok := s.Get([]byte("key3")); !ok {
		t.Error("non-expiring key3 must never be swept")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestStore_SweepKeepsRefreshedKeys(t *testing.T) {
	s := New()
	defer s.Close()

	s.Set([]byte("key"), IntegerValue(1), 5*time.Millisecond)
	time.Sleep(6 * time.Millisecond)

	// Refresh between the point the entry became expired and the sweep.
	s.Set([]byte("key"), IntegerValue(2), time.Minute)

	if evicted := s.Sweep(); evicted != 0 {
		t.Errorf("sweep evicted %d, want 0", evicted)
	}
	got, ok := s.Get([]byte("key"))
	if !ok || !got.Equal(IntegerValue(2)) {
		t.Errorf("refreshed key lost: ok=%v value=%v", ok, got.Wire())
	}
}

func TestStore_BackgroundSweeper(t *testing.T) {
	swept := make(chan int, 16)
	s := New(
		WithSweepInterval(10*time.Millisecond),
		WithSweepObserver(func(evicted int) { swept <- evicted }),
	)
	s.Start()
	defer s.Close()

	s.Set([]byte("key"), IntegerValue(1), time.Millisecond)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case n := <-swept:
			if n == 1 {
				if s.Len() != 0 {
					t.Errorf("Len = %d after sweep, want 0", s.Len())
				}
				return
			}
		case <-deadline:
			t.Fatal("sweeper never evicted the expired key")
		}
	}
}

func TestStore_CloseWithoutStart(t *testing.T) {
	s := New()
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Close is idempotent.
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

// ============================================================
// Concurrency
// ============================================================

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New(WithSweepInterval(time.Millisecond))
	s.Start()
	defer s.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := []byte(fmt.Sprintf("key-%d", i%32))
				s.Set(key, IntegerValue(int64(i)), time.Duration(i%3)*time.Millisecond)
				s.Get(key)
			}
		}(g)
	}
	wg.Wait()
}
