package repl

import (
	"reflect"
	"strings"
	"testing"
)

// =============================================================================
// SplitLine Tests
// =============================================================================

func TestSplitLine(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{"single word", "ping", []string{"ping"}, false},
		{"multiple words", "set key value", []string{"set", "key", "value"}, false},
		{"collapses whitespace", "  get \t key  ", []string{"get", "key"}, false},
		{"double quotes", `set key "hello world"`, []string{"set", "key", "hello world"}, false},
		{"single quotes", "echo 'a b c'", []string{"echo", "a b c"}, false},
		{"empty quoted arg", `echo ""`, []string{"echo", ""}, false},
		{"quote mid-word", `echo ab"cd"`, []string{"echo", "ab", "cd"}, false},
		{"empty line", "", nil, false},
		{"unterminated quote", `echo "oops`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitLine(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitLine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Run Tests
// =============================================================================

func TestREPL_Run_ExitsOnExit(t *testing.T) {
	var out strings.Builder
	r := &REPL{
		input:   strings.NewReader("exit\n"),
		output:  &out,
		history: testHistory(t),
	}

	if err := r.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "keva> ") {
		t.Errorf("expected prompt in output, got %q", out.String())
	}
}

func TestREPL_Run_ExitsOnEOF(t *testing.T) {
	var out strings.Builder
	r := &REPL{
		input:   strings.NewReader(""),
		output:  &out,
		history: testHistory(t),
	}

	if err := r.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestREPL_Run_SkipsBlankLines(t *testing.T) {
	var out strings.Builder
	r := &REPL{
		input:   strings.NewReader("\n   \nquit\n"),
		output:  &out,
		history: testHistory(t),
	}

	if err := r.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if r.history.Len() != 1 {
		t.Errorf("history length = %d, want 1 (only the quit line)", r.history.Len())
	}
}
