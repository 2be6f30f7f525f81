package ident

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestUUIDv7Generator_ValidAndSortable(t *testing.T) {
	gen := UUIDv7Generator{}

	first := gen.Generate()
	second := gen.Generate()

	for _, token := range []string{first, second} {
		parsed, err := uuid.Parse(token)
		if err != nil {
			t.Fatalf("Generate() produced invalid UUID %q: %v", token, err)
		}
		if parsed.Version() != 7 {
			t.Errorf("UUID version = %d, want 7", parsed.Version())
		}
	}

	// v7 tokens embed a timestamp prefix, so later tokens sort after
	// earlier ones.
	if !(first < second) {
		t.Errorf("tokens not time-sortable: %q >= %q", first, second)
	}
}

func TestFixedGenerator_ReturnsInOrder(t *testing.T) {
	gen := NewFixedGenerator("evt-1", "evt-2", "evt-3")

	for i, want := range []string{"evt-1", "evt-2", "evt-3"} {
		if got := gen.Generate(); got != want {
			t.Errorf("Generate() call %d = %q, want %q", i, got, want)
		}
	}
}

func TestFixedGenerator_PanicsWhenExhausted(t *testing.T) {
	gen := NewFixedGenerator("only")
	gen.Generate()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic after exhausting tokens")
		}
		if !strings.Contains(r.(string), "exhausted") {
			t.Errorf("unexpected panic message: %v", r)
		}
	}()
	gen.Generate()
}
