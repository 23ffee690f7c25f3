package shared

import (
	"strings"
	"testing"
)

func TestStringSlice_Value(t *testing.T) {
	empty := StringSlice{}
	v, err := empty.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if v != "[]" {
		t.Errorf("expected '[]', got %v", v)
	}

	s := StringSlice{"a", "b"}
	v, err = s.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if string(v.([]byte)) != `["a","b"]` {
		t.Errorf("expected [\"a\",\"b\"], got %s", v)
	}
}

func TestStringSlice_Scan(t *testing.T) {
	var s StringSlice
	if err := s.Scan([]byte(`["x","y"]`)); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(s) != 2 || s[0] != "x" || s[1] != "y" {
		t.Errorf("unexpected slice: %v", s)
	}

	if err := s.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if s != nil {
		t.Errorf("expected nil slice, got %v", s)
	}

	if err := s.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}

func TestNewID(t *testing.T) {
	id := NewID("sess_")
	if !strings.HasPrefix(id, "sess_") {
		t.Errorf("expected sess_ prefix, got %s", id)
	}
	if len(id) != len("sess_")+32 {
		t.Errorf("expected 32 hex chars after prefix, got %d", len(id)-len("sess_"))
	}
	if id == NewID("sess_") {
		t.Error("expected unique IDs")
	}
}
