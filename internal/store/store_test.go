package store

import "testing"

func TestHashAPIKey_Deterministic(t *testing.T) {
	a := hashAPIKey("tracker_abc")
	b := hashAPIKey("tracker_abc")
	if a != b {
		t.Fatalf("expected stable hash, got %q and %q", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a == hashAPIKey("tracker_abd") {
		t.Fatalf("expected different keys to hash differently")
	}
}

func TestNullHelpers(t *testing.T) {
	if nullString("").Valid {
		t.Fatalf("expected empty string to map to NULL")
	}
	if v := nullString("x"); !v.Valid || v.String != "x" {
		t.Fatalf("expected valid string, got %#v", v)
	}
	if nullTime(nil).Valid {
		t.Fatalf("expected nil time to map to NULL")
	}
}
