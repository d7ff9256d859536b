package registry

import (
	"context"
	"testing"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		minLen   int
		expected string
	}{
		{name: "spaces stripped", code: "MH 04 2025 0026953", minLen: 13, expected: "MH0420250026953"},
		{name: "already normalized", code: "MH0420250026953", minLen: 13, expected: "MH0420250026953"},
		{name: "lowercase folded", code: "mh 04 2025 0026953", minLen: 13, expected: "MH0420250026953"},
		{name: "tabs and newlines", code: "MH\t04\n20250026953", minLen: 13, expected: "MH0420250026953"},
		{name: "short code preserved", code: "AB 123", minLen: 13, expected: "AB 123"},
		{name: "short code with min zero", code: "AB 123", minLen: 0, expected: "AB123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeKey(tt.code, tt.minLen)
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	store.Put("MH0420250026953", "data:image/png;base64,AAAA")

	entry, err := store.Lookup(context.Background(), "MH0420250026953")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !entry.Exists {
		t.Error("Expected entry to exist")
	}
	if entry.Photo != "data:image/png;base64,AAAA" {
		t.Errorf("Unexpected photo value %q", entry.Photo)
	}

	missing, err := store.Lookup(context.Background(), "KA0120190055555")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if missing.Exists {
		t.Error("Expected absent entry")
	}
}
