package ocr

import (
	"testing"
)

func TestExtractID_PrimaryGrammar(t *testing.T) {
	parser := NewParser(true)

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "spaced code",
			text:     "DRIVING LICENCE\nMH 04 2025 0026953\nDOB 01-01-1990",
			expected: "MH0420250026953",
		},
		{
			name:     "compact code",
			text:     "LICENCE NO MH0420250026953 VALID",
			expected: "MH0420250026953",
		},
		{
			name:     "lowercase region code",
			text:     "dl 07 20110012345",
			expected: "DL0720110012345",
		},
		{
			name:     "code embedded in noise",
			text:     "xx GOVT OF ---- KA 01 20190055555 ISSUED",
			expected: "KA0120190055555",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := parser.ExtractID(tt.text)
			if id == nil {
				t.Fatalf("Expected %q, got nil", tt.expected)
			}
			if *id != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, *id)
			}
		})
	}
}

func TestExtractID_OCRCorrections(t *testing.T) {
	parser := NewParser(true)

	// The O in the serial is a recognition error for 0.
	id := parser.ExtractID("MH042O250026953")
	if id == nil {
		t.Fatal("Expected corrected extraction, got nil")
	}
	if *id != "MH0420250026953" {
		t.Errorf("Expected MH0420250026953, got %q", *id)
	}
}

func TestExtractID_RawTextPreferredOverCorrected(t *testing.T) {
	parser := NewParser(true)

	// The raw text already matches; corrections must not rewrite it.
	id := parser.ExtractID("MH 04 2025 0026953")
	if id == nil || *id != "MH0420250026953" {
		t.Fatalf("Expected MH0420250026953, got %v", id)
	}
}

func TestFixOCRErrors_Idempotent(t *testing.T) {
	input := "MH O4 2OI5 SB8GZ"
	once := fixOCRErrors(input)
	twice := fixOCRErrors(once)
	if once != twice {
		t.Errorf("Substitution is not idempotent: %q vs %q", once, twice)
	}
}

func TestExtractID_Deterministic(t *testing.T) {
	parser := NewParser(true)
	text := "ID No: AB12345 and 99887766554 and MH 04 2025 0026953"

	first := parser.ExtractID(text)
	for i := 0; i < 10; i++ {
		next := parser.ExtractID(text)
		if (first == nil) != (next == nil) || (first != nil && *first != *next) {
			t.Fatalf("Extraction not deterministic: %v vs %v", first, next)
		}
	}
}

func TestExtractID_FallbackPatterns(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "labeled id",
			text:     "ID No: X9Y8Z7W12",
			expected: "X9Y8Z7W12",
		},
		{
			name:     "letters then digits",
			text:     "permit AB123456 issued",
			expected: "AB123456",
		},
		{
			name:     "bare digit run",
			text:     "ref 123456789 end",
			expected: "123456789",
		},
	}

	parser := NewParser(true)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := parser.ExtractID(tt.text)
			if id == nil {
				t.Fatalf("Expected %q, got nil", tt.expected)
			}
			if *id != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, *id)
			}
		})
	}
}

func TestExtractID_FallbackDisabled(t *testing.T) {
	parser := NewParser(false)

	if id := parser.ExtractID("ID No: AB123456"); id != nil {
		t.Errorf("Expected nil with fallback disabled, got %q", *id)
	}
	// The primary grammar still works.
	if id := parser.ExtractID("MH 04 2025 0026953"); id == nil {
		t.Error("Expected primary grammar match with fallback disabled")
	}
}

func TestExtractID_NoMatch(t *testing.T) {
	parser := NewParser(true)
	if id := parser.ExtractID("no identifier present here"); id != nil {
		t.Errorf("Expected nil, got %q", *id)
	}
}

func TestParseFields(t *testing.T) {
	parser := NewParser(true)
	fields, id := parser.ParseFields("NAME X\n----\nMH 04 2025 0026953\n\n~~~~")

	if id == nil || *id != "MH0420250026953" {
		t.Fatalf("Expected MH0420250026953, got %v", id)
	}
	for _, key := range []string{"name", "dob", "address"} {
		v, ok := fields[key]
		if !ok {
			t.Errorf("Expected key %q to be present", key)
		}
		if v != nil {
			t.Errorf("Expected %q to be nil, got %q", key, *v)
		}
	}
}

func TestCleanTextLines(t *testing.T) {
	lines := cleanTextLines("  hello \n\n----\n~~|~~\nworld\n//\\\\\n")
	if len(lines) != 2 || lines[0] != "hello" || lines[1] != "world" {
		t.Errorf("Expected [hello world], got %v", lines)
	}
}

func TestVariantAgreement(t *testing.T) {
	tests := []struct {
		name     string
		texts    []string
		expected float64
	}{
		{name: "single text", texts: []string{"abc"}, expected: 1.0},
		{name: "identical pair", texts: []string{"abc", "abc"}, expected: 1.0},
		{name: "disjoint pair", texts: []string{"aaaa", "bbbb"}, expected: 0.0},
		{name: "empty pair", texts: []string{"", ""}, expected: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := variantAgreement(tt.texts)
			if got != tt.expected {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestVariantAgreement_PartialOverlap(t *testing.T) {
	got := variantAgreement([]string{"abcd", "abce"})
	if got <= 0.5 || got >= 1.0 {
		t.Errorf("Expected agreement in (0.5, 1.0), got %f", got)
	}
}
