package ocr

import (
	"regexp"
	"strings"
)

// regionCodes are the two-letter region prefixes a document code may start
// with. The code grammar is region + 2-digit subcode + 8-or-more-digit serial.
var regionCodes = []string{
	"AN", "AP", "AR", "AS", "BR", "CH", "CG", "DD", "DL", "DN", "GA", "GJ", "HR", "HP", "JK", "JH",
	"KA", "KL", "LD", "MP", "MH", "MN", "ML", "MZ", "NL", "OD", "PB", "PY", "RJ", "SK", "TN", "TS", "TR", "UP", "UK", "WB",
}

var (
	// Primary grammar: region code + 2 digits + long serial, with and
	// without an interior space. First match wins.
	primaryWithSpace = regexp.MustCompile(`(?i)\b(` + strings.Join(regionCodes, "|") + `)\s*(\d{2})\s+(\d{8,})\b`)
	primaryCompact   = regexp.MustCompile(`(?i)\b(` + strings.Join(regionCodes, "|") + `)(\d{2})(\d{8,})\b`)

	// Fallback patterns, loosest last. These can match unrelated numeric
	// substrings, which is why they are switchable.
	fallbackPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bID\s*(No\.?|Number\.?|#)?\s*[:\-]?\s*([A-Z0-9\-]{5,})\b`),
		regexp.MustCompile(`(?i)\b([A-Z]{1,3}\d{5,}[A-Z]?)\b`),
		regexp.MustCompile(`\b\d{8,}\b`),
	}
)

// ocrCorrections resolves common digit/letter confusions. Every mapped
// character maps to a digit that is never itself a key, so applying the table
// twice equals applying it once.
var ocrCorrections = strings.NewReplacer(
	"O", "0",
	"I", "1",
	"S", "5",
	"B", "8",
	"G", "6",
	"Z", "2",
	"o", "0",
	"l", "1",
	"s", "5",
	"b", "8",
	"g", "6",
	"z", "2",
)

// Parser extracts the identifying code from combined OCR text.
type Parser struct {
	fallbackEnabled bool
}

// NewParser creates a parser. fallbackEnabled controls whether the loose
// fallback patterns run when the primary grammar finds nothing.
func NewParser(fallbackEnabled bool) *Parser {
	return &Parser{fallbackEnabled: fallbackEnabled}
}

// ExtractID pulls the identifying code out of text, or returns nil when no
// pattern matches. The result is uppercased with no interior separators.
func (p *Parser) ExtractID(text string) *string {
	candidates := []string{text}
	if corrected := fixOCRErrors(text); corrected != text {
		candidates = append(candidates, corrected)
	}

	// Primary pass: the rigid regional grammar, raw text before corrected.
	for _, candidate := range candidates {
		for _, pattern := range []*regexp.Regexp{primaryWithSpace, primaryCompact} {
			if m := pattern.FindStringSubmatch(candidate); m != nil {
				id := strings.ToUpper(m[1] + m[2] + m[3])
				return &id
			}
		}
	}

	if !p.fallbackEnabled {
		return nil
	}

	// Fallback pass: progressively looser patterns across the same
	// candidates, first match wins.
	for _, candidate := range candidates {
		for _, pattern := range fallbackPatterns {
			m := pattern.FindStringSubmatch(candidate)
			if m == nil {
				continue
			}
			match := m[0]
			if len(m) > 1 && m[len(m)-1] != "" {
				match = m[len(m)-1]
			}
			if match != "" {
				id := strings.ToUpper(match)
				return &id
			}
		}
	}
	return nil
}

// ParseFields parses the structured identity fields from combined OCR text.
// Only the id number is populated; the remaining fields are declared but
// intentionally left empty.
func (p *Parser) ParseFields(text string) (map[string]*string, *string) {
	normalized := strings.Join(cleanTextLines(text), "\n")
	id := p.ExtractID(normalized)
	fields := map[string]*string{
		"name":    nil,
		"dob":     nil,
		"address": nil,
	}
	return fields, id
}

// fixOCRErrors applies the character substitution table.
func fixOCRErrors(text string) string {
	return ocrCorrections.Replace(text)
}

// cleanTextLines drops empty lines and ruled-line artifacts.
func cleanTextLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isRuleArtifact(line) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func isRuleArtifact(line string) bool {
	for _, r := range line {
		switch r {
		case '-', '_', '~', '|', '/', '\\':
		default:
			return false
		}
	}
	return true
}
