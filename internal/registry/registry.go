// Package registry is the boundary to the external ID registry: key
// normalization, exact-match lookup, and the backing stores.
package registry

import (
	"context"
	"strings"
)

// Entry is the outcome of a registry lookup. Photo holds the stored reference
// photo exactly as the registry keeps it: inline base64, a data URL, or an
// external blob/HTTP reference, resolved later by the photo source.
type Entry struct {
	Exists bool   `json:"exists"`
	Photo  string `json:"-"`
}

// Store looks up normalized codes in the registry. Implementations treat each
// read as a point-in-time snapshot; no consistency with audit writes is
// assumed.
type Store interface {
	Lookup(ctx context.Context, code string) (Entry, error)
}

// NormalizeKey prepares an extracted code for lookup: interior whitespace
// stripped and case folded to uppercase. When the normalized form is shorter
// than minLen the original string is used instead: codes whose grammar does
// not match the expected long-serial format are preserved rather than
// mangled.
func NormalizeKey(code string, minLen int) string {
	normalized := strings.ToUpper(strings.Join(strings.Fields(code), ""))
	if len(normalized) >= minLen {
		return normalized
	}
	return code
}
