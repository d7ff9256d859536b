// Package storage resolves stored reference photos. Registries keep photos
// in several shapes (inline base64, a data URL, an HTTP URL, or an Azure
// blob reference) and the resolver normalizes all of them to raw bytes.
package storage

import (
	"context"
	"encoding/base64"
	"strings"

	apperrors "go-id-verifier/internal/errors"
)

// Fetcher retrieves photo bytes for an external reference.
type Fetcher interface {
	FetchPhoto(ctx context.Context, ref string) ([]byte, error)
}

// Resolver turns a registry photo value into raw image bytes.
type Resolver struct {
	httpFetcher Fetcher
	blobFetcher Fetcher
}

// NewResolver creates a resolver. blobFetcher may be nil when no blob backend
// is configured; blob references then fail with a storage error.
func NewResolver(httpFetcher, blobFetcher Fetcher) *Resolver {
	return &Resolver{httpFetcher: httpFetcher, blobFetcher: blobFetcher}
}

// Resolve decodes or fetches the stored photo value.
func (r *Resolver) Resolve(ctx context.Context, stored string) ([]byte, error) {
	stored = strings.TrimSpace(stored)
	switch {
	case stored == "":
		return nil, apperrors.NewStorageError("no stored photo", nil)

	case strings.HasPrefix(stored, "data:image"):
		idx := strings.IndexByte(stored, ',')
		if idx < 0 {
			return nil, apperrors.NewStorageError("malformed data URL", nil)
		}
		return decodeBase64(stored[idx+1:])

	case strings.HasPrefix(stored, "http://"), strings.HasPrefix(stored, "https://"):
		return r.httpFetcher.FetchPhoto(ctx, stored)

	case strings.HasPrefix(stored, "azblob://"):
		if r.blobFetcher == nil {
			return nil, apperrors.NewStorageError("blob storage not configured", nil)
		}
		return r.blobFetcher.FetchPhoto(ctx, stored)

	default:
		// Bare base64, with raw bytes as the last resort.
		if decoded, err := decodeBase64(stored); err == nil {
			return decoded, nil
		}
		return []byte(stored), nil
	}
}

func decodeBase64(payload string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, apperrors.NewStorageError("invalid base64 photo payload", err)
	}
	return decoded, nil
}
