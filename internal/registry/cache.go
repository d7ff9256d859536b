package registry

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"go-id-verifier/internal/logger"
)

// CachedStore decorates a Store with a read-through Redis cache. Cache
// failures degrade to the underlying store and are never a request failure.
type CachedStore struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
}

type cachedEntry struct {
	Exists bool   `json:"exists"`
	Photo  string `json:"photo,omitempty"`
}

// NewCachedStore wraps inner with a Redis cache using the given TTL.
func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, client: client, ttl: ttl}
}

// Lookup checks the cache before the underlying store and fills the cache on
// a miss.
func (s *CachedStore) Lookup(ctx context.Context, code string) (Entry, error) {
	key := "registry:" + code

	if raw, err := s.client.Get(ctx, key).Result(); err == nil {
		var cached cachedEntry
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return Entry{Exists: cached.Exists, Photo: cached.Photo}, nil
		}
		logger.WithField("key", key).Warn("Discarding undecodable registry cache entry")
	} else if !errors.Is(err, redis.Nil) {
		logger.WithError(err).Warn("Registry cache read failed, falling through")
	}

	entry, err := s.inner.Lookup(ctx, code)
	if err != nil {
		return entry, err
	}

	raw, err := json.Marshal(cachedEntry{Exists: entry.Exists, Photo: entry.Photo})
	if err == nil {
		if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
			logger.WithError(err).Warn("Registry cache write failed")
		}
	}
	return entry, nil
}
