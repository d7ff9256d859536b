package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"go-id-verifier/internal/audit"
	"go-id-verifier/internal/config"
	"go-id-verifier/internal/logger"
	"go-id-verifier/internal/registry"
	"go-id-verifier/internal/storage"
)

// RegistryType represents different registry backends
type RegistryType string

const (
	// PostgresRegistry for the production gorm-backed registry
	PostgresRegistry RegistryType = "postgres"
	// MemoryRegistry for development and tests
	MemoryRegistry RegistryType = "memory"
)

// RegistryFactory creates registry stores
type RegistryFactory interface {
	CreateRegistry(registryType RegistryType) (registry.Store, audit.Store, error)
}

// ResolverFactory creates photo resolvers
type ResolverFactory interface {
	CreateResolver() (*storage.Resolver, error)
}

type registryFactory struct {
	cfg *config.Config
}

// NewRegistryFactory creates a new registry factory
func NewRegistryFactory(cfg *config.Config) RegistryFactory {
	return &registryFactory{cfg: cfg}
}

// CreateRegistry builds the registry store and the matching audit store.
// The postgres backend is wrapped in a Redis read-through cache when a Redis
// address is configured; the memory backend pairs with a log-only audit store.
func (f *registryFactory) CreateRegistry(registryType RegistryType) (registry.Store, audit.Store, error) {
	switch registryType {
	case PostgresRegistry:
		db, err := gorm.Open(postgres.Open(f.cfg.DatabaseDSN), &gorm.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open registry database: %w", err)
		}

		store := registry.NewPostgresStore(db)
		if err := store.AutoMigrate(context.Background()); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate registry schema: %w", err)
		}
		auditStore, err := audit.NewGormStore(db)
		if err != nil {
			return nil, nil, err
		}

		if f.cfg.RedisAddr != "" {
			client := redis.NewClient(&redis.Options{Addr: f.cfg.RedisAddr})
			return registry.NewCachedStore(store, client, f.cfg.RedisCacheTTL), auditStore, nil
		}
		return store, auditStore, nil

	case MemoryRegistry:
		return registry.NewMemoryStore(), audit.NewLogStore(logger.Logger), nil

	default:
		return nil, nil, fmt.Errorf("unsupported registry type: %s", registryType)
	}
}

// RegistryTypeFromConfig picks the backend the configuration describes.
func RegistryTypeFromConfig(cfg *config.Config) RegistryType {
	if cfg.DatabaseDSN != "" {
		return PostgresRegistry
	}
	return MemoryRegistry
}

type resolverFactory struct {
	cfg *config.Config
}

// NewResolverFactory creates a new resolver factory
func NewResolverFactory(cfg *config.Config) ResolverFactory {
	return &resolverFactory{cfg: cfg}
}

// CreateResolver builds the photo resolver. The Azure blob fetcher is wired
// only when account credentials are configured.
func (f *resolverFactory) CreateResolver() (*storage.Resolver, error) {
	timeout := f.cfg.PhotoFetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpFetcher := storage.NewHTTPPhotoFetcher(timeout)

	var blobFetcher storage.Fetcher
	if f.cfg.AzureConfigured() {
		azure, err := storage.NewAzurePhotoFetcher(f.cfg.AzureAccountName, f.cfg.AzureAccountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize blob storage: %w", err)
		}
		blobFetcher = azure
	}

	return storage.NewResolver(httpFetcher, blobFetcher), nil
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	RegistryFactory RegistryFactory
	ResolverFactory ResolverFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		RegistryFactory: NewRegistryFactory(cfg),
		ResolverFactory: NewResolverFactory(cfg),
	}
}
