// Package di wires the layout service's dependencies from runtime
// configuration: database, cache backend, mirror store, logging, and the
// presentation services.
package di

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/slidekit/layout/internal/cache"
	"github.com/slidekit/layout/internal/httpapi"
	"github.com/slidekit/layout/internal/logging"
	"github.com/slidekit/layout/internal/logging/console"
	"github.com/slidekit/layout/internal/logging/gologger"
	"github.com/slidekit/layout/internal/mirror"
	"github.com/slidekit/layout/internal/presentations"
	"github.com/slidekit/layout/internal/runtimeconfig"
	"github.com/slidekit/layout/pkg/interfaces"
)

// Container wires module dependencies.
type Container struct {
	Config runtimeconfig.Config

	bunDB          *bun.DB
	ownsDB         bool
	documents      cache.Cache
	mirrorStore    mirror.Store
	mirrorClose    func(context.Context) error
	loggerProvider interfaces.LoggerProvider

	presentationRepo presentations.PresentationRepository
	versionRepo      presentations.VersionRepository

	svc presentations.API
	api *httpapi.API
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB injects an existing database handle; the caller keeps ownership.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the document cache backend.
func WithCache(docs cache.Cache) Option {
	return func(c *Container) {
		c.documents = docs
	}
}

// WithMirror overrides the mirror store.
func WithMirror(store mirror.Store) Option {
	return func(c *Container) {
		c.mirrorStore = store
	}
}

// WithLoggerProvider overrides the logging provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithPresentationRepository overrides the presentation repository binding.
func WithPresentationRepository(repo presentations.PresentationRepository) Option {
	return func(c *Container) {
		c.presentationRepo = repo
	}
}

// WithVersionRepository overrides the version repository binding.
func WithVersionRepository(repo presentations.VersionRepository) Option {
	return func(c *Container) {
		c.versionRepo = repo
	}
}

// NewContainer validates cfg and builds every dependency not supplied via
// options.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.loggerProvider == nil {
		provider, err := buildLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		c.loggerProvider = provider
	}

	if c.presentationRepo == nil || c.versionRepo == nil {
		if c.bunDB == nil {
			db, err := openDatabase(cfg.Storage)
			if err != nil {
				return nil, err
			}
			c.bunDB = db
			c.ownsDB = true
		}
		if err := c.configureRepositories(); err != nil {
			return nil, err
		}
	}

	if c.documents == nil {
		docs, err := buildCache(cfg.Cache)
		if err != nil {
			return nil, err
		}
		c.documents = docs
	}

	if c.mirrorStore == nil {
		mirrorCfg := cfg.Mirror
		mirrorCfg.Enabled = mirrorCfg.Enabled || cfg.Features.Mirroring
		store, closeFn, err := buildMirror(mirrorCfg)
		if err != nil {
			return nil, err
		}
		c.mirrorStore = store
		c.mirrorClose = closeFn
	}

	serviceOpts := []presentations.ServiceOption{
		presentations.WithCache(c.documents),
		presentations.WithMirror(c.mirrorStore),
		presentations.WithLogger(logging.PresentationsLogger(c.loggerProvider)),
		presentations.WithVersioningEnabled(cfg.Features.Versioning),
	}
	if cfg.Cache.TTL > 0 {
		serviceOpts = append(serviceOpts, presentations.WithCacheTTL(cfg.Cache.TTL))
	}
	if cfg.Mirror.UploadTimeout > 0 {
		serviceOpts = append(serviceOpts, presentations.WithMirrorTimeout(cfg.Mirror.UploadTimeout))
	}
	if cfg.Share.BaseURL != "" {
		serviceOpts = append(serviceOpts, presentations.WithShareLinker(presentations.NewShareLinker(cfg.Share.BaseURL)))
	}
	c.svc = presentations.NewService(c.presentationRepo, c.versionRepo, serviceOpts...)

	c.api = httpapi.NewAPI(
		httpapi.WithStoreService(c.svc),
		httpapi.WithLedgerService(c.svc),
		httpapi.WithLogger(logging.HTTPLogger(c.loggerProvider)),
	)

	return c, nil
}

func (c *Container) configureRepositories() error {
	if c.bunDB == nil {
		return fmt.Errorf("di: database handle is required")
	}

	var (
		cacheService  repocache.CacheService
		keySerializer repocache.KeySerializer
	)
	if c.Config.Features.AdvancedCache {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.TTL > 0 {
			cfg.TTL = c.Config.Cache.TTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			return fmt.Errorf("di: repository cache: %w", err)
		}
		cacheService = service
		keySerializer = repocache.NewDefaultKeySerializer()
	}

	if c.presentationRepo == nil {
		c.presentationRepo = presentations.NewBunPresentationRepositoryWithCache(c.bunDB, cacheService, keySerializer)
	}
	if c.versionRepo == nil {
		c.versionRepo = presentations.NewBunVersionRepositoryWithCache(c.bunDB, cacheService, keySerializer)
	}
	return nil
}

// Service returns the presentation store + ledger facade.
func (c *Container) Service() presentations.API {
	return c.svc
}

// HTTPAPI returns the route registrar for the REST surface.
func (c *Container) HTTPAPI() *httpapi.API {
	return c.api
}

// DB returns the database handle, nil when repositories were injected.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

// LoggerProvider returns the configured logging provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Close releases resources owned by the container.
func (c *Container) Close(ctx context.Context) error {
	var firstErr error
	if c.mirrorClose != nil {
		if err := c.mirrorClose(ctx); err != nil {
			firstErr = err
		}
	}
	if c.ownsDB && c.bunDB != nil {
		if err := c.bunDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func openDatabase(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	switch cfg.Provider {
	case runtimeconfig.StorageProviderSQLite:
		sqlDB, err := sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("di: open sqlite: %w", err)
		}
		db := bun.NewDB(sqlDB, sqlitedialect.New())
		db.SetMaxOpenConns(1)
		return db, nil
	case runtimeconfig.StorageProviderPostgres:
		sqlDB, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("di: open postgres: %w", err)
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("di: unsupported storage provider %q", cfg.Provider)
	}
}

func buildCache(cfg runtimeconfig.CacheConfig) (cache.Cache, error) {
	if !cfg.Enabled {
		return cache.NewNull(), nil
	}
	switch cfg.Provider {
	case "", runtimeconfig.CacheProviderMemory:
		return cache.NewMemory(), nil
	case runtimeconfig.CacheProviderRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("di: redis ping: %w", err)
		}
		return cache.NewRedis(client, cache.WithKeyPrefix("layout:")), nil
	default:
		return nil, fmt.Errorf("di: unsupported cache provider %q", cfg.Provider)
	}
}

func buildMirror(cfg runtimeconfig.MirrorConfig) (mirror.Store, func(context.Context) error, error) {
	if !cfg.Enabled {
		return mirror.NewNoop(), nil, nil
	}
	switch cfg.Provider {
	case runtimeconfig.MirrorProviderFS:
		store, err := mirror.NewFS(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case runtimeconfig.MirrorProviderMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, closeFn, err := mirror.NewMongo(ctx, mirror.MongoConfig{
			URI:        cfg.URI,
			Database:   cfg.Database,
			Collection: cfg.Bucket,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, closeFn, nil
	case "", runtimeconfig.MirrorProviderNone:
		return mirror.NewNoop(), nil, nil
	default:
		return nil, nil, fmt.Errorf("di: unsupported mirror provider %q", cfg.Provider)
	}
}

func buildLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch cfg.Provider {
	case runtimeconfig.LoggingProviderConsole:
		level := console.ParseLevel(cfg.Level)
		return console.NewProvider(console.Options{MinLevel: &level}), nil
	case runtimeconfig.LoggingProviderGoLogger:
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
		})
	default:
		return nil, fmt.Errorf("di: unsupported logging provider %q", cfg.Provider)
	}
}
