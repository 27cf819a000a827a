package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrStorageProviderUnknown            = errors.New("layout config: storage provider is invalid")
	ErrStorageDSNRequired                = errors.New("layout config: storage dsn is required")
	ErrCacheProviderUnknown              = errors.New("layout config: cache provider is invalid")
	ErrCacheTTLInvalid                   = errors.New("layout config: cache ttl must be zero or positive")
	ErrCacheRedisAddrRequired            = errors.New("layout config: redis address is required for the redis cache provider")
	ErrAdvancedCacheRequiresEnabledCache = errors.New("layout config: advanced cache feature requires cache to be enabled")
	ErrMirrorProviderUnknown             = errors.New("layout config: mirror provider is invalid")
	ErrMirrorPathRequired                = errors.New("layout config: mirror path is required for the fs provider")
	ErrMirrorURIRequired                 = errors.New("layout config: mirror uri is required for the mongo provider")
	ErrMirrorTimeoutInvalid              = errors.New("layout config: mirror upload timeout must be zero or positive")
	ErrLoggingProviderRequired           = errors.New("layout config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown            = errors.New("layout config: logging provider is invalid")
	ErrLoggingLevelInvalid               = errors.New("layout config: logging level is invalid")
	ErrLoggingFormatInvalid              = errors.New("layout config: logging format is invalid")
)

// Provider identifiers accepted by Validate and consumed by the container.
const (
	StorageProviderSQLite   = "sqlite"
	StorageProviderPostgres = "postgres"

	CacheProviderMemory = "memory"
	CacheProviderRedis  = "redis"

	MirrorProviderFS    = "fs"
	MirrorProviderMongo = "mongo"
	MirrorProviderNone  = "none"

	LoggingProviderConsole  = "console"
	LoggingProviderGoLogger = "gologger"
)

// Config aggregates feature flags and adapter bindings for the layout module.
// Fields intentionally use simple types so host applications can extend them.
type Config struct {
	Storage  StorageConfig
	Cache    CacheConfig
	Mirror   MirrorConfig
	Share    ShareConfig
	Logging  LoggingConfig
	Features Features
}

// StorageConfig selects the primary store backend.
type StorageConfig struct {
	Provider string
	DSN      string
}

// CacheConfig captures document cache behaviour.
type CacheConfig struct {
	Enabled  bool
	Provider string
	TTL      time.Duration
	Redis    RedisConfig
}

// RedisConfig carries connection settings for the redis cache provider.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MirrorConfig captures secondary-store behaviour. The mirror is a
// best-effort backup; uploads never block primary writes.
type MirrorConfig struct {
	Enabled       bool
	Provider      string
	Path          string
	URI           string
	Database      string
	Bucket        string
	UploadTimeout time.Duration
}

// ShareConfig controls generated share links. An empty BaseURL keeps
// links host-relative.
type ShareConfig struct {
	BaseURL string
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
}

// Features toggles module functionality.
type Features struct {
	Versioning    bool
	Mirroring     bool
	AdvancedCache bool
	Logger        bool
}

// DefaultConfig returns opinionated defaults: sqlite in-memory storage,
// in-process cache with a one hour TTL, versioning on, mirroring off.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Provider: StorageProviderSQLite,
			DSN:      "file::memory:?cache=shared",
		},
		Cache: CacheConfig{
			Enabled:  true,
			Provider: CacheProviderMemory,
			TTL:      time.Hour,
		},
		Mirror: MirrorConfig{
			Provider:      MirrorProviderNone,
			UploadTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Provider: LoggingProviderConsole,
			Level:    "info",
		},
		Features: Features{
			Versioning: true,
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	switch normalize(cfg.Storage.Provider) {
	case StorageProviderSQLite, StorageProviderPostgres:
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}

	if cfg.Cache.Enabled {
		switch normalize(cfg.Cache.Provider) {
		case "", CacheProviderMemory:
		case CacheProviderRedis:
			if strings.TrimSpace(cfg.Cache.Redis.Addr) == "" {
				return ErrCacheRedisAddrRequired
			}
		default:
			return fmt.Errorf("%w: %s", ErrCacheProviderUnknown, cfg.Cache.Provider)
		}
	}
	if cfg.Cache.TTL < 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Features.AdvancedCache && !cfg.Cache.Enabled {
		return ErrAdvancedCacheRequiresEnabledCache
	}

	if cfg.Mirror.Enabled || cfg.Features.Mirroring {
		switch normalize(cfg.Mirror.Provider) {
		case MirrorProviderFS:
			if strings.TrimSpace(cfg.Mirror.Path) == "" {
				return ErrMirrorPathRequired
			}
		case MirrorProviderMongo:
			if strings.TrimSpace(cfg.Mirror.URI) == "" {
				return ErrMirrorURIRequired
			}
		case "", MirrorProviderNone:
		default:
			return fmt.Errorf("%w: %s", ErrMirrorProviderUnknown, cfg.Mirror.Provider)
		}
	}
	if cfg.Mirror.UploadTimeout < 0 {
		return ErrMirrorTimeoutInvalid
	}

	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if provider != LoggingProviderConsole && provider != LoggingProviderGoLogger {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == LoggingProviderGoLogger {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
