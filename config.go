package layout

import "github.com/slidekit/layout/internal/runtimeconfig"

var (
	ErrStorageProviderUnknown            = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDSNRequired                = runtimeconfig.ErrStorageDSNRequired
	ErrCacheProviderUnknown              = runtimeconfig.ErrCacheProviderUnknown
	ErrCacheTTLInvalid                   = runtimeconfig.ErrCacheTTLInvalid
	ErrCacheRedisAddrRequired            = runtimeconfig.ErrCacheRedisAddrRequired
	ErrAdvancedCacheRequiresEnabledCache = runtimeconfig.ErrAdvancedCacheRequiresEnabledCache
	ErrMirrorProviderUnknown             = runtimeconfig.ErrMirrorProviderUnknown
	ErrMirrorPathRequired                = runtimeconfig.ErrMirrorPathRequired
	ErrMirrorURIRequired                 = runtimeconfig.ErrMirrorURIRequired
	ErrLoggingProviderRequired           = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown            = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid               = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid              = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config        = runtimeconfig.Config
	StorageConfig = runtimeconfig.StorageConfig
	CacheConfig   = runtimeconfig.CacheConfig
	RedisConfig   = runtimeconfig.RedisConfig
	MirrorConfig  = runtimeconfig.MirrorConfig
	ShareConfig   = runtimeconfig.ShareConfig
	LoggingConfig = runtimeconfig.LoggingConfig
	Features      = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
