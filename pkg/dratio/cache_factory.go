package dratio

import (
	"errors"
	"fmt"
	"time"

	"github.com/menhir-tech/dratio-go/internal/constants"
)

// CacheType selects the cache backend.
type CacheType string

const (
	// CacheTypeMemory caches listings in process memory.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS caches listings in a NATS JetStream key-value bucket.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeNone disables caching.
	CacheTypeNone CacheType = "none"
)

// Static errors for err113 compliance.
var (
	ErrNATSConfigRequired   = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCacheType = errors.New("unsupported cache type")
)

// CacheConfig configures the listing cache of a client.
type CacheConfig struct {
	// Type selects the backend. Defaults to CacheTypeNone.
	Type CacheType

	// Memory configures the memory backend.
	Memory *MemoryCacheConfig

	// NATS configures the NATS KV backend.
	NATS *NATSKVConfig

	// TTL bounds the lifetime of cached listings. Zero selects the
	// default.
	TTL time.Duration
}

// MemoryCacheConfig configures the memory cache backend.
type MemoryCacheConfig struct {
	// MaxSize is the maximum number of cached listings.
	MaxSize int
}

// NewCacheFromConfig creates a cache backend from configuration. A nil
// configuration or CacheTypeNone yields no cache, so every listing request
// reaches the server.
func NewCacheFromConfig(config *CacheConfig) (Cache, time.Duration, error) {
	if config == nil {
		return nil, 0, nil
	}

	ttl := config.TTL
	if ttl == 0 {
		ttl = constants.DefaultCacheTTL
	}

	switch config.Type {
	case CacheTypeNone, "":
		return nil, 0, nil

	case CacheTypeMemory:
		maxSize := constants.DefaultCacheSize
		if config.Memory != nil && config.Memory.MaxSize > 0 {
			maxSize = config.Memory.MaxSize
		}

		return NewMemoryCache(maxSize), ttl, nil

	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, 0, ErrNATSConfigRequired
		}

		natsConfig := *config.NATS
		if natsConfig.TTL == 0 {
			natsConfig.TTL = ttl
		}

		cache, err := NewNATSKVCache(&natsConfig)
		if err != nil {
			return nil, 0, err
		}

		return cache, ttl, nil

	default:
		return nil, 0, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}
}
