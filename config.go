package datapack

import (
	"fmt"

	"github.com/gron1987/entity-array-compressor/cache"
	"github.com/gron1987/entity-array-compressor/encio"
)

// DefaultCacheSize is the cache size used by cached factories when Config.CacheSize is zero.
const DefaultCacheSize = 1024

// Config defines configuration for Writers and Readers.
// A Reader must use factories compatible with those of the Writer that wrote the stream.
type Config struct {
	// Factories resolves types to factories when writing, and factory names to factories when reading.
	// If nil, DefaultRegistry is used.
	Factories FactoryLookup

	// Fallback is used for types Factories has no factory for.
	// If nil, such types fail with ErrUnknownType.
	Fallback Factory

	// CacheSize is the number of values cached factories remember.
	// If zero, DefaultCacheSize is used. It is written to the stream, so readers need not agree on it.
	CacheSize int

	// CacheKind selects the cache implementation of cached factories.
	CacheKind cache.Kind
}

func (c *Config) copyAndFill() (*Config, error) {
	config := new(Config)
	if c != nil {
		*config = *c
	}

	if config.Factories == nil {
		config.Factories = DefaultRegistry
	}
	if config.CacheSize == 0 {
		config.CacheSize = DefaultCacheSize
	}

	if config.CacheSize < 0 || config.CacheSize > cache.MaxCacheSize {
		return nil, encio.NewError(encio.ErrBadConfig, fmt.Sprintf("cache size %v is out of range", config.CacheSize), 1)
	}
	if config.CacheKind > cache.KindRingTree {
		return nil, encio.NewError(encio.ErrBadConfig, fmt.Sprintf("unknown cache kind %v", config.CacheKind), 1)
	}

	return config, nil
}
