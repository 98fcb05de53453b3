package loader

import (
	"github.com/Carmen-Shannon/oxy-blend/common"
	"github.com/Carmen-Shannon/oxy-blend/engine/animation"
	"go.uber.org/zap"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithLogger is an option builder that sets the logger used by the Loader and by the blend
// groups it builds.
//
// Parameters:
//   - logger: the logger instance
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *zap.Logger) LoaderBuilderOption {
	return func(l *loader) {
		l.logger = logger
	}
}

// WithInstancePool is an option builder that makes every loaded blend group share one
// playback instance pool.
//
// Parameters:
//   - pool: the pool, usually from animation.NewInstancePool
//
// Returns:
//   - LoaderBuilderOption: a function that applies the pool option to a loader
func WithInstancePool(pool *common.Pool[*animation.BlendGroupInstance]) LoaderBuilderOption {
	return func(l *loader) {
		l.instancePool = pool
	}
}

// WithBlendSet is an option builder that pre-populates the cache with a blend set.
//
// Parameters:
//   - key: the cache key for the blend set
//   - set: the blend set to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the blend set option to a loader
func WithBlendSet(key string, set *BlendSet) LoaderBuilderOption {
	return func(l *loader) {
		l.cache[key] = set
	}
}
