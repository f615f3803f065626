package loader

import (
	"github.com/Carmen-Shannon/noded-go/engine/logger"
	"github.com/Carmen-Shannon/noded-go/engine/scene"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithMaxDimension is an option builder that downsizes decoded images so neither side
// exceeds n texels. Zero disables resizing.
//
// Parameters:
//   - n: the maximum width or height in texels
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithMaxDimension(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.maxDimension = n
	}
}

// WithDecodeWorkers sets how many goroutines Prefetch decodes on. Zero disables Prefetch.
// Defaults to one less than the CPU count.
func WithDecodeWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.decodeWorkers = n
	}
}

// WithCache is an option builder that enables or disables the decoded texture cache.
// Enabled by default.
//
// Parameters:
//   - enabled: whether decoded textures are cached
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithCache(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.cacheEnabled = enabled
	}
}

// WithTexture is an option builder that pre-populates the cache with a texture keyed by
// its Key, Scale and Revision. Textures without a key are ignored.
//
// Parameters:
//   - t: the texture to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithTexture(t scene.TextureData) LoaderBuilderOption {
	return func(l *loader) {
		if t.Key == nil {
			return
		}
		l.cache[cacheKey{path: *t.Key, scale: t.Scale, revision: t.Revision}] = t
	}
}

// WithLogger is an option builder that replaces the loader's module logger.
func WithLogger(log logger.Logger) LoaderBuilderOption {
	return func(l *loader) {
		l.log = log
	}
}
