// Package cache provides result caches for the translation engine.
package cache

// TranslationCache is the interface for translation result caching.
type TranslationCache interface {
	// Get retrieves a cached translation. Returns empty string and false if not found or expired.
	Get(key string) (string, bool)

	// Set stores a translation in the cache.
	Set(key string, value string) error
}

// BatchGetter looks up many keys in one call. Results are aligned with keys.
type BatchGetter interface {
	GetMany(keys []string) ([]string, []bool)
}
