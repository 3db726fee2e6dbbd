package mtbridge

// lookupMany resolves keys against cache in one pass. Caches that implement
// BatchGetter answer with a single round trip; others are queried per key.
// Both returned slices are aligned with keys.
func lookupMany(cache TranslationCache, keys []string) ([]string, []bool) {
	if len(keys) == 0 {
		return nil, nil
	}

	if bg, ok := cache.(BatchGetter); ok {
		values, found := bg.GetMany(keys)
		if len(values) == len(keys) && len(found) == len(keys) {
			return values, found
		}
		// A short answer is treated as all misses.
		return make([]string, len(keys)), make([]bool, len(keys))
	}

	values := make([]string, len(keys))
	found := make([]bool, len(keys))
	for i, key := range keys {
		values[i], found[i] = cache.Get(key)
	}
	return values, found
}
