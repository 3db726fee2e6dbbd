package mtbridge

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashText computes the SHA-256 hash of text. Whitespace is significant:
// the engine translates exactly what it is given.
func HashText(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}

// ChainID identifies a sequence of models by their config fingerprints.
func ChainID(fingerprints ...string) string {
	return strings.Join(fingerprints, ">")
}

// CacheKey generates a result-cache key from a text hash and a model chain.
func CacheKey(hash, chain string) string {
	return hash + ":" + chain
}
