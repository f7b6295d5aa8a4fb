package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ResultKey derives a cache key for a computed result from its identifying
// parts (operation name, template id, document digests). Identical inputs
// always map to the same key.
func ResultKey(parts ...string) string {
	hash := sha256.New()
	for _, part := range parts {
		hash.Write([]byte(part))
		hash.Write([]byte{0})
	}
	return "recourse:v1:" + hex.EncodeToString(hash.Sum(nil))
}

// Digest returns the hex digest of one content blob, for use as a
// ResultKey part
func Digest(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
