package answer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Normalize canonicalizes user text before any lookup: lower-cased, trimmed.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// CacheKey derives the answers-cache key from a normalized query. The data
// version is folded in so bumping it invalidates every stale answer at once.
func CacheKey(normalized, dataVersion string) string {
	sum := sha256.Sum256([]byte(normalized + "|" + dataVersion))
	return hex.EncodeToString(sum[:])
}
