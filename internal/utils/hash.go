package utils

import (
	"fmt"
	"hash/fnv"
)

func HashStringToUint64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// ContentHash fingerprints signal content for deduplication. FNV-64a is fast
// and non-cryptographic; the appended length guards against accidental
// collisions between different-sized posts.
func ContentHash(content string) string {
	return fmt.Sprintf("h_%x_%d", HashStringToUint64(content), len(content))
}
