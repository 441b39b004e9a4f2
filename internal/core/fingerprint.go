package core

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// HashRequest derives the cache key for a classification request.
// The key is the hex SHA-256 of "subject|sender|c1|...|cn|task" with the
// categories sorted, so the order callers pass them in does not matter.
func HashRequest(subject, sender string, categories []string, task Task) string {
	sorted := make([]string, len(categories))
	copy(sorted, categories)
	sort.Strings(sorted)

	parts := make([]string, 0, len(sorted)+3)
	parts = append(parts, subject, sender)
	parts = append(parts, sorted...)
	parts = append(parts, string(task))

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
