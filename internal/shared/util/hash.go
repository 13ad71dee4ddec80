package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// OwnerKey maps a namespaced user id ("guest:abc", "local:42") to a
// storage-safe directory name so raw ids never appear in object keys.
func OwnerKey(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}

// ShortHash fingerprints parts for log correlation. It is not a security
// boundary; 16 hex characters are enough to tell prompts apart in logs.
func ShortHash(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:8])
}
