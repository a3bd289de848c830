// Package hash provides the stable content fingerprint used for change
// detection and as the embedding-cache key component.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// Content returns the hex-encoded SHA-256 digest of data. sha256("") is
// "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855".
func Content(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// String is a convenience wrapper around Content for string inputs.
func String(s string) string {
	return Content([]byte(s))
}

// EmbeddingCacheKey derives the content-addressed key for the embedding
// cache: sha256(model || "\0" || content).
func EmbeddingCacheKey(model, content string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}
