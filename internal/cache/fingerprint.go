package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// EmptyFingerprint is the reserved fingerprint for empty content, so
// submissions with no extractable text group together without colliding
// with real content hashes.
const EmptyFingerprint = "empty"

// Fingerprint returns the SHA-256 hex digest of the UTF-8 bytes of content.
// Identical input always yields the identical fingerprint, across restarts.
func Fingerprint(content string) string {
	return FingerprintBytes([]byte(content))
}

// FingerprintBytes returns the SHA-256 hex digest of raw bytes.
func FingerprintBytes(content []byte) string {
	if len(content) == 0 {
		return EmptyFingerprint
	}
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
