package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// QuickHash returns a SHA256 hash of the input for cache keys.
// API keys are never written to the cache in plaintext.
func QuickHash(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:16]) // Use first 16 bytes (32 hex chars)
}
