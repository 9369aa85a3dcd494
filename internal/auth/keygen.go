// Package auth provides API key derivation and request-scoped key helpers.
package auth

import (
	"crypto/sha1" //nolint:gosec // legacy key format, not used for secrecy
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Supported key derivation algorithms.
const (
	// AlgBlake2b derives keys as the hex BLAKE2b-256 digest of the normalized email.
	AlgBlake2b = "blake2b"
	// AlgSHA1 derives keys as the hex SHA-1 digest of the normalized email.
	// Kept so deployments holding keys from the first release keep issuing the same format.
	AlgSHA1 = "sha1"
)

// ErrUnknownAlgorithm indicates an unsupported key derivation algorithm.
var ErrUnknownAlgorithm = errors.New("unknown key algorithm")

// KeyGenerator derives the API key for an email address.
// Implementations must be deterministic: the key doubles as the lookup credential.
type KeyGenerator interface {
	DeriveKey(email string) string
}

// EmailKeyGenerator hashes the normalized email with a fixed algorithm.
type EmailKeyGenerator struct {
	alg string
}

// NewKeyGenerator returns a generator for the named algorithm.
// An empty name selects AlgBlake2b.
func NewKeyGenerator(alg string) (*EmailKeyGenerator, error) {
	switch strings.ToLower(alg) {
	case "", AlgBlake2b:
		return &EmailKeyGenerator{alg: AlgBlake2b}, nil
	case AlgSHA1:
		return &EmailKeyGenerator{alg: AlgSHA1}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
}

// Algorithm returns the algorithm name.
func (g *EmailKeyGenerator) Algorithm() string {
	return g.alg
}

// DeriveKey returns the lowercase hex digest of the normalized email.
// The empty email still yields a well-defined key.
func (g *EmailKeyGenerator) DeriveKey(email string) string {
	normalized := []byte(NormalizeEmail(email))

	if g.alg == AlgSHA1 {
		sum := sha1.Sum(normalized) //nolint:gosec
		return hex.EncodeToString(sum[:])
	}

	sum := blake2b.Sum256(normalized)
	return hex.EncodeToString(sum[:])
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
