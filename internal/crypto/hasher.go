// Package crypto implements API key generation and one-way key hashing.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

const (
	// KeyPrefix marks every raw key issued by this service.
	KeyPrefix = "np_sk_"
	// keyEntropy is the number of random bytes in a raw key.
	keyEntropy = 24
	// displayPrefixLen is how much of the raw key is kept for display.
	displayPrefixLen = 12
)

// Hasher is a deterministic one-way digest of a raw secret.
type Hasher interface {
	// Name identifies the algorithm in configuration.
	Name() string
	// Hash returns the lowercase hex digest of secret.
	Hash(secret string) string
}

// SHA256 hashes with SHA-256.
type SHA256 struct{}

func (SHA256) Name() string { return "sha256" }

func (SHA256) Hash(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// SHA3 hashes with SHA3-256.
type SHA3 struct{}

func (SHA3) Name() string { return "sha3-256" }

func (SHA3) Hash(secret string) string {
	sum := sha3.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// BLAKE3 hashes with 256-bit BLAKE3.
type BLAKE3 struct{}

func (BLAKE3) Name() string { return "blake3" }

func (BLAKE3) Hash(secret string) string {
	sum := blake3.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// HasherByName resolves a configured algorithm name.
// Changing the algorithm invalidates every key issued under the previous one.
func HasherByName(name string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sha256":
		return SHA256{}, nil
	case "sha3-256", "sha3":
		return SHA3{}, nil
	case "blake3":
		return BLAKE3{}, nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", name)
	}
}

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// NewKey generates a raw API key: KeyPrefix followed by hex encoded random bytes.
func NewKey() (string, error) {
	b, err := RandBytes(keyEntropy)
	if err != nil {
		return "", err
	}
	return KeyPrefix + hex.EncodeToString(b), nil
}

// HasKeyFormat reports whether s looks like a key issued by NewKey.
func HasKeyFormat(s string) bool {
	return strings.HasPrefix(s, KeyPrefix) && len(s) > len(KeyPrefix)
}

// DisplayPrefix returns the non-secret leading part of a raw key.
func DisplayPrefix(key string) string {
	if len(key) <= displayPrefixLen {
		return key
	}
	return key[:displayPrefixLen]
}
