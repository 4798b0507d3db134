package common

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const tokenBytes = 32

// IssueToken generates a one-time secret. The raw token goes into the
// confirmation link exactly once; only the hash is ever persisted.
func IssueToken() (raw string, hash string, err error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate token: %w", err)
	}

	raw = base64.RawURLEncoding.EncodeToString(buf)
	sum := sha256.Sum256([]byte(raw))
	hash = hex.EncodeToString(sum[:])

	return raw, hash, nil
}

// HashToken returns the persistence digest for a raw token, matching
// what IssueToken produced.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// VerifyToken recomputes the digest of raw and compares it to the stored
// hash in constant time.
func VerifyToken(raw, storedHash string) bool {
	if raw == "" || storedHash == "" {
		return false
	}

	sum := sha256.Sum256([]byte(raw))
	computed := hex.EncodeToString(sum[:])

	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
