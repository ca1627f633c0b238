// Package cryptox holds the hashing helpers used for server-side secrets.
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
)

// TokenDigest returns the hex SHA-256 of token. Refresh tokens are stored
// only in this form.
func TokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
