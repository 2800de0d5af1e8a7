package services

import (
	"crypto/sha1"
	"encoding/hex"
)

// HashContent computes the hex SHA-1 digest of raw file bytes. The digest is
// the dedup/versioning key, not an integrity guarantee against adversarial
// collisions.
func HashContent(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}
