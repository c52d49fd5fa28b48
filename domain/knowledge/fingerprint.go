package knowledge

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentFingerprint hashes normalized content to lowercase hex SHA-256.
func ContentFingerprint(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
