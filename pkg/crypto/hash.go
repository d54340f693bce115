package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/pbkdf2"
)

// Hash generates a BLAKE2b-256 hash
func Hash(data []byte) ([]byte, error) {
	hash, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}

	hash.Write(data)
	return hash.Sum(nil), nil
}

// Fingerprint renders the first 16 bytes of a key's BLAKE2b hash as
// colon-separated hex, for operators comparing keys out of band
func Fingerprint(publicKey []byte) string {
	sum, err := Hash(publicKey)
	if err != nil {
		return ""
	}
	digest := hex.EncodeToString(sum[:16])

	parts := make([]string, 0, len(digest)/4)
	for i := 0; i < len(digest); i += 4 {
		parts = append(parts, digest[i:i+4])
	}
	return strings.Join(parts, ":")
}

// DeriveStorageKey derives a 32-byte at-rest key from secret material
func DeriveStorageKey(secret []byte, salt string) []byte {
	return pbkdf2.Key(secret, []byte(salt), 4096, 32, sha256.New)
}
