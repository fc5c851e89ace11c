package helpers

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters; changing these invalidates every stored hash.
const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024 // KiB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
)

const saltLen = 16

// GenerateSalt produces a fresh random salt. Salts are never reused across
// accounts; the salt is stored next to the hash so the login attempt can be
// re-derived with the same inputs.
func GenerateSalt() (string, error) {
	b := make([]byte, saltLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawStdEncoding.EncodeToString(b), nil
}

// HashPassword derives an argon2id key from the bare password and the
// per-account salt. Deterministic given the same inputs.
func HashPassword(barePassword, salt string) string {
	dk := argon2.IDKey([]byte(barePassword), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)
	return base64.RawStdEncoding.EncodeToString(dk)
}

// VerifyPassword re-derives the hash from the supplied password under the
// stored salt and compares it in constant time.
func VerifyPassword(barePassword, salt, storedHash string) bool {
	derived := HashPassword(barePassword, salt)
	return subtle.ConstantTimeCompare([]byte(derived), []byte(storedHash)) == 1
}
