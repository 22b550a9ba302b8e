package utils

import (
	"crypto/sha256"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password using bcrypt. bcrypt salts every
// call, so hashing the same password twice yields different digests.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPasswordHash compares a plaintext password with a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashToken hashes an encoded token string for at-rest storage. Refresh
// tokens are treated as credentials and run through the same bcrypt
// primitive as passwords, but bcrypt rejects inputs longer than 72 bytes and
// an encoded JWT always exceeds that, so the token is reduced to a SHA-256
// digest first.
func HashToken(token string) (string, error) {
	digest := sha256.Sum256([]byte(token))
	hash, err := bcrypt.GenerateFromPassword(digest[:], bcrypt.DefaultCost)
	return string(hash), err
}

// CheckTokenHash compares an encoded token string with a hash produced by
// HashToken. The underlying bcrypt comparison is constant-time.
func CheckTokenHash(token, storedHash string) bool {
	digest := sha256.Sum256([]byte(token))
	return bcrypt.CompareHashAndPassword([]byte(storedHash), digest[:]) == nil
}
