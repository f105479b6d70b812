package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const saltBytes = 16

// GenerateSalt returns a fresh random salt as a fixed-length hex string.
func GenerateSalt() (string, error) {
	buf := make([]byte, saltBytes)

	_, err := rand.Read(buf)

	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// CreateSaltAndHash derives a per-user salt and the bcrypt hash of
// password||salt. Hash and salt are both stored on the user row.
func CreateSaltAndHash(password string) (salt string, hash string, err error) {
	salt, err = GenerateSalt()

	if err != nil {
		return "", "", err
	}

	raw, err := bcrypt.GenerateFromPassword([]byte(password+salt), bcrypt.DefaultCost)

	if err != nil {
		return "", "", err
	}

	return salt, string(raw), nil
}

// VerifyPassword recomputes the hash over password||salt and compares it to
// the stored hash. bcrypt's comparison is constant time. Any mismatch or
// malformed input yields false, never an error.
func VerifyPassword(password, salt, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password+salt)) == nil
}
