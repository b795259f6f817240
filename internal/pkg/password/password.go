package password

import (
	"errors"
	"fmt"

	"github.com/go-auth-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Hash returns the bcrypt hash of the plaintext at the default work factor (10).
func Hash(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", domain.ErrInternal)
	}
	return string(h), nil
}

// Verify reports whether plaintext matches the stored bcrypt hash.
// A mismatch is not an error; only a structurally invalid hash is.
func Verify(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("malformed password hash: %w", domain.ErrInternal)
}
