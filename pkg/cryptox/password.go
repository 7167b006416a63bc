package cryptox

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch reports that a plaintext password does not match its
// stored hash. Callers surface this as a generic credential failure; never
// echo it to clients verbatim.
var ErrPasswordMismatch = errors.New("cryptox: password does not match")

// HashPassword hashes a plaintext password with bcrypt at the default cost.
// The resulting string embeds the salt and cost factor, so comparison stays
// correct if the cost is raised later.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a bcrypt hash using
// the cost parameters embedded in the hash. This is never plain equality.
func VerifyPassword(password, encodedHash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	if err != nil {
		return ErrPasswordMismatch
	}
	return nil
}
