package auth

import (
	"golang.org/x/crypto/bcrypt"

	"eventregistration/internal/domain"
)

type bcryptVerifier struct{}

// NewBcryptVerifier returns a PasswordVerifier that checks plaintext
// passwords against bcrypt hashes. The admin credential is provisioned as a
// bcrypt hash in configuration; nothing is hashed at runtime.
func NewBcryptVerifier() domain.PasswordVerifier {
	return &bcryptVerifier{}
}

func (v *bcryptVerifier) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
