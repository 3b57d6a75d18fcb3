package domain

import "time"

// TokenIssuer issues bearer tokens (e.g. JWT) for an authenticated admin.
type TokenIssuer interface {
	Issue(subject, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a bearer token and returns the authenticated subject.
type TokenVerifier interface {
	Verify(token string) (subject string, err error)
}

// PasswordVerifier compares a stored credential hash against a plaintext password.
type PasswordVerifier interface {
	Compare(hash, password string) error
}
