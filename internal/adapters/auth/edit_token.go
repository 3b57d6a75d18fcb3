package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"eventregistration/internal/domain"
)

// editTokenBytes is the byte length of every edit token, for issuance and
// rotation alike. 32 bytes encode to 64 hex characters.
const editTokenBytes = 32

type editTokenGenerator struct{}

// NewEditTokenGenerator returns an EditTokenGenerator backed by crypto/rand.
func NewEditTokenGenerator() domain.EditTokenGenerator {
	return &editTokenGenerator{}
}

func (g *editTokenGenerator) Generate() (string, error) {
	buf := make([]byte, editTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate edit token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
