package mocks

import (
	"strings"

	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

// PlainHasher implements auth.PasswordHasher and auth.PasswordVerifier with
// a reversible "hashed:" prefix so tests skip bcrypt's cost.
type PlainHasher struct {
	HashErr error
}

var (
	_ auth.PasswordHasher   = PlainHasher{}
	_ auth.PasswordVerifier = PlainHasher{}
)

const plainPrefix = "hashed:"

// Hash implements auth.PasswordHasher.
func (h PlainHasher) Hash(password string) (string, error) {
	if h.HashErr != nil {
		return "", h.HashErr
	}
	return plainPrefix + password, nil
}

// Compare implements auth.PasswordVerifier.
func (h PlainHasher) Compare(hashedPassword, password string) error {
	if !strings.HasPrefix(hashedPassword, plainPrefix) ||
		strings.TrimPrefix(hashedPassword, plainPrefix) != password {
		return auth.ErrInvalidCredentials
	}
	return nil
}
