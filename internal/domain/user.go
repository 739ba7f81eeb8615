package domain

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// MaxUsernameLength bounds the username in runes.
	MaxUsernameLength = 50
	// MinPasswordLength is the shortest plaintext password accepted at registration.
	MinPasswordLength = 6
	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72
)

// User is an account able to authenticate and own tasks and comments.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Roles        Roles
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser builds a validated user with a fresh id.
// The password must already be hashed.
func NewUser(username, email, passwordHash string, roles Roles, now time.Time) (*User, error) {
	u := &User{
		ID:           uuid.New(),
		Username:     strings.TrimSpace(username),
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		Roles:        NewRoles(roles...),
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks the invariants every stored user satisfies.
func (u *User) Validate() error {
	verr := NewValidationError()
	ValidateUsername(verr, u.Username)
	ValidateEmail(verr, u.Email)
	if u.PasswordHash == "" {
		verr.Add("password", "password hash must not be empty")
	}
	ValidateRoles(verr, u.Roles)
	return verr.Err()
}

// ValidateUsername records a message on verr when name is blank or too long.
func ValidateUsername(verr *ValidationError, name string) {
	switch {
	case strings.TrimSpace(name) == "":
		verr.Add("userName", "Username must not be blank")
	case utf8.RuneCountInString(name) > MaxUsernameLength:
		verr.Add("userName", "Username must be at most 50 characters")
	}
}

// ValidateEmail records a message on verr when email is not a bare address.
func ValidateEmail(verr *ValidationError, email string) {
	if strings.TrimSpace(email) == "" {
		verr.Add("email", "Email must not be blank")
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		verr.Add("email", "Email should be valid")
	}
}

// ValidatePassword records a message on verr when a plaintext password is out of bounds.
func ValidatePassword(verr *ValidationError, password string) {
	switch {
	case len(password) < MinPasswordLength:
		verr.Add("password", "Password must be at least 6 characters")
	case len(password) > MaxPasswordLength:
		verr.Add("password", "Password must be at most 72 characters")
	}
}

// ValidateRoles records a message on verr when rs is empty or holds unknown roles.
func ValidateRoles(verr *ValidationError, rs Roles) {
	if len(rs) == 0 {
		verr.Add("roles", "At least one role is required")
		return
	}
	for _, r := range rs {
		if !r.Valid() {
			verr.Add("roles", "Unknown role "+string(r))
			return
		}
	}
}
