package authz

import (
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// Identity is the caller on whose behalf an operation runs. The zero value
// is the anonymous caller.
type Identity struct {
	UserID   uuid.UUID
	Username string
	Roles    domain.Roles
}

// Anonymous is the identity of a request without a valid token.
var Anonymous = Identity{}

// Authenticated reports whether the identity came from a verified token.
func (i Identity) Authenticated() bool {
	return i.Username != ""
}

// IsElevated reports whether the caller holds the admin role.
func (i Identity) IsElevated() bool {
	return i.Roles.IsElevated()
}
