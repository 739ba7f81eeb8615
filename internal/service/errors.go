package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/store"
)

var (
	// ErrDuplicateIdentity is returned when a username or email is already taken.
	ErrDuplicateIdentity = errors.New("username or email already exists")

	// ErrAuthorNotFound is returned when a comment author has no user record.
	ErrAuthorNotFound = fmt.Errorf("%w: author", store.ErrNotFound)
)

// AssigneeNotFoundError reports a task assignee id with no matching user.
type AssigneeNotFoundError struct {
	UserID uuid.UUID
}

func (e *AssigneeNotFoundError) Error() string {
	return fmt.Sprintf("No user available for assigned user id %s", e.UserID)
}

// Unwrap makes the error match store.ErrUserNotFound and store.ErrNotFound.
func (e *AssigneeNotFoundError) Unwrap() error {
	return store.ErrUserNotFound
}
