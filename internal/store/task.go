package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// Create inserts a new task. The task's Version is stored as given.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// GetByIDForUpdate is GetByID plus a row lock held until the enclosing
	// transaction ends. Inserts that reference the task wait for the lock.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns one page of tasks ordered by creation time, then id.
	List(ctx context.Context, page domain.PageRequest) (domain.Page[*domain.Task], error)

	// UpdateIfVersion writes task only if the stored version still equals
	// expectedVersion, and stores expectedVersion+1. On success task.Version
	// is set to the new value. Returns ErrTaskNotFound when the row is gone
	// and ErrVersionConflict when another writer got there first.
	UpdateIfVersion(ctx context.Context, task *domain.Task, expectedVersion int64) error

	// Delete removes a task. Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a TaskStore bound to tx.
	WithTx(tx *sql.Tx) TaskStore
}
