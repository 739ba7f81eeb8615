package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// CommentStore defines the interface for comment persistence.
type CommentStore interface {
	Create(ctx context.Context, comment *domain.Comment) error

	// GetByID returns ErrCommentNotFound if the comment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)

	// ListByTask returns one page of a task's comments, oldest first.
	ListByTask(
		ctx context.Context,
		taskID uuid.UUID,
		page domain.PageRequest,
	) (domain.Page[*domain.Comment], error)

	// Delete returns ErrCommentNotFound if the comment does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByTask removes every comment of a task and reports how many were removed.
	DeleteByTask(ctx context.Context, taskID uuid.UUID) (int64, error)

	// WithTx returns a CommentStore bound to tx.
	WithTx(tx *sql.Tx) CommentStore
}
