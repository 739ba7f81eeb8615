package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

const commentColumns = `id, content, created_at, task_id, author_id, version`

// PostgresCommentStore implements store.CommentStore on PostgreSQL.
type PostgresCommentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.CommentStore = (*PostgresCommentStore)(nil)

// NewPostgresCommentStore creates a comment store over a connection or transaction.
func NewPostgresCommentStore(db store.DBTX, logger *slog.Logger) *PostgresCommentStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCommentStore{
		db:     db,
		logger: logger.With(slog.String("component", "comment_store")),
	}
}

// WithTx implements store.CommentStore.
func (s *PostgresCommentStore) WithTx(tx *sql.Tx) store.CommentStore {
	return &PostgresCommentStore{db: tx, logger: s.logger}
}

// commentReferences maps the comments foreign keys to the missing parent.
var commentReferences = map[string]error{
	"comments_task_id_fkey":   store.ErrTaskNotFound,
	"comments_author_id_fkey": store.ErrUserNotFound,
}

// Create implements store.CommentStore. A task or author removed after the
// caller looked it up surfaces as ErrTaskNotFound or ErrUserNotFound.
func (s *PostgresCommentStore) Create(ctx context.Context, c *domain.Comment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (`+commentColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Content, c.CreatedAt, c.TaskID, c.AuthorID, c.Version)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create comment",
			slog.String("error", err.Error()),
			slog.String("task_id", c.TaskID.String()))
		return MapForeignKeyViolation(err, commentReferences)
	}
	return nil
}

// GetByID implements store.CommentStore.
func (s *PostgresCommentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCommentNotFound
		}
		return nil, MapError(err)
	}
	return c, nil
}

// ListByTask implements store.CommentStore.
func (s *PostgresCommentStore) ListByTask(
	ctx context.Context,
	taskID uuid.UUID,
	page domain.PageRequest,
) (domain.Page[*domain.Comment], error) {
	result := domain.Page[*domain.Comment]{PageRequest: page}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE task_id = $1`, taskID).Scan(&result.Total); err != nil {
		return result, MapError(err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE task_id = $1
		ORDER BY created_at, id LIMIT $2 OFFSET $3`,
		taskID, page.Size, page.Offset())
	if err != nil {
		return result, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	result.Items = make([]*domain.Comment, 0, page.Size)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return result, MapError(err)
		}
		result.Items = append(result.Items, c)
	}
	if err := rows.Err(); err != nil {
		return result, MapError(err)
	}
	return result, nil
}

// Delete implements store.CommentStore.
func (s *PostgresCommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCommentNotFound)
}

// DeleteByTask implements store.CommentStore.
func (s *PostgresCommentStore) DeleteByTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE task_id = $1`, taskID)
	if err != nil {
		return 0, MapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

func scanComment(row rowScanner) (*domain.Comment, error) {
	var c domain.Comment
	if err := row.Scan(&c.ID, &c.Content, &c.CreatedAt, &c.TaskID, &c.AuthorID, &c.Version); err != nil {
		return nil, err
	}
	return &c, nil
}
