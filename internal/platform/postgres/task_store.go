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

const taskColumns = `id, title, description, status, priority, target_date,
	assigned_user_id, version, created_at, updated_at`

// PostgresTaskStore implements store.TaskStore on PostgreSQL.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a task store over a connection or transaction.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// WithTx implements store.TaskStore.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

// Create implements store.TaskStore. An unknown assignee surfaces as
// store.ErrInvalidEntity through the foreign key.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		task.ID,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		task.TargetDate,
		nullableID(task.AssignedUserID),
		task.Version,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Debug("task created", slog.String("task_id", task.ID.String()))
	return nil
}

// GetByID implements store.TaskStore.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.getByID(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
}

// GetByIDForUpdate implements store.TaskStore. Outside a transaction the lock
// is released as soon as the statement completes.
func (s *PostgresTaskStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.getByID(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id)
}

func (s *PostgresTaskStore) getByID(ctx context.Context, query string, id uuid.UUID) (*domain.Task, error) {
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}
	return task, nil
}

// List implements store.TaskStore.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	page domain.PageRequest,
) (domain.Page[*domain.Task], error) {
	result := domain.Page[*domain.Task]{PageRequest: page}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&result.Total); err != nil {
		return result, MapError(err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks ORDER BY created_at, id LIMIT $1 OFFSET $2`,
		page.Size, page.Offset())
	if err != nil {
		return result, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	result.Items = make([]*domain.Task, 0, page.Size)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return result, MapError(err)
		}
		result.Items = append(result.Items, task)
	}
	if err := rows.Err(); err != nil {
		return result, MapError(err)
	}
	return result, nil
}

// UpdateIfVersion implements store.TaskStore as a single conditional UPDATE.
// Zero affected rows means the task is gone or its version moved on; a
// follow-up existence check tells the two apart.
func (s *PostgresTaskStore) UpdateIfVersion(
	ctx context.Context,
	task *domain.Task,
	expectedVersion int64,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4, target_date = $5,
		    assigned_user_id = $6, updated_at = $7, version = version + 1
		WHERE id = $8 AND version = $9`,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		task.TargetDate,
		nullableID(task.AssignedUserID),
		task.UpdatedAt,
		task.ID,
		expectedVersion,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if affected == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, task.ID).Scan(&exists); err != nil {
			return MapError(err)
		}
		if !exists {
			return store.ErrTaskNotFound
		}
		log.Debug("task update lost version race",
			slog.String("task_id", task.ID.String()),
			slog.Int64("expected_version", expectedVersion))
		return store.ErrVersionConflict
	}

	task.Version = expectedVersion + 1
	return nil
}

// Delete implements store.TaskStore. Comments must be removed first.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task     domain.Task
		status   string
		priority string
		assignee uuid.NullUUID
	)
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&task.TargetDate,
		&assignee,
		&task.Version,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	task.Status = domain.Status(status)
	task.Priority = domain.Priority(priority)
	task.TargetDate = domain.DateOf(task.TargetDate)
	if assignee.Valid {
		task.AssignedUserID = assignee.UUID
	}
	return &task, nil
}

func nullableID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
