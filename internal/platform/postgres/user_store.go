package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

var userUniqueConstraints = map[string]error{
	"users_username_key": store.ErrUsernameExists,
	"users_email_key":    store.ErrEmailExists,
}

// Roles travel as a comma-joined string so neither side needs array codecs.
const userSelect = `
	SELECT u.id, u.username, u.email, u.password_hash, u.created_at, u.updated_at,
	       COALESCE(string_agg(r.role, ',' ORDER BY r.role), '')
	FROM users u
	LEFT JOIN user_roles r ON r.user_id = u.id
`

// PostgresUserStore implements store.UserStore on PostgreSQL.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// NewPostgresUserStore creates a user store over a connection or transaction.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// WithTx implements store.UserStore.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, logger: s.logger}
}

// Create inserts the user and its roles in one statement.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		return err
	}

	query := `
		WITH inserted AS (
			INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		)
		INSERT INTO user_roles (user_id, role)
		SELECT inserted.id, role FROM inserted, unnest(string_to_array($7, ',')) AS role
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
		joinRoles(user.Roles),
	)
	if err != nil {
		mapped := MapUniqueViolation(err, userUniqueConstraints)
		if store.IsDuplicateError(mapped) {
			log.Debug("user create rejected as duplicate", slog.String("user_id", user.ID.String()))
		} else {
			log.Error("failed to create user",
				slog.String("error", err.Error()),
				slog.String("user_id", user.ID.String()))
		}
		return mapped
	}

	log.Info("user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, userSelect+` WHERE u.id = $1 GROUP BY u.id`, id)
}

// GetByUsername implements store.UserStore.
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getOne(ctx, userSelect+` WHERE u.username = $1 GROUP BY u.id`, username)
}

// GetByEmail implements store.UserStore.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, userSelect+` WHERE u.email = $1 GROUP BY u.id`, email)
}

func (s *PostgresUserStore) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load user",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return user, nil
}

// List implements store.UserStore.
func (s *PostgresUserStore) List(
	ctx context.Context,
	page domain.PageRequest,
) (domain.Page[*domain.User], error) {
	result := domain.Page[*domain.User]{PageRequest: page}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&result.Total); err != nil {
		return result, MapError(err)
	}

	rows, err := s.db.QueryContext(ctx,
		userSelect+` GROUP BY u.id ORDER BY u.username, u.id LIMIT $1 OFFSET $2`,
		page.Size, page.Offset())
	if err != nil {
		return result, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	result.Items = make([]*domain.User, 0, page.Size)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return result, MapError(err)
		}
		result.Items = append(result.Items, user)
	}
	if err := rows.Err(); err != nil {
		return result, MapError(err)
	}

	return result, nil
}

// Update implements store.UserStore.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET username = $1, email = $2, updated_at = $3 WHERE id = $4`,
		user.Username, user.Email, user.UpdatedAt, user.ID)
	if err != nil {
		mapped := MapUniqueViolation(err, userUniqueConstraints)
		if !store.IsDuplicateError(mapped) {
			log.Error("failed to update user",
				slog.String("error", err.Error()),
				slog.String("user_id", user.ID.String()))
		}
		return mapped
	}

	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// SetRoles implements store.UserStore.
func (s *PostgresUserStore) SetRoles(ctx context.Context, id uuid.UUID, roles domain.Roles) error {
	return s.inTx(ctx, func(q store.DBTX) error {
		result, err := q.ExecContext(ctx, `UPDATE users SET updated_at = NOW() WHERE id = $1`, id)
		if err != nil {
			return MapError(err)
		}
		if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
			return err
		}

		if _, err := q.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, id); err != nil {
			return MapError(err)
		}

		_, err = q.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role) SELECT $1, unnest(string_to_array($2, ','))`,
			id, joinRoles(roles))
		return MapError(err)
	})
}

// Delete implements store.UserStore. Roles and authored comments cascade;
// tasks assigned to the user become unassigned.
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete user",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// inTx runs fn in a fresh transaction unless the store is already bound to one.
func (s *PostgresUserStore) inTx(ctx context.Context, fn func(q store.DBTX) error) error {
	db, ok := s.db.(*sql.DB)
	if !ok {
		return fn(s.db)
	}
	return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(tx)
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user  domain.User
		roles string
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
		&roles,
	); err != nil {
		return nil, err
	}

	parsed, err := splitRoles(roles)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", user.ID, err)
	}
	user.Roles = parsed
	return &user, nil
}

func joinRoles(rs domain.Roles) string {
	return strings.Join(rs.Strings(), ",")
}

func splitRoles(s string) (domain.Roles, error) {
	if s == "" {
		return domain.Roles{}, nil
	}
	return domain.ParseRoles(strings.Split(s, ","))
}
