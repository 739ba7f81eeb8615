package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/authz"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// UpdateUserInput holds the profile fields a user may change.
type UpdateUserInput struct {
	Username string
	Email    string
}

// UserService provides user administration.
type UserService interface {
	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, caller authz.Identity, id uuid.UUID) (*domain.User, error)

	// ListUsers returns one page of users ordered by username.
	ListUsers(ctx context.Context, caller authz.Identity, page domain.PageRequest) (domain.Page[*domain.User], error)

	// UpdateUser changes username and email. Callers may update themselves;
	// administrators may update anyone.
	UpdateUser(ctx context.Context, caller authz.Identity, id uuid.UUID, in UpdateUserInput) (*domain.User, error)

	// DeleteUser removes a user. Only administrators may delete, and never a
	// user whose only role is USER.
	DeleteUser(ctx context.Context, caller authz.Identity, id uuid.UUID) error

	// UpdateRoles replaces a user's role set.
	UpdateRoles(ctx context.Context, caller authz.Identity, id uuid.UUID, roles domain.Roles) (*domain.User, error)
}

type userService struct {
	users  store.UserStore
	tx     store.Transactor
	logger *slog.Logger
	now    func() time.Time
}

// NewUserService creates a UserService.
func NewUserService(users store.UserStore, tx store.Transactor, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		users:  users,
		tx:     tx,
		logger: logger.With("component", "user_service"),
		now:    time.Now,
	}
}

func (s *userService) GetUser(ctx context.Context, caller authz.Identity, id uuid.UUID) (*domain.User, error) {
	if err := authz.Check(caller, authz.OpUserGet, authz.NoResource); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

func (s *userService) ListUsers(
	ctx context.Context,
	caller authz.Identity,
	page domain.PageRequest,
) (domain.Page[*domain.User], error) {
	if err := authz.Check(caller, authz.OpUserList, authz.NoResource); err != nil {
		return domain.Page[*domain.User]{}, err
	}
	result, err := s.users.List(ctx, page)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list users", "error", err)
		return result, fmt.Errorf("failed to list users: %w", err)
	}
	return result, nil
}

func (s *userService) UpdateUser(
	ctx context.Context,
	caller authz.Identity,
	id uuid.UUID,
	in UpdateUserInput,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := authz.Check(caller, authz.OpUserUpdate, authz.NoResource); err != nil {
		return nil, err
	}

	verr := domain.NewValidationError()
	domain.ValidateUsername(verr, in.Username)
	domain.ValidateEmail(verr, in.Email)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	var updated *domain.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)

		user, err := users.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to retrieve user for update: %w", err)
		}
		if err := authz.Check(caller, authz.OpUserUpdate, authz.Owned(user.ID, user.Roles)); err != nil {
			log.Warn("user update denied",
				"caller_id", caller.UserID,
				"target_id", id)
			return err
		}

		user.Username = in.Username
		user.Email = in.Email
		user.UpdatedAt = s.now().UTC()

		if err := users.Update(ctx, user); err != nil {
			if store.IsDuplicateError(err) {
				return ErrDuplicateIdentity
			}
			return fmt.Errorf("failed to update user: %w", err)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("user updated", "user_id", id, "caller_id", caller.UserID)
	return updated, nil
}

func (s *userService) DeleteUser(ctx context.Context, caller authz.Identity, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := authz.Check(caller, authz.OpUserDelete, authz.NoResource); err != nil {
		return err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)

		target, err := users.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to retrieve user for delete: %w", err)
		}
		if err := authz.Check(caller, authz.OpUserDelete, authz.Owned(target.ID, target.Roles)); err != nil {
			log.Warn("user delete denied",
				"caller_id", caller.UserID,
				"target_id", id)
			return err
		}
		if err := users.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("user deleted", "user_id", id, "caller_id", caller.UserID)
	return nil
}

func (s *userService) UpdateRoles(
	ctx context.Context,
	caller authz.Identity,
	id uuid.UUID,
	roles domain.Roles,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := authz.Check(caller, authz.OpUserUpdateRoles, authz.NoResource); err != nil {
		return nil, err
	}

	roles = domain.NewRoles(roles...)
	verr := domain.NewValidationError()
	domain.ValidateRoles(verr, roles)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	var user *domain.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)
		if err := users.SetRoles(ctx, id, roles); err != nil {
			return fmt.Errorf("failed to set roles: %w", err)
		}
		var err error
		user, err = users.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to reload user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("user roles updated",
		"user_id", id,
		"roles", roles.Strings(),
		"caller_id", caller.UserID)
	return user, nil
}
