package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/authz"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TaskService creates, reads, updates and deletes tasks.
type TaskService interface {
	// CreateTask stores a new task at version 0 and announces it.
	CreateTask(ctx context.Context, caller authz.Identity, fields domain.TaskFields) (*domain.Task, error)

	// GetTask retrieves a task by ID.
	GetTask(ctx context.Context, caller authz.Identity, id uuid.UUID) (*domain.Task, error)

	// ListTasks returns one page of tasks ordered by creation time.
	ListTasks(ctx context.Context, caller authz.Identity, page domain.PageRequest) (domain.Page[*domain.Task], error)

	// UpdateTask replaces the mutable fields of a task. version must equal
	// the task's current version or the call fails with
	// store.ErrVersionConflict and nothing is written.
	UpdateTask(
		ctx context.Context,
		caller authz.Identity,
		id uuid.UUID,
		fields domain.TaskFields,
		version int64,
	) (*domain.Task, error)

	// DeleteTask removes a task together with its comments.
	DeleteTask(ctx context.Context, caller authz.Identity, id uuid.UUID) error
}

type taskService struct {
	tasks     store.TaskStore
	users     store.UserStore
	comments  store.CommentStore
	tx        store.Transactor
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewTaskService creates a TaskService.
func NewTaskService(
	tasks store.TaskStore,
	users store.UserStore,
	comments store.CommentStore,
	tx store.Transactor,
	publisher events.Publisher,
	logger *slog.Logger,
) TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &taskService{
		tasks:     tasks,
		users:     users,
		comments:  comments,
		tx:        tx,
		publisher: publisher,
		logger:    logger.With("component", "task_service"),
		now:       time.Now,
	}
}

func (s *taskService) CreateTask(
	ctx context.Context,
	caller authz.Identity,
	fields domain.TaskFields,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := authz.Check(caller, authz.OpTaskCreate, authz.NoResource); err != nil {
		return nil, err
	}

	task, err := domain.NewTask(fields, s.now())
	if err != nil {
		return nil, err
	}
	if _, err := s.resolveAssignee(ctx, s.users, task.AssignedUserID); err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		if errors.Is(err, store.ErrInvalidEntity) {
			// assignee deleted between the lookup and the insert
			return nil, &AssigneeNotFoundError{UserID: task.AssignedUserID}
		}
		log.Error("failed to create task", "error", err)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	log.Info("task created",
		"task_id", task.ID,
		"assigned_user_id", task.AssignedUserID,
		"caller_id", caller.UserID)
	s.publisher.Publish(ctx, events.TaskCreated(task.Title))
	return task, nil
}

func (s *taskService) GetTask(ctx context.Context, caller authz.Identity, id uuid.UUID) (*domain.Task, error) {
	if err := authz.Check(caller, authz.OpTaskGet, authz.NoResource); err != nil {
		return nil, err
	}
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}
	return task, nil
}

func (s *taskService) ListTasks(
	ctx context.Context,
	caller authz.Identity,
	page domain.PageRequest,
) (domain.Page[*domain.Task], error) {
	if err := authz.Check(caller, authz.OpTaskList, authz.NoResource); err != nil {
		return domain.Page[*domain.Task]{}, err
	}
	result, err := s.tasks.List(ctx, page)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks", "error", err)
		return result, fmt.Errorf("failed to list tasks: %w", err)
	}
	return result, nil
}

func (s *taskService) UpdateTask(
	ctx context.Context,
	caller authz.Identity,
	id uuid.UUID,
	fields domain.TaskFields,
	version int64,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := authz.Check(caller, authz.OpTaskUpdate, authz.NoResource); err != nil {
		return nil, err
	}

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task for update: %w", err)
	}
	if task.Version != version {
		log.Debug("task update with stale version",
			"task_id", id,
			"current_version", task.Version,
			"submitted_version", version)
		return nil, store.ErrVersionConflict
	}

	now := s.now()
	task.Apply(fields, now)
	if err := task.Validate(now); err != nil {
		return nil, err
	}
	if _, err := s.resolveAssignee(ctx, s.users, task.AssignedUserID); err != nil {
		return nil, err
	}

	if err := s.tasks.UpdateIfVersion(ctx, task, version); err != nil {
		switch {
		case errors.Is(err, store.ErrVersionConflict):
			log.Info("task update lost a concurrent write",
				"task_id", id,
				"expected_version", version)
			return nil, err
		case errors.Is(err, store.ErrInvalidEntity):
			return nil, &AssigneeNotFoundError{UserID: task.AssignedUserID}
		case errors.Is(err, store.ErrTaskNotFound):
			return nil, err
		}
		log.Error("failed to update task", "error", err, "task_id", id)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	log.Info("task updated",
		"task_id", id,
		"version", task.Version,
		"caller_id", caller.UserID)
	s.publisher.Publish(ctx, events.TaskUpdated(task.Title))
	return task, nil
}

func (s *taskService) DeleteTask(ctx context.Context, caller authz.Identity, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := authz.Check(caller, authz.OpTaskDelete, authz.NoResource); err != nil {
		return err
	}

	var title string
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		tasks := s.tasks.WithTx(tx)

		// Holding the row lock keeps comments from being attached between
		// DeleteByTask and Delete.
		task, err := tasks.GetByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to retrieve task for delete: %w", err)
		}

		res, err := s.assigneeResource(ctx, s.users.WithTx(tx), task.AssignedUserID)
		if err != nil {
			return err
		}
		if d := authz.Evaluate(caller, authz.OpTaskDelete, res); !d.Allowed() {
			log.Warn("task delete denied",
				"task_id", id,
				"caller_id", caller.UserID,
				"reason", d.Reason)
			return d.Err()
		}

		removed, err := s.comments.WithTx(tx).DeleteByTask(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete task comments: %w", err)
		}
		if err := tasks.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}

		log.Debug("task comments removed", "task_id", id, "count", removed)
		title = task.Title
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("task deleted", "task_id", id, "caller_id", caller.UserID)
	s.publisher.Publish(ctx, events.TaskDeleted(title))
	return nil
}

func (s *taskService) resolveAssignee(
	ctx context.Context,
	users store.UserStore,
	id uuid.UUID,
) (*domain.User, error) {
	user, err := users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, &AssigneeNotFoundError{UserID: id}
		}
		return nil, fmt.Errorf("failed to resolve assigned user: %w", err)
	}
	return user, nil
}

// assigneeResource describes a task by its assignee. A missing assignee
// yields a resource with no owner.
func (s *taskService) assigneeResource(
	ctx context.Context,
	users store.UserStore,
	assigneeID uuid.UUID,
) (authz.Resource, error) {
	if assigneeID == uuid.Nil {
		return authz.Owned(uuid.Nil, nil), nil
	}
	user, err := s.resolveAssignee(ctx, users, assigneeID)
	if err != nil {
		var missing *AssigneeNotFoundError
		if errors.As(err, &missing) {
			return authz.Owned(uuid.Nil, nil), nil
		}
		return authz.Resource{}, err
	}
	return authz.Owned(user.ID, user.Roles), nil
}
