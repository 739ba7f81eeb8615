package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/authz"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// CommentService manages comments on tasks.
type CommentService interface {
	// CreateComment adds a comment authored by the caller.
	CreateComment(ctx context.Context, caller authz.Identity, taskID uuid.UUID, content string) (*domain.Comment, error)

	// GetComment retrieves a comment by ID.
	GetComment(ctx context.Context, caller authz.Identity, id uuid.UUID) (*domain.Comment, error)

	// ListComments returns one page of a task's comments, oldest first.
	ListComments(
		ctx context.Context,
		caller authz.Identity,
		taskID uuid.UUID,
		page domain.PageRequest,
	) (domain.Page[*domain.Comment], error)

	// DeleteComment removes a comment. Only its author or an administrator may.
	DeleteComment(ctx context.Context, caller authz.Identity, id uuid.UUID) error
}

type commentService struct {
	comments store.CommentStore
	tasks    store.TaskStore
	users    store.UserStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewCommentService creates a CommentService.
func NewCommentService(
	comments store.CommentStore,
	tasks store.TaskStore,
	users store.UserStore,
	logger *slog.Logger,
) CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &commentService{
		comments: comments,
		tasks:    tasks,
		users:    users,
		logger:   logger.With("component", "comment_service"),
		now:      time.Now,
	}
}

func (s *commentService) CreateComment(
	ctx context.Context,
	caller authz.Identity,
	taskID uuid.UUID,
	content string,
) (*domain.Comment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := authz.Check(caller, authz.OpCommentCreate, authz.NoResource); err != nil {
		return nil, err
	}

	comment, err := domain.NewComment(content, taskID, caller.UserID, s.now())
	if err != nil {
		return nil, err
	}

	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, fmt.Errorf("failed to retrieve task for comment: %w", err)
	}
	if _, err := s.users.GetByID(ctx, caller.UserID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to retrieve comment author: %w", err)
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		switch {
		case errors.Is(err, store.ErrTaskNotFound):
			log.Debug("task removed before comment was saved", "task_id", taskID)
			return nil, fmt.Errorf("failed to create comment: %w", err)
		case errors.Is(err, store.ErrUserNotFound):
			return nil, ErrAuthorNotFound
		}
		log.Error("failed to create comment", "error", err, "task_id", taskID)
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	log.Info("comment created",
		"comment_id", comment.ID,
		"task_id", taskID,
		"author_id", caller.UserID)
	return comment, nil
}

func (s *commentService) GetComment(
	ctx context.Context,
	caller authz.Identity,
	id uuid.UUID,
) (*domain.Comment, error) {
	if err := authz.Check(caller, authz.OpCommentGet, authz.NoResource); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve comment: %w", err)
	}
	return comment, nil
}

func (s *commentService) ListComments(
	ctx context.Context,
	caller authz.Identity,
	taskID uuid.UUID,
	page domain.PageRequest,
) (domain.Page[*domain.Comment], error) {
	if err := authz.Check(caller, authz.OpCommentList, authz.NoResource); err != nil {
		return domain.Page[*domain.Comment]{}, err
	}
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return domain.Page[*domain.Comment]{}, fmt.Errorf("failed to retrieve task: %w", err)
	}
	result, err := s.comments.ListByTask(ctx, taskID, page)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list comments",
			"error", err,
			"task_id", taskID)
		return result, fmt.Errorf("failed to list comments: %w", err)
	}
	return result, nil
}

func (s *commentService) DeleteComment(ctx context.Context, caller authz.Identity, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := authz.Check(caller, authz.OpCommentDelete, authz.NoResource); err != nil {
		return err
	}

	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to retrieve comment for delete: %w", err)
	}
	if err := authz.Check(caller, authz.OpCommentDelete, authz.Owned(comment.AuthorID, nil)); err != nil {
		log.Warn("comment delete denied",
			"comment_id", id,
			"caller_id", caller.UserID)
		return err
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	log.Info("comment deleted", "comment_id", id, "caller_id", caller.UserID)
	return nil
}
