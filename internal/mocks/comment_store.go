package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// MockCommentStore implements store.CommentStore in memory.
type MockCommentStore struct {
	CreateFn       func(ctx context.Context, comment *domain.Comment) error
	DeleteFn       func(ctx context.Context, id uuid.UUID) error
	DeleteByTaskFn func(ctx context.Context, taskID uuid.UUID) (int64, error)

	mu       sync.RWMutex
	comments map[uuid.UUID]domain.Comment
}

var _ store.CommentStore = (*MockCommentStore)(nil)

// NewMockCommentStore creates an empty store.
func NewMockCommentStore() *MockCommentStore {
	return &MockCommentStore{comments: make(map[uuid.UUID]domain.Comment)}
}

// Seed stores comments as given.
func (m *MockCommentStore) Seed(comments ...*domain.Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range comments {
		m.comments[c.ID] = *c
	}
}

// CountByTask returns the number of comments on a task.
func (m *MockCommentStore) CountByTask(taskID uuid.UUID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.comments {
		if c.TaskID == taskID {
			n++
		}
	}
	return n
}

// Create implements store.CommentStore.
func (m *MockCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, comment)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[comment.ID] = *comment
	return nil
}

// GetByID implements store.CommentStore.
func (m *MockCommentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.comments[id]
	if !ok {
		return nil, store.ErrCommentNotFound
	}
	return &c, nil
}

// ListByTask implements store.CommentStore, ordering by creation time then id.
func (m *MockCommentStore) ListByTask(
	ctx context.Context,
	taskID uuid.UUID,
	page domain.PageRequest,
) (domain.Page[*domain.Comment], error) {
	m.mu.RLock()
	var all []*domain.Comment
	for _, c := range m.comments {
		if c.TaskID == taskID {
			c := c
			all = append(all, &c)
		}
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID.String() < all[j].ID.String()
	})
	return paginate(all, page), nil
}

// Delete implements store.CommentStore.
func (m *MockCommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.comments[id]; !ok {
		return store.ErrCommentNotFound
	}
	delete(m.comments, id)
	return nil
}

// DeleteByTask implements store.CommentStore.
func (m *MockCommentStore) DeleteByTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
	if m.DeleteByTaskFn != nil {
		return m.DeleteByTaskFn(ctx, taskID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, c := range m.comments {
		if c.TaskID == taskID {
			delete(m.comments, id)
			n++
		}
	}
	return n, nil
}

// WithTx returns the same store.
func (m *MockCommentStore) WithTx(tx *sql.Tx) store.CommentStore {
	return m
}
