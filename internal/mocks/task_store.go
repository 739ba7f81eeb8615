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

// MockTaskStore implements store.TaskStore in memory. UpdateIfVersion is an
// atomic compare-and-swap under the store mutex.
type MockTaskStore struct {
	CreateFn          func(ctx context.Context, task *domain.Task) error
	GetByIDFn         func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	LockFn            func(ctx context.Context, id uuid.UUID)
	UpdateIfVersionFn func(ctx context.Context, task *domain.Task, expectedVersion int64) error
	DeleteFn          func(ctx context.Context, id uuid.UUID) error

	mu    sync.RWMutex
	tasks map[uuid.UUID]domain.Task
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates an empty store.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{tasks: make(map[uuid.UUID]domain.Task)}
}

// Seed stores tasks as given.
func (m *MockTaskStore) Seed(tasks ...*domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range tasks {
		m.tasks[t.ID] = *t
	}
}

// Count returns the number of stored tasks.
func (m *MockTaskStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tasks)
}

// Create implements store.TaskStore.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[task.ID]; ok {
		return store.ErrDuplicate
	}
	m.tasks[task.ID] = *task
	return nil
}

// GetByID implements store.TaskStore.
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return &t, nil
}

// GetByIDForUpdate implements store.TaskStore. LockFn, when set, runs before
// the read so tests can interleave work with the lock.
func (m *MockTaskStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.LockFn != nil {
		m.LockFn(ctx, id)
	}
	return m.GetByID(ctx, id)
}

// List implements store.TaskStore, ordering by creation time then id.
func (m *MockTaskStore) List(
	ctx context.Context,
	page domain.PageRequest,
) (domain.Page[*domain.Task], error) {
	m.mu.RLock()
	all := make([]*domain.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		t := t
		all = append(all, &t)
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

// UpdateIfVersion implements store.TaskStore.
func (m *MockTaskStore) UpdateIfVersion(
	ctx context.Context,
	task *domain.Task,
	expectedVersion int64,
) error {
	if m.UpdateIfVersionFn != nil {
		return m.UpdateIfVersionFn(ctx, task, expectedVersion)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	if current.Version != expectedVersion {
		return store.ErrVersionConflict
	}

	updated := *task
	updated.CreatedAt = current.CreatedAt
	updated.Version = expectedVersion + 1
	m.tasks[task.ID] = updated
	task.Version = updated.Version
	return nil
}

// Delete implements store.TaskStore.
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

// WithTx returns the same store.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}
