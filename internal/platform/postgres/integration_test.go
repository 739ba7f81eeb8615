package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/phrazzld/taskboard-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stores struct {
	db       *sql.DB
	users    *postgres.PostgresUserStore
	tasks    *postgres.PostgresTaskStore
	comments *postgres.PostgresCommentStore
}

func openStores(t *testing.T) stores {
	t.Helper()
	db := testdb.GetTestDBWithT(t)
	return stores{
		db:       db,
		users:    postgres.NewPostgresUserStore(db, nil),
		tasks:    postgres.NewPostgresTaskStore(db, nil),
		comments: postgres.NewPostgresCommentStore(db, nil),
	}
}

func mustUser(t *testing.T, s stores, name string, roles ...domain.Role) *domain.User {
	t.Helper()
	u, err := domain.NewUser(name, name+"@example.com", "hash", domain.NewRoles(roles...), time.Now())
	require.NoError(t, err)
	require.NoError(t, s.users.Create(context.Background(), u))
	return u
}

func mustTask(t *testing.T, s stores, title string, assignee uuid.UUID) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(domain.TaskFields{
		Title:          title,
		TargetDate:     time.Now().AddDate(0, 0, 1),
		AssignedUserID: assignee,
	}, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.tasks.Create(context.Background(), task))
	return task
}

func TestIntegrationUserStore(t *testing.T) {
	s := openStores(t)
	ctx := context.Background()

	alice := mustUser(t, s, "alice", domain.RoleUser)
	root := mustUser(t, s, "root", domain.RoleAdmin, domain.RoleUser)

	got, err := s.users.GetByUsername(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, root.ID, got.ID)
	assert.ElementsMatch(t, root.Roles, got.Roles)

	dup, err := domain.NewUser("alice", "other@example.com", "hash", domain.Roles{domain.RoleUser}, time.Now())
	require.NoError(t, err)
	assert.ErrorIs(t, s.users.Create(ctx, dup), store.ErrUsernameExists)

	require.NoError(t, s.users.SetRoles(ctx, alice.ID, domain.Roles{domain.RoleAdmin}))
	got, err = s.users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Roles{domain.RoleAdmin}, got.Roles)

	page, err := s.users.List(ctx, domain.NewPageRequest(0, 1, 10, 100))
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "alice", page.Items[0].Username)

	require.NoError(t, s.users.Delete(ctx, alice.ID))
	_, err = s.users.GetByID(ctx, alice.ID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestIntegrationTaskVersionRace(t *testing.T) {
	s := openStores(t)
	ctx := context.Background()

	alice := mustUser(t, s, "alice", domain.RoleUser)
	task := mustTask(t, s, "Race", alice.ID)

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			update := *task
			update.Status = domain.StatusDone
			err := s.tasks.UpdateIfVersion(ctx, &update, 0)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, store.ErrVersionConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, writers-1, conflicts)

	got, err := s.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)

	missing := *task
	missing.ID = uuid.New()
	assert.ErrorIs(t, s.tasks.UpdateIfVersion(ctx, &missing, 0), store.ErrTaskNotFound)
}

func TestIntegrationTaskAssigneeForeignKey(t *testing.T) {
	s := openStores(t)

	task, err := domain.NewTask(domain.TaskFields{
		Title:          "Orphan",
		TargetDate:     time.Now().AddDate(0, 0, 1),
		AssignedUserID: uuid.New(),
	}, time.Now())
	require.NoError(t, err)
	assert.ErrorIs(t, s.tasks.Create(context.Background(), task), store.ErrInvalidEntity)
}

func TestIntegrationDeleteTaskWithComments(t *testing.T) {
	s := openStores(t)
	ctx := context.Background()

	alice := mustUser(t, s, "alice", domain.RoleUser)
	task := mustTask(t, s, "Chatty", alice.ID)
	for _, text := range []string{"one", "two"} {
		c, err := domain.NewComment(text, task.ID, alice.ID, time.Now())
		require.NoError(t, err)
		require.NoError(t, s.comments.Create(ctx, c))
	}

	page, err := s.comments.ListByTask(ctx, task.ID, domain.NewPageRequest(0, 10, 10, 100))
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.comments.WithTx(tx).DeleteByTask(ctx, task.ID); err != nil {
			return err
		}
		return s.tasks.WithTx(tx).Delete(ctx, task.ID)
	})
	require.NoError(t, err)

	_, err = s.tasks.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestIntegrationDeletedAssigneeUnassignsTask(t *testing.T) {
	s := openStores(t)
	ctx := context.Background()

	alice := mustUser(t, s, "alice", domain.RoleUser)
	task := mustTask(t, s, "Adopted", alice.ID)

	require.NoError(t, s.users.Delete(ctx, alice.ID))

	got, err := s.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, got.AssignedUserID)
}

func TestIntegrationCommentWaitsForTaskDelete(t *testing.T) {
	s := openStores(t)
	ctx := context.Background()

	alice := mustUser(t, s, "alice", domain.RoleAdmin)
	task := mustTask(t, s, "Contended", alice.ID)

	inserted := make(chan error, 1)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.tasks.WithTx(tx).GetByIDForUpdate(ctx, task.ID); err != nil {
			return err
		}

		go func() {
			c, err := domain.NewComment("late", task.ID, alice.ID, time.Now())
			if err != nil {
				inserted <- err
				return
			}
			inserted <- s.comments.Create(context.Background(), c)
		}()

		// Give the insert time to block on the row lock.
		time.Sleep(200 * time.Millisecond)
		if _, err := s.comments.WithTx(tx).DeleteByTask(ctx, task.ID); err != nil {
			return err
		}
		return s.tasks.WithTx(tx).Delete(ctx, task.ID)
	})
	require.NoError(t, err)

	select {
	case err := <-inserted:
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	case <-time.After(testdb.TestTimeout):
		t.Fatal("comment insert did not finish")
	}
}
