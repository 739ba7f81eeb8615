package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/authz"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/mocks"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	users     *mocks.MockUserStore
	tasks     *mocks.MockTaskStore
	comments  *mocks.MockCommentStore
	tx        *mocks.MockTransactor
	published *mocks.RecordingPublisher

	taskSvc    service.TaskService
	commentSvc service.CommentService
	userSvc    service.UserService
}

func newFixture() *fixture {
	f := &fixture{
		users:     mocks.NewMockUserStore(),
		tasks:     mocks.NewMockTaskStore(),
		comments:  mocks.NewMockCommentStore(),
		tx:        &mocks.MockTransactor{},
		published: &mocks.RecordingPublisher{},
	}
	f.taskSvc = service.NewTaskService(f.tasks, f.users, f.comments, f.tx, f.published, nil)
	f.commentSvc = service.NewCommentService(f.comments, f.tasks, f.users, nil)
	f.userSvc = service.NewUserService(f.users, f.tx, nil)
	return f
}

// seedUser stores a user and returns the matching caller identity.
func (f *fixture) seedUser(t *testing.T, name string, roles ...domain.Role) (*domain.User, authz.Identity) {
	t.Helper()
	u, err := domain.NewUser(name, name+"@example.com", "hashed:pw123456", domain.NewRoles(roles...), time.Now())
	require.NoError(t, err)
	f.users.Seed(u)
	return u, authz.Identity{UserID: u.ID, Username: u.Username, Roles: u.Roles}
}

// seedTask stores a task assigned to assignee.
func (f *fixture) seedTask(t *testing.T, title string, assignee uuid.UUID) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(taskFields(title, assignee), time.Now())
	require.NoError(t, err)
	f.tasks.Seed(task)
	return task
}

func taskFields(title string, assignee uuid.UUID) domain.TaskFields {
	return domain.TaskFields{
		Title:          title,
		Description:    "details",
		Status:         domain.StatusTodo,
		Priority:       domain.PriorityHigh,
		TargetDate:     time.Now().AddDate(0, 0, 1),
		AssignedUserID: assignee,
	}
}

func firstPage() domain.PageRequest {
	return domain.NewPageRequest(0, 10, 10, 100)
}

var ctx = context.Background()
