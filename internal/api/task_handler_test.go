package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/authz"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTask(t *testing.T, env *testEnv, user, title string, assignee uuid.UUID) TaskResponse {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/tasks/create", user, taskBody(title, assignee))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var task TaskResponse
	envelope(t, rec, &task)
	return task
}

func TestCreateTask(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", "USER")

	task := createTask(t, env, "alice", "Write docs", alice.ID)
	assert.Equal(t, int64(0), task.Version)
	assert.Equal(t, "Write docs", task.Title)
	require.NotNil(t, task.AssignedUserID)
	assert.Equal(t, alice.ID, *task.AssignedUserID)
	assert.Equal(t, []events.Kind{events.KindTaskCreated}, env.published.Kinds())

	rec := env.do(t, http.MethodGet, "/api/tasks/"+task.ID.String()+"/info", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched TaskResponse
	envelope(t, rec, &fetched)
	assert.Equal(t, task, fetched)
}

func TestCreateTaskRejections(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.seedUser(t, "alice", "USER")
	missing := uuid.New()

	rec := env.do(t, http.MethodPost, "/api/tasks/create", "", taskBody("x", missing))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/tasks/create", "alice", taskBody("x", missing))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No user available for assigned user id "+missing.String(), envelope(t, rec, nil).Message)

	body := taskBody("x", missing)
	body["targetDate"] = "07/01/2030"
	body["priority"] = "URGENT"
	rec = env.do(t, http.MethodPost, "/api/tasks/create", "alice", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var fields map[string]string
	envelope(t, rec, &fields)
	assert.Equal(t, "must be a date in YYYY-MM-DD format", fields["targetDate"])
	assert.Equal(t, "must be one of LOW, MEDIUM, HIGH", fields["priority"])

	assert.Equal(t, 0, env.tasks.Count())
}

func TestUpdateTaskVersioning(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", "USER")
	task := createTask(t, env, "alice", "Draft", alice.ID)
	path := "/api/tasks/" + task.ID.String() + "/update"

	body := taskBody("Final", alice.ID)
	body["version"] = 0
	rec := env.do(t, http.MethodPut, path, "alice", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated TaskResponse
	envelope(t, rec, &updated)
	assert.Equal(t, int64(1), updated.Version)
	assert.Equal(t, "Final", updated.Title)

	body["title"] = "Stale"
	rec = env.do(t, http.MethodPut, path, "alice", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, MsgVersionConflict, envelope(t, rec, nil).Message)

	rec = env.do(t, http.MethodGet, "/api/tasks/"+task.ID.String()+"/info", "alice", nil)
	var current TaskResponse
	envelope(t, rec, &current)
	assert.Equal(t, "Final", current.Title)
	assert.Equal(t, int64(1), current.Version)
}

func TestUpdateTaskRequiresVersion(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", "USER")
	task := createTask(t, env, "alice", "Draft", alice.ID)

	rec := env.do(t, http.MethodPut, "/api/tasks/"+task.ID.String()+"/update", "alice", taskBody("Final", alice.ID))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var fields map[string]string
	envelope(t, rec, &fields)
	assert.Equal(t, "must not be blank", fields["version"])
}

func TestTaskPathID(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.seedUser(t, "alice", "USER")

	rec := env.do(t, http.MethodGet, "/api/tasks/not-a-uuid/info", "alice", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var fields map[string]string
	envelope(t, rec, &fields)
	assert.Equal(t, "must be a valid UUID", fields["id"])

	rec = env.do(t, http.MethodGet, "/api/tasks/"+uuid.NewString()+"/info", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Task not found", envelope(t, rec, nil).Message)
}

func TestListTasks(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", "USER")
	env.seedUser(t, "root", "ADMIN", "USER")
	for _, title := range []string{"a", "b", "c"} {
		createTask(t, env, "alice", title, alice.ID)
	}

	rec := env.do(t, http.MethodGet, "/api/tasks/all-tasks", "alice", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/tasks/all-tasks?page=1&size=2", "root", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page PageResponse[TaskResponse]
	envelope(t, rec, &page)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.Size)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Content, 1)

	rec = env.do(t, http.MethodGet, "/api/tasks/all-tasks?size=-1", "root", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, query := range []string{
		"page=922337203685477580&size=100",
		"page=9223372036854775807",
	} {
		rec = env.do(t, http.MethodGet, "/api/tasks/all-tasks?"+query, "root", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, query)
		var fields map[string]string
		envelope(t, rec, &fields)
		assert.Equal(t, "is too large", fields["page"], query)
	}
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", "USER")
	root := env.seedUser(t, "root", "ADMIN", "USER")

	baseTask := createTask(t, env, "alice", "Base", alice.ID)
	adminTask := createTask(t, env, "root", "Elevated", root.ID)

	rec := env.do(t, http.MethodDelete, "/api/tasks/"+adminTask.ID.String()+"/delete", "alice", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/tasks/"+baseTask.ID.String()+"/delete", "root", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, authz.ReasonBaseRoleAssignee, envelope(t, rec, nil).Message)

	rec = env.do(t, http.MethodDelete, "/api/tasks/"+adminTask.ID.String()+"/delete", "root", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, env.tasks.Count())
	assert.Contains(t, env.published.Messages(), "❌ Task deleted: Elevated")
}
