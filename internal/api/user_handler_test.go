package api

import (
	"net/http"
	"testing"

	"github.com/phrazzld/taskboard-api/internal/authz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAndListUsers(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", "USER")
	env.seedUser(t, "bob", "USER")

	rec := env.do(t, http.MethodGet, "/api/auth/all-users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, MsgUnauthenticated, envelope(t, rec, nil).Message)

	rec = env.do(t, http.MethodGet, "/api/auth/all-users?size=1", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page PageResponse[UserResponse]
	envelope(t, rec, &page)
	assert.Equal(t, int64(2), page.TotalElements)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "alice", page.Content[0].Username)

	rec = env.do(t, http.MethodGet, "/api/auth/"+alice.ID.String()+"/user-info", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var user UserResponse
	envelope(t, rec, &user)
	assert.Equal(t, alice.ID, user.ID)
	assert.Equal(t, []string{"USER"}, user.Roles)
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", "USER")
	env.seedUser(t, "bob", "USER")
	path := "/api/auth/" + alice.ID.String() + "/user-update"

	rec := env.do(t, http.MethodPut, path, "bob", UpdateUserRequest{UserName: "mallory", Email: "m@example.com"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPut, path, "alice", UpdateUserRequest{UserName: "bob", Email: "a2@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPut, path, "alice", UpdateUserRequest{UserName: "alicia", Email: "a2@example.com"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var user UserResponse
	envelope(t, rec, &user)
	assert.Equal(t, "alicia", user.Username)
	assert.Equal(t, "a2@example.com", user.Email)
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", "USER")
	other := env.seedUser(t, "other", "ADMIN")
	env.seedUser(t, "root", "ADMIN", "USER")

	rec := env.do(t, http.MethodDelete, "/api/auth/"+alice.ID.String()+"/user-delete", "root", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, authz.ReasonBaseRoleTarget, envelope(t, rec, nil).Message)

	rec = env.do(t, http.MethodDelete, "/api/auth/"+other.ID.String()+"/user-delete", "alice", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/auth/"+other.ID.String()+"/user-delete", "root", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, env.users.Count())
}

func TestUpdateRoles(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", "USER")
	env.seedUser(t, "root", "ADMIN", "USER")
	path := "/api/auth/" + alice.ID.String() + "/user-role-update"

	rec := env.do(t, http.MethodPatch, path, "alice", UpdateRolesRequest{Roles: []string{"ADMIN"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPatch, path, "root", UpdateRolesRequest{Roles: []string{"SUPERUSER"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var fields map[string]string
	envelope(t, rec, &fields)
	assert.Contains(t, fields, "roles")

	rec = env.do(t, http.MethodPatch, path, "root", UpdateRolesRequest{Roles: []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, path, "root", UpdateRolesRequest{Roles: []string{"ROLE_ADMIN", "USER"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var user UserResponse
	envelope(t, rec, &user)
	assert.ElementsMatch(t, []string{"ADMIN", "USER"}, user.Roles)
}
