package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/api/middleware"
	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/mocks"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

var testPagination = config.PaginationConfig{DefaultSize: 10, MaxSize: 100}

// testEnv serves the handlers over mock stores. Tokens are "tok-<username>".
type testEnv struct {
	users     *mocks.MockUserStore
	tasks     *mocks.MockTaskStore
	comments  *mocks.MockCommentStore
	published *mocks.RecordingPublisher
	router    chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		users:     mocks.NewMockUserStore(),
		tasks:     mocks.NewMockTaskStore(),
		comments:  mocks.NewMockCommentStore(),
		published: &mocks.RecordingPublisher{},
	}
	tx := &mocks.MockTransactor{}
	jwt := &mocks.MockJWTService{
		GenerateTokenFn: func(_ context.Context, subject string, _ uuid.UUID, _ domain.Roles) (string, error) {
			return "tok-" + subject, nil
		},
		ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
			u, err := env.users.GetByUsername(ctx, strings.TrimPrefix(token, "tok-"))
			if err != nil {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{Subject: u.Username, UserID: u.ID, Roles: u.Roles}, nil
		},
	}

	authH := NewAuthHandler(service.NewAuthService(env.users, mocks.PlainHasher{}, mocks.PlainHasher{}, jwt, nil), nil)
	userH := NewUserHandler(service.NewUserService(env.users, tx, nil), testPagination, nil)
	taskH := NewTaskHandler(
		service.NewTaskService(env.tasks, env.users, env.comments, tx, env.published, nil),
		testPagination, nil)
	commentH := NewCommentHandler(
		service.NewCommentService(env.comments, env.tasks, env.users, nil),
		testPagination, nil)

	r := chi.NewRouter()
	r.Use(middleware.NewAuthMiddleware(jwt, nil).Authenticate)
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authH.Register)
		r.Post("/login", authH.Login)
		r.Get("/all-users", userH.ListUsers)
		r.Get("/{id}/user-info", userH.GetUser)
		r.Put("/{id}/user-update", userH.UpdateUser)
		r.Delete("/{id}/user-delete", userH.DeleteUser)
		r.Patch("/{id}/user-role-update", userH.UpdateRoles)
	})
	r.Route("/api/tasks", func(r chi.Router) {
		r.Post("/create", taskH.CreateTask)
		r.Get("/all-tasks", taskH.ListTasks)
		r.Get("/{id}/info", taskH.GetTask)
		r.Put("/{id}/update", taskH.UpdateTask)
		r.Delete("/{id}/delete", taskH.DeleteTask)
	})
	r.Route("/api/comments", func(r chi.Router) {
		r.Post("/create", commentH.CreateComment)
		r.Get("/{taskId}/info", commentH.ListComments)
		r.Get("/{commentId}", commentH.GetComment)
		r.Delete("/{commentId}/delete", commentH.DeleteComment)
	})
	env.router = r
	return env
}

// seedUser stores a user with password "pw123456".
func (e *testEnv) seedUser(t *testing.T, name string, roles ...domain.Role) *domain.User {
	t.Helper()
	u, err := domain.NewUser(name, name+"@example.com", "hashed:pw123456", domain.NewRoles(roles...), time.Now())
	require.NoError(t, err)
	e.users.Seed(u)
	return u
}

// do sends body as JSON with the given user's token. An empty user sends no
// Authorization header.
func (e *testEnv) do(t *testing.T, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("Authorization", "Bearer tok-"+user)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// envelope decodes the response envelope, unmarshalling data into out when
// out is non-nil.
func envelope(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) shared.Envelope {
	t.Helper()

	var raw struct {
		shared.Envelope
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw), rec.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	env := raw.Envelope
	env.Data = raw.Data
	return env
}

func taskBody(title string, assignee uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"title":          title,
		"description":    "details",
		"status":         "TODO",
		"priority":       "HIGH",
		"targetDate":     time.Now().AddDate(0, 0, 7).Format(DateLayout),
		"assignedUserId": assignee.String(),
	}
}
