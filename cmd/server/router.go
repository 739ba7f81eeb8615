package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskboard-api/internal/api"
	apiMiddleware "github.com/phrazzld/taskboard-api/internal/api/middleware"
)

// setupRouter creates the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	pagination := app.config.Pagination
	authHandler := api.NewAuthHandler(app.authService, app.logger)
	userHandler := api.NewUserHandler(app.userService, pagination, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, pagination, app.logger)
	commentHandler := api.NewCommentHandler(app.commentService, pagination, app.logger)
	notificationHandler := api.NewNotificationHandler(app.hub, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Anonymous callers pass through; each operation decides whether an
		// identity is required.
		r.Use(authMiddleware.Authenticate)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Get("/all-users", userHandler.ListUsers)
			r.Get("/{id}/user-info", userHandler.GetUser)
			r.Put("/{id}/user-update", userHandler.UpdateUser)
			r.Delete("/{id}/user-delete", userHandler.DeleteUser)
			r.Patch("/{id}/user-role-update", userHandler.UpdateRoles)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/create", taskHandler.CreateTask)
			r.Get("/all-tasks", taskHandler.ListTasks)
			r.Get("/{id}/info", taskHandler.GetTask)
			r.Put("/{id}/update", taskHandler.UpdateTask)
			r.Delete("/{id}/delete", taskHandler.DeleteTask)
		})

		r.Route("/comments", func(r chi.Router) {
			r.Post("/create", commentHandler.CreateComment)
			r.Get("/{taskId}/info", commentHandler.ListComments)
			r.Get("/{commentId}", commentHandler.GetComment)
			r.Delete("/{commentId}/delete", commentHandler.DeleteComment)
		})
	})

	r.Get("/ws", notificationHandler.ServeWS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
