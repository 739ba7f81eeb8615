package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// application holds the shared dependencies so they can be wired once and
// released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore    store.UserStore
	taskStore    store.TaskStore
	commentStore store.CommentStore
	transactor   store.Transactor

	jwtService auth.JWTService
	passwords  *auth.BcryptVerifier
	hub        *events.Hub

	authService    service.AuthService
	userService    service.UserService
	taskService    service.TaskService
	commentService service.CommentService
}

// newApplication wires stores, services and the notification hub. db may be
// any handle satisfying the stores; tests pass a sqlmock connection.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwords = auth.NewBcryptVerifier(cfg.Auth.BCryptCost)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.commentStore = postgres.NewPostgresCommentStore(db, logger)
	app.transactor = store.NewSQLTransactor(db)

	app.hub = events.NewHub(cfg.Notify.SubscriberBuffer, logger)

	app.authService = service.NewAuthService(
		app.userStore,
		app.passwords,
		app.passwords,
		app.jwtService,
		logger,
		service.WithBootstrapAdmin(cfg.Auth.BootstrapAdminUsername),
	)
	if cfg.Auth.BootstrapAdminUsername != "" {
		logger.Info("bootstrap admin account enabled", "username", cfg.Auth.BootstrapAdminUsername)
	}
	app.userService = service.NewUserService(app.userStore, app.transactor, logger)
	app.taskService = service.NewTaskService(
		app.taskStore,
		app.userStore,
		app.commentStore,
		app.transactor,
		app.hub,
		logger,
	)
	app.commentService = service.NewCommentService(app.commentStore, app.taskStore, app.userStore, logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is cancelled or a shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases the hub and the database connection.
func (app *application) cleanup() {
	if app.hub != nil {
		app.hub.Close()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
	app.logger.Info("Application shutdown completed")
}
