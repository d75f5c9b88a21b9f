package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/kanban-api/internal/api/middleware"
	"github.com/phrazzld/kanban-api/internal/config"
	"github.com/phrazzld/kanban-api/internal/platform/postgres"
	"github.com/phrazzld/kanban-api/internal/platform/redis"
	"github.com/phrazzld/kanban-api/internal/service"
	"github.com/phrazzld/kanban-api/internal/service/auth"
	"github.com/phrazzld/kanban-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore  store.UserStore
	boardStore store.BoardStore
	taskStore  store.TaskStore

	jwtService  auth.JWTService
	revocations auth.RevocationList
	// closeRevocations releases the Redis client, if one was opened.
	closeRevocations func() error

	userService  service.UserService
	boardService service.BoardService
	taskService  service.TaskService
	authMW       *middleware.AuthMiddleware
}

// newApplication creates a new application instance with all dependencies initialized.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
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
		"algorithm", cfg.Auth.Algorithm,
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	if cfg.Redis.URL != "" {
		list, err := redis.Connect(ctx, cfg.Redis.URL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.revocations = list
		app.closeRevocations = list.Close
	} else {
		logger.Warn("No Redis URL configured, logout will not revoke tokens")
		app.revocations = auth.NoopRevocationList{}
	}

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.boardStore = postgres.NewPostgresBoardStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	tx := store.NewSQLTxRunner(db).WithErrorMapper(postgres.MapError)

	app.userService, err = service.NewUserService(
		app.userStore,
		tx,
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		app.jwtService,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.boardService, err = service.NewBoardService(app.boardStore, app.taskStore, tx, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create board service: %w", err)
	}

	app.taskService, err = service.NewTaskService(app.taskStore, app.boardStore, app.userStore, tx, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.authMW = middleware.NewAuthMiddleware(app.jwtService, app.userStore, app.revocations, logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the HTTP server and blocks until it shuts down.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.closeRevocations != nil {
		if err := app.closeRevocations(); err != nil {
			app.logger.Error("Error closing redis client", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
