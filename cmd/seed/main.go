// Package main loads the sample dataset into the configured database.
// It reads the same configuration as the server and can be run repeatedly:
// existing users, boards and tasks are left alone.
//
// Usage:
//
//	go run ./cmd/seed [-migrate]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/phrazzld/kanban-api/internal/config"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/platform/postgres"
	"github.com/phrazzld/kanban-api/internal/seed"
	"github.com/phrazzld/kanban-api/internal/service"
	"github.com/phrazzld/kanban-api/internal/service/auth"
	"github.com/phrazzld/kanban-api/internal/store"
)

func main() {
	migrate := flag.Bool("migrate", false, "Apply pending migrations before seeding")
	flag.Parse()

	if err := run(context.Background(), *migrate); err != nil {
		log.Printf("seed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, migrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := postgres.Open(ctx, cfg.Database, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			l.Error("Error closing database connection", "error", err)
		}
	}()

	if migrate || cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db, postgres.MigrateUp, l); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	userStore := postgres.NewPostgresUserStore(db, l)
	boardStore := postgres.NewPostgresBoardStore(db, l)
	taskStore := postgres.NewPostgresTaskStore(db, l)
	tx := store.NewSQLTxRunner(db).WithErrorMapper(postgres.MapError)

	users, err := service.NewUserService(userStore, tx, auth.NewBcryptHasher(cfg.Auth.BcryptCost), jwtService, l)
	if err != nil {
		return fmt.Errorf("failed to create user service: %w", err)
	}
	boards, err := service.NewBoardService(boardStore, taskStore, tx, l)
	if err != nil {
		return fmt.Errorf("failed to create board service: %w", err)
	}
	tasks, err := service.NewTaskService(taskStore, boardStore, userStore, tx, l)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}

	seeder, err := seed.NewSeeder(users, boards, tasks, l)
	if err != nil {
		return fmt.Errorf("failed to create seeder: %w", err)
	}

	report, err := seeder.Run(ctx, seed.DefaultDataset())
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	l.Info("Seed data loaded",
		"users_created", report.UsersCreated,
		"users_skipped", report.UsersSkipped,
		"boards_created", report.BoardsCreated,
		"boards_skipped", report.BoardsSkipped,
		"tasks_created", report.TasksCreated,
		"tasks_skipped", report.TasksSkipped)
	return nil
}
