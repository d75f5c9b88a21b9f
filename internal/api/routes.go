package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/kanban-api/internal/api/middleware"
	"github.com/phrazzld/kanban-api/internal/api/shared"
	"github.com/phrazzld/kanban-api/internal/service"
	"github.com/phrazzld/kanban-api/internal/service/auth"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Dependencies are the services the routes dispatch to.
type Dependencies struct {
	Users       service.UserService
	Boards      service.BoardService
	Tasks       service.TaskService
	Auth        *middleware.AuthMiddleware
	Revocations auth.RevocationList

	// DB is pinged by /health when set.
	DB Pinger
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
				return
			}
		}
		shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
	}
}

// RegisterRoutes mounts every endpoint on r. Paths carry no trailing
// slash; the server strips them before routing.
func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := NewAuthHandler(deps.Users, deps.Revocations)
	userHandler := NewUserHandler(deps.Users)
	boardHandler := NewBoardHandler(deps.Boards)
	taskHandler := NewTaskHandler(deps.Tasks)

	r.Get("/health", healthHandler(deps.DB))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.With(deps.Auth.Authenticate).Post("/logout", authHandler.Logout)
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", authHandler.Register)

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.Authenticate)
			r.Get("/me", userHandler.Me)
			r.Put("/me", userHandler.UpdateMe)
			r.Get("/{id}", userHandler.Get)
			r.Put("/{id}", userHandler.Update)
			r.Patch("/{id}/password", userHandler.ChangePassword)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", userHandler.List)
				r.Delete("/{id}", userHandler.Deactivate)
				r.Patch("/{id}/activate", userHandler.Activate)
			})
		})
	})

	r.Route("/boards", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.OptionalAuthenticate)
			r.Get("/", boardHandler.List)
			r.Get("/{id}", boardHandler.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.Authenticate)
			r.Post("/", boardHandler.Create)
			r.Put("/{id}", boardHandler.Update)
			r.Delete("/{id}", boardHandler.Delete)
		})
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Get("/", taskHandler.List)
		r.Post("/", taskHandler.Create)
		r.Get("/search", taskHandler.Search)
		r.Get("/{id}", taskHandler.Get)
		r.Put("/{id}", taskHandler.Update)
		r.Delete("/{id}", taskHandler.Delete)
		r.Patch("/{id}/move", taskHandler.Move)
		r.Patch("/{id}/assign", taskHandler.Assign)
	})
}
