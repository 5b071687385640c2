package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/taskgraph/taskgraph/internal/auth"
	"github.com/taskgraph/taskgraph/internal/fine"
	"github.com/taskgraph/taskgraph/internal/graph"
	"github.com/taskgraph/taskgraph/internal/task"
	"github.com/taskgraph/taskgraph/internal/transport/middleware"
	"github.com/taskgraph/taskgraph/internal/transport/swagger"
	"github.com/taskgraph/taskgraph/internal/user"
	"github.com/taskgraph/taskgraph/internal/workflow"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth     *auth.Handler
	User     *user.Handler
	Task     *task.Handler
	Graph    *graph.Handler
	Fine     *fine.Handler
	Workflow *workflow.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, roles *auth.RoleAuthorization, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// OpenAPI spec and Swagger UI live outside the API prefix.
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/register", h.Auth.Register)
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
		})

		// Everything below requires a valid access token.
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
				pr.Get("/users/assignable", h.User.GetAssignableUsers)
			}

			if h.Task != nil {
				pr.Route("/tasks", func(tr chi.Router) {
					tr.Post("/", h.Task.CreateTask)
					tr.Get("/mine", h.Task.GetMyTasks)
					tr.Post("/{id}/seen", h.Task.MarkSeen)
					tr.Post("/{id}/complete", h.Task.CompleteTask)

					tr.Group(func(ar chi.Router) {
						ar.Use(roles.RequireAdmin())
						ar.Get("/{id}", h.Task.GetTask)
						ar.Put("/{id}", h.Task.UpdateTask)
						ar.Delete("/{id}", h.Task.DeleteTask)
						ar.Get("/{id}/logs", h.Task.GetTaskLogs)
					})
				})
			}

			if h.Graph != nil {
				pr.Group(func(ar chi.Router) {
					ar.Use(roles.RequireAdmin())
					ar.Post("/edges", h.Graph.CreateEdge)
					ar.Delete("/edges/{id}", h.Graph.DeleteEdge)
					ar.Get("/admin/master-flow", h.Graph.GetMasterFlow)
				})
			}

			if h.Workflow != nil {
				pr.Route("/workflows", func(wr chi.Router) {
					wr.Get("/", h.Workflow.ListWorkflows)
					wr.Get("/{id}", h.Workflow.GetWorkflow)

					wr.Group(func(ar chi.Router) {
						ar.Use(roles.RequireAdmin())
						ar.Post("/", h.Workflow.CreateWorkflow)
						ar.Put("/{id}", h.Workflow.UpdateWorkflow)
						ar.Delete("/{id}", h.Workflow.DeleteWorkflow)
						ar.Post("/{id}/nodes", h.Workflow.AddNode)
					})
				})
				pr.Group(func(ar chi.Router) {
					ar.Use(roles.RequireAdmin())
					ar.Get("/admin/workflows/{id}/stats", h.Workflow.GetStats)
				})
			}

			if h.Fine != nil {
				pr.Get("/fines/mine", h.Fine.GetMyFines)

				pr.Group(func(ar chi.Router) {
					ar.Use(roles.RequireAdmin())
					ar.Get("/fines", h.Fine.GetAllFines)
					ar.Post("/fines", h.Fine.IssueFine)
					ar.Post("/fines/{id}/resolve", h.Fine.ResolveFine)
				})
			}
		})
	})
}
