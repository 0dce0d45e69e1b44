package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/planhub/backend/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Project *apiHandler.ProjectHandler
	Task    *apiHandler.TaskHandler
	Health  *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes. Token verification reads the bearer header itself, so
	// these stay outside the middleware.
	r.GET("/api/v1/auth/verify", handlers.Auth.Verify)
	r.GET("/api/v1/auth/me", handlers.Auth.Me)
	r.POST("/api/v1/auth/logout", handlers.Auth.Logout)
	r.GET("/api/v1/auth/{provider}", handlers.Auth.Begin)
	r.GET("/api/v1/auth/{provider}/callback", handlers.Auth.Callback)

	// User routes
	r.GET("/api/v1/users/search", authMiddleware(handlers.Profile.Search))
	r.PUT("/api/v1/users/me", authMiddleware(handlers.Profile.UpdateMe))
	r.GET("/api/v1/users/{id}", authMiddleware(handlers.Profile.Get))

	// Project routes
	r.GET("/api/v1/projects", authMiddleware(handlers.Project.List))
	r.POST("/api/v1/projects", authMiddleware(handlers.Project.Create))
	r.GET("/api/v1/projects/{id}", authMiddleware(handlers.Project.Get))
	r.PUT("/api/v1/projects/{id}", authMiddleware(handlers.Project.Update))
	r.DELETE("/api/v1/projects/{id}", authMiddleware(handlers.Project.Delete))
	r.PUT("/api/v1/projects/{id}/diagram", authMiddleware(handlers.Project.UpdateDiagram))
	r.POST("/api/v1/projects/{id}/members", authMiddleware(handlers.Project.AddMember))
	r.DELETE("/api/v1/projects/{id}/members/{memberId}", authMiddleware(handlers.Project.RemoveMember))

	// Task routes
	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.List))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.Create))
	r.GET("/api/v1/tasks/stats/overview", authMiddleware(handlers.Task.Stats))
	r.GET("/api/v1/tasks/{id}", authMiddleware(handlers.Task.Get))
	r.PUT("/api/v1/tasks/{id}", authMiddleware(handlers.Task.Update))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.Delete))
	r.POST("/api/v1/tasks/{id}/comments", authMiddleware(handlers.Task.AddComment))
	r.POST("/api/v1/tasks/{id}/subtasks", authMiddleware(handlers.Task.AddSubtask))
	r.PUT("/api/v1/tasks/{id}/subtasks/{subtaskId}", authMiddleware(handlers.Task.UpdateSubtask))

	return r
}
