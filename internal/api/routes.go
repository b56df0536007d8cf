// Package api exposes the plugin over HTTP: session state, the
// classification journal, the designator registry, and action, command and
// message injection.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"acfkit/internal/database"
	"acfkit/internal/plugin"
	"acfkit/internal/scheduler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Executor runs fn on the goroutine that owns the host and waits for it.
type Executor interface {
	Do(ctx context.Context, fn func()) error
}

// Config holds the API dependencies.
type Config struct {
	Exec   Executor
	Plugin *plugin.Plugin
	// Journal and Designators are optional; their routes answer 503
	// without them.
	Journal     database.ClassificationRepository
	Designators database.DesignatorRepository
	// Tasks reports the scheduled tasks; optional.
	Tasks  func() []scheduler.TaskStatus
	Logger *slog.Logger
}

// Router is the API router
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates a new API router
func NewRouter(cfg Config) *Router {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Router{
		handler:    NewHandler(cfg),
		middleware: NewMiddleware(cfg.Logger),
	}
}

// Routes returns the API routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/status", r.handler.GetStatus)
	router.Get("/journal", r.handler.GetJournal)
	router.Get("/designators/{code}", r.handler.GetDesignator)

	router.Get("/actions", r.handler.ListActions)
	router.Post("/actions/{action}", r.handler.PostAction)
	router.Post("/commands/{phase}/*", r.handler.PostCommand)
	router.Post("/messages/{id}", r.handler.PostMessage)

	return router
}
