package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"psimodal/app"
)

// App represents the HTTP API application
type App struct {
	router  *chi.Mux
	service *app.ModalityService
	port    string
}

// Config holds API application configuration
type Config struct {
	Port string
}

// NewApp creates a new API application
func NewApp(config Config, service *app.ModalityService) *App {
	a := &App{
		router:  chi.NewRouter(),
		service: service,
		port:    config.Port,
	}

	a.setupMiddleware()
	a.setupRoutes()

	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Post("/api/estimate", a.handleEstimate)
	a.router.Get("/api/runs", a.handleListRuns)
	a.router.Get("/api/runs/{id}", a.handleGetRun)
	a.router.Get("/api/runs/{id}/report", a.handleRunReport)
	a.router.Get("/api/healthz", a.handleHealthz)
}

// Router exposes the configured handler for tests and embedding
func (a *App) Router() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start() error {
	addr := ":" + a.port
	log.Printf("[API] Starting modality API server on %s", addr)
	return http.ListenAndServe(addr, a.router)
}
