package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"zmean/app"
)

// Server is the JSON API surface over the study services
type Server struct {
	router *chi.Mux
	study  *app.StudyService
	batch  *app.BatchService
}

// NewServer creates the API server with its middleware and routes
func NewServer(study *app.StudyService, batch *app.BatchService) *Server {
	s := &Server{
		router: chi.NewRouter(),
		study:  study,
		batch:  batch,
	}

	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/runs", s.handleCreateRun)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{runID}", s.handleGetRun)
		r.Post("/runs/batch", s.handleBatch)
	})

	s.router.Get("/healthz", s.handleHealthz)
}

// Handler returns the http.Handler for mounting or serving
func (s *Server) Handler() http.Handler {
	return s.router
}
