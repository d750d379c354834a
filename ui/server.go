package ui

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/gin-gonic/gin"

	"zmean/app"
	"zmean/internal/config"
	"zmean/ports"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// Server represents the web server for the z-test UI
type Server struct {
	router    *gin.Engine
	study     *app.StudyService
	reader    ports.RunReaderPort
	templates *template.Template
	defaults  config.StudyConfig
}

// NewServer creates the web server and parses its embedded templates
func NewServer(study *app.StudyService, reader ports.RunReaderPort, defaults config.StudyConfig) (*Server, error) {
	funcMap := template.FuncMap{
		"pct":   func(v float64) string { return fmt.Sprintf("%.2f%%", v*100) },
		"f4":    func(v float64) string { return fmt.Sprintf("%.4f", v) },
		"f6":    func(v float64) string { return fmt.Sprintf("%.6f", v) },
		"upper": strings.ToUpper,
	}

	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedTemplates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:    gin.Default(),
		study:     study,
		reader:    reader,
		templates: templates,
		defaults:  defaults,
	}

	s.setupRoutes()
	return s, nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/studies", s.handleCreateStudy)
	s.router.GET("/runs/:runID", s.handleRunReport)

	s.router.GET("/api/runs", s.handleRunsJSON)
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}

// Run starts the server on the given port
func (s *Server) Run(port string) error {
	return s.router.Run(":" + port)
}

// Router exposes the underlying router for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}
