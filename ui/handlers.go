package ui

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"zmean/app"
	"zmean/domain/core"
	"zmean/domain/ztest"
	"zmean/internal/report"
	"zmean/ports"
)

// handleIndex renders the study form prefilled with the worked example,
// plus the most recent runs.
func (s *Server) handleIndex(c *gin.Context) {
	pageError := c.Query("error")

	runs, err := s.reader.ListRuns(c.Request.Context(), ports.RunFilters{Limit: 20})
	if err != nil {
		runs = nil
		pageError = "run history unavailable: " + err.Error()
	}

	s.renderTemplate(c, "index.html", gin.H{
		"Defaults": gin.H{
			"SampleMean":   103.0,
			"NullMean":     100.0,
			"PopulationSD": 16.0,
			"SampleSize":   40,
			"Tail":         s.defaults.Tail,
			"Alpha":        s.defaults.Alpha,
		},
		"Runs":  runs,
		"Error": pageError,
	})
}

// handleCreateStudy parses the study form and redirects to the run report
func (s *Server) handleCreateStudy(c *gin.Context) {
	req, err := s.parseStudyForm(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/?error="+template.URLQueryEscaper(err.Error()))
		return
	}

	result, err := s.study.RunStudy(c.Request.Context(), req)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/?error="+template.URLQueryEscaper(err.Error()))
		return
	}

	c.Redirect(http.StatusSeeOther, "/runs/"+result.Record.ID.String())
}

func (s *Server) parseStudyForm(c *gin.Context) (app.StudyRequest, error) {
	var req app.StudyRequest
	req.Label = c.PostForm("label")

	var err error
	if req.SampleMean, err = strconv.ParseFloat(c.PostForm("sample_mean"), 64); err != nil {
		return req, core.NewValidationError("sample_mean", "must be a number")
	}
	if req.NullMean, err = strconv.ParseFloat(c.PostForm("null_mean"), 64); err != nil {
		return req, core.NewValidationError("null_mean", "must be a number")
	}
	if req.PopulationSD, err = strconv.ParseFloat(c.PostForm("population_sd"), 64); err != nil {
		return req, core.NewValidationError("population_sd", "must be a number")
	}
	if req.SampleSize, err = strconv.Atoi(c.PostForm("sample_size")); err != nil {
		return req, core.NewValidationError("sample_size", "must be an integer")
	}
	if req.Alpha, err = strconv.ParseFloat(c.PostForm("alpha"), 64); err != nil {
		return req, core.NewValidationError("alpha", "must be a number")
	}
	if req.Tail, err = ztest.ParseTail(c.PostForm("tail")); err != nil {
		return req, err
	}
	return req, nil
}

// handleRunReport renders the stored run's markdown walkthrough as HTML
func (s *Server) handleRunReport(c *gin.Context) {
	runID, err := core.ParseRunID(c.Param("runID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run ID"})
		return
	}

	record, err := s.reader.GetRun(c.Request.Context(), runID)
	if err != nil {
		if core.IsNotFoundError(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.renderTemplate(c, "report.html", gin.H{
		"Record":     record,
		"ReportHTML": renderMarkdown(report.BuildStudyReport(*record)),
	})
}

// handleRunsJSON returns stored runs as JSON
func (s *Server) handleRunsJSON(c *gin.Context) {
	filters := ports.RunFilters{Limit: 100}
	if tailParam := c.Query("tail"); tailParam != "" {
		tail, err := ztest.ParseTail(tailParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filters.Tail = &tail
	}

	runs, err := s.reader.ListRuns(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

// renderMarkdown converts the walkthrough markdown into embeddable HTML
func renderMarkdown(md string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return template.HTML(markdown.ToHTML([]byte(md), p, renderer))
}
