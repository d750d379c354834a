package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"zmean/app"
	"zmean/domain/core"
	"zmean/domain/ztest"
	"zmean/ports"
)

// CreateRunRequest is the JSON body for creating one study run
type CreateRunRequest struct {
	Label        string  `json:"label"`
	SampleMean   float64 `json:"sample_mean"`
	NullMean     float64 `json:"null_mean"`
	PopulationSD float64 `json:"population_sd"`
	SampleSize   int     `json:"sample_size"`
	Tail         string  `json:"tail"`
	Alpha        float64 `json:"alpha"`
}

func (req CreateRunRequest) toStudyRequest() (app.StudyRequest, error) {
	tail, err := ztest.ParseTail(req.Tail)
	if err != nil {
		return app.StudyRequest{}, err
	}
	return app.StudyRequest{
		Label:        req.Label,
		SampleMean:   req.SampleMean,
		NullMean:     req.NullMean,
		PopulationSD: req.PopulationSD,
		SampleSize:   req.SampleSize,
		Tail:         tail,
		Alpha:        req.Alpha,
	}, nil
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	studyReq, err := req.toStudyRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.study.RunStudy(r.Context(), studyReq)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	filters := ports.RunFilters{Limit: 100}

	if tailParam := r.URL.Query().Get("tail"); tailParam != "" {
		tail, err := ztest.ParseTail(tailParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filters.Tail = &tail
	}
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if limit, err := strconv.Atoi(limitParam); err == nil && limit > 0 {
			filters.Limit = limit
		}
	}
	if offsetParam := r.URL.Query().Get("offset"); offsetParam != "" {
		if offset, err := strconv.Atoi(offsetParam); err == nil && offset > 0 {
			filters.Offset = offset
		}
	}

	runs, err := s.study.ListRuns(r.Context(), filters)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID, err := core.ParseRunID(chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run ID")
		return
	}

	record, err := s.study.GetRun(r.Context(), runID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "batch must contain at least one scenario")
		return
	}

	studyReqs := make([]app.StudyRequest, len(reqs))
	for i, req := range reqs {
		studyReq, err := req.toStudyRequest()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		studyReqs[i] = studyReq
	}

	outcomes, err := s.batch.EvaluateScenarios(r.Context(), studyReqs)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"outcomes": outcomes,
		"count":    len(outcomes),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case core.IsNotFoundError(err):
		return http.StatusNotFound
	case core.IsValidationError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
