package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/vwapcast/internal/scheduler"
	"github.com/wonny/vwapcast/pkg/logger"
)

// JobRunner exposes scheduler state to the API
type JobRunner interface {
	GetJobStats() map[string]scheduler.JobStats
	RunJob(jobName string) error
}

// JobHandler handles scheduler API endpoints
type JobHandler struct {
	jobs   JobRunner
	logger *logger.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobs JobRunner, log *logger.Logger) *JobHandler {
	return &JobHandler{jobs: jobs, logger: log}
}

// GetStats returns run statistics of every registered job
// GET /api/jobs
func (h *JobHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.jobs.GetJobStats())
}

// Trigger starts a job immediately in the background
// POST /api/jobs/{name}/run
func (h *JobHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.jobs.RunJob(name); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	h.logger.WithField("job", name).Info("Job triggered via API")
	respondJSON(w, http.StatusAccepted, map[string]string{
		"job":    name,
		"status": "started",
	})
}
