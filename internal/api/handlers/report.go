package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/vwapcast/internal/contracts"
	"github.com/wonny/vwapcast/internal/report"
	"github.com/wonny/vwapcast/pkg/logger"
)

// ArtifactStore lists runs and resolves files inside a run directory
type ArtifactStore interface {
	Runs() ([]string, error)
	ArtifactPath(runID, name string) (string, error)
}

// RunLister lists persisted runs
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]report.RunRow, error)
}

// ReportHandler handles report API endpoints
// ⭐ SSOT: 리포트 API 핸들러는 이 구조체에서만
type ReportHandler struct {
	reports   contracts.ReportStore
	artifacts ArtifactStore
	runs      RunLister // nil when no database is configured
	logger    *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(
	reports contracts.ReportStore,
	artifacts ArtifactStore,
	runs RunLister,
	log *logger.Logger,
) *ReportHandler {
	return &ReportHandler{
		reports:   reports,
		artifacts: artifacts,
		runs:      runs,
		logger:    log,
	}
}

// GetLatest returns the newest run report
// GET /api/reports/latest
func (h *ReportHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.latest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

// GetLatestSummary returns the summary block of the newest report
// GET /api/reports/latest/summary
func (h *ReportHandler) GetLatestSummary(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.latest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  rep.RunID,
		"summary": rep.Summary,
	})
}

// GetLatestResultsCSV returns the per-company table of the newest report as CSV
// GET /api/reports/latest/results.csv
func (h *ReportHandler) GetLatestResultsCSV(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.latest(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+rep.RunID+`-results.csv"`)
	if err := report.WriteCSV(w, rep.Results); err != nil {
		h.logger.WithError(err).Error("Failed to write results csv")
	}
}

// ListReports returns stored run IDs, newest first
// GET /api/reports
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	runs, err := h.artifacts.Runs()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list reports")
		respondError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	if runs == nil {
		runs = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetReport returns one run report
// GET /api/reports/{run_id}
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["run_id"]

	rep, err := h.reports.Get(r.Context(), runID)
	if errors.Is(err, contracts.ErrReportNotFound) {
		respondError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("run_id", runID).Error("Failed to get report")
		respondError(w, http.StatusInternalServerError, "failed to get report")
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

// GetChart serves the comparison chart of one company in one run
// GET /api/charts/{run_id}/{symbol}
func (h *ReportHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID, symbol := vars["run_id"], vars["symbol"]

	rep, err := h.reports.Get(r.Context(), runID)
	if errors.Is(err, contracts.ErrReportNotFound) {
		respondError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("run_id", runID).Error("Failed to get report")
		respondError(w, http.StatusInternalServerError, "failed to get report")
		return
	}

	name, ok := rep.Charts[symbol]
	if !ok {
		respondError(w, http.StatusNotFound, "no chart for symbol")
		return
	}

	path, err := h.artifacts.ArtifactPath(runID, name)
	if err != nil {
		respondError(w, http.StatusNotFound, "chart file not found")
		return
	}
	http.ServeFile(w, r, path)
}

// ListRuns returns persisted runs from the database
// GET /api/runs?limit=20
func (h *ReportHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		respondError(w, http.StatusServiceUnavailable, "run history requires a database")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	rows, err := h.runs.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list runs")
		respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if rows == nil {
		rows = []report.RunRow{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  rows,
		"count": len(rows),
	})
}

func (h *ReportHandler) latest(w http.ResponseWriter, r *http.Request) (*contracts.RunReport, bool) {
	rep, err := h.reports.Latest(r.Context())
	if errors.Is(err, contracts.ErrReportNotFound) {
		respondError(w, http.StatusNotFound, "no report yet")
		return nil, false
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest report")
		respondError(w, http.StatusInternalServerError, "failed to get latest report")
		return nil, false
	}
	return rep, true
}
