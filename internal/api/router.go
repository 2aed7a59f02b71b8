package api

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/wonny/vwapcast/internal/api/handlers"
	"github.com/wonny/vwapcast/pkg/logger"
)

// RouterDeps holds the handlers mounted by NewRouter. Nil members are skipped.
type RouterDeps struct {
	Reports   *handlers.ReportHandler
	Jobs      *handlers.JobHandler
	Metrics   http.Handler
	Stream    http.Handler // live run progress over WebSocket
	RateLimit float64      // requests per second, 0 disables
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(deps RouterDeps, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics).Methods("GET")
	}

	if deps.Stream != nil {
		r.Handle("/ws/runs", deps.Stream).Methods("GET")
	}

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Report endpoints
	if h := deps.Reports; h != nil {
		api.HandleFunc("/reports", h.ListReports).Methods("GET")
		api.HandleFunc("/reports/latest", h.GetLatest).Methods("GET")
		api.HandleFunc("/reports/latest/summary", h.GetLatestSummary).Methods("GET")
		api.HandleFunc("/reports/latest/results.csv", h.GetLatestResultsCSV).Methods("GET")
		api.HandleFunc("/reports/{run_id}", h.GetReport).Methods("GET")
		api.HandleFunc("/charts/{run_id}/{symbol}", h.GetChart).Methods("GET")
		api.HandleFunc("/runs", h.ListRuns).Methods("GET")
	}

	// Scheduler endpoints
	if h := deps.Jobs; h != nil {
		api.HandleFunc("/jobs", h.GetStats).Methods("GET")
		api.HandleFunc("/jobs/{name}/run", h.Trigger).Methods("POST")
	}

	if deps.RateLimit > 0 {
		api.Use(rateLimitMiddleware(rate.NewLimiter(rate.Limit(deps.RateLimit), burst(deps.RateLimit))))
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "vwapcast-api",
	})
}

func burst(rps float64) int {
	if rps < 1 {
		return 1
	}
	return int(rps)
}

// rateLimitMiddleware rejects requests over the shared limit with 429
func rateLimitMiddleware(limiter *rate.Limiter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "rate limit exceeded",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack lets WebSocket upgrades pass through the logging middleware
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			// Call next handler
			next.ServeHTTP(rec, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
