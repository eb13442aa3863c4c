package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/powerpufffit/inventory-pipeline/internal/pipeline/usecase/query"
)

var (
	requestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_http_requests_total",
			Help: "Total number of requests to the pipeline ops endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)
	requestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_http_request_duration_seconds",
			Help:    "Duration of pipeline ops requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// PipelineHandler exposes the pipeline's read-only ops surface: health plus
// the alert and daily-metric collections the dashboard consumes.
type PipelineHandler struct {
	listAlertsHandler  *query.ListAlertsHandler
	listMetricsHandler *query.ListDailyMetricsHandler
}

// NewPipelineHandler creates a new pipeline ops handler
func NewPipelineHandler(
	listAlertsHandler *query.ListAlertsHandler,
	listMetricsHandler *query.ListDailyMetricsHandler,
) *PipelineHandler {
	return &PipelineHandler{
		listAlertsHandler:  listAlertsHandler,
		listMetricsHandler: listMetricsHandler,
	}
}

// Response is the standard response envelope
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *PipelineHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

// RegisterRoutes registers the read-only ops routes
func (h *PipelineHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/alerts", h.metricsMiddleware("/api/alerts", h.ListAlerts)).Methods("GET")
	router.HandleFunc("/api/metrics/daily", h.metricsMiddleware("/api/metrics/daily", h.ListDailyMetrics)).Methods("GET")
}

// ListAlerts handles GET /api/alerts
func (h *PipelineHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	unreadOnly := r.URL.Query().Get("unread") == "true"

	alerts, err := h.listAlertsHandler.Handle(r.Context(), query.ListAlertsQuery{
		UnreadOnly: unreadOnly,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to list alerts",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    alerts,
	})
}

// ListDailyMetrics handles GET /api/metrics/daily
func (h *PipelineHandler) ListDailyMetrics(w http.ResponseWriter, r *http.Request) {
	q := query.ListDailyMetricsQuery{}

	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, Response{
				Success: false,
				Error:   "Invalid date, expected YYYY-MM-DD",
			})
			return
		}
		q.Date = date
	}
	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	metrics, err := h.listMetricsHandler.Handle(r.Context(), q)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to list daily metrics",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    metrics,
	})
}

// RegisterHealthCheck registers the health endpoint
func (h *PipelineHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Inventory pipeline is healthy",
		})
	}).Methods("GET")
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
