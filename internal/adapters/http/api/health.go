package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/empiria/pkg/metrics"
)

// HealthInfo reports cache state for /health.
type HealthInfo interface {
	CachedStudents() int
}

// HealthHandler serves liveness and metrics.
type HealthHandler struct {
	info HealthInfo
	env  string
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(info HealthInfo, env string) *HealthHandler {
	return &HealthHandler{info: info, env: env}
}

type healthResponse struct {
	Status         string `json:"status"`
	Env            string `json:"env"`
	CachedStudents int    `json:"cached_students"`
}

// HandleHealth handles GET /health.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:         "ok",
		Env:            h.env,
		CachedStudents: h.info.CachedStudents(),
	})
}

// HandleMetrics handles GET /healthz with the Prometheus exposition.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
