// Package api serves the intelligence endpoints over net/http.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/empiria/internal/domain/dedupe"
	"github.com/okian/empiria/internal/domain/model"
)

// FeedReader reads the current feed snapshot.
type FeedReader interface {
	Students(ctx context.Context) ([]model.StudentRecord, error)
	Outcomes(ctx context.Context) ([]model.OutcomeRecord, error)
	Skills(ctx context.Context) ([]model.SkillDemand, error)
}

// Dependencies required by the HTTP handlers.
type Dependencies interface {
	FeedReader
	dedupe.Deduper

	// Enqueue hands an outcome to the background writers. It fails with a
	// queue error on backpressure or after shutdown.
	Enqueue(ctx context.Context, e model.OutcomeEvent) error

	// CachedStudents is the size of the cached student feed.
	CachedStudents() int
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	intelligenceHandler *IntelligenceHandler
	assistantHandler    *AssistantHandler
	outcomesHandler     *OutcomesHandler
	allowedOrigin       string
}

// NewServer creates the API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{env: "development", allowedOrigin: "*"}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:       NewHealthHandler(deps, cfg.env),
		statsHandler:        NewStatsHandler(statsProvider),
		intelligenceHandler: NewIntelligenceHandler(deps, cfg.mentorLimit),
		assistantHandler:    NewAssistantHandler(deps),
		outcomesHandler:     NewOutcomesHandler(deps),
		allowedOrigin:       cfg.allowedOrigin,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(path, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(path, CORSMiddleware(MetricsMiddleware(h, endpoint), s.allowedOrigin))
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleMetrics, "healthz"))
	route("/health", "health", s.healthHandler.HandleHealth)
	route("/stats", "stats", s.statsHandler.HandleStats)
	route("/skill_demand", "skill_demand", s.intelligenceHandler.HandleSkillDemand)
	route("/student_intelligence", "student_intelligence", s.intelligenceHandler.HandleStudentIntelligence)
	route("/kpi_summary", "kpi_summary", s.intelligenceHandler.HandleKPISummary)
	route("/batch_heatmap", "batch_heatmap", s.intelligenceHandler.HandleBatchHeatmap)
	route("/mentor_queue", "mentor_queue", s.intelligenceHandler.HandleMentorQueue)
	route("/assistant", "assistant", s.assistantHandler.HandleAssistant)
	route("/outcome_feedback", "outcome_feedback", s.outcomesHandler.HandlePostOutcome)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
