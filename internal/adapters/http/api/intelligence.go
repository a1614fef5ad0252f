package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/empiria/internal/domain/model"
	"github.com/okian/empiria/internal/domain/pipeline"
	"github.com/okian/empiria/pkg/metrics"
)

// IntelligenceHandler serves the computed views. Every request scores the
// whole current feed.
type IntelligenceHandler struct {
	feeds       FeedReader
	mentorLimit int
}

// NewIntelligenceHandler creates the handler. mentorLimit caps the mentor
// queue, zero meaning unlimited.
func NewIntelligenceHandler(feeds FeedReader, mentorLimit int) *IntelligenceHandler {
	return &IntelligenceHandler{feeds: feeds, mentorLimit: mentorLimit}
}

// HandleSkillDemand handles GET /skill_demand.
func (h *IntelligenceHandler) HandleSkillDemand(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_skill_demand"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	skills, err := h.feeds.Skills(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrFeed, err))
		return
	}
	writeJSON(w, http.StatusOK, skills)
}

// HandleStudentIntelligence handles GET /student_intelligence.
func (h *IntelligenceHandler) HandleStudentIntelligence(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_student_intelligence"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	students, outcomes, err := h.load(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrFeed, err))
		return
	}

	start := time.Now()
	records := pipeline.AnalyzeAll(students, outcomes)
	metrics.RecordPipelineRun("student_intelligence", sinceMs(start))
	metrics.AddStudentsScored(len(records))
	writeJSON(w, http.StatusOK, records)
}

// HandleKPISummary handles GET /kpi_summary.
func (h *IntelligenceHandler) HandleKPISummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_kpi_summary"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	students, outcomes, err := h.load(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrFeed, err))
		return
	}

	start := time.Now()
	summary := pipeline.KPISummary(students, outcomes)
	metrics.RecordPipelineRun("kpi_summary", sinceMs(start))
	metrics.UpdateStatusDistribution(string(model.StatusStable), summary.Stable)
	metrics.UpdateStatusDistribution(string(model.StatusAtRisk), summary.AtRisk)
	metrics.UpdateStatusDistribution(string(model.StatusCritical), summary.Critical)
	writeJSON(w, http.StatusOK, summary)
}

// HandleBatchHeatmap handles GET /batch_heatmap.
func (h *IntelligenceHandler) HandleBatchHeatmap(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_batch_heatmap"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	students, outcomes, err := h.load(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrFeed, err))
		return
	}

	start := time.Now()
	heatmap := pipeline.Heatmap(students, outcomes)
	metrics.RecordPipelineRun("batch_heatmap", sinceMs(start))
	writeJSON(w, http.StatusOK, heatmap)
}

// HandleMentorQueue handles GET /mentor_queue?limit=N. Without limit the
// whole queue is returned, capped by the configured maximum.
func (h *IntelligenceHandler) HandleMentorQueue(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_mentor_queue"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	limit := h.mentorLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if h.mentorLimit > 0 && n > h.mentorLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	students, outcomes, err := h.load(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrFeed, err))
		return
	}

	start := time.Now()
	queue := pipeline.MentorQueue(students, outcomes)
	metrics.RecordPipelineRun("mentor_queue", sinceMs(start))
	if limit > 0 && len(queue) > limit {
		queue = queue[:limit]
	}
	writeJSON(w, http.StatusOK, queue)
}

func (h *IntelligenceHandler) load(r *http.Request) ([]model.StudentRecord, []model.OutcomeRecord, error) {
	students, err := h.feeds.Students(r.Context())
	if err != nil {
		return nil, nil, err
	}
	outcomes, err := h.feeds.Outcomes(r.Context())
	if err != nil {
		return nil, nil, err
	}
	return students, outcomes, nil
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
