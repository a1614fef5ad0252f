package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/empiria/internal/adapters/mq/queue"
	"github.com/okian/empiria/internal/domain/dedupe"
	"github.com/okian/empiria/internal/domain/model"
	"github.com/okian/empiria/pkg/metrics"
)

// OutcomeDependencies defines what the outcome intake needs.
type OutcomeDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, e model.OutcomeEvent) error
}

// OutcomesHandler records placement outcomes.
type OutcomesHandler struct {
	deps OutcomeDependencies
	now  func() time.Time
}

// NewOutcomesHandler creates an outcomes handler.
func NewOutcomesHandler(deps OutcomeDependencies) *OutcomesHandler {
	return &OutcomesHandler{deps: deps, now: time.Now}
}

// cell accepts a JSON string, number, boolean or null and keeps its text,
// so sheet-style payloads like {"salary": 450000} are stored as written.
type cell string

func (c *cell) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*c = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = cell(s)
	case len(b) > 0 && (b[0] == '{' || b[0] == '['):
		return errors.New("expected a scalar value")
	default:
		*c = cell(b)
	}
	return nil
}

type outcomeRequest struct {
	FeedbackID string `json:"feedback_id"`
	ID         cell   `json:"id"`
	CertType   cell   `json:"cert_type"`
	Placed     cell   `json:"placed"`
	Salary     cell   `json:"salary"`
	Days       cell   `json:"days"`
}

type outcomeResponse struct {
	Status     string `json:"status"`
	FeedbackID string `json:"feedback_id"`
	Duplicate  bool   `json:"duplicate"`
}

// HandlePostOutcome handles POST /outcome_feedback.
func (h *OutcomesHandler) HandlePostOutcome(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_outcome"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req outcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	feedbackID := strings.TrimSpace(req.FeedbackID)
	if feedbackID == "" {
		feedbackID = uuid.NewString()
	}

	ctx := r.Context()
	if h.deps.SeenAndRecord(ctx, feedbackID) {
		metrics.RecordOutcomeDuplicate()
		writeJSON(w, http.StatusOK, outcomeResponse{Status: "duplicate", FeedbackID: feedbackID, Duplicate: true})
		return
	}

	event := model.OutcomeEvent{
		FeedbackID: feedbackID,
		Outcome: model.OutcomeRecord{
			ID:       string(req.ID),
			CertType: string(req.CertType),
			Placed:   string(req.Placed),
			Salary:   string(req.Salary),
			Days:     string(req.Days),
		},
		ReceivedAt: h.now(),
	}
	if err := h.deps.Enqueue(ctx, event); err != nil {
		h.deps.Unrecord(ctx, feedbackID)
		if errors.Is(err, queue.ErrFull) {
			writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
			return
		}
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		return
	}
	writeJSON(w, http.StatusAccepted, outcomeResponse{Status: "Recorded", FeedbackID: feedbackID})
}
