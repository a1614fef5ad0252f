package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/empiria/internal/domain/pipeline"
)

// AssistantHandler answers keyword questions about the cohort.
type AssistantHandler struct {
	feeds FeedReader
}

// NewAssistantHandler creates an assistant handler.
func NewAssistantHandler(feeds FeedReader) *AssistantHandler {
	return &AssistantHandler{feeds: feeds}
}

type assistantRequest struct {
	Question string `json:"question"`
}

// HandleAssistant handles POST /assistant.
func (h *AssistantHandler) HandleAssistant(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_assistant"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req assistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	ctx := r.Context()
	var feeds pipeline.Feeds
	var err error
	if feeds.Students, err = h.feeds.Students(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrFeed, err))
		return
	}
	if feeds.Outcomes, err = h.feeds.Outcomes(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrFeed, err))
		return
	}
	if feeds.Skills, err = h.feeds.Skills(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrFeed, err))
		return
	}
	writeJSON(w, http.StatusOK, pipeline.Assistant(req.Question, feeds))
}
