package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"vocabdrill/internal/models"
)

type submissionProcessor interface {
	Process(ctx context.Context, deviceID string, itemID int64, result string, responseMs int64, submittedAt time.Time) (*models.SubmissionSummary, error)
}

// SubmissionHandler accepts practice results
type SubmissionHandler struct {
	processor submissionProcessor
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(processor submissionProcessor) *SubmissionHandler {
	return &SubmissionHandler{processor: processor}
}

// Submit handles POST /api/submissions
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	deviceID := DeviceIDFromContext(r.Context())
	if deviceID == "" {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "Missing device identity", "", nil)
		return
	}

	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body", "", nil)
		return
	}

	// Clients may omit the timestamp; server receipt time is close enough
	if req.SubmittedAt.IsZero() {
		req.SubmittedAt = time.Now().UTC()
	}

	summary, err := h.processor.Process(r.Context(), deviceID, req.ItemID, req.Result, req.ResponseMs, req.SubmittedAt)
	if err != nil {
		respondSchedulerError(w, err, "Error processing submission")
		return
	}

	writeJSON(w, http.StatusOK, newSubmissionResponse(summary))
}
