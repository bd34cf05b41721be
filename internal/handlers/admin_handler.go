package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"vocabdrill/internal/scheduler"
)

type queueSweeper interface {
	RegenerateAll(ctx context.Context) (scheduler.SweepResult, error)
}

type flagToggler interface {
	SetAdaptive(category string, enabled bool) error
}

// AdminHandler exposes operational endpoints guarded by the admin secret
type AdminHandler struct {
	queues queueSweeper
	flags  flagToggler
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(queues queueSweeper, flags flagToggler) *AdminHandler {
	return &AdminHandler{
		queues: queues,
		flags:  flags,
	}
}

// RegenerateQueues handles POST /admin/queues/regenerate
func (h *AdminHandler) RegenerateQueues(w http.ResponseWriter, r *http.Request) {
	result, err := h.queues.RegenerateAll(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal_error", "Queue regeneration failed", "Error regenerating queues", err)
		return
	}

	writeJSON(w, http.StatusOK, sweepResponse{
		Processed: result.Processed,
		Failed:    result.Failed,
	})
}

// SetFlag handles POST /admin/flags/{category}. The reserved category
// "global" toggles the default for all categories without a flag of their own.
func (h *AdminHandler) SetFlag(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	if category == "" {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Missing flag category", "", nil)
		return
	}
	if category == "global" {
		category = ""
	}

	var req flagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body", "", nil)
		return
	}

	if err := h.flags.SetAdaptive(category, req.Enabled); err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal_error", "Failed to update flag", "Error updating feature flag", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
