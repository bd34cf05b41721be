package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"vocabdrill/internal/scheduler"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, code, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	writeJSON(w, status, errorResponse{Error: code, Message: userMsg})
}

// respondSchedulerError translates scheduler errors into HTTP responses.
// Adaptive-off and conflict outcomes are retryable from the client's view,
// so they map to 503 rather than a hard failure.
func respondSchedulerError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, scheduler.ErrAdaptiveDisabled):
		respondWithError(w, http.StatusServiceUnavailable, "adaptive_disabled",
			"Adaptive scheduling is currently disabled", "", nil)
	case errors.Is(err, scheduler.ErrInvalidSubmission):
		respondWithError(w, http.StatusBadRequest, "invalid_submission",
			err.Error(), "", nil)
	case errors.Is(err, scheduler.ErrItemNotFound):
		respondWithError(w, http.StatusNotFound, "item_not_found",
			"Unknown practice item", "", nil)
	case errors.Is(err, scheduler.ErrConflict):
		respondWithError(w, http.StatusServiceUnavailable, "conflict",
			"Submission lost a write race, please retry", logMsg, err)
	default:
		respondWithError(w, http.StatusInternalServerError, "internal_error",
			"Internal server error", logMsg, err)
	}
}
