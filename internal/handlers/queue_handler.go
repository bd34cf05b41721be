package handlers

import (
	"context"
	"net/http"

	"vocabdrill/internal/models"
)

type queueSource interface {
	GetQueue(ctx context.Context, deviceID, levelHint string) (*models.QueueSnapshot, error)
}

// QueueHandler serves the per-device practice queue
type QueueHandler struct {
	queues queueSource
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(queues queueSource) *QueueHandler {
	return &QueueHandler{queues: queues}
}

// GetQueue handles GET /api/queue
func (h *QueueHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	deviceID := DeviceIDFromContext(r.Context())
	if deviceID == "" {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "Missing device identity", "", nil)
		return
	}

	level := r.URL.Query().Get("level")

	snapshot, err := h.queues.GetQueue(r.Context(), deviceID, level)
	if err != nil {
		respondSchedulerError(w, err, "Error building practice queue")
		return
	}

	writeJSON(w, http.StatusOK, newQueueResponse(snapshot))
}
