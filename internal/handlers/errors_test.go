package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"vocabdrill/internal/scheduler"
)

func TestRespondSchedulerError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "adaptive disabled",
			err:        scheduler.ErrAdaptiveDisabled,
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "adaptive_disabled",
		},
		{
			name:       "invalid submission",
			err:        fmt.Errorf("%w: negative response time", scheduler.ErrInvalidSubmission),
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_submission",
		},
		{
			name:       "item not found",
			err:        scheduler.ErrItemNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "item_not_found",
		},
		{
			name:       "write conflict",
			err:        fmt.Errorf("failed to persist scheduling state: %w", scheduler.ErrConflict),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "conflict",
		},
		{
			name:       "unknown error",
			err:        errors.New("database exploded"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondSchedulerError(rec, tt.err, "test")

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if body.Error != tt.wantCode {
				t.Errorf("error code = %q, want %q", body.Error, tt.wantCode)
			}
		})
	}
}
