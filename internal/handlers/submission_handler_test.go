package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vocabdrill/internal/models"
	"vocabdrill/internal/scheduler"
)

type fakeProcessor struct {
	summary *models.SubmissionSummary
	err     error

	lastDeviceID    string
	lastItemID      int64
	lastResult      string
	lastSubmittedAt time.Time
}

func (f *fakeProcessor) Process(ctx context.Context, deviceID string, itemID int64, result string, responseMs int64, submittedAt time.Time) (*models.SubmissionSummary, error) {
	f.lastDeviceID = deviceID
	f.lastItemID = itemID
	f.lastResult = result
	f.lastSubmittedAt = submittedAt
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func submitRequest(deviceID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/submissions", strings.NewReader(body))
	if deviceID != "" {
		ctx := context.WithValue(req.Context(), DeviceContextKey, deviceID)
		req = req.WithContext(ctx)
	}
	return req
}

func TestSubmit(t *testing.T) {
	due := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	processor := &fakeProcessor{summary: &models.SubmissionSummary{
		DeviceID:      "d1",
		ItemID:        7,
		LeitnerBox:    2,
		TotalAttempts: 1,
		DueAt:         due,
		CoverageScore: 0.5,
	}}

	handler := NewSubmissionHandler(processor)
	rec := httptest.NewRecorder()
	body := `{"itemId":7,"result":"correct","responseMs":3100,"submittedAt":"2025-06-01T12:00:00Z"}`
	handler.Submit(rec, submitRequest("d1", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if processor.lastDeviceID != "d1" || processor.lastItemID != 7 || processor.lastResult != "correct" {
		t.Errorf("processor called with deviceID=%q itemID=%d result=%q",
			processor.lastDeviceID, processor.lastItemID, processor.lastResult)
	}

	var resp submissionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if resp.LeitnerBox != 2 {
		t.Errorf("leitnerBox = %d, want 2", resp.LeitnerBox)
	}
	if !resp.DueAt.Equal(due) {
		t.Errorf("dueAt = %v, want %v", resp.DueAt, due)
	}
	if resp.CoverageScore != 0.5 {
		t.Errorf("coverageScore = %v, want 0.5", resp.CoverageScore)
	}
}

func TestSubmitDefaultsTimestamp(t *testing.T) {
	processor := &fakeProcessor{summary: &models.SubmissionSummary{}}
	handler := NewSubmissionHandler(processor)

	rec := httptest.NewRecorder()
	handler.Submit(rec, submitRequest("d1", `{"itemId":7,"result":"correct","responseMs":100}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if processor.lastSubmittedAt.IsZero() {
		t.Error("omitted submittedAt should default to server time")
	}
}

func TestSubmitErrors(t *testing.T) {
	tests := []struct {
		name       string
		deviceID   string
		body       string
		err        error
		wantStatus int
	}{
		{
			name:       "missing device identity",
			body:       `{"itemId":7,"result":"correct"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed body",
			deviceID:   "d1",
			body:       `{"itemId":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid submission",
			deviceID:   "d1",
			body:       `{"itemId":7,"result":"maybe"}`,
			err:        scheduler.ErrInvalidSubmission,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown item",
			deviceID:   "d1",
			body:       `{"itemId":999,"result":"correct"}`,
			err:        scheduler.ErrItemNotFound,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewSubmissionHandler(&fakeProcessor{err: tt.err})
			rec := httptest.NewRecorder()
			handler.Submit(rec, submitRequest(tt.deviceID, tt.body))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
