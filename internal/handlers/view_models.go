package handlers

import (
	"time"

	"vocabdrill/internal/models"
)

type registerRequest struct {
	ReminderEmail string `json:"reminderEmail"`
}

type registerResponse struct {
	DeviceID string `json:"deviceId"`
	// Secret is returned exactly once; the server keeps only its hash
	Secret    string `json:"secret"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresInSeconds"`
}

type tokenRequest struct {
	DeviceID string `json:"deviceId"`
	Secret   string `json:"secret"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresInSeconds"`
}

type submissionRequest struct {
	ItemID      int64     `json:"itemId"`
	Result      string    `json:"result"`
	ResponseMs  int64     `json:"responseMs"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type submissionResponse struct {
	ItemID            int64     `json:"itemId"`
	LeitnerBox        int       `json:"leitnerBox"`
	TotalAttempts     int       `json:"totalAttempts"`
	CorrectAttempts   int       `json:"correctAttempts"`
	AverageResponseMs float64   `json:"averageResponseMs"`
	DueAt             time.Time `json:"dueAt"`
	PriorityScore     float64   `json:"priorityScore"`
	CoverageScore     float64   `json:"coverageScore"`
}

type queueResponse struct {
	Version     string             `json:"version"`
	GeneratedAt time.Time          `json:"generatedAt"`
	ValidUntil  time.Time          `json:"validUntil"`
	Items       []models.QueueItem `json:"items"`
}

type flagRequest struct {
	Enabled bool `json:"enabled"`
}

type sweepResponse struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

func newQueueResponse(snapshot *models.QueueSnapshot) queueResponse {
	items := snapshot.Items
	if items == nil {
		items = []models.QueueItem{}
	}
	return queueResponse{
		Version:     snapshot.Version,
		GeneratedAt: snapshot.GeneratedAt,
		ValidUntil:  snapshot.ValidUntil,
		Items:       items,
	}
}

func newSubmissionResponse(summary *models.SubmissionSummary) submissionResponse {
	return submissionResponse{
		ItemID:            summary.ItemID,
		LeitnerBox:        summary.LeitnerBox,
		TotalAttempts:     summary.TotalAttempts,
		CorrectAttempts:   summary.CorrectAttempts,
		AverageResponseMs: summary.AverageResponseMs,
		DueAt:             summary.DueAt,
		PriorityScore:     summary.PriorityScore,
		CoverageScore:     summary.CoverageScore,
	}
}
