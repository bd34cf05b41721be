package models

import "time"

// Submission results
const (
	ResultCorrect   = "correct"
	ResultIncorrect = "incorrect"
)

// SchedulingState is the per-(device, item) scheduling memory. One row per
// pair; created lazily on the first submission and mutated only by the
// submission processor.
type SchedulingState struct {
	DeviceID          string
	ItemID            int64
	LeitnerBox        int
	TotalAttempts     int
	CorrectAttempts   int
	AverageResponseMs float64
	AccuracyWeight    float64
	LatencyWeight     float64
	StabilityWeight   float64
	PriorityScore     float64
	DueAt             time.Time
	LastResult        string
	LastPracticedAt   time.Time

	// Version guards read-modify-write cycles; the store refuses an update
	// whose version no longer matches the row.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubmissionSummary is returned to the caller after a processed submission
type SubmissionSummary struct {
	DeviceID          string
	ItemID            int64
	LeitnerBox        int
	TotalAttempts     int
	CorrectAttempts   int
	AverageResponseMs float64
	DueAt             time.Time
	PriorityScore     float64

	// CoverageScore is the fraction of tracked items not currently due,
	// in [0,1]. Progress-indicator data, never a scheduling input.
	CoverageScore float64
}
