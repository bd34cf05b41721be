package repository

import (
	"database/sql"
	"time"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
	"vocabdrill/internal/scheduler"
)

// StateRepository persists per-(device, item) scheduling state. Updates are
// guarded by a version column so two racing writers can never lose an
// increment: the row refuses an update carrying a stale version.
type StateRepository struct {
	db database.DBTX
}

// NewStateRepository creates a new scheduling-state repository
func NewStateRepository(db database.DBTX) *StateRepository {
	return &StateRepository{db: db}
}

const stateColumns = `
	device_id, item_id, leitner_box, total_attempts, correct_attempts,
	average_response_ms, accuracy_weight, latency_weight, stability_weight,
	priority_score, due_at, last_result, last_practiced_at, version,
	created_at, updated_at
`

// Get retrieves the state for one (device, item) pair, or (nil, nil) when
// the pair has never been practiced
func (r *StateRepository) Get(deviceID string, itemID int64) (*models.SchedulingState, error) {
	query := "SELECT " + stateColumns + `
		FROM scheduling_states
		WHERE device_id = ? AND item_id = ?
	`

	state, err := scanState(r.db.QueryRow(query, deviceID, itemID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

// MapForDevice retrieves all scheduling state for a device keyed by item ID
func (r *StateRepository) MapForDevice(deviceID string) (map[int64]*models.SchedulingState, error) {
	query := "SELECT " + stateColumns + `
		FROM scheduling_states
		WHERE device_id = ?
	`

	rows, err := r.db.Query(query, deviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	states := make(map[int64]*models.SchedulingState)
	for rows.Next() {
		state, err := scanState(rows)
		if err != nil {
			return nil, err
		}
		states[state.ItemID] = state
	}

	return states, rows.Err()
}

// Create inserts a brand-new state row at version 1. A concurrent insert of
// the same pair surfaces as ErrConflict so the caller can re-read.
func (r *StateRepository) Create(state *models.SchedulingState) error {
	query := `
		INSERT INTO scheduling_states (
			device_id, item_id, leitner_box, total_attempts, correct_attempts,
			average_response_ms, accuracy_weight, latency_weight, stability_weight,
			priority_score, due_at, last_result, last_practiced_at, version,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
	`

	_, err := r.db.Exec(query,
		state.DeviceID,
		state.ItemID,
		state.LeitnerBox,
		state.TotalAttempts,
		state.CorrectAttempts,
		state.AverageResponseMs,
		state.AccuracyWeight,
		state.LatencyWeight,
		state.StabilityWeight,
		state.PriorityScore,
		state.DueAt,
		state.LastResult,
		nullableTime(state.LastPracticedAt),
		state.CreatedAt,
		state.UpdatedAt,
	)
	if err != nil {
		// The unique (device_id, item_id) key is the only way this insert
		// fails under normal operation; confirm before reporting a conflict
		if existing, getErr := r.Get(state.DeviceID, state.ItemID); getErr == nil && existing != nil {
			return scheduler.ErrConflict
		}
		return err
	}

	state.Version = 1
	return nil
}

// Update persists a modified state only if the caller still holds the
// current version, bumping it on success
func (r *StateRepository) Update(state *models.SchedulingState) error {
	query := `
		UPDATE scheduling_states
		SET leitner_box = ?, total_attempts = ?, correct_attempts = ?,
		    average_response_ms = ?, accuracy_weight = ?, latency_weight = ?,
		    stability_weight = ?, priority_score = ?, due_at = ?,
		    last_result = ?, last_practiced_at = ?, updated_at = ?,
		    version = version + 1
		WHERE device_id = ? AND item_id = ? AND version = ?
	`

	result, err := r.db.Exec(query,
		state.LeitnerBox,
		state.TotalAttempts,
		state.CorrectAttempts,
		state.AverageResponseMs,
		state.AccuracyWeight,
		state.LatencyWeight,
		state.StabilityWeight,
		state.PriorityScore,
		state.DueAt,
		state.LastResult,
		nullableTime(state.LastPracticedAt),
		state.UpdatedAt,
		state.DeviceID,
		state.ItemID,
		state.Version,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return scheduler.ErrConflict
	}

	state.Version++
	return nil
}

// Counts reports how many items a device tracks and how many are due
func (r *StateRepository) Counts(deviceID string, now time.Time) (int, int, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN due_at <= ? THEN 1 ELSE 0 END), 0)
		FROM scheduling_states
		WHERE device_id = ?
	`

	var total, due int
	err := r.db.QueryRow(query, now, deviceID).Scan(&total, &due)
	return total, due, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanState(row rowScanner) (*models.SchedulingState, error) {
	state := &models.SchedulingState{}
	var lastPracticedAt sql.NullTime

	err := row.Scan(
		&state.DeviceID,
		&state.ItemID,
		&state.LeitnerBox,
		&state.TotalAttempts,
		&state.CorrectAttempts,
		&state.AverageResponseMs,
		&state.AccuracyWeight,
		&state.LatencyWeight,
		&state.StabilityWeight,
		&state.PriorityScore,
		&state.DueAt,
		&state.LastResult,
		&lastPracticedAt,
		&state.Version,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastPracticedAt.Valid {
		state.LastPracticedAt = lastPracticedAt.Time
	}

	return state, nil
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
