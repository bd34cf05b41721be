package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
)

// SnapshotRepository stores the current queue snapshot per device. The
// ordered item list is serialized into a single JSON column; a snapshot is
// replaced wholesale, never edited row by row.
type SnapshotRepository struct {
	db *database.DB
}

// NewSnapshotRepository creates a new queue snapshot repository
func NewSnapshotRepository(db *database.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Current retrieves the device's current snapshot, or (nil, nil) when the
// device has none yet
func (r *SnapshotRepository) Current(deviceID string) (*models.QueueSnapshot, error) {
	query := `
		SELECT device_id, version, generated_at, valid_until,
		       generation_duration_ms, item_count, items
		FROM queue_snapshots
		WHERE device_id = ?
	`

	snapshot := &models.QueueSnapshot{}
	var itemsJSON string

	err := r.db.QueryRow(query, deviceID).Scan(
		&snapshot.DeviceID,
		&snapshot.Version,
		&snapshot.GeneratedAt,
		&snapshot.ValidUntil,
		&snapshot.GenerationDurationMs,
		&snapshot.ItemCount,
		&itemsJSON,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(itemsJSON), &snapshot.Items); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot items: %w", err)
	}

	return snapshot, nil
}

// Replace swaps in a new current snapshot for the device atomically
func (r *SnapshotRepository) Replace(snapshot *models.QueueSnapshot) error {
	itemsJSON, err := json.Marshal(snapshot.Items)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot items: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM queue_snapshots WHERE device_id = ?", snapshot.DeviceID); err != nil {
		tx.Rollback()
		return err
	}

	query := `
		INSERT INTO queue_snapshots (
			device_id, version, generated_at, valid_until,
			generation_duration_ms, item_count, items
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(query,
		snapshot.DeviceID,
		snapshot.Version,
		snapshot.GeneratedAt,
		snapshot.ValidUntil,
		snapshot.GenerationDurationMs,
		snapshot.ItemCount,
		string(itemsJSON),
	)
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
