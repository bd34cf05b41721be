package repository

import (
	"database/sql"

	"vocabdrill/internal/database"
)

// FlagRepository answers per-category adaptive scheduling flags. Categories
// without a row are enabled; the empty category is the global default.
type FlagRepository struct {
	db database.DBTX
}

// NewFlagRepository creates a new feature flag repository
func NewFlagRepository(db database.DBTX) *FlagRepository {
	return &FlagRepository{db: db}
}

// AdaptiveEnabled reports whether adaptive scheduling is on for a category
func (r *FlagRepository) AdaptiveEnabled(category string) (bool, error) {
	var enabled bool
	err := r.db.QueryRow(
		"SELECT adaptive_enabled FROM feature_flags WHERE category = ?", category,
	).Scan(&enabled)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return enabled, nil
}

// SetAdaptive switches adaptive scheduling on or off for a category
func (r *FlagRepository) SetAdaptive(category string, enabled bool) error {
	result, err := r.db.Exec(
		"UPDATE feature_flags SET adaptive_enabled = ?, updated_at = CURRENT_TIMESTAMP WHERE category = ?",
		enabled, category,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	_, err = r.db.Exec(
		"INSERT INTO feature_flags (category, adaptive_enabled) VALUES (?, ?)",
		category, enabled,
	)
	return err
}
