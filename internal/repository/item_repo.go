package repository

import (
	"database/sql"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
)

// ItemRepository reads the practice item catalog. The catalog is owned by
// content tooling; the scheduler treats it as read-only, Create exists for
// seeding and tests.
type ItemRepository struct {
	db database.DBTX
}

// NewItemRepository creates a new item repository
func NewItemRepository(db database.DBTX) *ItemRepository {
	return &ItemRepository{db: db}
}

const itemColumns = `
	id, lemma, pos, task_type, prompt, answer, level,
	frequency_rank, queue_cap, active, created_at
`

// Candidates returns active items matching the filter, most common first
func (r *ItemRepository) Candidates(filter models.ItemFilter) ([]models.Item, error) {
	query := "SELECT " + itemColumns + `
		FROM items
		WHERE active = ?
	`
	args := []interface{}{true}

	if filter.Level != "" {
		query += " AND level = ?"
		args = append(args, filter.Level)
	}

	query += " ORDER BY frequency_rank ASC, id ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

// Get retrieves one item by ID, or (nil, nil) when it does not exist
func (r *ItemRepository) Get(itemID int64) (*models.Item, error) {
	query := "SELECT " + itemColumns + `
		FROM items
		WHERE id = ?
	`

	item, err := scanItem(r.db.QueryRow(query, itemID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Create inserts a catalog item and assigns its ID
func (r *ItemRepository) Create(item *models.Item) error {
	query := `
		INSERT INTO items (lemma, pos, task_type, prompt, answer, level,
		                   frequency_rank, queue_cap, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(query,
		item.Lemma,
		item.POS,
		item.TaskType,
		item.Prompt,
		item.Answer,
		item.Level,
		item.FrequencyRank,
		item.QueueCap,
		item.Active,
	)
	if err != nil {
		return err
	}

	item.ID = id
	return nil
}

func scanItem(row rowScanner) (*models.Item, error) {
	item := &models.Item{}
	err := row.Scan(
		&item.ID,
		&item.Lemma,
		&item.POS,
		&item.TaskType,
		&item.Prompt,
		&item.Answer,
		&item.Level,
		&item.FrequencyRank,
		&item.QueueCap,
		&item.Active,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}
