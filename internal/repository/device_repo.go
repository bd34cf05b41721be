package repository

import (
	"database/sql"
	"time"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
)

// DeviceRepository manages the learner device registry
type DeviceRepository struct {
	db database.DBTX
}

// NewDeviceRepository creates a new device repository
func NewDeviceRepository(db database.DBTX) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// Create registers a new device
func (r *DeviceRepository) Create(device *models.Device) error {
	query := `
		INSERT INTO devices (id, secret_hash, reminder_email, active, registered_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		device.ID,
		device.SecretHash,
		device.ReminderEmail,
		device.Active,
		device.RegisteredAt,
	)
	return err
}

// Get retrieves a device by ID, or (nil, nil) when unknown
func (r *DeviceRepository) Get(deviceID string) (*models.Device, error) {
	query := `
		SELECT id, secret_hash, reminder_email, active, registered_at, last_seen_at
		FROM devices
		WHERE id = ?
	`

	device := &models.Device{}
	var lastSeen sql.NullTime

	err := r.db.QueryRow(query, deviceID).Scan(
		&device.ID,
		&device.SecretHash,
		&device.ReminderEmail,
		&device.Active,
		&device.RegisteredAt,
		&lastSeen,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if lastSeen.Valid {
		device.LastSeenAt = &lastSeen.Time
	}

	return device, nil
}

// ActiveDeviceIDs lists the devices the background sweep rebuilds queues for
func (r *DeviceRepository) ActiveDeviceIDs() ([]string, error) {
	rows, err := r.db.Query("SELECT id FROM devices WHERE active = ? ORDER BY id", true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// TouchLastSeen records device activity; called on authenticated requests
func (r *DeviceRepository) TouchLastSeen(deviceID string, at time.Time) error {
	_, err := r.db.Exec("UPDATE devices SET last_seen_at = ? WHERE id = ?", at, deviceID)
	return err
}

// WithReminderEmails lists active devices that opted into reminder emails
func (r *DeviceRepository) WithReminderEmails() ([]models.Device, error) {
	query := `
		SELECT id, secret_hash, reminder_email, active, registered_at, last_seen_at
		FROM devices
		WHERE active = ? AND reminder_email != ''
		ORDER BY id
	`

	rows, err := r.db.Query(query, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		device := models.Device{}
		var lastSeen sql.NullTime
		err := rows.Scan(
			&device.ID,
			&device.SecretHash,
			&device.ReminderEmail,
			&device.Active,
			&device.RegisteredAt,
			&lastSeen,
		)
		if err != nil {
			return nil, err
		}
		if lastSeen.Valid {
			device.LastSeenAt = &lastSeen.Time
		}
		devices = append(devices, device)
	}

	return devices, rows.Err()
}
