package scheduler

import (
	"time"

	"vocabdrill/internal/models"
)

// StateStore is the durable per-(device, item) scheduling record store.
// Lookups for missing records return (nil, nil), not an error.
type StateStore interface {
	Get(deviceID string, itemID int64) (*models.SchedulingState, error)

	// MapForDevice returns all records for a device keyed by item ID
	MapForDevice(deviceID string) (map[int64]*models.SchedulingState, error)

	// Create inserts a new record; a duplicate (device, item) pair fails
	// with ErrConflict
	Create(state *models.SchedulingState) error

	// Update persists a modified record only if state.Version still matches
	// the stored row, bumping the version on success; otherwise ErrConflict
	Update(state *models.SchedulingState) error

	// Counts reports how many records the device has and how many of them
	// are due at the given time
	Counts(deviceID string, now time.Time) (total, due int, err error)
}

// SnapshotStore persists the current queue snapshot per device.
// Current returns (nil, nil) when the device has no snapshot yet.
type SnapshotStore interface {
	Current(deviceID string) (*models.QueueSnapshot, error)
	Replace(snapshot *models.QueueSnapshot) error
}

// Catalog is the item bank, owned outside the scheduler
type Catalog interface {
	Candidates(filter models.ItemFilter) ([]models.Item, error)
	Get(itemID int64) (*models.Item, error)
}

// FlagSource answers whether adaptive scheduling is enabled for a category.
// The empty category is the global default.
type FlagSource interface {
	AdaptiveEnabled(category string) (bool, error)
}

// DeviceSource lists devices the background sweep should rebuild queues for
type DeviceSource interface {
	ActiveDeviceIDs() ([]string, error)
}
