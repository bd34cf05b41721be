package scheduler

import (
	"strconv"
	"sync"
	"time"

	"vocabdrill/internal/models"
)

// fakeClock lets tests drive scheduling time explicitly
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// memStateStore is an in-memory StateStore with the same versioned-update
// semantics as the SQL implementation
type memStateStore struct {
	mu   sync.Mutex
	rows map[string]*models.SchedulingState

	// mapErr, when set for a device, fails MapForDevice to simulate a
	// store outage for that device only
	mapErr map[string]error
}

func newMemStateStore() *memStateStore {
	return &memStateStore{
		rows:   make(map[string]*models.SchedulingState),
		mapErr: make(map[string]error),
	}
}

func stateKey(deviceID string, itemID int64) string {
	return deviceID + "/" + strconv.FormatInt(itemID, 10)
}

func (s *memStateStore) Get(deviceID string, itemID int64) (*models.SchedulingState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[stateKey(deviceID, itemID)]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (s *memStateStore) MapForDevice(deviceID string) (map[int64]*models.SchedulingState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mapErr[deviceID]; err != nil {
		return nil, err
	}
	result := make(map[int64]*models.SchedulingState)
	for _, row := range s.rows {
		if row.DeviceID == deviceID {
			copied := *row
			result[row.ItemID] = &copied
		}
	}
	return result, nil
}

func (s *memStateStore) Create(state *models.SchedulingState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := stateKey(state.DeviceID, state.ItemID)
	if _, ok := s.rows[key]; ok {
		return ErrConflict
	}
	state.Version = 1
	copied := *state
	s.rows[key] = &copied
	return nil
}

func (s *memStateStore) Update(state *models.SchedulingState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := stateKey(state.DeviceID, state.ItemID)
	existing, ok := s.rows[key]
	if !ok || existing.Version != state.Version {
		return ErrConflict
	}
	state.Version++
	copied := *state
	s.rows[key] = &copied
	return nil
}

func (s *memStateStore) Counts(deviceID string, now time.Time) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total, due := 0, 0
	for _, row := range s.rows {
		if row.DeviceID != deviceID {
			continue
		}
		total++
		if !now.Before(row.DueAt) {
			due++
		}
	}
	return total, due, nil
}

// memSnapshotStore is an in-memory SnapshotStore that counts Replace calls
// so tests can detect silent regenerations
type memSnapshotStore struct {
	mu           sync.Mutex
	rows         map[string]*models.QueueSnapshot
	replaceCalls int
}

func newMemSnapshotStore() *memSnapshotStore {
	return &memSnapshotStore{rows: make(map[string]*models.QueueSnapshot)}
}

func (s *memSnapshotStore) Current(deviceID string) (*models.QueueSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.rows[deviceID]
	if !ok {
		return nil, nil
	}
	return snapshot, nil
}

func (s *memSnapshotStore) Replace(snapshot *models.QueueSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[snapshot.DeviceID] = snapshot
	s.replaceCalls++
	return nil
}

func (s *memSnapshotStore) replaced() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceCalls
}

// memCatalog is an in-memory item bank
type memCatalog struct {
	items []models.Item
}

func (c *memCatalog) Candidates(filter models.ItemFilter) ([]models.Item, error) {
	var result []models.Item
	for _, item := range c.items {
		if !item.Active {
			continue
		}
		if filter.Level != "" && item.Level != filter.Level {
			continue
		}
		result = append(result, item)
		if filter.Limit > 0 && len(result) >= filter.Limit {
			break
		}
	}
	return result, nil
}

func (c *memCatalog) Get(itemID int64) (*models.Item, error) {
	for _, item := range c.items {
		if item.ID == itemID {
			copied := item
			return &copied, nil
		}
	}
	return nil, nil
}

// memFlags defaults every category to enabled unless listed
type memFlags struct {
	disabled map[string]bool
}

func (f *memFlags) AdaptiveEnabled(category string) (bool, error) {
	return !f.disabled[category], nil
}

// memDevices is a fixed active-device list
type memDevices struct {
	ids []string
}

func (d *memDevices) ActiveDeviceIDs() ([]string, error) {
	return d.ids, nil
}

// testItems is a small catalog shared by the scheduler tests
func testItems() []models.Item {
	return []models.Item{
		{ID: 1, Lemma: "laufen", POS: "verb", TaskType: "conjugation", Prompt: "ich ___ (laufen)", Level: "a1", FrequencyRank: 120, QueueCap: 3, Active: true},
		{ID: 2, Lemma: "gehen", POS: "verb", TaskType: "conjugation", Prompt: "du ___ (gehen)", Level: "a1", FrequencyRank: 40, QueueCap: 3, Active: true},
		{ID: 3, Lemma: "Haus", POS: "noun", TaskType: "declension", Prompt: "die ___ (Haus, pl.)", Level: "a1", FrequencyRank: 300, QueueCap: 2, Active: true},
		{ID: 4, Lemma: "schnell", POS: "adjective", TaskType: "ending", Prompt: "ein ___ Auto (schnell)", Level: "a2", FrequencyRank: 800, QueueCap: 2, Active: true},
		{ID: 5, Lemma: "alt", POS: "adjective", TaskType: "ending", Prompt: "der ___ Mann (alt)", Level: "a2", FrequencyRank: 500, QueueCap: 2, Active: true},
		{ID: 6, Lemma: "Baum", POS: "noun", TaskType: "declension", Prompt: "des ___ (Baum)", Level: "a1", FrequencyRank: 1500, QueueCap: 2, Active: false},
	}
}
