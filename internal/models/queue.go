package models

import "time"

// QueueItem is one entry of a built queue, carrying enough metadata for a
// client to render the prompt without a second round trip.
type QueueItem struct {
	ItemID   int64   `json:"itemId"`
	Lemma    string  `json:"lemma"`
	POS      string  `json:"pos"`
	TaskType string  `json:"taskType"`
	Prompt   string  `json:"prompt"`
	Level    string  `json:"level"`
	Priority float64 `json:"priority"`
}

// QueueSnapshot is an immutable ordered queue for one device. Snapshots are
// replaced wholesale on regeneration, never mutated in place.
type QueueSnapshot struct {
	DeviceID             string
	Version              string
	GeneratedAt          time.Time
	ValidUntil           time.Time
	GenerationDurationMs int64
	Items                []QueueItem
	ItemCount            int
}

// Fresh reports whether the snapshot may still be served at the given time
func (s *QueueSnapshot) Fresh(now time.Time) bool {
	return now.Before(s.ValidUntil)
}
