package models

import "time"

// Device is one learner client. Devices authenticate with a generated
// secret; the hash is stored, never the secret itself.
type Device struct {
	ID            string
	SecretHash    string
	ReminderEmail string
	Active        bool
	RegisteredAt  time.Time
	LastSeenAt    *time.Time
}
