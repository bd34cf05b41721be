package models

import "time"

// Item is one practice prompt: a task type bound to a lexeme.
// The catalog owns items; the scheduler only reads them.
type Item struct {
	ID            int64
	Lemma         string
	POS           string
	TaskType      string
	Prompt        string
	Answer        string
	Level         string
	FrequencyRank int
	QueueCap      int
	Active        bool
	CreatedAt     time.Time
}

// ItemFilter narrows a candidate fetch
type ItemFilter struct {
	Level string
	Limit int
}
