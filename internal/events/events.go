package events

import "time"

type EntryEvent struct {
	Type         string    `json:"type"` // "entry.create", "entry.update" or "entry.delete"
	EntryID      string    `json:"entry_id"`
	Title        string    `json:"title,omitempty"`
	Status       string    `json:"status,omitempty"`
	ChaptersRead int       `json:"chapters_read,omitempty"`
	At           time.Time `json:"at"`
}
