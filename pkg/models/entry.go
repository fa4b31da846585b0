package models

import "time"

// Entry statuses. Input is normalized case-insensitively; these are the
// canonical stored forms.
const (
	StatusPlanToRead = "Plan to Read"
	StatusReading    = "Reading"
	StatusPaused     = "Paused"
	StatusCompleted  = "Completed"
	StatusDropped    = "Dropped"
	StatusRereading  = "Rereading"
)

// Entry is one tracked media item. Tags and Sources are stored as JSON text
// in sqlite and unpacked on scan. Rating and TotalChapters are pointers so
// "unset" survives the round trip; an unrated entry must not count as 0.0
// when the dashboard mean is computed.
type Entry struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Author             string    `json:"author,omitempty"`
	Synopsis           string    `json:"synopsis,omitempty"`
	Notes              string    `json:"notes,omitempty"`
	Status             string    `json:"status"`
	Tags               []string  `json:"tags"`
	Rating             *float64  `json:"rating,omitempty"`
	ChaptersRead       int       `json:"chapters_read"`
	TotalChapters      *int      `json:"total_chapters,omitempty"`
	TotalRepeats       int       `json:"total_repeats,omitempty"`
	CoverURL           string    `json:"cover_url,omitempty"`
	OriginalImageURL   string    `json:"original_image_url,omitempty"`
	CompressedImageURL string    `json:"compressed_image_url,omitempty"`
	Sources            []string  `json:"sources"`
	StartDate          string    `json:"start_date,omitempty"`
	EndDate            string    `json:"end_date,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ValidStatus reports whether s is a canonical status value.
func ValidStatus(s string) bool {
	switch s {
	case StatusPlanToRead, StatusReading, StatusPaused,
		StatusCompleted, StatusDropped, StatusRereading:
		return true
	}
	return false
}
