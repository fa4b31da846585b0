package entries

import "mangashelf/pkg/models"

// ApplyIncrement bumps chapters_read by one and applies the opportunistic
// status transitions: first chapter moves a planned entry to Reading and
// stamps the start date, reaching the total marks it Completed and stamps
// the end date. A reread that reaches the total instead counts one more
// finished cycle and winds the counter back to zero for the next pass.
// Dates already set by hand are never overwritten.
func ApplyIncrement(e *models.Entry, today string) (completed bool) {
	e.ChaptersRead++

	if e.Status == models.StatusPlanToRead && e.ChaptersRead == 1 {
		e.Status = models.StatusReading
		if e.StartDate == "" {
			e.StartDate = today
		}
	}

	if e.TotalChapters == nil || *e.TotalChapters <= 0 || e.ChaptersRead < *e.TotalChapters {
		return false
	}

	if e.Status == models.StatusRereading {
		e.TotalRepeats++
		e.ChaptersRead = 0
		return true
	}

	e.Status = models.StatusCompleted
	if e.EndDate == "" {
		e.EndDate = today
	}
	return true
}
