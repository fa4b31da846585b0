package entries

import (
	"testing"

	"mangashelf/pkg/models"
)

func TestApplyIncrementStartsReading(t *testing.T) {
	e := &models.Entry{Status: models.StatusPlanToRead}

	completed := ApplyIncrement(e, "2025-06-01")

	if completed {
		t.Fatal("should not be completed")
	}
	if e.ChaptersRead != 1 {
		t.Fatalf("chapters_read = %d, want 1", e.ChaptersRead)
	}
	if e.Status != models.StatusReading {
		t.Fatalf("status = %q, want %q", e.Status, models.StatusReading)
	}
	if e.StartDate != "2025-06-01" {
		t.Fatalf("start_date = %q, want stamped", e.StartDate)
	}
}

func TestApplyIncrementKeepsExistingStartDate(t *testing.T) {
	e := &models.Entry{Status: models.StatusPlanToRead, StartDate: "2024-01-01"}

	ApplyIncrement(e, "2025-06-01")

	if e.StartDate != "2024-01-01" {
		t.Fatalf("start_date = %q, manual date must survive", e.StartDate)
	}
}

func TestApplyIncrementCompletes(t *testing.T) {
	total := 12
	e := &models.Entry{
		Status:        models.StatusReading,
		ChaptersRead:  11,
		TotalChapters: &total,
	}

	completed := ApplyIncrement(e, "2025-06-01")

	if !completed {
		t.Fatal("should be completed")
	}
	if e.Status != models.StatusCompleted {
		t.Fatalf("status = %q, want %q", e.Status, models.StatusCompleted)
	}
	if e.EndDate != "2025-06-01" {
		t.Fatalf("end_date = %q, want stamped", e.EndDate)
	}
}

func TestApplyIncrementSingleChapterPlanToCompleted(t *testing.T) {
	total := 1
	e := &models.Entry{Status: models.StatusPlanToRead, TotalChapters: &total}

	completed := ApplyIncrement(e, "2025-06-01")

	if !completed {
		t.Fatal("one-shot should complete on the first increment")
	}
	if e.Status != models.StatusCompleted {
		t.Fatalf("status = %q, want %q", e.Status, models.StatusCompleted)
	}
	if e.StartDate != "2025-06-01" || e.EndDate != "2025-06-01" {
		t.Fatalf("dates = %q/%q, want both stamped", e.StartDate, e.EndDate)
	}
}

func TestApplyIncrementRereadCycle(t *testing.T) {
	total := 10
	e := &models.Entry{
		Status:        models.StatusRereading,
		ChaptersRead:  9,
		TotalChapters: &total,
		TotalRepeats:  2,
	}

	completed := ApplyIncrement(e, "2025-06-01")

	if !completed {
		t.Fatal("finishing a reread cycle counts as completed")
	}
	if e.TotalRepeats != 3 {
		t.Fatalf("total_repeats = %d, want 3", e.TotalRepeats)
	}
	if e.ChaptersRead != 0 {
		t.Fatalf("chapters_read = %d, want reset to 0", e.ChaptersRead)
	}
	if e.Status != models.StatusRereading {
		t.Fatalf("status = %q, want still %q", e.Status, models.StatusRereading)
	}
}

func TestApplyIncrementNoTotal(t *testing.T) {
	e := &models.Entry{Status: models.StatusReading, ChaptersRead: 41}

	completed := ApplyIncrement(e, "2025-06-01")

	if completed {
		t.Fatal("no total set, nothing to complete")
	}
	if e.ChaptersRead != 42 {
		t.Fatalf("chapters_read = %d, want 42", e.ChaptersRead)
	}
}
