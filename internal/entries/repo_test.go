package entries

import (
	"context"
	"database/sql"
	"testing"

	"mangashelf/pkg/database"
	"mangashelf/pkg/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func rating(v float64) *float64 { return &v }
func chapters(n int) *int       { return &n }

func TestRepoCRUD(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	e := models.Entry{
		ID:            "e1",
		Title:         "Yokohama Kaidashi Kikou",
		Author:        "Hitoshi Ashinano",
		Status:        models.StatusReading,
		Tags:          []string{"slice of life", "sci-fi"},
		Rating:        rating(9.5),
		ChaptersRead:  30,
		TotalChapters: chapters(140),
		Sources:       []string{"https://example.com/ykk"},
		StartDate:     "2025-01-15",
	}
	if err := repo.Create(ctx, e); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(ctx, "e1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("get: entry missing")
	}
	if got.Title != e.Title || got.Author != e.Author || got.Status != e.Status {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
	if got.Rating == nil || *got.Rating != 9.5 {
		t.Fatalf("rating = %v, want 9.5", got.Rating)
	}
	if got.TotalChapters == nil || *got.TotalChapters != 140 {
		t.Fatalf("total_chapters = %v, want 140", got.TotalChapters)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "slice of life" {
		t.Fatalf("tags = %v", got.Tags)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatal("timestamps not assigned")
	}

	got.Notes = "rereading favorite chapters"
	got.ChaptersRead = 31
	ok, err := repo.Update(ctx, *got)
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}

	after, err := repo.GetByID(ctx, "e1")
	if err != nil || after == nil {
		t.Fatalf("get after update: %v", err)
	}
	if after.Notes != "rereading favorite chapters" || after.ChaptersRead != 31 {
		t.Fatalf("update not persisted: %+v", after)
	}

	ok, err = repo.Delete(ctx, "e1")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	gone, err := repo.GetByID(ctx, "e1")
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if gone != nil {
		t.Fatal("entry still present after delete")
	}

	ok, _ = repo.Delete(ctx, "e1")
	if ok {
		t.Fatal("second delete reported rows affected")
	}
}

func TestRepoListFilters(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	seed := []models.Entry{
		{ID: "a", Title: "Alpha", Author: "Ann", Status: models.StatusReading, Tags: []string{"romance"}},
		{ID: "b", Title: "Beta", Author: "Bob", Status: models.StatusCompleted, Tags: []string{"comedy"}},
		{ID: "c", Title: "Gamma Alpha", Author: "Cid", Status: models.StatusReading, Tags: []string{"romance", "drama"}},
	}
	for _, e := range seed {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("seed %s: %v", e.ID, err)
		}
	}

	all, err := repo.List(ctx, ListQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("list all = %d, want 3", len(all))
	}

	reading, err := repo.List(ctx, ListQuery{Status: "reading"})
	if err != nil {
		t.Fatalf("list status: %v", err)
	}
	if len(reading) != 2 {
		t.Fatalf("status filter = %d, want 2", len(reading))
	}

	romance, err := repo.List(ctx, ListQuery{Tag: "romance"})
	if err != nil {
		t.Fatalf("list tag: %v", err)
	}
	if len(romance) != 2 {
		t.Fatalf("tag filter = %d, want 2", len(romance))
	}

	// tag match is quote-delimited inside the JSON text
	drama, err := repo.List(ctx, ListQuery{Tag: "rama"})
	if err != nil {
		t.Fatalf("list partial tag: %v", err)
	}
	if len(drama) != 0 {
		t.Fatalf("partial tag must not match, got %d", len(drama))
	}

	alpha, err := repo.List(ctx, ListQuery{Q: "alpha"})
	if err != nil {
		t.Fatalf("list q: %v", err)
	}
	if len(alpha) != 2 {
		t.Fatalf("keyword filter = %d, want 2", len(alpha))
	}

	n, err := repo.Count(ctx, ListQuery{Status: "reading"})
	if err != nil || n != 2 {
		t.Fatalf("count = %d err=%v, want 2", n, err)
	}
}

func TestRepoAggregate(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	empty, err := repo.Aggregate(ctx)
	if err != nil {
		t.Fatalf("aggregate empty: %v", err)
	}
	if empty.Count != 0 || empty.ChaptersRead != 0 || empty.MeanScore != 0 || empty.RatedCount != 0 {
		t.Fatalf("aggregate empty = %+v", empty)
	}

	seed := []models.Entry{
		{ID: "a", Title: "A", Status: models.StatusCompleted, ChaptersRead: 10, Rating: rating(8)},
		{ID: "b", Title: "B", Status: models.StatusReading, ChaptersRead: 5, Rating: rating(6)},
		{ID: "c", Title: "C", Status: models.StatusPlanToRead, ChaptersRead: 0}, // unrated
	}
	for _, e := range seed {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("seed %s: %v", e.ID, err)
		}
	}

	got, err := repo.Aggregate(ctx)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if got.Count != 3 {
		t.Fatalf("count = %d, want 3", got.Count)
	}
	if got.ChaptersRead != 15 {
		t.Fatalf("chapters = %d, want 15", got.ChaptersRead)
	}
	if got.RatedCount != 2 {
		t.Fatalf("rated = %d, want 2", got.RatedCount)
	}
	// unrated entry must not drag the mean: (8+6)/2, not /3
	if got.MeanScore != 7 {
		t.Fatalf("mean = %v, want 7", got.MeanScore)
	}
}
