package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"mangashelf/pkg/database"
)

func main() {
	var (
		entriesOut = flag.String("entries", "data/entries.csv", "output CSV path for entries")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportEntries(ctx, db, *entriesOut); err != nil {
		log.Fatalf("export entries failed: %v", err)
	}

	log.Printf("exported entries to %s", *entriesOut)
}

func exportEntries(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"id", "title", "author", "synopsis", "notes", "status", "tags", "rating",
		"chapters_read", "total_chapters", "total_repeats",
		"cover_url", "original_image_url", "compressed_image_url",
		"sources", "start_date", "end_date", "created_at", "updated_at",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, title, author, synopsis, notes, status, tags, rating,
		       chapters_read, total_chapters, total_repeats,
		       cover_url, original_image_url, compressed_image_url,
		       sources, start_date, end_date, created_at, updated_at
		FROM entries
		ORDER BY created_at
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, title, status, tags, sources  string
			author, synopsis, notes           sql.NullString
			rating                            sql.NullFloat64
			chaptersRead, totalRepeats        int
			totalChapters                     sql.NullInt64
			coverURL, originalURL, compressed sql.NullString
			startDate, endDate                sql.NullString
			createdAt, updatedAt              time.Time
		)
		if err := rows.Scan(
			&id, &title, &author, &synopsis, &notes, &status, &tags, &rating,
			&chaptersRead, &totalChapters, &totalRepeats,
			&coverURL, &originalURL, &compressed,
			&sources, &startDate, &endDate, &createdAt, &updatedAt,
		); err != nil {
			return err
		}

		ratingStr := ""
		if rating.Valid {
			ratingStr = strconv.FormatFloat(rating.Float64, 'f', -1, 64)
		}
		totalStr := ""
		if totalChapters.Valid {
			totalStr = strconv.FormatInt(totalChapters.Int64, 10)
		}

		rec := []string{
			id, title, author.String, synopsis.String, notes.String, status, tags, ratingStr,
			strconv.Itoa(chaptersRead), totalStr, strconv.Itoa(totalRepeats),
			coverURL.String, originalURL.String, compressed.String,
			sources, startDate.String, endDate.String,
			createdAt.UTC().Format(time.RFC3339), updatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
