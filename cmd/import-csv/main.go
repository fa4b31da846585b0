package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"mangashelf/pkg/database"
)

// Restores an entries backup produced by export-csv. Existing rows with the
// same id are overwritten.
func main() {
	var (
		entriesIn = flag.String("entries", "data/entries.csv", "input CSV path for entries")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	n, err := importEntries(ctx, db, *entriesIn)
	if err != nil {
		log.Fatalf("import entries failed: %v", err)
	}

	log.Printf("imported %d entries from %s", n, *entriesIn)
}

func importEntries(ctx context.Context, db *sql.DB, inPath string) (int, error) {
	f, err := os.Open(inPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 19 || header[0] != "id" || header[1] != "title" {
		return 0, fmt.Errorf("unexpected header: %v", header)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (
			id, title, author, synopsis, notes, status, tags, rating,
			chapters_read, total_chapters, total_repeats,
			cover_url, original_image_url, compressed_image_url,
			sources, start_date, end_date, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			synopsis = excluded.synopsis,
			notes = excluded.notes,
			status = excluded.status,
			tags = excluded.tags,
			rating = excluded.rating,
			chapters_read = excluded.chapters_read,
			total_chapters = excluded.total_chapters,
			total_repeats = excluded.total_repeats,
			cover_url = excluded.cover_url,
			original_image_url = excluded.original_image_url,
			compressed_image_url = excluded.compressed_image_url,
			sources = excluded.sources,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read record: %w", err)
		}
		if len(rec) < 19 {
			return 0, fmt.Errorf("record %d: expected 19 fields, got %d", count+1, len(rec))
		}

		chaptersRead, err := strconv.Atoi(rec[8])
		if err != nil {
			return 0, fmt.Errorf("record %d: chapters_read: %w", count+1, err)
		}
		totalRepeats, err := strconv.Atoi(rec[10])
		if err != nil {
			return 0, fmt.Errorf("record %d: total_repeats: %w", count+1, err)
		}

		var rating any
		if rec[7] != "" {
			v, err := strconv.ParseFloat(rec[7], 64)
			if err != nil {
				return 0, fmt.Errorf("record %d: rating: %w", count+1, err)
			}
			rating = v
		}
		var totalChapters any
		if rec[9] != "" {
			v, err := strconv.Atoi(rec[9])
			if err != nil {
				return 0, fmt.Errorf("record %d: total_chapters: %w", count+1, err)
			}
			totalChapters = v
		}

		_, err = stmt.ExecContext(ctx,
			rec[0], rec[1], emptyNull(rec[2]), emptyNull(rec[3]), emptyNull(rec[4]),
			rec[5], orDefault(rec[6], "[]"), rating,
			chaptersRead, totalChapters, totalRepeats,
			emptyNull(rec[11]), emptyNull(rec[12]), emptyNull(rec[13]),
			orDefault(rec[14], "[]"), emptyNull(rec[15]), emptyNull(rec[16]),
			rec[17], rec[18],
		)
		if err != nil {
			return 0, fmt.Errorf("record %d: insert: %w", count+1, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

func emptyNull(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
