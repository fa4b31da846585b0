package stats

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CacheRepo stores the last successful AniList snapshot per username, with
// the fetch time in unix milliseconds. One row per account; last fetch wins.
type CacheRepo struct {
	DB *sql.DB
}

func NewCacheRepo(db *sql.DB) *CacheRepo {
	return &CacheRepo{DB: db}
}

func (r *CacheRepo) Get(ctx context.Context, username string) (string, time.Time, bool, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT payload_json, fetched_at_ms
		FROM anilist_cache
		WHERE username = ?
	`, username)

	var payload string
	var fetchedMs int64
	if err := row.Scan(&payload, &fetchedMs); err != nil {
		if err == sql.ErrNoRows {
			return "", time.Time{}, false, nil
		}
		return "", time.Time{}, false, fmt.Errorf("get anilist cache: %w", err)
	}
	return payload, time.UnixMilli(fetchedMs), true, nil
}

func (r *CacheRepo) Upsert(ctx context.Context, username, payloadJSON string, fetchedAt time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO anilist_cache (username, payload_json, fetched_at_ms)
		VALUES (?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			payload_json = excluded.payload_json,
			fetched_at_ms = excluded.fetched_at_ms
	`, username, payloadJSON, fetchedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert anilist cache: %w", err)
	}
	return nil
}
