package entries

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"mangashelf/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

type ListQuery struct {
	Q      string // keyword search in title/author
	Status string
	Tag    string
	Limit  int
	Offset int
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const entryColumns = `
	id, title, author, synopsis, notes, status, tags, rating,
	chapters_read, total_chapters, total_repeats,
	cover_url, original_image_url, compressed_image_url,
	sources, start_date, end_date, created_at, updated_at
`

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Entry, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE id = ?
	`, id)

	e, err := scanEntry(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByID: %w", err)
	}
	return e, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var total int
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Entry, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.Entry, 0, q.Limit)
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Create(ctx context.Context, e models.Entry) error {
	tagsJSON, _ := json.Marshal(e.Tags)
	sourcesJSON, _ := json.Marshal(e.Sources)

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO entries (
			id, title, author, synopsis, notes, status, tags, rating,
			chapters_read, total_chapters, total_repeats,
			cover_url, original_image_url, compressed_image_url,
			sources, start_date, end_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID, e.Title, nullStr(e.Author), nullStr(e.Synopsis), nullStr(e.Notes),
		e.Status, string(tagsJSON), e.Rating,
		e.ChaptersRead, e.TotalChapters, e.TotalRepeats,
		nullStr(e.CoverURL), nullStr(e.OriginalImageURL), nullStr(e.CompressedImageURL),
		string(sourcesJSON), nullStr(e.StartDate), nullStr(e.EndDate),
	)
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, e models.Entry) (bool, error) {
	tagsJSON, _ := json.Marshal(e.Tags)
	sourcesJSON, _ := json.Marshal(e.Sources)

	res, err := r.DB.ExecContext(ctx, `
		UPDATE entries SET
			title = ?, author = ?, synopsis = ?, notes = ?, status = ?,
			tags = ?, rating = ?, chapters_read = ?, total_chapters = ?,
			total_repeats = ?, cover_url = ?, original_image_url = ?,
			compressed_image_url = ?, sources = ?, start_date = ?, end_date = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`,
		e.Title, nullStr(e.Author), nullStr(e.Synopsis), nullStr(e.Notes), e.Status,
		string(tagsJSON), e.Rating, e.ChaptersRead, e.TotalChapters,
		e.TotalRepeats, nullStr(e.CoverURL), nullStr(e.OriginalImageURL),
		nullStr(e.CompressedImageURL), string(sourcesJSON), nullStr(e.StartDate), nullStr(e.EndDate),
		e.ID,
	)
	if err != nil {
		return false, fmt.Errorf("update entry: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Aggregate computes the dashboard's local headline numbers in one pass.
// AVG(rating) skips NULL rows, so unrated entries never drag the mean down.
func (r *Repo) Aggregate(ctx context.Context) (models.LocalStats, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(chapters_read), 0),
		       COALESCE(AVG(rating), 0),
		       COUNT(rating)
		FROM entries
	`)

	var s models.LocalStats
	if err := row.Scan(&s.Count, &s.ChaptersRead, &s.MeanScore, &s.RatedCount); err != nil {
		return models.LocalStats{}, fmt.Errorf("aggregate scan: %w", err)
	}
	return s, nil
}

// buildListSQL builds either COUNT(*) or SELECT list. The tag filter does a
// LIKE match inside the stored JSON text, quote-delimited so "art" does not
// match "heart".
func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	baseSelect := `SELECT ` + entryColumns + ` FROM entries`
	if countOnly {
		baseSelect = `SELECT COUNT(*) FROM entries`
	}

	var where []string
	var args []any

	if strings.TrimSpace(q.Q) != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(author) LIKE ?)")
		kw := "%" + strings.ToLower(strings.TrimSpace(q.Q)) + "%"
		args = append(args, kw, kw)
	}

	if strings.TrimSpace(q.Status) != "" {
		where = append(where, "LOWER(status) = ?")
		args = append(args, strings.ToLower(strings.TrimSpace(q.Status)))
	}

	if tag := strings.ToLower(strings.TrimSpace(q.Tag)); tag != "" {
		where = append(where, "tags LIKE ?")
		args = append(args, `%"`+tag+`"%`)
	}

	sqlStr := baseSelect
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		sqlStr += " ORDER BY created_at DESC"
		sqlStr += " LIMIT ? OFFSET ?"
		limit := q.Limit
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, limit, offset)
	}

	return sqlStr, args
}

func scanEntry(scan func(dest ...any) error) (*models.Entry, error) {
	var (
		e           models.Entry
		author      sql.NullString
		synopsis    sql.NullString
		notes       sql.NullString
		tagsJSON    string
		rating      sql.NullFloat64
		totalCh     sql.NullInt64
		coverURL    sql.NullString
		originalURL sql.NullString
		compressed  sql.NullString
		sourcesJSON string
		startDate   sql.NullString
		endDate     sql.NullString
	)

	if err := scan(
		&e.ID, &e.Title, &author, &synopsis, &notes, &e.Status, &tagsJSON, &rating,
		&e.ChaptersRead, &totalCh, &e.TotalRepeats,
		&coverURL, &originalURL, &compressed,
		&sourcesJSON, &startDate, &endDate, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	e.Author = author.String
	e.Synopsis = synopsis.String
	e.Notes = notes.String
	if rating.Valid {
		v := rating.Float64
		e.Rating = &v
	}
	if totalCh.Valid {
		v := int(totalCh.Int64)
		e.TotalChapters = &v
	}
	e.CoverURL = coverURL.String
	e.OriginalImageURL = originalURL.String
	e.CompressedImageURL = compressed.String
	e.StartDate = startDate.String
	e.EndDate = endDate.String

	e.Tags = []string{}
	e.Sources = []string{}
	_ = json.Unmarshal([]byte(tagsJSON), &e.Tags)
	_ = json.Unmarshal([]byte(sourcesJSON), &e.Sources)

	return &e, nil
}

func nullStr(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
