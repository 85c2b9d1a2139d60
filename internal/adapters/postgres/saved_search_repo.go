package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/samirrijal/geosearch/internal/core/domain"
)

// SavedSearchRepo implements ports.SavedSearchRepository.
type SavedSearchRepo struct {
	db *DB
}

func NewSavedSearchRepo(db *DB) *SavedSearchRepo {
	return &SavedSearchRepo{db: db}
}

const savedSearchColumns = `id::text, name, context, entries, filter, created_at, last_run_at, last_count`

func (r *SavedSearchRepo) Create(ctx context.Context, s *domain.SavedSearch) error {
	entries, err := json.Marshal(s.Entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO saved_searches (name, context, entries, filter)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, created_at
	`, s.Name, string(s.Context), entries, s.Filter).Scan(&s.ID, &s.CreatedAt)
}

func (r *SavedSearchRepo) GetByID(ctx context.Context, id string) (*domain.SavedSearch, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT `+savedSearchColumns+`
		FROM saved_searches WHERE id = $1
	`, id)
	s, err := scanSavedSearch(row)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func (r *SavedSearchRepo) List(ctx context.Context, limit, offset int) ([]domain.SavedSearch, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM saved_searches`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+savedSearchColumns+`
		FROM saved_searches
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	searches := make([]domain.SavedSearch, 0, limit)
	for rows.Next() {
		s, err := scanSavedSearch(rows)
		if err != nil {
			return nil, 0, err
		}
		searches = append(searches, *s)
	}
	return searches, total, rows.Err()
}

func (r *SavedSearchRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM saved_searches WHERE id = $1`, id)
	if err != nil {
		return notFound(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SavedSearchRepo) RecordRun(ctx context.Context, id string, at time.Time, count int) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE saved_searches SET last_run_at = $2, last_count = $3 WHERE id = $1
	`, id, at, count)
	if err != nil {
		return notFound(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanSavedSearch(row pgx.Row) (*domain.SavedSearch, error) {
	var (
		s       domain.SavedSearch
		sc      string
		entries []byte
	)
	if err := row.Scan(&s.ID, &s.Name, &sc, &entries, &s.Filter, &s.CreatedAt, &s.LastRunAt, &s.LastCount); err != nil {
		return nil, err
	}
	s.Context = domain.SearchContext(sc)
	if err := json.Unmarshal(entries, &s.Entries); err != nil {
		return nil, fmt.Errorf("decode entries of %s: %w", s.ID, err)
	}
	return &s, nil
}

// notFound maps a missing row, or an id that is not a valid uuid, to domain.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
		return domain.ErrNotFound
	}
	return err
}
