package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/samirrijal/geosearch/internal/core/domain"
)

func TestNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, domain.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), domain.ErrNotFound},
		{"invalid uuid", &pgconn.PgError{Code: "22P02"}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := notFound(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	other := errors.New("connection reset")
	if got := notFound(other); got != other {
		t.Errorf("expected error to pass through, got %v", got)
	}
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *[]byte:
			*p = r.values[i].([]byte)
		}
	}
	return nil
}

func TestScanSavedSearch(t *testing.T) {
	row := fakeRow{values: []any{
		"0b9f1c1e-6c5e-4f5a-9d8e-2a7f0c1d2e3f", "harbor", "imagery",
		[]byte(`[{"category":"magicword","value":"34.5 -118.2"}]`),
		"(INTERSECTS(ground_geom,POINT(-118.2+34.5)))", nil, nil, nil,
	}}
	s, err := scanSavedSearch(row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Context != domain.ContextImagery {
		t.Errorf("expected imagery, got %s", s.Context)
	}
	if len(s.Entries) != 1 || s.Entries[0].Category != domain.CategoryMagicWord {
		t.Errorf("unexpected entries: %+v", s.Entries)
	}
	if s.LastRunAt != nil || s.LastCount != nil {
		t.Error("expected never-run search to have nil run fields")
	}
}

func TestScanSavedSearch_BadEntries(t *testing.T) {
	row := fakeRow{values: []any{"id", "n", "video", []byte(`{`), "", nil, nil, nil}}
	if _, err := scanSavedSearch(row); err == nil {
		t.Fatal("expected decode error")
	}
}
