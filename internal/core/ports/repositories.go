package ports

import (
	"context"
	"time"

	"github.com/samirrijal/geosearch/internal/core/domain"
)

// SavedSearchRepository persists saved searches.
type SavedSearchRepository interface {
	Create(ctx context.Context, s *domain.SavedSearch) error
	GetByID(ctx context.Context, id string) (*domain.SavedSearch, error)
	List(ctx context.Context, limit, offset int) ([]domain.SavedSearch, int, error)
	Delete(ctx context.Context, id string) error
	RecordRun(ctx context.Context, id string, at time.Time, count int) error
}

// FeatureRepository queries the feature service.
type FeatureRepository interface {
	// Query returns one page of features matching q.Filter. An empty filter
	// matches every feature.
	Query(ctx context.Context, q domain.FeatureQuery) (*domain.FeaturePage, error)
}
