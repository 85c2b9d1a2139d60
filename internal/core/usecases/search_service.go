package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/geosearch/internal/core/domain"
	"github.com/samirrijal/geosearch/internal/core/filter"
	"github.com/samirrijal/geosearch/internal/core/ports"
	"github.com/samirrijal/geosearch/internal/pkg/logging"
	"github.com/samirrijal/geosearch/internal/pkg/metrics"
	"github.com/samirrijal/geosearch/internal/pkg/telemetry"
)

const (
	// MaxEntries bounds the number of filters in one request.
	MaxEntries = 50

	defaultPageSize = 30
	maxPageSize     = 200
	searchCacheTTL  = 60
)

// SearchService builds filter expressions and runs them against the feature service.
type SearchService struct {
	features ports.FeatureRepository
	cache    ports.CacheService
	events   ports.EventPublisher
	pageSize int
}

// NewSearchService creates a new SearchService. cache and events may be nil.
func NewSearchService(features ports.FeatureRepository, cache ports.CacheService, events ports.EventPublisher) *SearchService {
	return &SearchService{features: features, cache: cache, events: events, pageSize: defaultPageSize}
}

// WithPageSize overrides the default page size used when a request has no limit.
func (s *SearchService) WithPageSize(n int) *SearchService {
	if n > 0 && n <= maxPageSize {
		s.pageSize = n
	}
	return s
}

// PageLimit returns the page size used for a requested limit.
func (s *SearchService) PageLimit(limit int) int {
	if limit <= 0 || limit > maxPageSize {
		return s.pageSize
	}
	return limit
}

// Recognize classifies a single magic word.
func (s *SearchService) Recognize(token string) (domain.CoordinateMatch, error) {
	m, err := filter.Recognize(token)
	if err != nil {
		metrics.FilterErrors.WithLabelValues("invalid_grid_reference").Inc()
		return nil, err
	}
	metrics.FilterTokens.WithLabelValues(string(m.Notation())).Inc()
	return m, nil
}

// BuildFilter validates entries and builds the expression for sc.
func (s *SearchService) BuildFilter(ctx context.Context, sc domain.SearchContext, entries []domain.FilterEntry) (string, error) {
	if err := ValidateEntries(sc, entries); err != nil {
		metrics.FilterErrors.WithLabelValues("invalid_entry").Inc()
		return "", err
	}

	expr, err := filter.Build(sc, entries)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidGridReference) {
			metrics.FilterErrors.WithLabelValues("invalid_grid_reference").Inc()
		}
		return "", err
	}

	countMagicWords(sc, entries)
	metrics.FiltersBuilt.WithLabelValues(string(sc)).Inc()
	logging.FromContext(ctx).Debug("filter built", "context", sc, "entries", len(entries), "filter", expr)
	return expr, nil
}

// countMagicWords records the notation of every magic word in a built filter.
// Video magic words are always filename text.
func countMagicWords(sc domain.SearchContext, entries []domain.FilterEntry) {
	for _, e := range filter.Classify(entries).MagicWords {
		notation := domain.NotationText
		if sc == domain.ContextImagery {
			m, err := filter.Recognize(e.Value)
			if err != nil {
				continue
			}
			notation = m.Notation()
		}
		metrics.FilterTokens.WithLabelValues(string(notation)).Inc()
	}
}

// Search builds the expression for entries and returns one page of features.
func (s *SearchService) Search(ctx context.Context, sc domain.SearchContext, entries []domain.FilterEntry, offset, limit int) (*domain.FeaturePage, string, error) {
	expr, err := s.BuildFilter(ctx, sc, entries)
	if err != nil {
		return nil, "", err
	}
	page, err := s.Execute(ctx, sc, expr, offset, limit, "")
	if err != nil {
		return nil, expr, err
	}
	return page, expr, nil
}

// Execute runs an already built expression. savedSearchID is attached to the
// published event when the search came from a saved search.
func (s *SearchService) Execute(ctx context.Context, sc domain.SearchContext, expr string, offset, limit int, savedSearchID string) (*domain.FeaturePage, error) {
	if offset < 0 {
		offset = 0
	}
	limit = s.PageLimit(limit)

	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, "SearchService.Execute")
	defer span.End()
	span.SetAttributes(
		attribute.String(telemetry.AttrSearchContext, string(sc)),
		attribute.String(telemetry.AttrFilter, expr),
	)

	start := time.Now()
	log := logging.FromContext(ctx)

	cacheKey := searchCacheKey(sc, expr, offset, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var page domain.FeaturePage
			if err := json.Unmarshal(data, &page); err == nil {
				metrics.CacheHits.WithLabelValues("search").Inc()
				span.SetAttributes(attribute.Bool(telemetry.AttrCached, true))
				log.Debug("search cache hit", "key", cacheKey)
				s.publish(ctx, sc, expr, offset, limit, len(page.Features), true, start, savedSearchID)
				return &page, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("search").Inc()
	}

	page, err := s.features.Query(ctx, domain.FeatureQuery{Context: sc, Filter: expr, Offset: offset, Limit: limit})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query features: %w", err)
	}
	span.SetAttributes(attribute.Int(telemetry.AttrFeatureCount, len(page.Features)))

	if s.cache != nil {
		if data, err := json.Marshal(page); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, searchCacheTTL); err != nil {
				log.Warn("search cache write failed", "error", err)
			}
		}
	}

	s.publish(ctx, sc, expr, offset, limit, len(page.Features), false, start, savedSearchID)
	return page, nil
}

// Evict drops the cached page for expr so the next Execute with the same page
// goes to the feature service.
func (s *SearchService) Evict(ctx context.Context, sc domain.SearchContext, expr string, offset, limit int) error {
	if s.cache == nil {
		return nil
	}
	if offset < 0 {
		offset = 0
	}
	return s.cache.Delete(ctx, searchCacheKey(sc, expr, offset, s.PageLimit(limit)))
}

func (s *SearchService) publish(ctx context.Context, sc domain.SearchContext, expr string, offset, limit, count int, cached bool, start time.Time, savedSearchID string) {
	if s.events == nil {
		return
	}
	event := &domain.SearchEvent{
		Time:          time.Now().UTC(),
		Context:       sc,
		Filter:        expr,
		Offset:        offset,
		Limit:         limit,
		Count:         count,
		Cached:        cached,
		DurationMS:    time.Since(start).Milliseconds(),
		SavedSearchID: savedSearchID,
	}
	if err := s.events.PublishSearchExecuted(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("publish search event failed", "error", err)
	}
}

// ValidateEntries checks the search context and every entry.
func ValidateEntries(sc domain.SearchContext, entries []domain.FilterEntry) error {
	if !sc.Valid() {
		return fmt.Errorf("%w: unknown search context %q", domain.ErrInvalidEntry, sc)
	}
	if len(entries) > MaxEntries {
		return fmt.Errorf("%w: too many entries (max %d)", domain.ErrInvalidEntry, MaxEntries)
	}
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

func searchCacheKey(sc domain.SearchContext, expr string, offset, limit int) string {
	h := sha256.Sum256([]byte(expr))
	return fmt.Sprintf("search:%s:%s:%d:%d", sc, hex.EncodeToString(h[:8]), offset, limit)
}
