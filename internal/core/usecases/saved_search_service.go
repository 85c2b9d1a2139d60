package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samirrijal/geosearch/internal/core/domain"
	"github.com/samirrijal/geosearch/internal/core/ports"
	"github.com/samirrijal/geosearch/internal/pkg/logging"
)

// ErrSchedulerUnavailable is returned when no refresh scheduler is configured.
var ErrSchedulerUnavailable = errors.New("refresh scheduler not configured")

// SavedSearchService handles saved-search business logic.
type SavedSearchService struct {
	repo      ports.SavedSearchRepository
	search    *SearchService
	scheduler ports.RefreshScheduler
}

// NewSavedSearchService creates a new SavedSearchService. scheduler may be nil.
func NewSavedSearchService(repo ports.SavedSearchRepository, search *SearchService, scheduler ports.RefreshScheduler) *SavedSearchService {
	return &SavedSearchService{repo: repo, search: search, scheduler: scheduler}
}

// Create compiles the entries and stores them under name.
func (s *SavedSearchService) Create(ctx context.Context, name string, sc domain.SearchContext, entries []domain.FilterEntry) (*domain.SavedSearch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidEntry)
	}
	if len(name) > 200 {
		return nil, fmt.Errorf("%w: name too long (max 200 characters)", domain.ErrInvalidEntry)
	}

	expr, err := s.search.BuildFilter(ctx, sc, entries)
	if err != nil {
		return nil, err
	}

	saved := &domain.SavedSearch{
		Name:    name,
		Context: sc,
		Entries: entries,
		Filter:  expr,
	}
	if err := s.repo.Create(ctx, saved); err != nil {
		return nil, fmt.Errorf("create saved search: %w", err)
	}
	logging.FromContext(ctx).Info("saved search created", "id", saved.ID, "context", sc)
	return saved, nil
}

// GetByID returns a saved search.
func (s *SavedSearchService) GetByID(ctx context.Context, id string) (*domain.SavedSearch, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a page of saved searches and the total count.
func (s *SavedSearchService) List(ctx context.Context, limit, offset int) ([]domain.SavedSearch, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// Delete removes a saved search.
func (s *SavedSearchService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Run executes a saved search and records the total number of matches, which
// does not depend on the requested page. A run never answers from the cache.
func (s *SavedSearchService) Run(ctx context.Context, id string, offset, limit int) (*domain.FeaturePage, error) {
	saved, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.search.Evict(ctx, saved.Context, saved.Filter, offset, limit); err != nil {
		logging.FromContext(ctx).Warn("evict cached saved search page failed", "id", saved.ID, "error", err)
	}

	page, err := s.search.Execute(ctx, saved.Context, saved.Filter, offset, limit, saved.ID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RecordRun(ctx, saved.ID, time.Now().UTC(), page.Total); err != nil {
		logging.FromContext(ctx).Warn("record saved search run failed", "id", saved.ID, "error", err)
	}
	return page, nil
}

// ScheduleRefresh starts a background re-run of a saved search.
func (s *SavedSearchService) ScheduleRefresh(ctx context.Context, id string) (string, error) {
	if s.scheduler == nil {
		return "", ErrSchedulerUnavailable
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return "", err
	}
	return s.scheduler.ScheduleRefresh(ctx, id)
}
