package usecases_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/samirrijal/geosearch/internal/core/domain"
)

// --- Mock FeatureRepository ---

type mockFeatureRepo struct {
	queryFn func(ctx context.Context, q domain.FeatureQuery) (*domain.FeaturePage, error)
	calls   int
}

func (m *mockFeatureRepo) Query(ctx context.Context, q domain.FeatureQuery) (*domain.FeaturePage, error) {
	m.calls++
	if m.queryFn != nil {
		return m.queryFn(ctx, q)
	}
	return &domain.FeaturePage{}, nil
}

// --- Mock CacheService ---

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	events []domain.SearchEvent
	err    error
}

func (m *mockPublisher) PublishSearchExecuted(ctx context.Context, event *domain.SearchEvent) error {
	m.events = append(m.events, *event)
	return m.err
}

// --- Mock SavedSearchRepository ---

type mockSavedRepo struct {
	createFn    func(ctx context.Context, s *domain.SavedSearch) error
	getByIDFn   func(ctx context.Context, id string) (*domain.SavedSearch, error)
	listFn      func(ctx context.Context, limit, offset int) ([]domain.SavedSearch, int, error)
	deleteFn    func(ctx context.Context, id string) error
	recordRunFn func(ctx context.Context, id string, at time.Time, count int) error
}

func (m *mockSavedRepo) Create(ctx context.Context, s *domain.SavedSearch) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	s.ID = "saved-1"
	return nil
}

func (m *mockSavedRepo) GetByID(ctx context.Context, id string) (*domain.SavedSearch, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockSavedRepo) List(ctx context.Context, limit, offset int) ([]domain.SavedSearch, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return nil, 0, nil
}

func (m *mockSavedRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockSavedRepo) RecordRun(ctx context.Context, id string, at time.Time, count int) error {
	if m.recordRunFn != nil {
		return m.recordRunFn(ctx, id, at, count)
	}
	return nil
}

// --- Mock RefreshScheduler ---

type mockScheduler struct {
	scheduled []string
}

func (m *mockScheduler) ScheduleRefresh(ctx context.Context, id string) (string, error) {
	m.scheduled = append(m.scheduled, id)
	return "run-" + id, nil
}
