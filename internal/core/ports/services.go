package ports

import (
	"context"

	"github.com/samirrijal/geosearch/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishSearchExecuted(ctx context.Context, event *domain.SearchEvent) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeSearchExecuted(ctx context.Context, handler func(ctx context.Context, event *domain.SearchEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// RefreshScheduler starts background re-runs of saved searches.
type RefreshScheduler interface {
	ScheduleRefresh(ctx context.Context, savedSearchID string) (runID string, err error)
}
