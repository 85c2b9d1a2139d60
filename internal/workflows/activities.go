package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/samirrijal/geosearch/internal/core/usecases"
)

// Activity names registered by RefreshActivities.
const (
	ActivityLoadSavedSearch = "LoadSavedSearch"
	ActivityRunSavedSearch  = "RunSavedSearch"
)

// SavedSearchSnapshot is the state of a saved search before a refresh.
type SavedSearchSnapshot struct {
	ID        string
	Name      string
	Filter    string
	LastCount *int
}

// RunResult is the outcome of one execution.
type RunResult struct {
	Count int
	Total int
}

// RefreshActivities holds the activity implementations for the refresh workflow.
type RefreshActivities struct {
	SavedSearches *usecases.SavedSearchService
}

// LoadSavedSearch reads the saved search so the workflow can compare counts.
func (a *RefreshActivities) LoadSavedSearch(ctx context.Context, id string) (*SavedSearchSnapshot, error) {
	s, err := a.SavedSearches.GetByID(ctx, id)
	if err != nil {
		return nil, activityError(fmt.Errorf("load saved search %s: %w", id, err))
	}
	return &SavedSearchSnapshot{ID: s.ID, Name: s.Name, Filter: s.Filter, LastCount: s.LastCount}, nil
}

// RunSavedSearch executes the saved search; the run is recorded and published
// by the saved search service.
func (a *RefreshActivities) RunSavedSearch(ctx context.Context, id string, limit int) (*RunResult, error) {
	page, err := a.SavedSearches.Run(ctx, id, 0, limit)
	if err != nil {
		return nil, activityError(fmt.Errorf("run saved search %s: %w", id, err))
	}
	activity.GetLogger(ctx).Info("saved search refreshed", "id", id, "count", len(page.Features), "total", page.Total)
	return &RunResult{Count: len(page.Features), Total: page.Total}, nil
}
