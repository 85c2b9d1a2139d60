package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"
)

// DefaultTaskQueue is used when no task queue is configured.
const DefaultTaskQueue = "geosearch-refresh"

// Scheduler implements ports.RefreshScheduler by starting a
// SavedSearchRefreshWorkflow on Temporal.
type Scheduler struct {
	client    client.Client
	taskQueue string
	limit     int
}

// NewScheduler creates a scheduler starting workflows on taskQueue. limit is
// the page size each refresh requests.
func NewScheduler(c client.Client, taskQueue string, limit int) *Scheduler {
	if taskQueue == "" {
		taskQueue = DefaultTaskQueue
	}
	return &Scheduler{client: c, taskQueue: taskQueue, limit: limit}
}

// WorkflowID is the id of the refresh workflow for a saved search. At most one
// refresh per search runs at a time.
func WorkflowID(savedSearchID string) string {
	return "saved-search-refresh-" + savedSearchID
}

// ScheduleRefresh starts a refresh and returns the Temporal run id.
func (s *Scheduler) ScheduleRefresh(ctx context.Context, savedSearchID string) (string, error) {
	opts := client.StartWorkflowOptions{
		ID:        WorkflowID(savedSearchID),
		TaskQueue: s.taskQueue,
	}
	run, err := s.client.ExecuteWorkflow(ctx, opts, SavedSearchRefreshWorkflow, RefreshInput{
		SavedSearchID: savedSearchID,
		Limit:         s.limit,
	})
	if err != nil {
		return "", fmt.Errorf("start refresh workflow: %w", err)
	}
	return run.GetRunID(), nil
}
