package workflows

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/geosearch/internal/core/domain"
)

// RefreshInput is the input for the saved search refresh workflow.
type RefreshInput struct {
	SavedSearchID string
	Limit         int
}

// RefreshResult reports how the result count moved since the previous run.
type RefreshResult struct {
	SavedSearchID string
	Count         int
	Total         int
	PreviousCount *int
	Changed       bool
}

// SavedSearchRefreshWorkflow re-runs a saved search against the feature
// service and reports whether the total number of matches changed.
func SavedSearchRefreshWorkflow(ctx workflow.Context, input RefreshInput) (*RefreshResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting saved search refresh", "id", input.SavedSearchID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	var snap SavedSearchSnapshot
	if err := workflow.ExecuteActivity(ctx, ActivityLoadSavedSearch, input.SavedSearchID).Get(ctx, &snap); err != nil {
		return nil, err
	}

	var run RunResult
	if err := workflow.ExecuteActivity(ctx, ActivityRunSavedSearch, input.SavedSearchID, input.Limit).Get(ctx, &run); err != nil {
		return nil, err
	}

	result := &RefreshResult{
		SavedSearchID: input.SavedSearchID,
		Count:         run.Count,
		Total:         run.Total,
		PreviousCount: snap.LastCount,
		Changed:       snap.LastCount == nil || *snap.LastCount != run.Total,
	}
	logger.Info("Saved search refresh complete", "id", input.SavedSearchID, "total", run.Total, "changed", result.Changed)
	return result, nil
}

const notFoundErrorType = "NotFound"

// activityError marks domain.ErrNotFound as non-retryable: a deleted search
// will not come back.
func activityError(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return temporal.NewNonRetryableApplicationError(err.Error(), notFoundErrorType, err)
	}
	return err
}
