package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue used for console background jobs.
	QueueDefault = "wpadmin"
	// TaskPageRefresh reloads the work periods page currently shown.
	TaskPageRefresh = "wpadmin:page-refresh"
)

// PageRefreshPayload records who asked for a refresh.
type PageRefreshPayload struct {
	Source string `json:"source"`
}

// NewPageRefreshTask constructs a page refresh task. Refreshes are not
// retried: the next one supersedes a failed one.
func NewPageRefreshTask(source string) (*asynq.Task, error) {
	data, err := json.Marshal(PageRefreshPayload{Source: source})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPageRefresh, data,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(0),
		asynq.Timeout(2*time.Minute),
	), nil
}

// PageRefresher reloads the console page.
type PageRefresher interface {
	RefreshPage(ctx context.Context) error
}

// JobTracker times job runs.
type JobTracker interface {
	TrackJob(job string) func(err error) error
}

// NewPageRefreshHandler processes TaskPageRefresh tasks.
func NewPageRefreshHandler(refresher PageRefresher, tracker JobTracker, logger *slog.Logger) asynq.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, t *asynq.Task) error {
		var payload PageRefreshPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("jobs: decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
		}
		done := func(err error) error { return err }
		if tracker != nil {
			done = tracker.TrackJob(t.Type())
		}
		err := refresher.RefreshPage(ctx)
		if err != nil {
			logger.WarnContext(ctx, "page refresh failed", slog.String("source", payload.Source), slog.Any("error", err))
		} else {
			logger.DebugContext(ctx, "page refreshed", slog.String("source", payload.Source))
		}
		return done(err)
	}
}
