package tasks

import (
	"context"

	"github.com/requesterr/requesterr/internal/config"
	"github.com/requesterr/requesterr/internal/reconcile"
	"github.com/requesterr/requesterr/internal/scheduler"
)

const RequestSyncTaskID = "request-sync"

// RegisterRequestSyncTask registers the periodic reconciliation pass.
func RegisterRequestSyncTask(sched *scheduler.Scheduler, engine *reconcile.Engine, cfg *config.SyncConfig) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          RequestSyncTaskID,
		Name:        "Request Sync",
		Description: "Reconcile open requests against the automation services",
		Interval:    cfg.Interval,
		RunOnStart:  true,
		Func: func(ctx context.Context) error {
			_, err := engine.RunPass(ctx)
			return err
		},
	})
}
