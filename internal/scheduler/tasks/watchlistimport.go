package tasks

import (
	"context"

	"github.com/requesterr/requesterr/internal/config"
	"github.com/requesterr/requesterr/internal/scheduler"
	"github.com/requesterr/requesterr/internal/watchlist"
)

const WatchlistImportTaskID = "watchlist-import"

// RegisterWatchlistImportTask registers the periodic watchlist pull.
func RegisterWatchlistImportTask(sched *scheduler.Scheduler, importer *watchlist.Importer, cfg *config.WatchlistConfig) error {
	if !cfg.Enabled {
		return nil
	}
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          WatchlistImportTaskID,
		Name:        "Watchlist Import",
		Description: "Pull user watchlists and create requests for new entries",
		Interval:    cfg.Interval,
		Func: func(ctx context.Context) error {
			_, err := importer.Run(ctx)
			return err
		},
	})
}
