package worker

import (
	"context"
	"log/slog"
	"time"

	"dealscout/internal/runner"
)

// ScanWorker runs the scan pipeline on a fixed interval.
type ScanWorker struct {
	Runner   *runner.Runner
	Request  runner.Request
	Interval time.Duration
}

func (w *ScanWorker) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = 30 * time.Minute
	}
	t := time.NewTicker(w.Interval)
	defer t.Stop()

	// initial run
	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.runOnce(ctx)
		}
	}
}

func (w *ScanWorker) runOnce(ctx context.Context) {
	sum, err := w.Runner.Run(ctx, w.Request)
	if err != nil {
		slog.Error("scan worker: run failed", "error", err)
		return
	}
	slog.Info("scan worker: completed",
		"subreddits", sum.SubredditsScanned,
		"found", sum.OpportunitiesFound,
		"notified", sum.NotificationsSent,
		"errors", len(sum.Errors))
}
