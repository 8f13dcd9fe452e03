package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

func (r *Runtime) Run(ctx context.Context) error {
	r.logger.Info("opsgate runtime starting", "ssh_address", r.sshClient.Address(), "db_path", r.cfg.DBPath)

	group, groupCtx := errgroup.WithContext(ctx)
	for _, conn := range r.connectors {
		connector := conn
		group.Go(func() error {
			return connector.Start(groupCtx)
		})
	}
	group.Go(func() error {
		ttl := time.Duration(r.cfg.PagerBufferTTLSec) * time.Second
		runSweepLoop(groupCtx, r.sweepSchedule, r.pages, ttl, r.logger.With("component", "pager-sweep"))
		return nil
	})

	return group.Wait()
}

type sweeper interface {
	Sweep(maxAge time.Duration) int
}

// runSweepLoop drops stale pager buffers on the configured schedule so
// abandoned dialogues do not pin output forever. It returns when the
// context is cancelled.
func runSweepLoop(ctx context.Context, schedule cron.Schedule, pages sweeper, ttl time.Duration, logger *slog.Logger) {
	for {
		next := schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info("sweep loop stopped")
			return
		case <-timer.C:
			if dropped := pages.Sweep(ttl); dropped > 0 {
				logger.Info("stale pager buffers dropped", "count", dropped)
			}
		}
	}
}
