package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"blog_admin/internal/domain"
)

// Loader is a view that can be refreshed from the record store.
type Loader interface {
	Name() string
	Load(ctx context.Context) error
}

type Scheduler struct {
	loaders  []Loader
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewScheduler(interval, timeout time.Duration, logger *slog.Logger, loaders ...Loader) *Scheduler {
	if timeout <= 0 {
		timeout = interval
	}
	return &Scheduler{
		loaders:  loaders,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Start reloads every view right away and then once per interval until ctx
// is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval, "views", len(s.loaders))

	s.runReload(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runReload(ctx)
		}
	}
}

func (s *Scheduler) runReload(ctx context.Context) {
	for _, l := range s.loaders {
		loadCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := l.Load(loadCtx)
		cancel()

		switch {
		case err == nil:
		case errors.Is(err, domain.ErrStale):
			s.logger.Debug("reload superseded", "view", l.Name())
		default:
			s.logger.Error("reload failed", "view", l.Name(), "error", err)
		}
	}
}
