package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper removes expired notifications and reports how many it removed.
type Sweeper interface {
	Sweep(now time.Time) int
}

// NotificationSweeper dismisses transient notifications once their time is up.
type NotificationSweeper struct {
	target Sweeper
	now    func() time.Time
	logger zerolog.Logger
}

func NewNotificationSweeper(target Sweeper, logger zerolog.Logger) *NotificationSweeper {
	return &NotificationSweeper{target: target, now: time.Now, logger: logger}
}

func (s *NotificationSweeper) ProcessJobs(_ context.Context) error {
	if n := s.target.Sweep(s.now()); n > 0 {
		s.logger.Debug().Int("dismissed", n).Msg("notifications expired")
	}
	return nil
}

// Refresher reloads state written by other processes.
type Refresher interface {
	Refresh(ctx context.Context) []string
}

// StoreRefresher polls the profile store for out-of-process edits. It backs up
// the file watcher on filesystems without change notifications.
type StoreRefresher struct {
	target Refresher
	logger zerolog.Logger
}

func NewStoreRefresher(target Refresher, logger zerolog.Logger) *StoreRefresher {
	return &StoreRefresher{target: target, logger: logger}
}

func (r *StoreRefresher) ProcessJobs(ctx context.Context) error {
	if changed := r.target.Refresh(ctx); len(changed) > 0 {
		r.logger.Debug().Strs("collections", changed).Msg("store changed externally")
	}
	return ctx.Err()
}
