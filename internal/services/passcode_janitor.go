package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultPasscodeJanitorSchedule = "@every 5m"

type PasscodePurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// PasscodeJanitor periodically deletes expired migration challenges.
type PasscodeJanitor struct {
	store    PasscodePurger
	logger   *slog.Logger
	schedule string
	cron     *cron.Cron
	now      func() time.Time
}

func NewPasscodeJanitor(store PasscodePurger, logger *slog.Logger, schedule string) *PasscodeJanitor {
	if logger == nil {
		logger = slog.Default()
	}
	if schedule == "" {
		schedule = DefaultPasscodeJanitorSchedule
	}
	return &PasscodeJanitor{
		store:    store,
		logger:   logger,
		schedule: schedule,
		cron:     cron.New(),
		now:      time.Now,
	}
}

func (janitor *PasscodeJanitor) Start(ctx context.Context) error {
	if _, err := janitor.cron.AddFunc(janitor.schedule, func() {
		_, _ = janitor.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("schedule passcode janitor: %w", err)
	}
	janitor.cron.Start()
	return nil
}

// Stop halts the schedule and returns a context that is done once a running
// purge has finished.
func (janitor *PasscodeJanitor) Stop() context.Context {
	return janitor.cron.Stop()
}

func (janitor *PasscodeJanitor) RunOnce(ctx context.Context) (int64, error) {
	purged, err := janitor.store.PurgeExpired(ctx, janitor.now().UTC())
	if err != nil {
		janitor.logger.ErrorContext(ctx, "purge expired passcodes", "error", err)
		return 0, err
	}
	if purged > 0 {
		janitor.logger.InfoContext(ctx, "expired passcodes purged", "count", purged)
	}
	return purged, nil
}
