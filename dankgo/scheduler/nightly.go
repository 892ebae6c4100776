package scheduler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danktimes/dankgo/dankgo/game"
)

const nightlyConcurrency = 8

// RunNightly drives the daily cycle: tear down all timers, then per chat
// regenerate random dank times, reschedule and run the hardcore check.
// Blocks until ctx is done; callers run it on its own goroutine.
func (s *Scheduler) RunNightly(ctx context.Context) {
	for {
		now := s.now()
		next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 30, 0, now.Location()).Add(24 * time.Hour)
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.shutdown:
			timer.Stop()
			return
		case <-timer.C:
			s.NightlyBatch(ctx)
		}
	}
}

// NightlyBatch processes every chat independently: one corrupted chat must
// not block the rest.
func (s *Scheduler) NightlyBatch(ctx context.Context) {
	start := s.now()
	slog.Info("Nightly batch starting", slog.Int("chats", s.chats.Len()))

	s.Reset()

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(nightlyConcurrency)
	for _, c := range s.chats.All() {
		g.Go(func() error {
			s.nightlyChat(c)
			return nil
		})
	}
	_ = g.Wait()

	if s.onNightlyDone != nil {
		s.onNightlyDone(ctx)
	}

	slog.Info("Nightly batch finished",
		slog.Duration("took", s.now().Sub(start)))
}

func (s *Scheduler) nightlyChat(c *game.Chat) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Nightly processing panicked",
				slog.String("type", "error"),
				slog.String("chat_id", c.ID.String()),
				slog.Any("error", r))
		}
	}()

	if _, err := c.Location(); err != nil {
		slog.Error("Skipping chat in nightly batch, broken time zone",
			slog.String("chat_id", c.ID.String()),
			slog.Any("error", err))
		return
	}
	c.GenerateRandomDankTimes()
	s.ScheduleAllOfChat(c)
	c.HardcoreModeCheck(s.now())
}

// Bootstrap arms timers for every running chat at startup, generating the
// day's random dank times first. No hardcore punishment here.
func (s *Scheduler) Bootstrap() {
	for _, c := range s.chats.All() {
		if !c.Running() {
			continue
		}
		if _, err := c.Location(); err != nil {
			slog.Error("Skipping chat at startup, broken time zone",
				slog.String("chat_id", c.ID.String()),
				slog.Any("error", err))
			continue
		}
		c.GenerateRandomDankTimes()
		s.ScheduleAllOfChat(c)
	}
}
