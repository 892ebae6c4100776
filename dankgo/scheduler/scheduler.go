package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/danktimes/dankgo/dankgo/game"
	"github.com/danktimes/dankgo/dankgo/game/settings"
	"github.com/danktimes/dankgo/dankgo/metrics"
	"github.com/danktimes/dankgo/dankgo/plugins"
	"github.com/danktimes/dankgo/dankgo/transport"
)

const (
	// The follow-up runs just before the minute closes so it can tell
	// whether anyone claimed the window.
	defaultFollowUpDelay = 59 * time.Second
	jobTimeout           = 10 * time.Second
)

// item is one live timer for a (chat, hour, minute) pair. Items are
// ephemeral: rebuilt whenever a chat's dank times change, never persisted.
type item struct {
	chatID snowflake.ID
	hour   int
	minute int
	timer  *time.Timer
}

// Scheduler maps chat/dank-time pairs to live wall-clock timers and runs
// the announce → follow-up cycle when they fire.
type Scheduler struct {
	mu                  sync.Mutex
	chats               *game.Registry
	transport           transport.Transport
	events              *plugins.Host
	notifications       []*item
	randomNotifications []*item

	followUpDelay time.Duration
	now           func() time.Time
	shutdown      chan struct{}

	// onNightlyDone lets the wiring layer persist state after each batch.
	onNightlyDone func(ctx context.Context)
}

func New(chats *game.Registry, tp transport.Transport, events *plugins.Host) *Scheduler {
	return &Scheduler{
		chats:         chats,
		transport:     tp,
		events:        events,
		followUpDelay: defaultFollowUpDelay,
		now:           time.Now,
		shutdown:      make(chan struct{}),
	}
}

// OnNightlyDone registers a callback invoked after every nightly batch.
func (s *Scheduler) OnNightlyDone(fn func(ctx context.Context)) {
	s.onNightlyDone = fn
}

// ScheduleAllOfChat arms timers for every dank time of a running chat:
// random entries first, then normal ones. A stopped chat gets nothing.
func (s *Scheduler) ScheduleAllOfChat(c *game.Chat) {
	if !c.Running() {
		return
	}
	for _, d := range c.RandomDankTimes() {
		s.schedule(c, d, true)
	}
	for _, d := range c.DankTimes() {
		s.schedule(c, d, false)
	}
}

// ScheduleDankTime arms a timer for one normal dank time, replacing any
// existing timer for the same slot.
func (s *Scheduler) ScheduleDankTime(c *game.Chat, d *game.DankTime) {
	s.UnscheduleDankTime(c.ID, d.Hour, d.Minute)
	if !c.Running() {
		return
	}
	s.schedule(c, d, false)
}

func (s *Scheduler) schedule(c *game.Chat, d *game.DankTime, random bool) {
	loc, err := c.Location()
	if err != nil {
		slog.Warn("Cannot schedule dank time, broken time zone",
			slog.String("chat_id", c.ID.String()),
			slog.Any("error", err))
		return
	}
	it := &item{chatID: c.ID, hour: d.Hour, minute: d.Minute}
	delay := untilNext(s.now().In(loc), d.Hour, d.Minute)
	it.timer = time.AfterFunc(delay, func() { s.fire(it, random) })

	s.mu.Lock()
	if random {
		s.randomNotifications = append(s.randomNotifications, it)
	} else {
		s.notifications = append(s.notifications, it)
	}
	s.mu.Unlock()
}

// untilNext returns the wait until (hour, minute) next comes around on
// now's clock.
func untilNext(now time.Time, hour, minute int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

// fire is the timer job: announce, arm the follow-up, fire the pre-window
// event and re-arm for tomorrow. It self-deactivates by re-checking chat
// state instead of relying on cancellation.
func (s *Scheduler) fire(it *item, random bool) {
	metrics.TimersFired.Inc()

	c := s.chats.Get(it.chatID)
	if c == nil {
		s.remove(it, random)
		return
	}
	if !c.Running() {
		s.rearm(it, c, random)
		return
	}
	d := findDankTime(c, it.hour, it.minute, random)
	if d == nil {
		// The dank time was removed after scheduling.
		s.remove(it, random)
		return
	}

	// Normal dank times honor the live notification setting; random ones
	// always announce, since the announcement is the only way to learn
	// their trigger text.
	var announcementID snowflake.ID
	if random || c.Settings().Bool(settings.SendNotifications) {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		announcementID, _ = s.transport.SendMessage(ctx, c.ID, announceText(c, d))
		cancel()
	}

	s.events.FirePreDankTime(&plugins.DankTimeEvent{
		ChatID: c.ID,
		Hour:   d.Hour,
		Minute: d.Minute,
		Random: random,
	})

	time.AfterFunc(s.followUpDelay, func() {
		s.followUp(it.chatID, it.hour, it.minute, random, announcementID)
	})

	s.rearm(it, c, random)
}

// followUp closes out a window: post the leaderboard if someone claimed
// it, or retract the announcement if nobody did. A stale follow-up (chat
// gone, stopped, or a newer window open) is a silent no-op.
func (s *Scheduler) followUp(chatID snowflake.ID, hour, minute int, random bool, announcementID snowflake.ID) {
	c := s.chats.Get(chatID)
	if c == nil || !c.Running() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if c.IsOpenWindow(hour, minute) {
		if !c.Settings().Bool(settings.AutoLeaderboards) {
			return
		}
		scorers := c.ScorerNames()
		var b strings.Builder
		if len(scorers) > 0 {
			b.WriteString(fmt.Sprintf("The dank time was claimed by %s!\n\n", strings.Join(scorers, ", ")))
		}
		b.WriteString(c.Leaderboard())
		if _, err := s.transport.SendMessage(ctx, chatID, b.String()); err == nil {
			s.events.FirePostDankTime(&plugins.DankTimeEvent{
				ChatID:  chatID,
				Hour:    hour,
				Minute:  minute,
				Random:  random,
				Scorers: scorers,
			})
		}
		return
	}

	if announcementID != 0 {
		// Nobody scored; take the announcement back.
		_ = s.transport.DeleteMessage(ctx, chatID, announcementID)
	}
}

func announceText(c *game.Chat, d *game.DankTime) string {
	text := d.Texts()[0]
	points := c.DankTimePoints(d)
	if d.IsRandom {
		return fmt.Sprintf("💥 Surprise dank time! Type \"%s\" now for %d points!", text, points)
	}
	return fmt.Sprintf("⏰ It's dank o'clock! Type \"%s\" for %d points!", text, points)
}

func findDankTime(c *game.Chat, hour, minute int, random bool) *game.DankTime {
	var set []*game.DankTime
	if random {
		set = c.RandomDankTimes()
	} else {
		set = c.DankTimes()
	}
	for _, d := range set {
		if d.Hour == hour && d.Minute == minute {
			return d
		}
	}
	return nil
}

// rearm resets the item's timer for the same wall-clock moment tomorrow,
// as long as the item is still registered.
func (s *Scheduler) rearm(it *item, c *game.Chat, random bool) {
	loc, err := c.Location()
	if err != nil {
		s.remove(it, random)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !containsItem(s.registry(random), it) {
		return
	}
	it.timer = time.AfterFunc(untilNext(s.now().In(loc), it.hour, it.minute), func() {
		s.fire(it, random)
	})
}

func (s *Scheduler) registry(random bool) []*item {
	if random {
		return s.randomNotifications
	}
	return s.notifications
}

func containsItem(items []*item, target *item) bool {
	for _, it := range items {
		if it == target {
			return true
		}
	}
	return false
}

func (s *Scheduler) remove(target *item, random bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if random {
		s.randomNotifications = removeItem(s.randomNotifications, target)
	} else {
		s.notifications = removeItem(s.notifications, target)
	}
}

func removeItem(items []*item, target *item) []*item {
	for i, it := range items {
		if it == target {
			it.timer.Stop()
			return append(items[:i], items[i+1:]...)
		}
	}
	return items
}

// UnscheduleDankTime drops the normal-notification timer for (chat, hour,
// minute). Idempotent: unscheduling something already gone is a no-op.
func (s *Scheduler) UnscheduleDankTime(chatID snowflake.ID, hour, minute int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = removeMatching(s.notifications, chatID, hour, minute)
}

// UnscheduleRandomDankTime is UnscheduleDankTime for the random registry.
func (s *Scheduler) UnscheduleRandomDankTime(chatID snowflake.ID, hour, minute int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.randomNotifications = removeMatching(s.randomNotifications, chatID, hour, minute)
}

// UnscheduleAllOfChat drops every timer belonging to the chat.
func (s *Scheduler) UnscheduleAllOfChat(chatID snowflake.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = removeAllOfChat(s.notifications, chatID)
	s.randomNotifications = removeAllOfChat(s.randomNotifications, chatID)
}

func removeMatching(items []*item, chatID snowflake.ID, hour, minute int) []*item {
	out := items[:0]
	for _, it := range items {
		if it.chatID == chatID && it.hour == hour && it.minute == minute {
			it.timer.Stop()
			continue
		}
		out = append(out, it)
	}
	return out
}

func removeAllOfChat(items []*item, chatID snowflake.ID) []*item {
	out := items[:0]
	for _, it := range items {
		if it.chatID == chatID {
			it.timer.Stop()
			continue
		}
		out = append(out, it)
	}
	return out
}

// Reset stops and empties both registries. The nightly batch runs it
// before rebuilding everything from scratch.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.notifications {
		it.timer.Stop()
	}
	for _, it := range s.randomNotifications {
		it.timer.Stop()
	}
	s.notifications = nil
	s.randomNotifications = nil
}

// Shutdown stops the nightly loop and every live timer.
func (s *Scheduler) Shutdown() {
	close(s.shutdown)
	s.Reset()
	slog.Info("Scheduler shutdown completed")
}

// Len reports how many timers are live, for tests and diagnostics.
func (s *Scheduler) Len() (normal, random int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notifications), len(s.randomNotifications)
}
